// Package debugreport routes diagnostic messages raised by the layer to
// externally registered observer callbacks.
//
// A Reporter is the subsystem instance. One exists per externally visible
// top-level object and owns everything the routing needs:
//   - the callback registry (legacy report callbacks and modern messengers)
//   - two object name tables
//   - per-queue and per-command-buffer label stacks
//
// # Observers
//
// Two callback shapes are supported. A ReportCallback receives the legacy
// single-flag classification and a pre-formatted message. A
// MessengerCallback receives a severity, a type mask and a structured
// CallbackData carrying the message id, named objects and label stacks.
//
//	r := debugreport.NewReporter()
//	h := r.CreateMessenger(&debugreport.MessengerCreateInfo{
//	    Severity: flags.SeverityWarning | flags.SeverityError,
//	    Types:    flags.TypeValidation,
//	    Callback: onMessage,
//	})
//	defer r.DestroyMessenger(h)
//
// Observers created with AsDefault are fallbacks: they only receive
// messages while no other observer is registered.
//
// # Locking
//
// All Reporter state is guarded by a single mutex, and observers are
// invoked while it is held. An observer must not call back into the same
// Reporter; doing so deadlocks.
package debugreport
