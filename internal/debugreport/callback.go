package debugreport

import (
	"github.com/vyrodovalexey/layerlog/internal/flags"
)

// Handle identifies a registered observer. Handles are unique among the
// observers currently registered with a Reporter; zero is never issued.
type Handle uint64

// Scope classifies how an observer was registered. The zero value is a
// user-registered observer.
type Scope uint32

// Scope bits.
const (
	// ScopeDefault marks a fallback observer that only receives messages
	// while no non-default observer is registered.
	ScopeDefault Scope = 0x1
	// ScopeInstance marks an observer registered by instance-scoped
	// activation; DeactivateInstanceCallbacks removes it.
	ScopeInstance Scope = 0x2
)

// IsDefault reports whether the default bit is set.
func (s Scope) IsDefault() bool { return s&ScopeDefault != 0 }

// IsInstance reports whether the instance bit is set.
func (s Scope) IsInstance() bool { return s&ScopeInstance != 0 }

// String returns a label suitable for logs and metrics.
func (s Scope) String() string {
	switch {
	case s.IsInstance() && s.IsDefault():
		return "instance_default"
	case s.IsInstance():
		return "instance"
	case s.IsDefault():
		return "default"
	default:
		return "user"
	}
}

// Scheme names the callback shape an observer was registered with.
type Scheme int

// Schemes.
const (
	SchemeReport Scheme = iota
	SchemeMessenger
)

// String returns the scheme name.
func (s Scheme) String() string {
	if s == SchemeMessenger {
		return "messenger"
	}
	return "report"
}

// ReportCallback is the legacy observer shape. message already carries the
// object description and, when the diagnostic has an id, a bracketed id
// prefix. Returning true asks the caller to abort the API call.
//
// The callback runs with the Reporter lock held and must not call back into
// the Reporter.
type ReportCallback func(
	reportFlags flags.ReportFlags,
	objectType ObjectType,
	object uint64,
	location uint64,
	messageCode int32,
	layerPrefix string,
	message string,
	userData any,
) bool

// MessengerCallback is the modern observer shape. data is only valid for
// the duration of the call. Returning true asks the caller to abort the API
// call.
//
// The callback runs with the Reporter lock held and must not call back into
// the Reporter.
type MessengerCallback func(
	severity flags.Severity,
	types flags.MessageType,
	data *CallbackData,
	userData any,
) bool

// CallbackData is the structured payload handed to messenger callbacks.
type CallbackData struct {
	MessageIDName string
	// MessageIDNumber is deprecated and always 0.
	MessageIDNumber int32
	Message         string
	Objects         []ObjectNameInfo
	QueueLabels     []Label
	CmdBufLabels    []Label
}

// ReportCallbackCreateInfo configures a legacy observer.
type ReportCallbackCreateInfo struct {
	Flags    flags.ReportFlags
	Callback ReportCallback
	UserData any
}

// MessengerCreateInfo configures a modern observer.
type MessengerCreateInfo struct {
	Severity flags.Severity
	Types    flags.MessageType
	Callback MessengerCallback
	UserData any
}

// observer is the registered form of either create info. The concrete type
// is the scheme tag.
type observer interface {
	scheme() Scheme
	// modernFilter returns the observer filter in severity/type form.
	modernFilter() (flags.Severity, flags.MessageType)
}

type reportObserver struct {
	flags    flags.ReportFlags
	callback ReportCallback
	userData any
}

func newReportObserver(info *ReportCallbackCreateInfo) *reportObserver {
	return &reportObserver{
		flags:    info.Flags,
		callback: info.Callback,
		userData: info.UserData,
	}
}

func (o *reportObserver) scheme() Scheme { return SchemeReport }

func (o *reportObserver) modernFilter() (flags.Severity, flags.MessageType) {
	return flags.ToModern(o.flags)
}

func (o *reportObserver) matches(rf flags.ReportFlags) bool {
	return o.flags&rf != 0
}

type messengerObserver struct {
	severity flags.Severity
	types    flags.MessageType
	callback MessengerCallback
	userData any
}

func newMessengerObserver(info *MessengerCreateInfo) *messengerObserver {
	return &messengerObserver{
		severity: info.Severity,
		types:    info.Types,
		callback: info.Callback,
		userData: info.UserData,
	}
}

func (o *messengerObserver) scheme() Scheme { return SchemeMessenger }

func (o *messengerObserver) modernFilter() (flags.Severity, flags.MessageType) {
	return o.severity, o.types
}

func (o *messengerObserver) matches(sev flags.Severity, types flags.MessageType) bool {
	return o.severity&sev != 0 && o.types&types != 0
}

// registration is one entry of the callback registry. Entries are held by
// pointer so their identity never depends on the backing slice.
type registration struct {
	handle Handle
	scope  Scope
	obs    observer
}

// CreateOption customizes a Create* call.
type CreateOption func(*createOptions)

type createOptions struct {
	scope  Scope
	handle Handle
}

// AsDefault registers the observer as a default fallback.
func AsDefault() CreateOption {
	return func(o *createOptions) {
		o.scope |= ScopeDefault
	}
}

// WithHandle asks for a caller-supplied handle instead of a synthesized
// one. A handle that is zero or already in use is replaced by a fresh one.
func WithHandle(h Handle) CreateOption {
	return func(o *createOptions) {
		o.handle = h
	}
}

func withScope(s Scope) CreateOption {
	return func(o *createOptions) {
		o.scope |= s
	}
}

// CreateReportCallback registers a legacy observer and returns its handle.
func (r *Reporter) CreateReportCallback(info *ReportCallbackCreateInfo, opts ...CreateOption) Handle {
	return r.create(newReportObserver(info), opts)
}

// CreateMessenger registers a modern observer and returns its handle.
func (r *Reporter) CreateMessenger(info *MessengerCreateInfo, opts ...CreateOption) Handle {
	return r.create(newMessengerObserver(info), opts)
}

// DestroyReportCallback unregisters a legacy observer. Unknown handles are
// ignored.
func (r *Reporter) DestroyReportCallback(h Handle) {
	r.destroy(h)
}

// DestroyMessenger unregisters a modern observer. Unknown handles are
// ignored.
func (r *Reporter) DestroyMessenger(h Handle) {
	r.destroy(h)
}

func (r *Reporter) create(obs observer, opts []CreateOption) Handle {
	var o createOptions
	for _, opt := range opts {
		opt(&o)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createLocked(obs, o)
}

func (r *Reporter) createLocked(obs observer, o createOptions) Handle {
	requested := o.handle
	h := r.registry.add(obs, o.scope, requested)
	if requested != 0 && h != requested {
		r.logger.Warn("requested callback handle already in use",
			handleField("requested", requested),
			handleField("handle", h),
		)
	}

	r.metrics.setCallbacks(r.registry)
	r.logger.Debug("callback registered",
		handleField("handle", h),
		schemeField(obs.scheme()),
		scopeField(o.scope),
	)
	return h
}

func (r *Reporter) destroy(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.destroyLocked(h)
}

func (r *Reporter) destroyLocked(h Handle) {
	if !r.registry.remove(h) {
		return
	}
	r.metrics.setCallbacks(r.registry)
	r.logger.Debug("callback destroyed", handleField("handle", h))
}
