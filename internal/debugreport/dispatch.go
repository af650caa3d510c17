package debugreport

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vyrodovalexey/layerlog/internal/flags"
)

// ValidationLayerPrefix is the layer prefix of messages raised with LogMsg.
const ValidationLayerPrefix = "Validation"

// Event is a raised diagnostic in canonical form. Both the modern
// severity/type pair and the legacy flags are carried so either observer
// scheme can be matched without translating per observer.
type Event struct {
	Severity    flags.Severity
	Types       flags.MessageType
	Flags       flags.ReportFlags
	Object      Object
	Location    uint64
	LayerPrefix string
	MessageID   string
	Message     string
}

// NewReportEvent builds an event from legacy report flags.
func NewReportEvent(rf flags.ReportFlags, objType ObjectType, handle uint64, id, message string) *Event {
	sev, types := flags.ToModern(rf)
	return &Event{
		Severity:    sev,
		Types:       types,
		Flags:       rf,
		Object:      Object{Type: objType, Handle: handle},
		LayerPrefix: ValidationLayerPrefix,
		MessageID:   id,
		Message:     message,
	}
}

// NewMessengerEvent builds an event from a modern severity and type.
func NewMessengerEvent(
	sev flags.Severity,
	types flags.MessageType,
	objType ObjectType,
	handle uint64,
	id, message string,
) *Event {
	return &Event{
		Severity:    sev,
		Types:       types,
		Flags:       flags.ToLegacy(sev, types),
		Object:      Object{Type: objType, Handle: handle},
		LayerPrefix: ValidationLayerPrefix,
		MessageID:   id,
		Message:     message,
	}
}

// normalize fills whichever classification the event was built without.
func (ev *Event) normalize() {
	switch {
	case ev.Severity == 0 && ev.Flags != 0:
		ev.Severity, ev.Types = flags.ToModern(ev.Flags)
	case ev.Flags == 0 && ev.Severity != 0:
		ev.Flags = flags.ToLegacy(ev.Severity, ev.Types)
	}
}

// Dispatch delivers ev to every matching observer in registration order
// and reports whether any of them asked for the API call to be aborted.
// Every matching observer is invoked even after one has asked to abort.
//
// Default observers only receive the event while no other observer is
// registered. Queue and command buffer labels are attached for modern
// observers only; legacy observers get a flattened message instead.
//
// Observers run with the Reporter lock held and must not call back into
// it. Each modern observer gets its own copy of the callback data, and ev
// itself is not modified.
func (r *Reporter) Dispatch(ctx context.Context, ev *Event) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dispatchLocked(ctx, ev)
}

func (r *Reporter) dispatchLocked(ctx context.Context, in *Event) bool {
	e := *in
	ev := &e
	ev.normalize()

	// A legacy observer matches through its flags, so the translated form
	// of the legacy flags is checked as well.
	legacySev, legacyTypes := flags.ToModern(ev.Flags)
	if !r.willLogLocked(ev.Severity, ev.Types) && !r.willLogLocked(legacySev, legacyTypes) {
		return false
	}

	_, span := r.tracer.Start(ctx, "debugreport.Dispatch",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("debugreport.message_id", ev.MessageID),
			attribute.String("debugreport.severity", ev.Severity.String()),
			attribute.String("debugreport.types", ev.Types.String()),
			attribute.String("debugreport.object_type", ev.Object.Type.String()),
		),
	)
	defer span.End()

	start := time.Now()
	r.metrics.recordMessage(ev.Severity)

	name := ""
	if !ev.Object.IsNull() {
		name = r.names.get(ev.Object.Handle)
	}

	data := &CallbackData{
		MessageIDName: ev.MessageID,
		Message:       ev.Message,
		Objects: []ObjectNameInfo{{
			Type:   ev.Object.Type,
			Handle: ev.Object.Handle,
			Name:   name,
		}},
	}
	if !ev.Object.IsNull() {
		switch ev.Object.Type {
		case ObjectTypeQueue:
			data.QueueLabels = r.queueLabels.export(ev.Object.Handle)
		case ObjectTypeCommandBuffer:
			data.CmdBufLabels = r.cmdBufLabels.export(ev.Object.Handle)
		}
	}

	legacyMessage := legacyBody(ev.Object, name, ev.Message)
	if ev.MessageID != "" {
		legacyMessage = " [ " + ev.MessageID + " ] " + legacyMessage
	}

	useDefault := r.registry.useDefault()
	invoked := 0
	abort := false
	for _, e := range r.registry.entries {
		if e.scope.IsDefault() && !useDefault {
			continue
		}

		switch obs := e.obs.(type) {
		case *reportObserver:
			if !obs.matches(ev.Flags) {
				continue
			}
			r.metrics.recordInvocation(SchemeReport, e.scope)
			invoked++
			if obs.callback(ev.Flags, ev.Object.Type, ev.Object.Handle, ev.Location, 0,
				ev.LayerPrefix, legacyMessage, obs.userData) {
				abort = true
			}
		case *messengerObserver:
			if !obs.matches(ev.Severity, ev.Types) {
				continue
			}
			r.metrics.recordInvocation(SchemeMessenger, e.scope)
			invoked++
			if obs.callback(ev.Severity, ev.Types, data.clone(), obs.userData) {
				abort = true
			}
		}
	}

	r.metrics.recordDispatch(time.Since(start), abort)
	span.SetAttributes(
		attribute.Int("debugreport.observers", invoked),
		attribute.Bool("debugreport.abort", abort),
	)

	return abort
}

// clone returns a copy whose slices are not shared with d, so one observer
// cannot change what the next one sees.
func (d *CallbackData) clone() *CallbackData {
	out := *d
	out.Objects = slices.Clone(d.Objects)
	out.QueueLabels = slices.Clone(d.QueueLabels)
	out.CmdBufLabels = slices.Clone(d.CmdBufLabels)
	return &out
}

// legacyBody flattens the object description into the message text.
func legacyBody(obj Object, name, message string) string {
	var b strings.Builder
	if obj.IsNull() {
		b.WriteString("Object: VK_NULL_HANDLE (Type = ")
		b.WriteString(strconv.FormatUint(uint64(obj.Type), 10))
		b.WriteString(")")
	} else {
		b.WriteString("Object: 0x")
		b.WriteString(strconv.FormatUint(obj.Handle, 16))
		if name != "" {
			b.WriteString(" (Name = ")
			b.WriteString(name)
			b.WriteString(" : Type = ")
		} else {
			b.WriteString(" (Type = ")
		}
		b.WriteString(strconv.FormatUint(uint64(obj.Type), 10))
		b.WriteString(")")
	}
	b.WriteString(" | ")
	b.WriteString(message)
	return b.String()
}

// LogMsg raises a validation diagnostic about one object. The message is
// built from format and args, and the specification text for id is
// appended when a table is configured. It reports whether any observer
// asked for the API call to be aborted.
//
// A message that no registered observer could receive is dropped before
// it is formatted.
func (r *Reporter) LogMsg(
	ctx context.Context,
	rf flags.ReportFlags,
	objType ObjectType,
	handle uint64,
	id string,
	format string,
	args ...any,
) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.willLogLocked(flags.ToModern(rf)) {
		return false
	}

	message := r.specText.Annotate(id, fmt.Sprintf(format, args...))
	return r.dispatchLocked(ctx, NewReportEvent(rf, objType, handle, id, message))
}
