package debugreport

import (
	"github.com/vyrodovalexey/layerlog/internal/flags"
)

type reportCall struct {
	flags       flags.ReportFlags
	objectType  ObjectType
	object      uint64
	messageCode int32
	layerPrefix string
	message     string
	userData    any
}

// reportRecorder records legacy callback invocations.
type reportRecorder struct {
	calls []reportCall
	abort bool
}

func (rec *reportRecorder) callback(
	rf flags.ReportFlags,
	objectType ObjectType,
	object uint64,
	_ uint64,
	messageCode int32,
	layerPrefix string,
	message string,
	userData any,
) bool {
	rec.calls = append(rec.calls, reportCall{
		flags:       rf,
		objectType:  objectType,
		object:      object,
		messageCode: messageCode,
		layerPrefix: layerPrefix,
		message:     message,
		userData:    userData,
	})
	return rec.abort
}

func (rec *reportRecorder) info(rf flags.ReportFlags) *ReportCallbackCreateInfo {
	return &ReportCallbackCreateInfo{Flags: rf, Callback: rec.callback}
}

type messengerCall struct {
	severity flags.Severity
	types    flags.MessageType
	data     CallbackData
}

// messengerRecorder records modern callback invocations.
type messengerRecorder struct {
	calls []messengerCall
	abort bool
}

func (rec *messengerRecorder) callback(
	sev flags.Severity,
	types flags.MessageType,
	data *CallbackData,
	_ any,
) bool {
	rec.calls = append(rec.calls, messengerCall{severity: sev, types: types, data: *data})
	return rec.abort
}

func (rec *messengerRecorder) info(sev flags.Severity, types flags.MessageType) *MessengerCreateInfo {
	return &MessengerCreateInfo{Severity: sev, Types: types, Callback: rec.callback}
}
