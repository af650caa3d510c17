package debugreport

import (
	"io"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/vyrodovalexey/layerlog/internal/flags"
)

// LogSink is the user data of the default log callbacks. Lines are written
// to Writer, flushed, and copied to Mirror when it is set.
//
// A LogSink may be shared between reporters.
type LogSink struct {
	Writer io.Writer
	// Mirror receives a copy of every line, e.g. a platform console.
	Mirror io.Writer
	// Color highlights the severity label with ANSI colors.
	Color bool

	mu sync.Mutex
}

func forcedColor(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	c.EnableColor()
	return c
}

var (
	errorColor   = forcedColor(color.FgRed, color.Bold)
	warningColor = forcedColor(color.FgYellow, color.Bold)
	perfColor    = forcedColor(color.FgMagenta)
	infoColor    = forcedColor(color.FgCyan)
	debugColor   = forcedColor(color.FgWhite)
)

func reportColor(rf flags.ReportFlags) *color.Color {
	switch {
	case rf&flags.ReportError != 0:
		return errorColor
	case rf&flags.ReportWarning != 0:
		return warningColor
	case rf&flags.ReportPerformanceWarning != 0:
		return perfColor
	case rf&flags.ReportInformation != 0:
		return infoColor
	default:
		return debugColor
	}
}

func severityColor(sev flags.Severity) *color.Color {
	switch {
	case sev&flags.SeverityError != 0:
		return errorColor
	case sev&flags.SeverityWarning != 0:
		return warningColor
	case sev&flags.SeverityInfo != 0:
		return infoColor
	default:
		return debugColor
	}
}

func (s *LogSink) write(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	writeLine(s.Writer, line)
	if s.Mirror != nil {
		writeLine(s.Mirror, line)
	}
}

// writeLine writes line to w and flushes it. Output errors are dropped,
// a log sink has nowhere to report them.
func writeLine(w io.Writer, line string) {
	if w == nil {
		return
	}
	_, _ = io.WriteString(w, line)

	switch f := w.(type) {
	case interface{ Sync() error }:
		_ = f.Sync()
	case interface{ Flush() error }:
		_ = f.Flush()
	}
}

// deliver renders a line for userData, which is a *LogSink or an
// io.Writer. Any other user data is ignored.
func deliver(userData any, render func(colored bool) string) {
	switch out := userData.(type) {
	case *LogSink:
		if out == nil {
			return
		}
		out.write(render(out.Color))
	case io.Writer:
		writeLine(out, render(false))
	}
}

// ReportLogCallback is the default legacy observer. It writes
//
//	<prefix>(<FLAGS>): msg_code: <code>: <message>
//
// to the *LogSink or io.Writer passed as user data. It never asks to abort.
func ReportLogCallback(
	reportFlags flags.ReportFlags,
	_ ObjectType,
	_ uint64,
	_ uint64,
	messageCode int32,
	layerPrefix string,
	message string,
	userData any,
) bool {
	deliver(userData, func(colored bool) string {
		label := reportFlags.String()
		if colored {
			label = reportColor(reportFlags).Sprint(label)
		}

		var b strings.Builder
		b.WriteString(layerPrefix)
		b.WriteString("(")
		b.WriteString(label)
		b.WriteString("): msg_code: ")
		b.WriteString(strconv.FormatInt(int64(messageCode), 10))
		b.WriteString(": ")
		b.WriteString(message)
		b.WriteString("\n")
		return b.String()
	})
	return false
}

// MessengerLogCallback is the default modern observer. It writes the
// message header followed by one line per object to the *LogSink or
// io.Writer passed as user data. It never asks to abort.
func MessengerLogCallback(
	severity flags.Severity,
	types flags.MessageType,
	data *CallbackData,
	userData any,
) bool {
	if data == nil {
		return false
	}

	deliver(userData, func(colored bool) string {
		label := severity.String()
		if colored {
			label = severityColor(severity).Sprint(label)
		}

		var b strings.Builder
		b.WriteString(data.MessageIDName)
		b.WriteString("(")
		b.WriteString(label)
		b.WriteString(" / ")
		b.WriteString(types.String())
		b.WriteString("): msgNum: ")
		b.WriteString(strconv.FormatInt(int64(data.MessageIDNumber), 10))
		b.WriteString(" - ")
		b.WriteString(data.Message)
		b.WriteString("\n    Objects: ")
		b.WriteString(strconv.Itoa(len(data.Objects)))
		b.WriteString("\n")
		for i, obj := range data.Objects {
			name := obj.Name
			if name == "" {
				name = "NULL"
			}
			b.WriteString("        [")
			b.WriteString(strconv.Itoa(i))
			b.WriteString("] ")
			b.WriteString(formatObjectHandle(obj.Handle))
			b.WriteString(", type: ")
			b.WriteString(strconv.FormatUint(uint64(obj.Type), 10))
			b.WriteString(", name: ")
			b.WriteString(name)
			b.WriteString("\n")
		}
		return b.String()
	})
	return false
}

// formatObjectHandle prints a handle in hex with a 0x prefix, except for
// the null handle which is printed as 0.
func formatObjectHandle(h uint64) string {
	if h == 0 {
		return "0"
	}
	return "0x" + strconv.FormatUint(h, 16)
}

// ReportBreakCallback stops the process in an attached debugger. Without a
// debugger the process receives SIGTRAP.
func ReportBreakCallback(flags.ReportFlags, ObjectType, uint64, uint64, int32, string, string, any) bool {
	runtime.Breakpoint()
	return false
}

// MessengerBreakCallback is ReportBreakCallback for modern observers.
func MessengerBreakCallback(flags.Severity, flags.MessageType, *CallbackData, any) bool {
	runtime.Breakpoint()
	return false
}

var (
	_ ReportCallback    = ReportLogCallback
	_ ReportCallback    = ReportBreakCallback
	_ MessengerCallback = MessengerLogCallback
	_ MessengerCallback = MessengerBreakCallback
)
