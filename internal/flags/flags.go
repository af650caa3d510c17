package flags

import (
	"fmt"
	"strings"
)

// Severity is the modern message severity. Values are single bits ordered
// by importance, so a Severity can also be used as a filter mask.
type Severity uint32

// Severity bits.
const (
	SeverityVerbose Severity = 0x00000001
	SeverityInfo    Severity = 0x00000010
	SeverityWarning Severity = 0x00000100
	SeverityError   Severity = 0x00001000

	// SeverityAll matches every severity.
	SeverityAll = SeverityVerbose | SeverityInfo | SeverityWarning | SeverityError
)

// MessageType is the modern message type bitset.
type MessageType uint32

// MessageType bits.
const (
	TypeGeneral     MessageType = 0x00000001
	TypeValidation  MessageType = 0x00000002
	TypePerformance MessageType = 0x00000004

	// TypeAll matches every message type.
	TypeAll = TypeGeneral | TypeValidation | TypePerformance
)

// ReportFlags is the legacy single-flag classification.
type ReportFlags uint32

// ReportFlags bits.
const (
	ReportInformation        ReportFlags = 0x00000001
	ReportWarning            ReportFlags = 0x00000002
	ReportPerformanceWarning ReportFlags = 0x00000004
	ReportError              ReportFlags = 0x00000008
	ReportDebug              ReportFlags = 0x00000010

	// ReportAll matches every legacy flag.
	ReportAll = ReportInformation | ReportWarning | ReportPerformanceWarning | ReportError | ReportDebug
)

// ToModern converts legacy report flags to the modern severity and type
// masks. Every set bit contributes to the result.
func ToModern(rf ReportFlags) (Severity, MessageType) {
	var sev Severity
	var types MessageType

	// An explicit performance warning stays a performance message; all other
	// bits are treated as validation output.
	if rf&ReportPerformanceWarning != 0 {
		types |= TypePerformance
		sev |= SeverityWarning
	}
	if rf&ReportDebug != 0 {
		types |= TypeGeneral | TypeValidation
		sev |= SeverityVerbose
	}
	if rf&ReportInformation != 0 {
		types |= TypeValidation
		sev |= SeverityInfo
	}
	if rf&ReportWarning != 0 {
		types |= TypeValidation
		sev |= SeverityWarning
	}
	if rf&ReportError != 0 {
		types |= TypeValidation
		sev |= SeverityError
	}

	return sev, types
}

// ToLegacy converts a modern severity and type to legacy report flags.
//
// The conversion is lossy and is not the inverse of ToModern. Only the
// highest severity present is kept (error > warning > info > verbose), and
// the type is reduced to the choice between a warning and a performance
// warning. A round trip through ToModern is not expected to reproduce the input.
func ToLegacy(sev Severity, types MessageType) ReportFlags {
	switch {
	case sev&SeverityError != 0:
		return ReportError
	case sev&SeverityWarning != 0:
		if types&TypePerformance != 0 {
			return ReportPerformanceWarning
		}
		return ReportWarning
	case sev&SeverityInfo != 0:
		return ReportInformation
	case sev&SeverityVerbose != 0:
		return ReportDebug
	default:
		return 0
	}
}

// flagName pairs a bit with its printable label.
type flagName[T ~uint32] struct {
	bit  T
	name string
}

var reportNames = []flagName[ReportFlags]{
	{ReportInformation, "INFO"},
	{ReportWarning, "WARN"},
	{ReportPerformanceWarning, "PERF"},
	{ReportError, "ERROR"},
	{ReportDebug, "DEBUG"},
}

var severityNames = []flagName[Severity]{
	{SeverityVerbose, "VERBOSE"},
	{SeverityInfo, "INFO"},
	{SeverityWarning, "WARN"},
	{SeverityError, "ERROR"},
}

var typeNames = []flagName[MessageType]{
	{TypeGeneral, "GEN"},
	{TypeValidation, "SPEC"},
	{TypePerformance, "PERF"},
}

func joinNames[T ~uint32](v T, names []flagName[T]) string {
	parts := make([]string, 0, len(names))
	for _, n := range names {
		if v&n.bit != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, ",")
}

// String returns the comma separated labels of the set bits, e.g. "WARN,ERROR".
func (f ReportFlags) String() string {
	return joinNames(f, reportNames)
}

// String returns the comma separated labels of the set bits, e.g. "INFO".
func (s Severity) String() string {
	return joinNames(s, severityNames)
}

// String returns the comma separated labels of the set bits, e.g. "GEN,SPEC".
func (t MessageType) String() string {
	return joinNames(t, typeNames)
}

// Has reports whether every bit of other is set in f.
func (f ReportFlags) Has(other ReportFlags) bool {
	return f&other == other
}

// ParseReportFlags parses settings tokens (error, warn, perf, info, debug)
// into legacy report flags.
func ParseReportFlags(tokens []string) (ReportFlags, error) {
	var out ReportFlags
	for _, tok := range tokens {
		switch normalizeToken(tok) {
		case "error":
			out |= ReportError
		case "warn", "warning":
			out |= ReportWarning
		case "perf", "performance":
			out |= ReportPerformanceWarning
		case "info", "information":
			out |= ReportInformation
		case "debug":
			out |= ReportDebug
		case "":
			continue
		default:
			return 0, fmt.Errorf("unknown report flag %q", tok)
		}
	}
	return out, nil
}

// ParseSeverity parses settings tokens (verbose, info, warn, error) into a
// severity mask.
func ParseSeverity(tokens []string) (Severity, error) {
	var out Severity
	for _, tok := range tokens {
		switch normalizeToken(tok) {
		case "verbose":
			out |= SeverityVerbose
		case "info":
			out |= SeverityInfo
		case "warn", "warning":
			out |= SeverityWarning
		case "error":
			out |= SeverityError
		case "":
			continue
		default:
			return 0, fmt.Errorf("unknown severity %q", tok)
		}
	}
	return out, nil
}

// ParseMessageType parses settings tokens (general, validation, performance)
// into a message type mask.
func ParseMessageType(tokens []string) (MessageType, error) {
	var out MessageType
	for _, tok := range tokens {
		switch normalizeToken(tok) {
		case "general":
			out |= TypeGeneral
		case "validation":
			out |= TypeValidation
		case "performance", "perf":
			out |= TypePerformance
		case "":
			continue
		default:
			return 0, fmt.Errorf("unknown message type %q", tok)
		}
	}
	return out, nil
}

func normalizeToken(tok string) string {
	return strings.ToLower(strings.TrimSpace(tok))
}
