// Package flags defines the two diagnostic classification schemes understood
// by the layer and the translation between them.
//
// The legacy "report" scheme tags every message with a single bitmask of
// ReportFlags (error, warning, performance warning, information, debug).
// The modern "messenger" scheme splits the same information into a Severity
// and a MessageType bitset.
//
// # Translation
//
// ToModern is exact: every legacy bit has a fixed modern equivalent and
// multiple bits are ORed together.
//
//	sev, types := flags.ToModern(flags.ReportError | flags.ReportWarning)
//	// sev == SeverityWarning|SeverityError, types == TypeValidation
//
// ToLegacy is lossy. The legacy scheme carries a single severity per
// message, so the highest modern severity wins and the type only survives
// as the performance-warning bit.
package flags
