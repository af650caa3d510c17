package debugreport

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Message ids that carry no specification text.
const (
	// UndefinedMessageID is used by checks that have no assigned id.
	UndefinedMessageID = "VUID_Undefined"
	// unassignedPrefix marks ids for checks not covered by the specification.
	unassignedPrefix = "UNASSIGNED-"
	// specTextSeparator joins a message with its specification text.
	specTextSeparator = " The Vulkan spec states: "
)

// SpecText maps message ids to the specification text they enforce. Every
// id a validation check can raise is expected to be present.
type SpecText map[string]string

// LoadSpecText reads a YAML (or JSON) document mapping message ids to text.
func LoadSpecText(path string) (SpecText, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from trusted settings
	if err != nil {
		return nil, fmt.Errorf("failed to open spec text file %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return ReadSpecText(f)
}

// ReadSpecText decodes a spec text table from r.
func ReadSpecText(r io.Reader) (SpecText, error) {
	table := SpecText{}
	if err := yaml.NewDecoder(r).Decode(&table); err != nil {
		if errors.Is(err, io.EOF) {
			return table, nil
		}
		return nil, fmt.Errorf("failed to parse spec text: %w", err)
	}
	return table, nil
}

// needsSpecText reports whether id is expected to have a table entry.
func needsSpecText(id string) bool {
	return id != "" &&
		!strings.Contains(id, unassignedPrefix) &&
		!strings.Contains(id, UndefinedMessageID)
}

// Has reports whether Annotate can handle id: the table is unset, id is
// exempt from lookup, or id has an entry.
func (t SpecText) Has(id string) bool {
	if t == nil || !needsSpecText(id) {
		return true
	}
	_, ok := t[id]
	return ok
}

// Annotate appends the specification text for id to message. Ids that are
// unassigned or undefined are returned unchanged.
//
// An id without a table entry is a build-time contract violation (every
// raised id must be registered ahead of time) and panics.
func (t SpecText) Annotate(id, message string) string {
	if t == nil || !needsSpecText(id) {
		return message
	}
	text, ok := t[id]
	if !ok {
		panic(fmt.Sprintf("debugreport: message id %q has no spec text entry", id))
	}
	return message + specTextSeparator + text
}
