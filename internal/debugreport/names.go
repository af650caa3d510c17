package debugreport

import "fmt"

// NameScheme selects one of the two object naming tables.
type NameScheme int

// Naming schemes, in lookup priority order.
const (
	// NameSchemeUtils holds names set through the messenger-era naming call.
	NameSchemeUtils NameScheme = iota
	// NameSchemeMarker holds names set through the legacy marker naming call.
	NameSchemeMarker
)

// String returns the scheme name.
func (s NameScheme) String() string {
	switch s {
	case NameSchemeUtils:
		return "utils"
	case NameSchemeMarker:
		return "marker"
	default:
		return fmt.Sprintf("NameScheme(%d)", int(s))
	}
}

// nameDirectory maps object handles to debug names, one table per scheme.
// It is not safe for concurrent use; the Reporter lock guards it.
type nameDirectory struct {
	utils  map[uint64]string
	marker map[uint64]string
}

func newNameDirectory() nameDirectory {
	return nameDirectory{
		utils:  make(map[uint64]string),
		marker: make(map[uint64]string),
	}
}

func (d *nameDirectory) table(scheme NameScheme) map[uint64]string {
	if scheme == NameSchemeMarker {
		return d.marker
	}
	return d.utils
}

// set stores name for handle; an empty name removes the entry.
func (d *nameDirectory) set(scheme NameScheme, handle uint64, name string) {
	t := d.table(scheme)
	if name == "" {
		delete(t, handle)
		return
	}
	t[handle] = name
}

// get returns the utils name, then the marker name, then "".
func (d *nameDirectory) get(handle uint64) string {
	if name := d.utils[handle]; name != "" {
		return name
	}
	return d.marker[handle]
}

// SetObjectName names an object under the given scheme. An empty name
// removes any name previously set under that scheme.
func (r *Reporter) SetObjectName(scheme NameScheme, handle uint64, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names.set(scheme, handle, name)
}

// ObjectName returns the debug name of handle, preferring the utils scheme.
// It returns "" when the object has no name under either scheme.
func (r *Reporter) ObjectName(handle uint64) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.names.get(handle)
}

// FormatHandle renders a handle for message text as "<type> 0x<hex>[<name>]".
func (r *Reporter) FormatHandle(typeName string, handle uint64) string {
	return fmt.Sprintf("%s 0x%x[%s]", typeName, handle, r.ObjectName(handle))
}

// FormatObject is FormatHandle for a typed object.
func (r *Reporter) FormatObject(obj Object) string {
	return r.FormatHandle(obj.Type.String(), obj.Handle)
}
