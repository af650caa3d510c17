package debugreport

import (
	"github.com/vyrodovalexey/layerlog/internal/flags"
)

// registry is the ordered collection of registered observers together with
// the aggregate filter over all of them. It is not safe for concurrent use;
// the Reporter lock guards it.
//
// Registries hold a handful of observers for the lifetime of a Reporter, so
// lookups and removals are linear scans.
type registry struct {
	entries    []*registration
	lastHandle Handle

	activeSeverities flags.Severity
	activeTypes      flags.MessageType
}

// add appends an observer and returns its handle. requested is used when it
// is non-zero and not held by a live entry; otherwise the next free counter
// value is issued.
func (g *registry) add(obs observer, scope Scope, requested Handle) Handle {
	h := requested
	if h == 0 || g.lookup(h) != nil {
		h = g.nextHandle()
	}

	g.entries = append(g.entries, &registration{
		handle: h,
		scope:  scope,
		obs:    obs,
	})
	g.recompute()
	return h
}

// nextHandle issues the next counter value not held by a live entry.
// Caller-supplied handles share the space, so the counter skips them.
func (g *registry) nextHandle() Handle {
	for {
		g.lastHandle++
		if g.lastHandle != 0 && g.lookup(g.lastHandle) == nil {
			return g.lastHandle
		}
	}
}

// remove deletes the entry with handle h and reports whether it existed.
func (g *registry) remove(h Handle) bool {
	for i, e := range g.entries {
		if e.handle != h {
			continue
		}
		copy(g.entries[i:], g.entries[i+1:])
		g.entries[len(g.entries)-1] = nil
		g.entries = g.entries[:len(g.entries)-1]
		g.recompute()
		return true
	}
	return false
}

// removeAll drops every entry. The aggregate filter is left as is since the
// owner is being torn down.
func (g *registry) removeAll() {
	clear(g.entries)
	g.entries = g.entries[:0]
}

func (g *registry) lookup(h Handle) *registration {
	for _, e := range g.entries {
		if e.handle == h {
			return e
		}
	}
	return nil
}

// recompute rebuilds the aggregate filter as the union of every entry's
// filter, legacy filters translated to severity/type form.
func (g *registry) recompute() {
	var sev flags.Severity
	var types flags.MessageType
	for _, e := range g.entries {
		s, t := e.obs.modernFilter()
		sev |= s
		types |= t
	}
	g.activeSeverities = sev
	g.activeTypes = types
}

// useDefault reports whether default observers are eligible, which is the
// case only while every registered observer is a default one.
func (g *registry) useDefault() bool {
	for _, e := range g.entries {
		if !e.scope.IsDefault() {
			return false
		}
	}
	return true
}

// handlesWithScope returns the handles of every entry whose scope includes s.
func (g *registry) handlesWithScope(s Scope) []Handle {
	var out []Handle
	for _, e := range g.entries {
		if e.scope&s != 0 {
			out = append(out, e.handle)
		}
	}
	return out
}

// countByScope returns the number of entries per scope label.
func (g *registry) countByScope() map[string]int {
	out := map[string]int{
		ScopeDefault.String():  0,
		ScopeInstance.String(): 0,
		Scope(0).String():      0,

		(ScopeDefault | ScopeInstance).String(): 0,
	}
	for _, e := range g.entries {
		out[e.scope.String()]++
	}
	return out
}

func (g *registry) len() int {
	return len(g.entries)
}

// ActiveFilter returns the union of every registered observer's severity
// and type interest.
func (r *Reporter) ActiveFilter() (flags.Severity, flags.MessageType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registry.activeSeverities, r.registry.activeTypes
}

// WillLogMessage reports whether any registered observer could be
// interested in a message with the given severity and type. A false result
// means dispatching it would invoke nothing.
func (r *Reporter) WillLogMessage(sev flags.Severity, types flags.MessageType) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.willLogLocked(sev, types)
}

// WillLog is WillLogMessage for legacy report flags.
func (r *Reporter) WillLog(rf flags.ReportFlags) bool {
	sev, types := flags.ToModern(rf)
	return r.WillLogMessage(sev, types)
}

func (r *Reporter) willLogLocked(sev flags.Severity, types flags.MessageType) bool {
	return r.registry.activeSeverities&sev != 0 && r.registry.activeTypes&types != 0
}

// CallbackCount returns the number of registered observers.
func (r *Reporter) CallbackCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registry.len()
}
