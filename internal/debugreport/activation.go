package debugreport

// ChainEntry is one element of the creation-time extension chain of the
// owning object. Only *ReportCallbackCreateInfo and *MessengerCreateInfo
// entries are meaningful to the Reporter; everything else is skipped.
type ChainEntry any

// ActivateInstanceCallbacks stores chain and registers every observer
// create info found in it, in chain order, as an instance-scoped observer.
// It is called while the owning object is being created so diagnostics
// raised during creation already reach those observers.
func (r *Reporter) ActivateInstanceCallbacks(chain []ChainEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.instanceChain = chain

	o := createOptions{scope: ScopeInstance}
	for _, entry := range chain {
		switch info := entry.(type) {
		case *MessengerCreateInfo:
			if info == nil {
				continue
			}
			r.createLocked(newMessengerObserver(info), o)
		case *ReportCallbackCreateInfo:
			if info == nil {
				continue
			}
			r.createLocked(newReportObserver(info), o)
		}
	}
}

// DeactivateInstanceCallbacks removes every observer registered by
// ActivateInstanceCallbacks. It does nothing when the stored chain holds
// no observer create info.
func (r *Reporter) DeactivateInstanceCallbacks() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !chainHasObservers(r.instanceChain) {
		return
	}

	// Destroying shifts the registry, so the handles are collected first.
	for _, h := range r.registry.handlesWithScope(ScopeInstance) {
		r.destroyLocked(h)
	}
	r.instanceChain = nil
}

func chainHasObservers(chain []ChainEntry) bool {
	for _, entry := range chain {
		switch info := entry.(type) {
		case *MessengerCreateInfo:
			if info != nil {
				return true
			}
		case *ReportCallbackCreateInfo:
			if info != nil {
				return true
			}
		}
	}
	return false
}
