package debugreport

// Label is a named, colored annotation attached to a queue or command
// buffer. A Label with an empty Name is treated as absent.
type Label struct {
	Name  string
	Color [4]float32
}

// Empty reports whether the label carries no name.
func (l Label) Empty() bool {
	return l.Name == ""
}

// labelStack holds the pushed labels of one context plus the insert slot.
// The insert label is more recent than any pushed label but is not pushed.
type labelStack struct {
	labels []Label
	insert Label
}

// export returns the insert label (if set) followed by the pushed labels,
// most recent first.
func (s *labelStack) export() []Label {
	n := len(s.labels)
	if !s.insert.Empty() {
		n++
	}
	if n == 0 {
		return nil
	}

	out := make([]Label, 0, n)
	if !s.insert.Empty() {
		out = append(out, s.insert)
	}
	for i := len(s.labels) - 1; i >= 0; i-- {
		out = append(out, s.labels[i])
	}
	return out
}

// labelStore maps context handles to their label stacks. It is not safe for
// concurrent use; the Reporter lock guards it.
type labelStore struct {
	stacks map[uint64]*labelStack
}

func newLabelStore() labelStore {
	return labelStore{stacks: make(map[uint64]*labelStack)}
}

// lookup returns the stack for ctx, creating it when create is set.
func (s *labelStore) lookup(ctx uint64, create bool) *labelStack {
	st, ok := s.stacks[ctx]
	if !ok && create {
		st = &labelStack{}
		s.stacks[ctx] = st
	}
	return st
}

func (s *labelStore) begin(ctx uint64, label Label) {
	if label.Empty() {
		return
	}
	st := s.lookup(ctx, true)
	st.labels = append(st.labels, label)
	st.insert = Label{}
}

func (s *labelStore) end(ctx uint64) {
	st := s.lookup(ctx, false)
	if st == nil {
		return
	}
	if n := len(st.labels); n > 0 {
		st.labels[n-1] = Label{}
		st.labels = st.labels[:n-1]
	}
	st.insert = Label{}
}

func (s *labelStore) insertLabel(ctx uint64, label Label) {
	st := s.lookup(ctx, true)
	st.insert = label
}

func (s *labelStore) reset(ctx uint64) {
	st := s.lookup(ctx, false)
	if st == nil {
		return
	}
	st.labels = st.labels[:0]
	st.insert = Label{}
}

func (s *labelStore) erase(ctx uint64) {
	delete(s.stacks, ctx)
}

func (s *labelStore) export(ctx uint64) []Label {
	st := s.lookup(ctx, false)
	if st == nil {
		return nil
	}
	return st.export()
}

func (s *labelStore) has(ctx uint64) bool {
	_, ok := s.stacks[ctx]
	return ok
}

// BeginQueueLabel opens a label region on queue. A label without a name is
// ignored. Any insert label on the queue is cleared.
func (r *Reporter) BeginQueueLabel(queue uint64, label Label) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queueLabels.begin(queue, label)
}

// EndQueueLabel closes the most recent label region on queue and clears
// its insert label.
func (r *Reporter) EndQueueLabel(queue uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queueLabels.end(queue)
}

// InsertQueueLabel sets the single insert label of queue.
func (r *Reporter) InsertQueueLabel(queue uint64, label Label) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queueLabels.insertLabel(queue, label)
}

// QueueLabels exports the labels of queue, insert label first, then open
// regions from innermost to outermost.
func (r *Reporter) QueueLabels(queue uint64) []Label {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queueLabels.export(queue)
}

// BeginCommandBufferLabel opens a label region on a command buffer.
func (r *Reporter) BeginCommandBufferLabel(cb uint64, label Label) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cmdBufLabels.begin(cb, label)
}

// EndCommandBufferLabel closes the most recent label region on a command
// buffer.
func (r *Reporter) EndCommandBufferLabel(cb uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cmdBufLabels.end(cb)
}

// InsertCommandBufferLabel sets the single insert label of a command buffer.
func (r *Reporter) InsertCommandBufferLabel(cb uint64, label Label) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cmdBufLabels.insertLabel(cb, label)
}

// ResetCommandBufferLabels clears every label of a command buffer but keeps
// its (now empty) stack. Call it when the buffer is reset for reuse.
func (r *Reporter) ResetCommandBufferLabels(cb uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cmdBufLabels.reset(cb)
}

// EraseCommandBufferLabels drops the label stack of a command buffer. Call
// it when the buffer is freed. Erasing an unknown buffer is a no-op.
func (r *Reporter) EraseCommandBufferLabels(cb uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cmdBufLabels.erase(cb)
}

// CommandBufferLabels exports the labels of a command buffer in the same
// order as QueueLabels.
func (r *Reporter) CommandBufferLabels(cb uint64) []Label {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cmdBufLabels.export(cb)
}
