package debugreport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	red   = [4]float32{1, 0, 0, 1}
	green = [4]float32{0, 1, 0, 1}
)

func TestQueueLabels_BeginInsertEnd(t *testing.T) {
	t.Parallel()

	const q = uint64(0x51)
	r := NewReporter()

	r.BeginQueueLabel(q, Label{Name: "A", Color: red})
	assert.Equal(t, []Label{{Name: "A", Color: red}}, r.QueueLabels(q))

	r.InsertQueueLabel(q, Label{Name: "B", Color: green})
	assert.Equal(t, []Label{{Name: "B", Color: green}, {Name: "A", Color: red}}, r.QueueLabels(q))

	r.EndQueueLabel(q)
	assert.Empty(t, r.QueueLabels(q))
}

func TestCommandBufferLabels_Erase(t *testing.T) {
	t.Parallel()

	const cb = uint64(0xcb)
	r := NewReporter()

	r.BeginCommandBufferLabel(cb, Label{Name: "X", Color: red})
	r.EraseCommandBufferLabels(cb)
	assert.Empty(t, r.CommandBufferLabels(cb))

	assert.NotPanics(t, func() { r.EndCommandBufferLabel(cb) })
	assert.Empty(t, r.CommandBufferLabels(cb))
	assert.False(t, r.cmdBufLabels.has(cb))
}

func TestLabels_ExportOrder(t *testing.T) {
	t.Parallel()

	const cb = uint64(1)
	r := NewReporter()

	r.BeginCommandBufferLabel(cb, Label{Name: "outer"})
	r.BeginCommandBufferLabel(cb, Label{Name: "middle"})
	r.BeginCommandBufferLabel(cb, Label{Name: "inner"})
	r.InsertCommandBufferLabel(cb, Label{Name: "marker"})

	got := r.CommandBufferLabels(cb)
	names := make([]string, 0, len(got))
	for _, l := range got {
		names = append(names, l.Name)
	}
	assert.Equal(t, []string{"marker", "inner", "middle", "outer"}, names)
}

func TestLabels_PushClearsInsert(t *testing.T) {
	t.Parallel()

	const q = uint64(2)
	r := NewReporter()

	r.InsertQueueLabel(q, Label{Name: "ins"})
	r.BeginQueueLabel(q, Label{Name: "region"})
	assert.Equal(t, []Label{{Name: "region"}}, r.QueueLabels(q))

	r.InsertQueueLabel(q, Label{Name: "ins2"})
	r.EndQueueLabel(q)
	assert.Empty(t, r.QueueLabels(q))
}

func TestLabels_BeginWithoutNameIsIgnored(t *testing.T) {
	t.Parallel()

	const q = uint64(3)
	r := NewReporter()

	r.InsertQueueLabel(q, Label{Name: "keep"})
	r.BeginQueueLabel(q, Label{Color: red})
	assert.Equal(t, []Label{{Name: "keep"}}, r.QueueLabels(q))
}

func TestLabels_EndOnUnknownContext(t *testing.T) {
	t.Parallel()

	r := NewReporter()
	r.EndQueueLabel(99)

	assert.Nil(t, r.QueueLabels(99))
	assert.False(t, r.queueLabels.has(99))
}

func TestLabels_InsertCreatesStack(t *testing.T) {
	t.Parallel()

	r := NewReporter()
	r.InsertCommandBufferLabel(5, Label{Name: "only"})

	assert.True(t, r.cmdBufLabels.has(5))
	assert.Equal(t, []Label{{Name: "only"}}, r.CommandBufferLabels(5))
}

func TestCommandBufferLabels_ResetKeepsStack(t *testing.T) {
	t.Parallel()

	const cb = uint64(6)
	r := NewReporter()

	r.BeginCommandBufferLabel(cb, Label{Name: "a"})
	r.InsertCommandBufferLabel(cb, Label{Name: "b"})
	r.ResetCommandBufferLabels(cb)

	assert.True(t, r.cmdBufLabels.has(cb))
	assert.Empty(t, r.CommandBufferLabels(cb))

	r.BeginCommandBufferLabel(cb, Label{Name: "c"})
	assert.Equal(t, []Label{{Name: "c"}}, r.CommandBufferLabels(cb))
}

func TestLabels_QueueAndCommandBufferAreIndependent(t *testing.T) {
	t.Parallel()

	r := NewReporter()
	r.BeginQueueLabel(8, Label{Name: "queue"})
	r.BeginCommandBufferLabel(8, Label{Name: "cb"})

	assert.Equal(t, []Label{{Name: "queue"}}, r.QueueLabels(8))
	assert.Equal(t, []Label{{Name: "cb"}}, r.CommandBufferLabels(8))
}

func TestLabel_Empty(t *testing.T) {
	t.Parallel()

	assert.True(t, Label{}.Empty())
	assert.True(t, Label{Color: red}.Empty())
	assert.False(t, Label{Name: "x"}.Empty())
}
