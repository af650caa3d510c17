package debugreport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpecText_Annotate(t *testing.T) {
	t.Parallel()

	table := SpecText{"VUID-a": "a must hold"}

	tests := []struct {
		name  string
		table SpecText
		id    string
		want  string
	}{
		{name: "known id", table: table, id: "VUID-a", want: "msg The Vulkan spec states: a must hold"},
		{name: "unassigned id", table: table, id: "UNASSIGNED-thing", want: "msg"},
		{name: "undefined id", table: table, id: UndefinedMessageID, want: "msg"},
		{name: "empty id", table: table, id: "", want: "msg"},
		{name: "no table", table: nil, id: "VUID-missing", want: "msg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.table.Annotate(tt.id, "msg"))
		})
	}
}

func TestSpecText_AnnotateMissingIDPanics(t *testing.T) {
	t.Parallel()

	table := SpecText{"VUID-a": "a"}
	assert.Panics(t, func() { table.Annotate("VUID-b", "msg") })
}

func TestSpecText_Has(t *testing.T) {
	t.Parallel()

	table := SpecText{"VUID-a": "a"}

	assert.True(t, table.Has("VUID-a"))
	assert.False(t, table.Has("VUID-b"))
	assert.True(t, table.Has("UNASSIGNED-b"))
	assert.True(t, table.Has(UndefinedMessageID))
	assert.True(t, table.Has(""))
	assert.True(t, SpecText(nil).Has("VUID-b"))
}

func TestReporter_KnownMessageID(t *testing.T) {
	t.Parallel()

	r := NewReporter()
	assert.True(t, r.KnownMessageID("VUID-anything"))

	r.SetSpecText(SpecText{"VUID-a": "a"})
	assert.True(t, r.KnownMessageID("VUID-a"))
	assert.False(t, r.KnownMessageID("VUID-typo"))
}

func TestReadSpecText(t *testing.T) {
	t.Parallel()

	table, err := ReadSpecText(strings.NewReader(`
VUID-vkCmdDraw-None-02700: "A valid pipeline must be bound"
VUID-vkCreateBuffer-size-00912: size must be greater than 0
`))
	require.NoError(t, err)
	assert.Len(t, table, 2)
	assert.Equal(t, "A valid pipeline must be bound", table["VUID-vkCmdDraw-None-02700"])

	table, err = ReadSpecText(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, table)

	_, err = ReadSpecText(strings.NewReader("- not\n- a map\n"))
	assert.Error(t, err)
}

func TestLoadSpecText(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "spec.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`{"VUID-x": "x text"}`), 0o600))

	table, err := LoadSpecText(path)
	require.NoError(t, err)
	assert.Equal(t, SpecText{"VUID-x": "x text"}, table)

	_, err = LoadSpecText(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
