package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDuration_UnmarshalYAML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr string
	}{
		{name: "duration string", input: `d: 250ms`, want: 250 * time.Millisecond},
		{name: "compound string", input: `d: 1m30s`, want: 90 * time.Second},
		{name: "integer milliseconds", input: `d: 1500`, want: 1500 * time.Millisecond},
		{name: "quoted integer", input: `d: "20"`, want: 20 * time.Millisecond},
		{name: "empty", input: `d: ""`, want: 0},
		{name: "invalid", input: `d: soon`, wantErr: `invalid duration "soon"`},
		{name: "not a scalar", input: "d:\n  - 1s\n", wantErr: "must be a scalar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out struct {
				D Duration `yaml:"d"`
			}
			err := yaml.Unmarshal([]byte(tt.input), &out)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.D.Duration())
		})
	}
}

func TestDuration_MarshalYAML(t *testing.T) {
	t.Parallel()

	data, err := yaml.Marshal(struct {
		D Duration `yaml:"d"`
	}{D: Duration(2 * time.Second)})
	require.NoError(t, err)
	assert.Equal(t, "d: 2s\n", string(data))
}
