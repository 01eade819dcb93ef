package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domhub/hubmoni/pkg/config"
)

const dat = `# host       dor quad comm iceboot waivers
spts-ichub29   8    4   60     0
sps-ichub21    8    4   60     0    c2p1-dead;c5p3-flaky;
domhub-test    1    1    2     2
`

func TestRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hubConfig.dat")
	require.NoError(t, os.WriteFile(path, []byte(dat), 0o600))

	tests := []struct {
		name string
		args []string
		ext  string
	}{
		{name: "json", args: []string{"hubconfig", path}, ext: ".json"},
		{name: "yaml", args: []string{"hubconfig", "--yaml", path}, ext: ".yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			require.NoError(t, run(tt.args, &out))

			// the output must load back through the regular config path
			converted := filepath.Join(t.TempDir(), "hubConfig"+tt.ext)
			require.NoError(t, os.WriteFile(converted, out.Bytes(), 0o600))

			hc, err := config.LoadHubConfig(converted)
			require.NoError(t, err)

			h, err := hc.Hub("ichub21", config.ClusterSPS)
			require.NoError(t, err)
			assert.Equal(t, 60, h.Comm)
			assert.Equal(t, []string{"c2p1", "c5p3"}, h.Waive)

			h, err = hc.Hub("domhub-test", config.ClusterOther)
			require.NoError(t, err)
			assert.Equal(t, 2, h.Iceboot)
		})
	}
}

func TestRun_MissingFile(t *testing.T) {
	var out bytes.Buffer

	require.Error(t, run([]string{"hubconfig", filepath.Join(t.TempDir(), "nope.dat")}, &out))
	assert.Empty(t, out.String())
}
