package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domhub/hubmoni/pkg/nicknames"
)

const table = `mbid	domid	name	position	energy
0f9cff64d691	UP4P0286	Radish	-	-
57bb7c43b4ad	TP5P0955	Santa_Fe	29-2	-
a31ea6d93bd7	UL9P6630	Albino_Shouting_Gorilla	29-4	-
`

func TestRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), nicknames.DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte(table), 0o600))

	tests := []struct {
		name string
		arg  string
		want string
	}{
		{name: "mbid", arg: "57bb7c43b4ad", want: "57bb7c43b4ad TP5P0955 Santa_Fe 29-2\n"},
		{name: "name", arg: "Albino_Shouting_Gorilla", want: "a31ea6d93bd7 UL9P6630 Albino_Shouting_Gorilla 29-4\n"},
		{name: "prod id", arg: "TP5P0955", want: "57bb7c43b4ad TP5P0955 Santa_Fe 29-2\n"},
		{name: "position", arg: "29-4", want: "a31ea6d93bd7 UL9P6630 Albino_Shouting_Gorilla 29-4\n"},
		{name: "no position", arg: "Radish", want: "0f9cff64d691 UP4P0286 Radish -\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer

			require.NoError(t, run([]string{"domnick", "-f", path, tt.arg}, &out))
			assert.Equal(t, tt.want, out.String())
		})
	}

	t.Run("unknown", func(t *testing.T) {
		var out bytes.Buffer

		require.ErrorIs(t, run([]string{"domnick", "-f", path, "Turnip"}, &out), errNotFound)
	})

	t.Run("missing file", func(t *testing.T) {
		var out bytes.Buffer

		require.Error(t, run([]string{"domnick", "-f", filepath.Join(t.TempDir(), "none"), "Radish"}, &out))
	})
}
