package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domhub/hubmoni/pkg/dor/dortest"
)

func TestRun(t *testing.T) {
	tr := dortest.ICHub29(t)
	devDir := t.TempDir()

	tests := []struct {
		name string
		arg  string
		want string
	}{
		{name: "all", arg: "all", want: "00A error\n00B error\n01A error\n01B error\n"},
		{name: "lower case", arg: "01b", want: "01B error\n"},
		{name: "no DOM", arg: "71A", want: "71A noplug\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer

			require.NoError(t, run([]string{"domstate", "-d", tr.Root, "--dev", devDir, tt.arg}, &out))
			assert.Equal(t, tt.want, out.String())
		})
	}

	t.Run("unknown CWD", func(t *testing.T) {
		var out bytes.Buffer

		err := run([]string{"domstate", "-d", tr.Root, "--dev", devDir, "00"}, &out)
		require.ErrorIs(t, err, errUnknownCWD)
		assert.Empty(t, out.String())
	})

	t.Run("usage", func(t *testing.T) {
		var out bytes.Buffer

		require.NoError(t, run([]string{"domstate"}, &out))
		assert.Equal(t, "Usage: domstate CWD|all\n", out.String())
	})
}
