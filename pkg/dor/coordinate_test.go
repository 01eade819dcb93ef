package dor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCoordinate(t *testing.T) {
	tests := []struct {
		in   string
		want Coordinate
		ok   bool
	}{
		{"00A", Coordinate{0, 0, 'A'}, true},
		{"73B", Coordinate{7, 3, 'B'}, true},
		{"12b", Coordinate{1, 2, 'B'}, true},
		{"80A", Coordinate{}, false},
		{"04A", Coordinate{}, false},
		{"00C", Coordinate{}, false},
		{"0A", Coordinate{}, false},
		{"00AB", Coordinate{}, false},
		{"/0A", Coordinate{}, false},
		{"", Coordinate{}, false},
		{"all", Coordinate{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseCoordinate(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)

			if ok {
				assert.Equal(t, tt.in[:2], got.String()[:2])
			}
		})
	}
}

func TestCoordinateString(t *testing.T) {
	assert.Equal(t, "01A", Coordinate{Card: 0, Pair: 1, DOM: 'A'}.String())
}

func TestAllCoordinates(t *testing.T) {
	all := AllCoordinates()
	require.Len(t, all, 64)
	assert.Equal(t, "00A", all[0].String())
	assert.Equal(t, "00B", all[1].String())
	assert.Equal(t, "73B", all[63].String())

	for i := 1; i < len(all); i++ {
		assert.True(t, all[i-1].Less(all[i]))
	}
}

func TestCoordinateJSONKeys(t *testing.T) {
	in := map[Coordinate]State{{0, 1, 'A'}: StateDOMApp}

	b, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"01A":"domapp"}`, string(b))

	var out map[Coordinate]State
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, in, out)

	require.Error(t, json.Unmarshal([]byte(`{"99Z":"domapp"}`), &out))
}
