package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domhub/hubmoni/pkg/dor"
	"github.com/domhub/hubmoni/pkg/dor/dortest"
	"github.com/domhub/hubmoni/pkg/nicknames"
)

func testRows(t *testing.T, states map[dor.Coordinate]dor.State) []row {
	t.Helper()

	table := "mbid domid name position\n" +
		dortest.MBID(0, 0, 'A') + " TP5P0955 Santa_Fe 2029-2\n"

	nicks, err := nicknames.Parse(strings.NewReader(table))
	require.NoError(t, err)

	d := dor.New(dortest.ICHub29(t).Root, dor.WithNicknames(nicks))

	var rows []row
	for _, dom := range d.PluggedDOMs() {
		rows = append(rows, newRow(dom, states))
	}

	return rows
}

func TestWriteReport(t *testing.T) {
	states := map[dor.Coordinate]dor.State{
		{Card: 0, Pair: 0, DOM: 'A'}: dor.StateDOMApp,
		{Card: 0, Pair: 0, DOM: 'B'}: dor.StateDOMApp,
		{Card: 0, Pair: 1, DOM: 'A'}: dor.StateIceboot,
		{Card: 0, Pair: 1, DOM: 'B'}: dor.StateDOMApp,
	}

	var out bytes.Buffer
	require.NoError(t, writeReport(&out, "ichub29", testRows(t, states), 4, states))

	lines := strings.Split(out.String(), "\n")
	require.Len(t, lines, 12)

	assert.Equal(t, strings.Repeat("-", 80), lines[0])
	assert.Equal(t, "ICHUB29 SUMMARY:", lines[1])
	assert.True(t, strings.HasPrefix(lines[3], "DOR Port Qud DORserial# Stat Pos      Name"), lines[3])
	assert.True(t, strings.HasSuffix(lines[3], "  State"), lines[3])

	// port order
	for i, cwd := range []string{"00B", "00A", "01B", "01A"} {
		assert.True(t, strings.HasPrefix(lines[4+i], cwd+" "), lines[4+i])
	}

	assert.True(t, strings.HasPrefix(lines[5], "00A 5002 Q_2 R1B0628D05 COMM 2029-2   Santa_Fe   "), lines[5])
	assert.True(t, strings.HasSuffix(lines[5], "00a0f9cff64d TP5P0955  101 mA 89V   domapp"), lines[5])
	assert.Contains(t, lines[4], "-        -   ")

	assert.Equal(t, "communicating 4 DOMs; domapp 3 DOMs; iceboot 1 DOMs; ", lines[9])
	assert.Equal(t, strings.Repeat("-", 80), lines[10])
}

func TestWriteReport_Quick(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, writeReport(&out, "ichub29", testRows(t, nil), 4, nil))

	assert.NotContains(t, out.String(), "State")
	assert.Contains(t, out.String(), "\ncommunicating 4 DOMs; \n")
}

func TestCenter(t *testing.T) {
	assert.Equal(t, " 89V  ", center("89V", 6))
	assert.Equal(t, "MBID", center("MBID", 2))
}
