package dor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domhub/hubmoni/pkg/dor/dortest"
)

func pollerDriver(t *testing.T, timeout time.Duration) (*Driver, *fakeOpener) {
	t.Helper()

	tr := dortest.ICHub29(t)
	opener := newFakeOpener()
	d := New(tr.Root, WithDetector(fastDetector(opener)), WithStateTimeout(timeout))

	return d, opener
}

func hung(t *testing.T) *scriptedChannel {
	t.Helper()

	block := make(chan struct{})
	t.Cleanup(func() { close(block) })

	return &scriptedChannel{block: block}
}

func TestStates(t *testing.T) {
	d, opener := pollerDriver(t, 2*time.Second)

	opener.add("/dev/dhc0w0dA", &scriptedChannel{reply: promptReply("> ")})
	opener.add("/dev/dhc0w0dB", &scriptedChannel{reply: promptReply("# ")})
	opener.add("/dev/dhc0w1dA", &scriptedChannel{reply: domappReply})
	opener.add("/dev/dhc0w1dB", &scriptedChannel{reply: domappReply})

	states := d.States(context.Background(), d.AllDOMs())
	require.Len(t, states, 16)

	assert.Equal(t, StateIceboot, states[Coordinate{0, 0, 'A'}])
	assert.Equal(t, StateConfigboot, states[Coordinate{0, 0, 'B'}])
	assert.Equal(t, StateDOMApp, states[Coordinate{0, 1, 'A'}])
	assert.Equal(t, StateDOMApp, states[Coordinate{0, 1, 'B'}])
	assert.Equal(t, StateNoComm, states[Coordinate{1, 3, 'B'}])

	// only communicating DOMs are ever opened
	assert.Equal(t, 4, opener.openCount())
}

func TestStates_Empty(t *testing.T) {
	d, _ := pollerDriver(t, time.Second)

	states := d.States(context.Background(), nil)
	assert.NotNil(t, states)
	assert.Empty(t, states)
}

func TestStates_HungDeviceIsBusy(t *testing.T) {
	const ceiling = 200 * time.Millisecond

	d, opener := pollerDriver(t, ceiling)

	opener.add("/dev/dhc0w0dA", hung(t))
	opener.add("/dev/dhc0w0dB", hung(t))
	opener.add("/dev/dhc0w1dA", hung(t))
	opener.add("/dev/dhc0w1dB", &scriptedChannel{reply: domappReply})

	start := time.Now()
	states := d.States(context.Background(), d.CommunicatingDOMs())
	elapsed := time.Since(start)

	assert.Equal(t, StateBusy, states[Coordinate{0, 0, 'A'}])
	assert.Equal(t, StateBusy, states[Coordinate{0, 0, 'B'}])
	assert.Equal(t, StateBusy, states[Coordinate{0, 1, 'A'}])
	assert.Equal(t, StateDOMApp, states[Coordinate{0, 1, 'B'}])

	assert.GreaterOrEqual(t, elapsed, ceiling)
	assert.Less(t, elapsed, 2*ceiling, "hung devices must share one deadline")
}

func TestStatesOf(t *testing.T) {
	d, opener := pollerDriver(t, time.Second)

	opener.add("/dev/dhc0w1dA", &scriptedChannel{reply: domappReply})

	coords := []Coordinate{{0, 1, 'A'}, {1, 2, 'A'}, {7, 3, 'B'}}

	states := d.StatesOf(context.Background(), coords)
	assert.Equal(t, map[Coordinate]State{
		{0, 1, 'A'}: StateDOMApp,
		{1, 2, 'A'}: StateNoComm,
		{7, 3, 'B'}: StateNoPlug,
	}, states)

	assert.Equal(t, coords, SortedCoordinates(states))
}

func TestStatesOf_Rescans(t *testing.T) {
	tr := dortest.ICHub29(t)
	opener := newFakeOpener()
	d := New(tr.Root, WithDetector(fastDetector(opener)), WithStateTimeout(time.Second))

	opener.add("/dev/dhc1w3dA", &scriptedChannel{reply: promptReply("> ")})

	// the hub changes after the driver was created
	tr.Remove(dortest.DOMDir(0, 1, 'A'))
	tr.Pair(1, 3, true, 101, "89.124")
	tr.DOM(1, 3, 'A', true)

	states := d.StatesOf(context.Background(), []Coordinate{{0, 1, 'A'}, {1, 3, 'A'}})
	assert.Equal(t, map[Coordinate]State{
		{0, 1, 'A'}: StateNoPlug,
		{1, 3, 'A'}: StateIceboot,
	}, states)
}
