package dor

import (
	"context"
	"time"
)

// States queries every DOM concurrently, one goroutine and one channel per
// DOM. All queries share one deadline of the driver's state timeout; DOMs
// that have not answered by then report StateBusy. Answers arriving after
// the deadline go to their own buffered slot and are dropped.
func (d *Driver) States(ctx context.Context, doms []*DOM) map[Coordinate]State {
	return pollStates(ctx, d.detector, d.stateTimeout, doms)
}

type result struct {
	coord Coordinate
	state State
}

func pollStates(ctx context.Context, det *Detector, timeout time.Duration, doms []*DOM) map[Coordinate]State {
	states := make(map[Coordinate]State, len(doms))
	if len(doms) == 0 {
		return states
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	slots := make([]chan result, len(doms))

	for i, dom := range doms {
		states[dom.Coordinate()] = StateBusy

		slots[i] = make(chan result, 1)

		go func(dom *DOM, slot chan<- result) {
			slot <- result{coord: dom.Coordinate(), state: det.Detect(ctx, dom)}
		}(dom, slots[i])
	}

	for _, slot := range slots {
		select {
		case r := <-slot:
			states[r.coord] = r.state
		case <-ctx.Done():
			// pick up answers that were already delivered
			select {
			case r := <-slot:
				states[r.coord] = r.state
			default:
			}
		}
	}

	if ctx.Err() != nil {
		for c, s := range states {
			if s == StateBusy {
				det.fieldLogger().WithField("cwd", c.String()).Warn("DOM state query timed out")
			}
		}
	}

	return states
}
