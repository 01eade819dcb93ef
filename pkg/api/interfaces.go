package api

import (
	"context"

	"github.com/domhub/hubmoni/pkg/dor"
)

// DriverView is the part of the DOR driver the API reads from.
// *dor.Driver satisfies it.
type DriverView interface {
	Topology() *dor.Topology
	AllDOMs() []*dor.DOM
	PluggedDOMs() []*dor.DOM
	CommunicatingDOMs() []*dor.DOM
	DOM(cwd string) (*dor.DOM, bool)
	States(ctx context.Context, doms []*dor.DOM) map[dor.Coordinate]dor.State
	StatesOf(ctx context.Context, coords []dor.Coordinate) map[dor.Coordinate]dor.State
}

var _ DriverView = (*dor.Driver)(nil)
