package hubmoni

import (
	"github.com/domhub/hubmoni/pkg/dor"
	"github.com/domhub/hubmoni/pkg/moni"
)

// Driver is the part of the DOR driver the monitor polls.
// *dor.Driver satisfies it.
type Driver interface {
	moni.HubView
	AllDOMs() []*dor.DOM
}

var _ Driver = (*dor.Driver)(nil)
