// Package moni turns DOR driver reads into monitoring records and alerts.
package moni

import (
	"errors"
	"fmt"
	"time"

	"github.com/domhub/hubmoni/pkg/diag"
	"github.com/domhub/hubmoni/pkg/dor"
)

// TimeFormat is the timestamp layout of records and alerts.
const TimeFormat = "2006-01-02 15:04:05.000000"

// Snapshot is one poll of a DOM and its wire pair.
type Snapshot struct {
	CWD           string           `json:"cwd"`
	Hub           string           `json:"hub"`
	OMKey         string           `json:"omkey"`
	MBID          string           `json:"mbid,omitempty"`
	UpdateTime    time.Time        `json:"update_time"`
	Plugged       bool             `json:"plugged"`
	Current       int              `json:"current"`
	Voltage       float64          `json:"voltage"`
	PowerCheck    *diag.PowerCheck `json:"pwr_check,omitempty"`
	Communicating bool             `json:"communicating"`
	CommStats     *diag.CommStats  `json:"comstat,omitempty"`
}

// Take reads a snapshot of dom. Pair readings are only taken when the pair
// is plugged, counters only when the DOM communicates. Read failures are
// returned joined; the snapshot holds whatever could be read.
func Take(dom *dor.DOM, hub string, now time.Time) (*Snapshot, error) {
	s := &Snapshot{
		CWD:        dom.CWD(),
		Hub:        hub,
		OMKey:      dom.OMKey(),
		UpdateTime: now.UTC(),
		Current:    -1,
		Voltage:    -1,
	}

	var errs []error

	plugged, err := dom.Pair().IsPlugged()
	if err != nil {
		return s, fmt.Errorf("%s: %w", s.CWD, err)
	}

	s.Plugged = plugged
	if !plugged {
		return s, nil
	}

	s.Current = dom.Pair().Current()
	s.Voltage = dom.Pair().Voltage()

	if s.PowerCheck, err = dom.Pair().PowerCheck(); err != nil {
		errs = append(errs, err)
	}

	if s.Communicating, err = dom.IsCommunicating(); err != nil {
		errs = append(errs, err)
	}

	if s.Communicating {
		if s.CommStats, err = dom.CommStats(); err != nil {
			errs = append(errs, err)
		}

		s.MBID, _ = dom.MBID()
	}

	if err := errors.Join(errs...); err != nil {
		return s, fmt.Errorf("%s: %w", s.CWD, err)
	}

	return s, nil
}

// HasPosition reports whether the DOM's deployment position is known.
func (s *Snapshot) HasPosition() bool {
	return s.OMKey != "" && s.OMKey != "-"
}
