package moni

import (
	"sort"
	"time"

	"github.com/domhub/hubmoni/pkg/config"
)

// Record quantities, in reporting order.
const (
	VarVoltage  = "dom_pwrstat_voltage"
	VarCurrent  = "dom_pwrstat_current"
	VarCabling  = "dom_cabling"
	VarRetx     = "dom_comstat_retx"
	VarBadPkt   = "dom_comstat_badpkt"
	VarRXBytes  = "dom_comstat_rxbytes"
	VarTXBytes  = "dom_comstat_txbytes"
	cablingPrio = 2
)

// Record is one monitoring message: a quantity for every DOM on the hub,
// keyed by OM key.
type Record struct {
	Service string      `json:"service"`
	Varname string      `json:"varname"`
	Prio    int         `json:"prio"`
	Time    string      `json:"time"`
	Value   RecordValue `json:"value"`

	// Valid is false for counter quantities without a baseline to diff.
	Valid bool `json:"-"`
}

type RecordValue struct {
	Value              map[string]any `json:"value"`
	Version            int            `json:"version"`
	Hub                string         `json:"hub"`
	RecordingStartTime string         `json:"recordingStartTime,omitempty"`
	RecordingStopTime  string         `json:"recordingStopTime,omitempty"`
}

func newRecord(cfg *config.HubMoni, hub, varname string, now time.Time) *Record {
	return &Record{
		Service: cfg.MoniService,
		Varname: varname,
		Prio:    cfg.MoniPriority,
		Time:    now.UTC().Format(TimeFormat),
		Value: RecordValue{
			Value:   make(map[string]any),
			Version: cfg.MoniVersion,
			Hub:     hub,
		},
		Valid: true,
	}
}

// Get returns the value stored for an OM key.
func (r *Record) Get(omkey string) (any, bool) {
	v, ok := r.Value.Value[omkey]
	return v, ok
}

// Records builds the monitoring records for the current snapshots. Counter
// quantities are differences against previous and are only valid when at
// least one DOM has a baseline. DOMs without a known position are left out.
func Records(cfg *config.HubMoni, hub string, current, previous map[string]*Snapshot, now time.Time) []*Record {
	voltage := newRecord(cfg, hub, VarVoltage, now)
	amps := newRecord(cfg, hub, VarCurrent, now)
	cabling := newRecord(cfg, hub, VarCabling, now)
	cabling.Prio = cablingPrio

	retx := newRecord(cfg, hub, VarRetx, now)
	badpkt := newRecord(cfg, hub, VarBadPkt, now)
	rxbytes := newRecord(cfg, hub, VarRXBytes, now)
	txbytes := newRecord(cfg, hub, VarTXBytes, now)
	counters := []*Record{retx, badpkt, rxbytes, txbytes}

	var start, stop time.Time

	for _, cwd := range sortedCWDs(current) {
		snap := current[cwd]
		if !snap.HasPosition() {
			continue
		}

		voltage.Value.Value[snap.OMKey] = snap.Voltage
		amps.Value.Value[snap.OMKey] = snap.Current
		cabling.Value.Value[snap.OMKey] = snap.CWD

		prev, ok := previous[cwd]
		if !ok || prev.CommStats == nil || snap.CommStats == nil {
			continue
		}

		delta := snap.CommStats.Diff(prev.CommStats)
		retx.Value.Value[snap.OMKey] = delta.NRetxB
		badpkt.Value.Value[snap.OMKey] = delta.BadPkt
		rxbytes.Value.Value[snap.OMKey] = delta.RXBytes
		txbytes.Value.Value[snap.OMKey] = delta.TXBytes

		if start.IsZero() || prev.UpdateTime.Before(start) {
			start = prev.UpdateTime
		}

		if snap.UpdateTime.After(stop) {
			stop = snap.UpdateTime
		}
	}

	for _, r := range counters {
		r.Valid = !start.IsZero()
		if r.Valid {
			r.Value.RecordingStartTime = start.UTC().Format(TimeFormat)
			r.Value.RecordingStopTime = stop.UTC().Format(TimeFormat)
		}
	}

	return append([]*Record{voltage, amps, cabling}, counters...)
}

// ValidRecords filters out records that should not be sent.
func ValidRecords(recs []*Record) []*Record {
	out := make([]*Record, 0, len(recs))

	for _, r := range recs {
		if r.Valid {
			out = append(out, r)
		}
	}

	return out
}

func sortedCWDs(m map[string]*Snapshot) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
