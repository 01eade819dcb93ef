package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/domhub/hubmoni/pkg/dor"
)

const ruleWidth = 80

// row is one line of the status table.
type row struct {
	CWD     string
	Port    int
	Quad    int
	Serial  string
	Comm    bool
	Pos     string
	Name    string
	MBID    string
	DOMID   string
	Current int
	Voltage float64

	// State is empty in quick mode.
	State dor.State
}

func newRow(dom *dor.DOM, states map[dor.Coordinate]dor.State) row {
	r := row{
		CWD:     dom.CWD(),
		Port:    dom.Port(),
		Quad:    dom.Quad(),
		Serial:  dom.Card().Serial(),
		Pos:     dom.OMKey(),
		Name:    dom.Name(),
		MBID:    "-",
		DOMID:   dom.ProdID(),
		Current: dom.Pair().Current(),
		Voltage: dom.Pair().Voltage(),
	}

	r.Comm, _ = dom.IsCommunicating()

	if mbid, ok := dom.MBID(); ok {
		r.MBID = mbid
	}

	if states != nil {
		r.State = states[dom.Coordinate()]
	}

	return r
}

func header(withState bool) string {
	s := fmt.Sprintf("%-4s%-5s%-4s%-11s%-5s%-9s%-23s%s%s%-6s%s",
		"DOR", "Port", "Qud", "DORserial#", "Stat", "Pos", "Name",
		center("MBID", 12), center("DOMID", 11), "Curr", center("Volts", 6))

	if withState {
		s += fmt.Sprintf("%7s", "State")
	}

	return s
}

func (r row) String() string {
	stat := ""
	if r.Comm {
		stat = "COMM"
	}

	s := fmt.Sprintf("%-4s%-5d%-4s%-11s%-5s%-9s%-23s%s%s%-6s%s",
		r.CWD, r.Port, fmt.Sprintf("Q_%d", r.Quad), r.Serial, stat, r.Pos, r.Name,
		center(r.MBID, 12), center(r.DOMID, 11),
		fmt.Sprintf("%d mA", r.Current), center(fmt.Sprintf("%dV", int(r.Voltage+0.5)), 6))

	if r.State != "" {
		s += fmt.Sprintf("%7s", r.State)
	}

	return s
}

// center pads s to width, putting any odd space on the right.
func center(s string, width int) string {
	pad := width - len(s)
	if pad <= 0 {
		return s
	}

	left := pad / 2

	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}

// writeReport prints the table in port order followed by DOM counts.
// states is nil in quick mode.
func writeReport(w io.Writer, host string, rows []row, comm int, states map[dor.Coordinate]dor.State) error {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Port < rows[j].Port })

	var b strings.Builder

	b.WriteString(strings.Repeat("-", ruleWidth) + "\n")
	fmt.Fprintf(&b, "%s SUMMARY:\n\n", strings.ToUpper(host))

	if len(rows) > 0 {
		b.WriteString(header(states != nil) + "\n")
	}

	for _, r := range rows {
		b.WriteString(r.String() + "\n")
	}

	fmt.Fprintf(&b, "\ncommunicating %d DOMs; ", comm)

	for _, st := range stateCounts(states) {
		fmt.Fprintf(&b, "%s %d DOMs; ", st.state, st.n)
	}

	b.WriteString("\n" + strings.Repeat("-", ruleWidth) + "\n")

	_, err := io.WriteString(w, b.String())

	return err
}

type stateCount struct {
	state dor.State
	n     int
}

func stateCounts(states map[dor.Coordinate]dor.State) []stateCount {
	byState := make(map[dor.State]int)
	for _, s := range states {
		byState[s]++
	}

	counts := make([]stateCount, 0, len(byState))
	for s, n := range byState {
		counts = append(counts, stateCount{state: s, n: n})
	}

	sort.Slice(counts, func(i, j int) bool { return counts[i].state < counts[j].state })

	return counts
}
