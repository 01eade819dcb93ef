// Package dortest builds synthetic DOR driver trees for tests.
package dortest

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// Tree is a driver tree rooted in a test temp dir.
type Tree struct {
	t    testing.TB
	Root string
}

func NewTree(t testing.TB) *Tree {
	t.Helper()

	return &Tree{t: t, Root: filepath.Join(t.TempDir(), "domhub")}
}

func CardDir(c int) string {
	return fmt.Sprintf("card%d", c)
}

func PairDir(c, p int) string {
	return filepath.Join(CardDir(c), fmt.Sprintf("pair%d", p))
}

func DOMDir(c, p int, l byte) string {
	return filepath.Join(PairDir(c, p), "dom"+string(l))
}

// MBID is the mainboard ID the builders give the DOM at c, p, l.
func MBID(c, p int, l byte) string {
	return fmt.Sprintf("%x%x%x0f9cff64d", c, p, int(l-'A')+0xa)
}

// Write creates rel with content, making parent directories.
func (tr *Tree) Write(rel, content string) {
	tr.t.Helper()

	path := filepath.Join(tr.Root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		tr.t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		tr.t.Fatal(err)
	}
}

func (tr *Tree) Remove(rel string) {
	tr.t.Helper()

	if err := os.RemoveAll(filepath.Join(tr.Root, rel)); err != nil {
		tr.t.Fatal(err)
	}
}

func (tr *Tree) Card(c int, rev, serial string) {
	tr.Write(filepath.Join(CardDir(c), "rev"), rev+"\n")
	tr.Write(filepath.Join(CardDir(c), "fpga"), "FPGA registers:\nCTRL 0x00000000\n")
	tr.Write(filepath.Join(CardDir(c), "test-log"), fmt.Sprintf("Serial number: %s\nTested OK\n", serial))
}

func (tr *Tree) Pair(c, p int, plugged bool, current int, voltage string) {
	dir := PairDir(c, p)

	plug, pwr := "is plugged in", "on"
	check := "plugged(ok) current(ok,ok) voltage(ok,ok)"

	if !plugged {
		plug, pwr = "is not plugged in", "off"
		check = "plugged(NOT_PLUGGED) current(ok,ok) voltage(ok,ok)"
	}

	tr.Write(filepath.Join(dir, "is-plugged"), fmt.Sprintf("Card %d Pair %d %s\n", c, p, plug))
	tr.Write(filepath.Join(dir, "pwr"), fmt.Sprintf("Card %d Pair %d power status is %s\n", c, p, pwr))
	tr.Write(filepath.Join(dir, "current"), fmt.Sprintf("Card %d Pair %d current is %d mA\n", c, p, current))
	tr.Write(filepath.Join(dir, "voltage"), fmt.Sprintf("Card %d Pair %d voltage is %s Volts\n", c, p, voltage))
	tr.PowerCheck(c, p, check)
}

// PowerCheck replaces the pwr_check verdicts of a pair, e.g.
// "plugged(ok) current(ERR_CURRENT_BELOW_LIMITS,ok) voltage(ok,ok)".
func (tr *Tree) PowerCheck(c, p int, verdicts string) {
	tr.Write(filepath.Join(PairDir(c, p), "pwr_check"), PowerCheckText(c, p, verdicts)+"\n")
}

func PowerCheckText(c, p int, verdicts string) string {
	return fmt.Sprintf("Card %d pair %d pwr check: %s", c, p, verdicts)
}

func (tr *Tree) DOM(c, p int, l byte, comm bool) {
	dir := DOMDir(c, p, l)

	state := "is communicating"
	if !comm {
		state = "is NOT communicating"
	}

	tr.Write(filepath.Join(dir, "is-communicating"), fmt.Sprintf("Card %d Pair %d DOM %c %s\n", c, p, l, state))
	tr.Write(filepath.Join(dir, "is-not-configboot"), fmt.Sprintf("Card %d Pair %d DOM %c is out of configboot\n", c, p, l))
	tr.Write(filepath.Join(dir, "id"), fmt.Sprintf("Card %d Pair %d DOM %c ID is %s\n", c, p, l, MBID(c, p, l)))
	tr.CommStats(c, p, l, Counters{RXBytes: 1000, TXBytes: 36828})
}

// Counters are the comstat values tests usually vary.
type Counters struct {
	RXBytes int64
	TXBytes int64
	BadPkt  int
	NRetxB  int
}

func (tr *Tree) CommStats(c, p int, l byte, n Counters) {
	tr.Write(filepath.Join(DOMDir(c, p, l), "comstat"), CommStatsText(c, p, l, n))
}

func CommStatsText(c, p int, l byte, n Counters) string {
	return fmt.Sprintf(`/dev/dhc%dw%dd%c
 RX: %dB, MSGS=2629 NINQ=0 PKTS=9391 ACKS=478
 BADPKT=%d BADHDR=0 BADSEQ=0 NCTRL=0 NCI=2 NIC=0
 TX: %dB, MSGS=2629 NOUTQ=0 RESENT=0 PKTS=26566 ACKS=26566
 NACKQ=0 NRETXB=%d RETXB_BYTES=0 NRETXQ=0 NCTRL=0 NCI=0 NIC=2
 NCONNECTS=1 NHDWRTIMEOUTS=0 OPEN=true CONNECTED=true
 RXFIFO=empty TXFIFO=empty,almost empty DOM_RXFIFO=not-full
`, c, p, l, n.RXBytes, n.BadPkt, n.TXBytes, n.NRetxB)
}

// ICHub29 builds a two card hub, four pairs per card and two DOMs per pair.
// Only the four DOMs on card 0 pairs 0 and 1 are plugged and communicating;
// both pairs draw 101 mA at 89.124 V.
func ICHub29(t testing.TB) *Tree {
	t.Helper()

	tr := NewTree(t)

	for c := 0; c < 2; c++ {
		tr.Card(c, "20", fmt.Sprintf("R1B0628D0%d", 5+c))

		for p := 0; p < 4; p++ {
			comm := c == 0 && p < 2

			current := 0
			if comm {
				current = 101
			}

			tr.Pair(c, p, comm, current, "89.124")

			for _, l := range []byte{'A', 'B'} {
				tr.DOM(c, p, l, comm)
			}
		}
	}

	return tr
}
