package dor

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/domhub/hubmoni/pkg/diag"
	"github.com/domhub/hubmoni/pkg/nicknames"
)

// Topology is one scan of the driver tree. A new Topology is built on every
// scan; existing ones are never modified.
type Topology struct {
	Prefix    string
	DevDir    string
	ScannedAt time.Time
	Cards     []*Card

	nicks NicknameLookup
}

// Card is a DOR card present in the driver tree.
type Card struct {
	ID    int
	Pairs []*WirePair

	topo *Topology
}

// WirePair is a powered wire pair on a card, carrying up to two DOMs.
type WirePair struct {
	ID   int
	DOMs []*DOM

	card *Card
}

// DOM is a digital optical module on a wire pair.
type DOM struct {
	Label byte

	pair *WirePair
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func scan(prefix, devDir string, nicks NicknameLookup) *Topology {
	t := &Topology{
		Prefix:    prefix,
		DevDir:    devDir,
		ScannedAt: time.Now(),
		nicks:     nicks,
	}

	for id := 0; id < MaxCards; id++ {
		c := &Card{ID: id, topo: t}
		if !exists(c.Path()) {
			continue
		}

		for pid := 0; pid < MaxPairs; pid++ {
			p := &WirePair{ID: pid, card: c}
			if !exists(p.Path()) {
				continue
			}

			for _, label := range DOMLabels {
				d := &DOM{Label: label, pair: p}
				if exists(d.Path()) {
					p.DOMs = append(p.DOMs, d)
				}
			}

			c.Pairs = append(c.Pairs, p)
		}

		t.Cards = append(t.Cards, c)
	}

	return t
}

// Card returns the card with the given id.
func (t *Topology) Card(id int) (*Card, bool) {
	for _, c := range t.Cards {
		if c.ID == id {
			return c, true
		}
	}

	return nil, false
}

// Lookup finds the DOM at a coordinate.
func (t *Topology) Lookup(c Coordinate) (*DOM, bool) {
	card, ok := t.Card(c.Card)
	if !ok {
		return nil, false
	}

	pair, ok := card.Pair(c.Pair)
	if !ok {
		return nil, false
	}

	return pair.DOM(c.DOM)
}

// DOMs lists every DOM in scan order.
func (t *Topology) DOMs() []*DOM {
	var doms []*DOM

	for _, c := range t.Cards {
		for _, p := range c.Pairs {
			doms = append(doms, p.DOMs...)
		}
	}

	return doms
}

func (c *Card) Path() string {
	return filepath.Join(c.topo.Prefix, fmt.Sprintf("card%d", c.ID))
}

func (c *Card) Pair(id int) (*WirePair, bool) {
	for _, p := range c.Pairs {
		if p.ID == id {
			return p, true
		}
	}

	return nil, false
}

// FPGARegs returns the raw FPGA register dump, or "" when unreadable.
func (c *Card) FPGARegs() string {
	s, err := readAttr(c.Path(), attrFPGA)
	if err != nil {
		return ""
	}

	return s
}

// Revision returns the firmware revision, or -1.
func (c *Card) Revision() int {
	return readInt(c.Path(), attrRevision, nil)
}

// Serial returns the card serial number from its test log, or "".
func (c *Card) Serial() string {
	return readMatch(c.Path(), attrTestLog, serialPattern)
}

func (p *WirePair) Card() *Card {
	return p.card
}

func (p *WirePair) Path() string {
	return filepath.Join(p.card.Path(), fmt.Sprintf("pair%d", p.ID))
}

// DOM returns the DOM with the given label (case-insensitive).
func (p *WirePair) DOM(label byte) (*DOM, bool) {
	if label >= 'a' && label <= 'z' {
		label -= 'a' - 'A'
	}

	for _, d := range p.DOMs {
		if d.Label == label {
			return d, true
		}
	}

	return nil, false
}

// Current returns the pair current in mA, or -1.
func (p *WirePair) Current() int {
	return readInt(p.Path(), attrCurrent, currentPattern)
}

// Voltage returns the pair voltage in Volts, or -1.
func (p *WirePair) Voltage() float64 {
	return readFloat(p.Path(), attrVoltage, voltagePattern)
}

func (p *WirePair) IsPlugged() (bool, error) {
	return readFlag(p.Path(), pluggedFlag)
}

func (p *WirePair) IsPowered() (bool, error) {
	return readFlag(p.Path(), poweredFlag)
}

func (p *WirePair) PowerCheck() (*diag.PowerCheck, error) {
	text, err := readAttr(p.Path(), attrPowerCheck)
	if err != nil {
		return nil, err
	}

	return diag.ParsePowerCheck(text)
}

func (d *DOM) Pair() *WirePair {
	return d.pair
}

func (d *DOM) Card() *Card {
	return d.pair.card
}

func (d *DOM) Coordinate() Coordinate {
	return Coordinate{Card: d.pair.card.ID, Pair: d.pair.ID, DOM: d.Label}
}

// CWD is the compact coordinate string, e.g. "01A".
func (d *DOM) CWD() string {
	return d.Coordinate().String()
}

func (d *DOM) Path() string {
	return filepath.Join(d.pair.Path(), "dom"+string(d.Label))
}

// Dev is the device channel path, e.g. /dev/dhc0w1dA.
func (d *DOM) Dev() string {
	return filepath.Join(d.topo().DevDir, fmt.Sprintf("dhc%dw%dd%c", d.pair.card.ID, d.pair.ID, d.Label))
}

func (d *DOM) topo() *Topology {
	return d.pair.card.topo
}

func (d *DOM) IsCommunicating() (bool, error) {
	return readFlag(d.Path(), commFlag)
}

func (d *DOM) IsNotConfigboot() (bool, error) {
	return readFlag(d.Path(), notConfigbootFlag)
}

// MBID returns the mainboard ID. It is only read when the DOM communicates.
func (d *DOM) MBID() (string, bool) {
	if ok, err := d.IsCommunicating(); err != nil || !ok {
		return "", false
	}

	id := readMatch(d.Path(), attrID, idPattern)

	return id, id != ""
}

// CommStats reads and parses the comstat counters of a communicating DOM.
func (d *DOM) CommStats() (*diag.CommStats, error) {
	ok, err := d.IsCommunicating()
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotCommunicating, d.CWD())
	}

	text, err := readAttr(d.Path(), attrCommStats)
	if err != nil {
		return nil, err
	}

	return diag.ParseCommStats(text)
}

// Position looks up the deployment position of the DOM's mainboard.
func (d *DOM) Position() (nicknames.Position, bool) {
	mbid, ok := d.MBID()
	if !ok || d.topo().nicks == nil {
		return nicknames.Position{}, false
	}

	return d.topo().nicks.Position(mbid)
}

// OMKey returns "string-dom", or "-" when the position is unknown.
func (d *DOM) OMKey() string {
	pos, ok := d.Position()
	if !ok {
		return unknownNick
	}

	return pos.OMKey()
}

func (d *DOM) Name() string {
	return d.nick(NicknameLookup.Name)
}

func (d *DOM) ProdID() string {
	return d.nick(NicknameLookup.ProdID)
}

func (d *DOM) nick(get func(NicknameLookup, string) (string, bool)) string {
	mbid, ok := d.MBID()
	if !ok || d.topo().nicks == nil {
		return unknownNick
	}

	v, ok := get(d.topo().nicks, mbid)
	if !ok {
		return unknownNick
	}

	return v
}

// Quad is the patch panel quad by cabling convention.
func (d *DOM) Quad() int {
	return d.pair.card.ID*2 + d.pair.ID/2 + 2
}

// Port is the default dtsx network port for the DOM.
func (d *DOM) Port() int {
	p := 5001 + d.pair.card.ID*8 + d.pair.ID*2
	if d.Label == 'A' {
		p++
	}

	return p
}
