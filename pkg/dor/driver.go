// Package dor reads the DOR card driver tree, decodes its attributes and
// queries DOM boot states over the device channels.
package dor

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/domhub/hubmoni/pkg/logger"
)

const (
	DefaultPrefix       = "/proc/driver/domhub"
	DefaultDevDir       = "/dev"
	DefaultStateTimeout = 3 * time.Second
)

// Driver is the entry point to one hub's DOR driver tree.
type Driver struct {
	prefix       string
	devDir       string
	nicks        NicknameLookup
	detector     *Detector
	stateTimeout time.Duration
	logger       logrus.FieldLogger

	mu   sync.RWMutex
	topo *Topology
}

type Option func(*Driver)

func WithDevDir(dir string) Option {
	return func(d *Driver) { d.devDir = dir }
}

func WithNicknames(n NicknameLookup) Option {
	return func(d *Driver) { d.nicks = n }
}

func WithDetector(det *Detector) Option {
	return func(d *Driver) { d.detector = det }
}

// WithStateTimeout sets the ceiling for one round of state queries.
func WithStateTimeout(timeout time.Duration) Option {
	return func(d *Driver) { d.stateTimeout = timeout }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(d *Driver) { d.logger = l }
}

// New builds a driver rooted at prefix and performs an initial scan.
func New(prefix string, opts ...Option) *Driver {
	if prefix == "" {
		prefix = DefaultPrefix
	}

	d := &Driver{
		prefix:       prefix,
		devDir:       DefaultDevDir,
		stateTimeout: DefaultStateTimeout,
	}

	for _, opt := range opts {
		opt(d)
	}

	if d.logger == nil {
		d.logger = logger.Discard()
	}

	if d.detector == nil {
		d.detector = NewDetector(nil, d.logger)
	}

	if d.stateTimeout <= 0 {
		d.stateTimeout = DefaultStateTimeout
	}

	d.Scan()

	return d
}

func (d *Driver) Prefix() string {
	return d.prefix
}

// Scan rebuilds the topology from the tree and makes it current.
func (d *Driver) Scan() *Topology {
	t := scan(d.prefix, d.devDir, d.nicks)

	d.mu.Lock()
	d.topo = t
	d.mu.Unlock()

	d.logger.WithField("cards", len(t.Cards)).Debug("scanned DOR driver tree")

	return t
}

// Topology returns the most recent scan.
func (d *Driver) Topology() *Topology {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.topo
}

// Cards lists the cards of the most recent scan.
func (d *Driver) Cards() []*Card {
	return d.Topology().Cards
}

// DOM looks up a "CWD" string in the most recent scan.
func (d *Driver) DOM(cwd string) (*DOM, bool) {
	c, ok := ParseCoordinate(cwd)
	if !ok {
		return nil, false
	}

	return d.Topology().Lookup(c)
}

// AllDOMs rescans and returns every DOM present.
func (d *Driver) AllDOMs() []*DOM {
	return d.Scan().DOMs()
}

// PluggedDOMs rescans and returns DOMs on plugged pairs. Any unreadable
// plugged flag yields an empty result.
func (d *Driver) PluggedDOMs() []*DOM {
	return d.filter(func(dom *DOM) (bool, error) { return dom.Pair().IsPlugged() })
}

// CommunicatingDOMs rescans and returns DOMs that communicate. Any
// unreadable communication flag yields an empty result.
func (d *Driver) CommunicatingDOMs() []*DOM {
	return d.filter((*DOM).IsCommunicating)
}

func (d *Driver) filter(keep func(*DOM) (bool, error)) []*DOM {
	var doms []*DOM

	for _, dom := range d.AllDOMs() {
		ok, err := keep(dom)
		if err != nil {
			d.logger.WithError(err).WithField("cwd", dom.CWD()).Warn("attribute read failed, dropping DOM list")
			return nil
		}

		if ok {
			doms = append(doms, dom)
		}
	}

	return doms
}

// StatesOf rescans and queries the DOMs at the given coordinates.
// Coordinates without a DOM report StateNoPlug.
func (d *Driver) StatesOf(ctx context.Context, coords []Coordinate) map[Coordinate]State {
	topo := d.Scan()
	out := make(map[Coordinate]State, len(coords))

	var doms []*DOM

	for _, c := range coords {
		dom, ok := topo.Lookup(c)
		if !ok {
			out[c] = StateNoPlug
			continue
		}

		doms = append(doms, dom)
	}

	for c, s := range d.States(ctx, doms) {
		out[c] = s
	}

	return out
}

// SortedCoordinates returns the keys of a state map in CWD order.
func SortedCoordinates(states map[Coordinate]State) []Coordinate {
	coords := make([]Coordinate, 0, len(states))
	for c := range states {
		coords = append(coords, c)
	}

	sort.Slice(coords, func(i, j int) bool { return coords[i].Less(coords[j]) })

	return coords
}
