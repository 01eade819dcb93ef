// Package nicknames maps DOM mainboard IDs to deployment positions, names
// and production IDs using the nicknames.txt table.
package nicknames

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultFile is the file name looked up by Find.
const DefaultFile = "nicknames.txt"

var (
	ErrNicknamesNotFound = errors.New("couldn't find nicknames file for MBID mapping")
)

// Position is a DOM's deployment location: string (or station) and DOM number.
type Position struct {
	String int `json:"string"`
	DOM    int `json:"dom"`
}

// OMKey renders the position as "string-dom".
func (p Position) OMKey() string {
	return fmt.Sprintf("%d-%d", p.String, p.DOM)
}

// ParsePosition parses "string-dom".
func ParsePosition(s string) (Position, bool) {
	str, dom, ok := strings.Cut(s, "-")
	if !ok {
		return Position{}, false
	}

	si, err := strconv.Atoi(str)
	if err != nil {
		return Position{}, false
	}

	di, err := strconv.Atoi(dom)
	if err != nil {
		return Position{}, false
	}

	return Position{String: si, DOM: di}, true
}

type entry struct {
	prodID string
	name   string
	pos    Position
	hasPos bool
}

// Nicknames is an immutable mbid-keyed table.
type Nicknames struct {
	entries map[string]entry
	order   []string
}

// DefaultSearchPaths returns the directories Find tries, in order.
func DefaultSearchPaths() []string {
	paths := []string{"./resources", "/mnt/data/testdaq", "."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, home)
	}

	return paths
}

// Find loads filename from the first search path that has it.
func Find(filename string, searchPaths []string) (*Nicknames, error) {
	for _, dir := range searchPaths {
		f, err := os.Open(filepath.Join(dir, filename))
		if err != nil {
			continue
		}

		n, err := Parse(f)
		_ = f.Close()

		return n, err
	}

	return nil, fmt.Errorf("%w: %s", ErrNicknamesNotFound, filename)
}

// Load reads a nicknames file from an explicit path.
func Load(path string) (*Nicknames, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNicknamesNotFound, err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads the table: one header line, then whitespace separated
// "mbid prodID name string-dom" rows. Short rows are skipped.
func Parse(r io.Reader) (*Nicknames, error) {
	n := &Nicknames{entries: make(map[string]entry)}

	scanner := bufio.NewScanner(r)
	header := true

	for scanner.Scan() {
		if header {
			header = false
			continue
		}

		vals := strings.Fields(scanner.Text())
		if len(vals) < 4 {
			continue
		}

		e := entry{prodID: vals[1], name: vals[2]}
		e.pos, e.hasPos = ParsePosition(vals[3])

		if _, seen := n.entries[vals[0]]; !seen {
			n.order = append(n.order, vals[0])
		}

		n.entries[vals[0]] = e
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read nicknames: %w", err)
	}

	return n, nil
}

// Len returns the number of mainboards in the table.
func (n *Nicknames) Len() int {
	return len(n.entries)
}

func (n *Nicknames) Position(mbid string) (Position, bool) {
	e, ok := n.entries[mbid]
	if !ok || !e.hasPos {
		return Position{}, false
	}

	return e.pos, true
}

func (n *Nicknames) Name(mbid string) (string, bool) {
	e, ok := n.entries[mbid]
	return e.name, ok
}

func (n *Nicknames) ProdID(mbid string) (string, bool) {
	e, ok := n.entries[mbid]
	return e.prodID, ok
}

// FindMBID resolves a mainboard ID, name, production ID or "string-dom"
// position to a mainboard ID. An exact mainboard ID wins; otherwise the
// first row in file order matching any other column is returned.
func (n *Nicknames) FindMBID(token string) (string, bool) {
	if _, ok := n.entries[token]; ok {
		return token, true
	}

	pos, isPos := ParsePosition(token)

	for _, mbid := range n.order {
		e := n.entries[mbid]

		switch {
		case e.name == token, e.prodID == token:
			return mbid, true
		case isPos && e.hasPos && e.pos == pos:
			return mbid, true
		}
	}

	return "", false
}
