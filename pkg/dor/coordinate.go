package dor

import (
	"fmt"
	"strings"
)

const (
	MaxCards = 8
	MaxPairs = 4
	MaxDOMs  = 2
)

// DOMLabels are the DOM positions on a wire pair, in scan order.
var DOMLabels = [MaxDOMs]byte{'A', 'B'}

// Coordinate identifies a DOM by card, wire pair and label.
type Coordinate struct {
	Card int
	Pair int
	DOM  byte
}

// String renders the compact "CWD" form, e.g. "01A".
func (c Coordinate) String() string {
	return fmt.Sprintf("%d%d%c", c.Card, c.Pair, c.DOM)
}

// MarshalText lets coordinates key JSON objects.
func (c Coordinate) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Coordinate) UnmarshalText(b []byte) error {
	parsed, ok := ParseCoordinate(string(b))
	if !ok {
		return fmt.Errorf("invalid DOM coordinate %q", b)
	}

	*c = parsed

	return nil
}

// Less orders coordinates by card, pair, then label.
func (c Coordinate) Less(o Coordinate) bool {
	if c.Card != o.Card {
		return c.Card < o.Card
	}

	if c.Pair != o.Pair {
		return c.Pair < o.Pair
	}

	return c.DOM < o.DOM
}

// ParseCoordinate parses "CWD" text. The label is case-insensitive.
func ParseCoordinate(s string) (Coordinate, bool) {
	if len(s) != 3 {
		return Coordinate{}, false
	}

	// byte arithmetic wraps, so anything below '0' also lands out of range
	card, pair := int(s[0]-'0'), int(s[1]-'0')
	if card >= MaxCards || pair >= MaxPairs {
		return Coordinate{}, false
	}

	label := strings.ToUpper(s[2:])[0]
	if label != DOMLabels[0] && label != DOMLabels[1] {
		return Coordinate{}, false
	}

	return Coordinate{Card: card, Pair: pair, DOM: label}, true
}

// AllCoordinates lists every coordinate a hub could hold.
func AllCoordinates() []Coordinate {
	coords := make([]Coordinate, 0, MaxCards*MaxPairs*MaxDOMs)

	for card := 0; card < MaxCards; card++ {
		for pair := 0; pair < MaxPairs; pair++ {
			for _, label := range DOMLabels {
				coords = append(coords, Coordinate{Card: card, Pair: pair, DOM: label})
			}
		}
	}

	return coords
}
