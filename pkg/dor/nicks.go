package dor

import "github.com/domhub/hubmoni/pkg/nicknames"

const unknownNick = "-"

// NicknameLookup resolves a mainboard ID to its deployment details.
// *nicknames.Nicknames satisfies it.
type NicknameLookup interface {
	Position(mbid string) (nicknames.Position, bool)
	Name(mbid string) (string, bool)
	ProdID(mbid string) (string, bool)
}

var _ NicknameLookup = (*nicknames.Nicknames)(nil)
