package hubmoni

import "errors"

var (
	// ErrNoDOMs is returned when the driver tree holds no DOMs at all.
	ErrNoDOMs = errors.New("no DOMs found at all")

	errBadPauseFile = errors.New("malformed pause file")
)
