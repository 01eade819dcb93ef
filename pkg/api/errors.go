package api

import "errors"

var errInvalidLimit = errors.New("limit must be a positive integer")
