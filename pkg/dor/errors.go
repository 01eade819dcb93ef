package dor

import "errors"

var (
	ErrAttributeUnreadable = errors.New("driver attribute unreadable")
	ErrNotCommunicating    = errors.New("DOM is not communicating")
	ErrNoData              = errors.New("no data available on channel")
	ErrChannelOpen         = errors.New("failed to open DOM channel")
)
