package push

import "errors"

var (
	ErrSendFailed   = errors.New("failed to send message")
	ErrClosed       = errors.New("sink closed")
	ErrNotConnected = errors.New("not connected to collector")
)
