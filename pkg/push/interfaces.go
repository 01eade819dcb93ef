package push

import "context"

//go:generate mockgen -destination=mock_push.go -package=push github.com/domhub/hubmoni/pkg/push Sink

// Sink delivers monitoring messages, one JSON document each.
type Sink interface {
	Send(ctx context.Context, v any) error
	Close() error
}
