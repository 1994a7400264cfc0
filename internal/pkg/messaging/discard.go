package messaging

import (
	"context"
	"log/slog"
	"time"

	"go.uber.org/atomic"
)

// Discard logs and drops every message. It backs the "none" driver.
type Discard struct {
	closed *atomic.Bool
}

// NewDiscard returns a Discard publisher.
func NewDiscard() *Discard {
	return &Discard{closed: atomic.NewBool(false)}
}

// Publish implements Publisher.
func (d *Discard) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if err := checkPublish(ctx, destination); err != nil {
		return PublishResult{}, err
	}
	if d.closed.Load() {
		return PublishResult{}, ErrClosed
	}

	slog.DebugContext(ctx, "messaging: message discarded", "destination", destination, "bytes", len(msg.Body))
	return PublishResult{Topic: destination, Timestamp: time.Now()}, nil
}

// Close implements io.Closer.
func (d *Discard) Close() error {
	d.closed.Store(true)
	return nil
}
