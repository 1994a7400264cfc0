package messaging

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrUnsupported is returned when the broker cannot honour a message option,
	// for example a delay on a broker without deferred delivery.
	ErrUnsupported = errors.New("messaging: unsupported operation")

	// ErrClosed is returned by Publish after Close.
	ErrClosed = errors.New("messaging: publisher closed")

	// ErrDestinationRequired is returned when Publish receives an empty topic or subject.
	ErrDestinationRequired = errors.New("messaging: destination is required")
)

// Publisher sends messages to a destination (topic or subject).
type Publisher interface {
	io.Closer

	Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error)
}

// OutgoingMessage is a broker-agnostic message.
type OutgoingMessage struct {
	Body []byte

	// Key is used by Kafka for partitioning.
	Key []byte

	Headers []Header

	// Attributes are sent as Pub/Sub attributes. Other brokers send them as headers.
	Attributes map[string]string

	// OrderingKey is used by Google Pub/Sub.
	OrderingKey string

	// Delay requests deferred delivery. Only NSQ supports it.
	Delay time.Duration
}

// Header is a message header. Duplicate keys are allowed.
type Header struct {
	Key   string
	Value []byte
}

// PublishResult carries what the broker reported about an accepted message.
type PublishResult struct {
	MessageID string
	Topic     string
	Partition int32
	Offset    int64
	Timestamp time.Time
}

// headerPairs merges explicit headers and attributes, skipping empty keys.
func headerPairs(msg OutgoingMessage) []Header {
	out := make([]Header, 0, len(msg.Headers)+len(msg.Attributes))
	for _, h := range msg.Headers {
		if h.Key != "" {
			out = append(out, h)
		}
	}
	for k, v := range msg.Attributes {
		if k != "" {
			out = append(out, Header{Key: k, Value: []byte(v)})
		}
	}
	return out
}

func checkPublish(ctx context.Context, destination string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if destination == "" {
		return ErrDestinationRequired
	}
	return nil
}
