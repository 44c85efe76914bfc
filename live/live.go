// Package live abstracts the host application's publish/subscribe transport.
// Streaming responses are delivered as events on a named, scoped channel;
// the client only needs "subscribe to an address, receive events, close".
package live

import (
	"context"
	"encoding/json"
	"fmt"
)

// Scope identifies the addressing namespace of a channel.
type Scope string

// ScopePlugin addresses channels owned by a backend plugin.
const ScopePlugin Scope = "plugin"

// Channel is the address of a publish/subscribe endpoint.
type Channel struct {
	Scope     Scope
	Namespace string
	Path      string
}

func (c Channel) String() string {
	return fmt.Sprintf("%s/%s%s", c.Scope, c.Namespace, c.Path)
}

// EventType discriminates the events delivered on a stream.
type EventType string

const (
	// EventTypeMessage carries a payload published on the channel.
	EventTypeMessage EventType = "message"
	// EventTypeError signals a transport-level problem on the channel.
	EventTypeError EventType = "error"
)

// Event is one item delivered on a channel stream.
type Event struct {
	Type EventType
	Data json.RawMessage
}

// Stream is a single-pass sequence of channel events. The events channel is
// closed when the upstream ends the stream or Close is called.
type Stream interface {
	Events() <-chan Event
	Close() error
}

// Client opens subscriptions to named channels. The payload is delivered to
// the channel owner when the subscription is established.
type Client interface {
	Subscribe(ctx context.Context, ch Channel, payload any) (Stream, error)
}
