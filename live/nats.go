package live

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSClient is a Client backed by NATS subjects, for deployments where the
// plugin proxy fans stream events out over a NATS cluster instead of an
// in-process bus. Each channel maps to one subject; the subscription payload
// is published on the channel's ".open" control subject.
type NATSClient struct {
	conn     *nats.Conn
	ownsConn bool
}

// NewNATSClient connects to the given NATS URL and returns a client over the
// connection. The connection reconnects indefinitely.
func NewNATSClient(url string, opts ...nats.Option) (*NATSClient, error) {
	base := []nats.Option{
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(-1),
	}
	nc, err := nats.Connect(url, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSClient{conn: nc, ownsConn: true}, nil
}

// NATSClientFromConn wraps an existing connection. The caller keeps ownership
// of the connection; Close will not close it.
func NATSClientFromConn(nc *nats.Conn) *NATSClient {
	return &NATSClient{conn: nc}
}

// Close closes the underlying connection if this client opened it.
func (c *NATSClient) Close() {
	if c.ownsConn && c.conn != nil {
		c.conn.Close()
	}
}

// Subscribe implements Client.
func (c *NATSClient) Subscribe(ctx context.Context, ch Channel, payload any) (Stream, error) {
	subject := SubjectFor(ch)

	msgs := make(chan *nats.Msg, 64)
	sub, err := c.conn.ChanSubscribe(subject, msgs)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		sub.Unsubscribe()
		return nil, fmt.Errorf("failed to marshal subscription payload: %w", err)
	}
	if err := c.conn.Publish(subject+".open", data); err != nil {
		sub.Unsubscribe()
		return nil, fmt.Errorf("failed to open channel %s: %w", ch, err)
	}

	s := &natsStream{
		sub:    sub,
		msgs:   msgs,
		events: make(chan Event),
		done:   make(chan struct{}),
	}
	go s.run(ctx)
	return s, nil
}

// SubjectFor maps a channel address to its NATS subject, e.g.
// plugin/llm-app/openai/v1/chat/completions becomes
// live.plugin.llm-app.openai.v1.chat.completions.
func SubjectFor(ch Channel) string {
	parts := []string{"live", string(ch.Scope), ch.Namespace}
	if p := strings.Trim(ch.Path, "/"); p != "" {
		parts = append(parts, strings.ReplaceAll(p, "/", "."))
	}
	return strings.Join(parts, ".")
}

type natsStream struct {
	sub       *nats.Subscription
	msgs      chan *nats.Msg
	events    chan Event
	done      chan struct{}
	closeOnce sync.Once
}

func (s *natsStream) run(ctx context.Context) {
	defer close(s.events)
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case msg, ok := <-s.msgs:
			if !ok {
				return
			}
			ev := Event{Type: EventTypeMessage, Data: msg.Data}
			select {
			case s.events <- ev:
			case <-ctx.Done():
				return
			case <-s.done:
				return
			}
		}
	}
}

func (s *natsStream) Events() <-chan Event {
	return s.events
}

func (s *natsStream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.sub.Unsubscribe()
	})
	return err
}
