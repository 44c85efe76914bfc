package live

import (
	"context"
	"sync"
)

// Fake is an in-memory Client that replays a scripted event sequence for
// every subscription. It exists so stream consumers can be tested without a
// real transport behind them.
type Fake struct {
	mu         sync.Mutex
	events     []Event
	err        error
	lastChan   Channel
	lastPayload any
	lastStream *FakeStream
}

// NewFake returns a Fake that delivers the given events, in order, to each
// subscriber and then ends the stream.
func NewFake(events ...Event) *Fake {
	return &Fake{events: events}
}

// FailWith makes every subsequent Subscribe call return err.
func (f *Fake) FailWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// Subscribe implements Client.
func (f *Fake) Subscribe(ctx context.Context, ch Channel, payload any) (Stream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.lastChan = ch
	f.lastPayload = payload
	f.lastStream = newFakeStream(ctx, f.events)
	return f.lastStream, nil
}

// LastChannel returns the address of the most recent subscription.
func (f *Fake) LastChannel() Channel {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastChan
}

// LastPayload returns the payload of the most recent subscription.
func (f *Fake) LastPayload() any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastPayload
}

// LastStream returns the stream handed out by the most recent subscription.
func (f *Fake) LastStream() *FakeStream {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastStream
}

// FakeStream is the Stream implementation handed out by Fake.
type FakeStream struct {
	events    chan Event
	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeStream(ctx context.Context, events []Event) *FakeStream {
	s := &FakeStream{
		events: make(chan Event),
		closed: make(chan struct{}),
	}
	go func() {
		defer close(s.events)
		for _, ev := range events {
			select {
			case s.events <- ev:
			case <-s.closed:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	return s
}

// Events implements Stream.
func (s *FakeStream) Events() <-chan Event {
	return s.events
}

// Close implements Stream.
func (s *FakeStream) Close() error {
	s.closeOnce.Do(func() {
		close(s.closed)
	})
	return nil
}

// Closed reports whether Close has been called.
func (s *FakeStream) Closed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}
