package openai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/llmkit/openai-plugin-client/live"
)

// StreamChatCompletions opens a live channel for the request and returns the
// stream of content tokens, in arrival order. The returned channel is closed
// when the backend signals completion, the upstream closes the channel, or
// ctx is cancelled; either way the underlying subscription is released.
//
// The sequence is single-pass. Each call opens its own subscription;
// re-invoking the method starts a new independent request.
func (c *Client) StreamChatCompletions(ctx context.Context, req ChatCompletionsRequest) (<-chan string, error) {
	if c.liveClient == nil {
		return nil, fmt.Errorf("no live client configured")
	}

	channel := live.Channel{
		Scope:     live.ScopePlugin,
		Namespace: PluginID,
		Path:      chatCompletionsPath,
	}

	stream, err := c.liveClient.Subscribe(ctx, channel, req)
	if err != nil {
		return nil, fmt.Errorf("could not subscribe to %s: %w", channel, err)
	}

	c.logger.Debug().Str("channel", channel.String()).Msg("Opened chat completions stream")

	out := make(chan string)
	go reduceStream(ctx, stream, out)
	return out, nil
}

// reduceStream turns the raw event sequence into content tokens: non-message
// and malformed events are dropped, role announcements are dropped, and the
// first done marker ends the stream without being emitted. Nothing after the
// done marker is inspected.
func reduceStream(ctx context.Context, stream live.Stream, out chan<- string) {
	defer close(out)
	defer stream.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-stream.Events():
			if !ok {
				return
			}
			token, kind := classifyEvent(ev)
			switch kind {
			case DeltaKindDone:
				return
			case DeltaKindContent:
				select {
				case out <- token:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// classifyEvent maps one channel event to the token it contributes, if any.
// Events that are not well-formed message events classify as unknown; the
// parsing is deliberately permissive and never errors.
func classifyEvent(ev live.Event) (string, DeltaKind) {
	if ev.Type != live.EventTypeMessage {
		return "", DeltaKindUnknown
	}

	var chunk ChatCompletionsChunk
	if err := json.Unmarshal(ev.Data, &chunk); err != nil {
		return "", DeltaKindUnknown
	}
	if len(chunk.Choices) == 0 {
		return "", DeltaKindUnknown
	}

	delta := chunk.Choices[0].Delta
	if delta.Kind() == DeltaKindContent {
		return *delta.Content, DeltaKindContent
	}
	return "", delta.Kind()
}
