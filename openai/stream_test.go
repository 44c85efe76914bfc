package openai_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llmkit/openai-plugin-client/live"
	"github.com/llmkit/openai-plugin-client/openai"
)

func contentEvent(token string) live.Event {
	return live.Event{
		Type: live.EventTypeMessage,
		Data: []byte(`{"choices":[{"delta":{"content":"` + token + `"}}]}`),
	}
}

func roleEvent() live.Event {
	return live.Event{
		Type: live.EventTypeMessage,
		Data: []byte(`{"choices":[{"delta":{"role":"assistant"}}]}`),
	}
}

func doneEvent() live.Event {
	return live.Event{
		Type: live.EventTypeMessage,
		Data: []byte(`{"choices":[{"delta":{"done":true}}]}`),
	}
}

func collect(t *testing.T, tokens <-chan string) []string {
	t.Helper()
	var out []string
	for {
		select {
		case token, ok := <-tokens:
			if !ok {
				return out
			}
			out = append(out, token)
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for stream to finish")
		}
	}
}

func streamRequest() openai.ChatCompletionsRequest {
	return openai.ChatCompletionsRequest{
		Model:    "gpt-4",
		Messages: []openai.Message{{Role: openai.RoleUser, Content: "hi"}},
	}
}

func TestStreamChatCompletions_FiltersAndTerminates(t *testing.T) {
	fake := live.NewFake(
		roleEvent(),
		contentEvent("Hel"),
		contentEvent("lo"),
		doneEvent(),
		contentEvent("after done, never seen"),
	)

	client := openai.NewClient("http://proxy", openai.WithLiveClient(fake))
	tokens, err := client.StreamChatCompletions(context.Background(), streamRequest())
	require.NoError(t, err)

	assert.Equal(t, []string{"Hel", "lo"}, collect(t, tokens))
	assert.True(t, fake.LastStream().Closed(), "done must release the subscription")
}

func TestStreamChatCompletions_DoneOnlyIsEmpty(t *testing.T) {
	fake := live.NewFake(doneEvent())

	client := openai.NewClient("http://proxy", openai.WithLiveClient(fake))
	tokens, err := client.StreamChatCompletions(context.Background(), streamRequest())
	require.NoError(t, err)

	assert.Empty(t, collect(t, tokens))
}

func TestStreamChatCompletions_SkipsMalformedEvents(t *testing.T) {
	fake := live.NewFake(
		contentEvent("a"),
		live.Event{Type: live.EventTypeMessage, Data: []byte(`{not even json`)},
		contentEvent("b"),
		doneEvent(),
	)

	client := openai.NewClient("http://proxy", openai.WithLiveClient(fake))
	tokens, err := client.StreamChatCompletions(context.Background(), streamRequest())
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, collect(t, tokens))
}

func TestStreamChatCompletions_DropsNonMessageEvents(t *testing.T) {
	fake := live.NewFake(
		live.Event{Type: live.EventTypeError, Data: []byte(`{"reason":"transient"}`)},
		contentEvent("a"),
		doneEvent(),
	)

	client := openai.NewClient("http://proxy", openai.WithLiveClient(fake))
	tokens, err := client.StreamChatCompletions(context.Background(), streamRequest())
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, collect(t, tokens))
}

func TestStreamChatCompletions_UpstreamCloseEndsStream(t *testing.T) {
	// No done marker; the channel just ends.
	fake := live.NewFake(contentEvent("a"))

	client := openai.NewClient("http://proxy", openai.WithLiveClient(fake))
	tokens, err := client.StreamChatCompletions(context.Background(), streamRequest())
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, collect(t, tokens))
}

func TestStreamChatCompletions_CarriesRequestAsPayload(t *testing.T) {
	fake := live.NewFake(doneEvent())

	client := openai.NewClient("http://proxy", openai.WithLiveClient(fake))
	req := streamRequest()
	tokens, err := client.StreamChatCompletions(context.Background(), req)
	require.NoError(t, err)
	collect(t, tokens)

	payload, ok := fake.LastPayload().(openai.ChatCompletionsRequest)
	require.True(t, ok, "payload should be the request itself")
	assert.Equal(t, req.Model, payload.Model)
}

func TestStreamChatCompletions_ChannelAddress(t *testing.T) {
	fake := live.NewFake(doneEvent())
	client := openai.NewClient("http://proxy", openai.WithLiveClient(fake))

	tokens, err := client.StreamChatCompletions(context.Background(), streamRequest())
	require.NoError(t, err)
	collect(t, tokens)
	ch := fake.LastChannel()

	assert.Equal(t, live.ScopePlugin, ch.Scope)
	assert.Equal(t, openai.PluginID, ch.Namespace)
	assert.Equal(t, "/openai/v1/chat/completions", ch.Path)

	// A second call opens its own subscription on the same address.
	firstStream := fake.LastStream()
	tokens, err = client.StreamChatCompletions(context.Background(), streamRequest())
	require.NoError(t, err)
	collect(t, tokens)
	assert.NotSame(t, firstStream, fake.LastStream())
}

func TestStreamChatCompletions_ContextCancel(t *testing.T) {
	fake := live.NewFake(
		contentEvent("a"),
		contentEvent("b"),
		contentEvent("c"),
	)

	ctx, cancel := context.WithCancel(context.Background())
	client := openai.NewClient("http://proxy", openai.WithLiveClient(fake))
	tokens, err := client.StreamChatCompletions(ctx, streamRequest())
	require.NoError(t, err)

	select {
	case token := <-tokens:
		assert.Equal(t, "a", token)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for first token")
	}

	cancel()
	collect(t, tokens) // must close without hanging
}

func TestStreamChatCompletions_NoLiveClient(t *testing.T) {
	client := openai.NewClient("http://proxy")
	_, err := client.StreamChatCompletions(context.Background(), streamRequest())
	require.Error(t, err)
}

func TestStreamChatCompletions_SubscribeError(t *testing.T) {
	fake := live.NewFake()
	subErr := errors.New("channel unavailable")
	fake.FailWith(subErr)

	client := openai.NewClient("http://proxy", openai.WithLiveClient(fake))
	_, err := client.StreamChatCompletions(context.Background(), streamRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, subErr)
}
