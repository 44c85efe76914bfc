package openai

// DeltaKind classifies a streaming delta by which of its fields is set.
type DeltaKind int

const (
	// DeltaKindUnknown marks a delta carrying none of the expected fields.
	DeltaKindUnknown DeltaKind = iota
	// DeltaKindContent marks a delta carrying a content token.
	DeltaKindContent
	// DeltaKindRole marks a delta announcing the responder role.
	DeltaKindRole
	// DeltaKindDone marks the end-of-stream delta.
	DeltaKindDone
)

// ChatCompletionsDelta is one incremental fragment of a streamed response.
// The API sends exactly one of the three fields per chunk; Kind reports which.
type ChatCompletionsDelta struct {
	Content *string `json:"content,omitempty"`
	Role    *string `json:"role,omitempty"`
	Done    *bool   `json:"done,omitempty"`
}

// Kind classifies the delta. Done wins over the other fields so that a
// malformed combined chunk can still terminate the stream.
func (d ChatCompletionsDelta) Kind() DeltaKind {
	switch {
	case d.Done != nil:
		return DeltaKindDone
	case d.Content != nil:
		return DeltaKindContent
	case d.Role != nil:
		return DeltaKindRole
	}
	return DeltaKindUnknown
}

// ChunkChoice is a single choice within a streamed chunk.
type ChunkChoice struct {
	Delta ChatCompletionsDelta `json:"delta"`
}

// ChatCompletionsChunk is the payload of one streaming channel event.
type ChatCompletionsChunk struct {
	Choices []ChunkChoice `json:"choices"`
}
