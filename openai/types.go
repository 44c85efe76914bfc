package openai

import "encoding/json"

// Message roles understood by the chat-completions API.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleFunction  = "function"
)

// Message is one entry in the conversation history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	// Name identifies the function a role=function message reports the
	// result of. Must match [a-zA-Z0-9_]{1,64}.
	Name string `json:"name,omitempty"`
	// FunctionCall is the opaque payload of an assistant function-call
	// message; such messages may carry no content.
	FunctionCall json.RawMessage `json:"function_call,omitempty"`
}

// FunctionSpec describes a callable the model may invoke. Parameters is a
// JSON-Schema-shaped object.
type FunctionSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters"`
}

// Values for ChatCompletionsRequest.FunctionCall.
const (
	FunctionCallNone = "none"
	FunctionCallAuto = "auto"
)

// ForcedFunctionCall names the single function the model must call. Use it as
// the FunctionCall field of a request instead of "none"/"auto".
type ForcedFunctionCall struct {
	Name string `json:"name"`
}

// ChatCompletionsRequest is the outbound request for both the single-shot and
// the streaming call. Optional scalars are pointers so that an absent value is
// distinguishable from zero. Tuning both Temperature and TopP at once is
// discouraged by the API but not rejected here.
type ChatCompletionsRequest struct {
	Model            string             `json:"model"`
	Messages         []Message          `json:"messages"`
	Functions        []FunctionSpec     `json:"functions,omitempty"`
	FunctionCall     any                `json:"function_call,omitempty"`
	Temperature      *float64           `json:"temperature,omitempty"`
	TopP             *float64           `json:"top_p,omitempty"`
	N                *int               `json:"n,omitempty"`
	Stop             []string           `json:"stop,omitempty"`
	MaxTokens        *int               `json:"max_tokens,omitempty"`
	PresencePenalty  *float64           `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float64           `json:"frequency_penalty,omitempty"`
	LogitBias        map[string]float64 `json:"logit_bias,omitempty"`
	User             string             `json:"user,omitempty"`
}

// ChatCompletionsResponse is the response payload of the single-shot call.
type ChatCompletionsResponse struct {
	ID      string   `json:"id,omitempty"`
	Object  string   `json:"object,omitempty"`
	Created int64    `json:"created,omitempty"`
	Model   string   `json:"model,omitempty"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Choice is a single completion choice in a response.
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason,omitempty"`
}

// Usage is the token usage reported for a request.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
