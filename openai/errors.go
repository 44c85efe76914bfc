package openai

import "fmt"

// APIError is returned when the plugin proxy answers with a non-2xx status.
// The body is kept verbatim; the proxy forwards upstream error payloads
// without reshaping them.
type APIError struct {
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("proxy returned status %d: %s", e.StatusCode, e.Body)
}
