// Package proxytest provides an in-process stand-in for the host
// application's plugin proxy, for use in client tests. It serves the settings
// resource and the chat completions resource and records what it receives.
package proxytest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/gorilla/mux"

	"github.com/llmkit/openai-plugin-client/openai"
)

// Server is a fake plugin proxy backed by httptest.
type Server struct {
	*httptest.Server

	mu              sync.Mutex
	settings        openai.Settings
	settingsStatus  int
	completions     openai.ChatCompletionsResponse
	completionsCode int
	lastRequest     *openai.ChatCompletionsRequest
	lastQuery       map[string]string
}

// New starts a fake proxy. By default the backend reports itself enabled with
// a key configured, and the completions resource answers with an empty
// response. Callers shape it with the Set* methods and must Close it.
func New() *Server {
	s := &Server{
		settings: openai.Settings{
			Enabled:          true,
			SecureJSONFields: openai.SecureJSONFields{OpenAIKey: true},
		},
		settingsStatus:  http.StatusOK,
		completionsCode: http.StatusOK,
	}

	r := mux.NewRouter()
	r.HandleFunc("/settings", s.settingsHandler).Methods(http.MethodGet)
	r.HandleFunc("/resources/openai/v1/chat/completions", s.completionsHandler).Methods(http.MethodPost)
	s.Server = httptest.NewServer(r)
	return s
}

// SetSettings replaces the settings payload served to probes.
func (s *Server) SetSettings(settings openai.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
}

// FailSettings makes the settings resource answer with the given status.
func (s *Server) FailSettings(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settingsStatus = status
}

// SetCompletions replaces the response served by the completions resource.
func (s *Server) SetCompletions(resp openai.ChatCompletionsResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completions = resp
}

// FailCompletions makes the completions resource answer with the given status.
func (s *Server) FailCompletions(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completionsCode = status
}

// LastRequest returns the most recent decoded completions request, or nil.
func (s *Server) LastRequest() *openai.ChatCompletionsRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRequest
}

// LastSettingsQuery returns the query parameters of the most recent settings
// call.
func (s *Server) LastSettingsQuery() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastQuery
}

func (s *Server) settingsHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	query := make(map[string]string)
	for key, vals := range r.URL.Query() {
		if len(vals) > 0 {
			query[key] = vals[0]
		}
	}
	s.lastQuery = query
	status := s.settingsStatus
	settings := s.settings
	s.mu.Unlock()

	if status != http.StatusOK {
		http.Error(w, "settings unavailable", status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(settings)
}

func (s *Server) completionsHandler(w http.ResponseWriter, r *http.Request) {
	var req openai.ChatCompletionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.lastRequest = &req
	status := s.completionsCode
	resp := s.completions
	s.mu.Unlock()

	if status != http.StatusOK {
		http.Error(w, "upstream error", status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
