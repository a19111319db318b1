package api

import (
	"bytes"
	"encoding/json"
)

const (
	ChatPath   = "/chat"
	StreamPath = "/chat/stream"
)

// ChatRequest is the body of both endpoints.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the document returned by the non-streaming endpoint. The
// service does not promise a schema, so the body is kept as-is.
type ChatResponse struct {
	StatusCode int
	Raw        json.RawMessage
	Data       any
}

// Orchestration is the answer shape of the scheduling backend.
type Orchestration struct {
	Intent     string          `json:"intent"`
	Parameters map[string]any  `json:"parameters"`
	Result     json.RawMessage `json:"result"`
}

// Decode unmarshals the raw document into v.
func (r *ChatResponse) Decode(v any) error {
	return json.Unmarshal(r.Raw, v)
}

// Orchestration reports whether the document carries an intent and returns it.
func (r *ChatResponse) Orchestration() (Orchestration, bool) {
	var o Orchestration
	if _, ok := r.Data.(map[string]any); !ok {
		return o, false
	}
	if err := r.Decode(&o); err != nil || o.Intent == "" {
		return Orchestration{}, false
	}
	return o, true
}

// Pretty renders the document with two space indentation.
func (r *ChatResponse) Pretty() string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, r.Raw, "", "  "); err != nil {
		return string(r.Raw)
	}
	return buf.String()
}
