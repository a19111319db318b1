package server

import (
	"context"
	"strings"
	"time"
)

// ChatRequest mirrors the body the client posts to both endpoints.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the document served on /chat.
type ChatResponse struct {
	Intent     string         `json:"intent"`
	Parameters map[string]any `json:"parameters"`
	Result     string         `json:"result"`
}

type Reply struct {
	Intent     string
	Parameters map[string]any
	// Fragments are written to /chat/stream one flush each, and joined
	// into Result on /chat.
	Fragments []string
	// Delay is slept before every fragment after the first on /chat/stream.
	Delay time.Duration
}

func (r Reply) Text() string {
	return strings.Join(r.Fragments, "")
}

type Responder interface {
	Reply(ctx context.Context, message string) (Reply, error)
}

// EchoResponder answers every message by echoing it back word by word.
type EchoResponder struct {
	Delay time.Duration
}

func (e EchoResponder) Reply(_ context.Context, message string) (Reply, error) {
	var fragments []string
	for _, f := range strings.SplitAfter("Received: "+message, " ") {
		if f != "" {
			fragments = append(fragments, f)
		}
	}
	return Reply{
		Intent:     "echo",
		Parameters: map[string]any{"message": message},
		Fragments:  fragments,
		Delay:      e.Delay,
	}, nil
}
