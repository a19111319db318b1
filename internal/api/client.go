package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/bz888/schedchat/internal/logger"
	"github.com/google/uuid"
)

const (
	defaultReadBufferSize = 32 * 1024
	maxErrorBody          = 4 * 1024
)

// Client talks to the chat service. It holds no per-call state and is safe
// for concurrent use; every call owns its own connection.
type Client struct {
	base      *url.URL
	http      *http.Client
	log       *logger.Logger
	chatURL   string
	streamURL string
	readSize  int
	raw       bool
}

type Option func(*Client)

// WithHTTPClient replaces the transport. The default client has no timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithReadBufferSize caps how many bytes a single read, and so a single
// chunk, may carry.
func WithReadBufferSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.readSize = n
		}
	}
}

// WithRawDecoding decodes every chunk on its own, so a multi-byte character
// split across two reads turns into replacement characters.
func WithRawDecoding() Option {
	return func(c *Client) {
		c.raw = true
	}
}

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q needs a scheme and host", baseURL)
	}

	c := &Client{
		base:      base,
		http:      &http.Client{},
		log:       logger.NewLogger("api client"),
		chatURL:   base.JoinPath(ChatPath).String(),
		streamURL: base.JoinPath(StreamPath).String(),
		readSize:  defaultReadBufferSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) BaseURL() string {
	return c.base.String()
}

// Send posts message to the chat endpoint and returns the parsed document.
// The message is forwarded unchanged, empty or not.
func (c *Client) Send(ctx context.Context, message string) (*ChatResponse, error) {
	requestID := uuid.NewString()
	c.log.Info("Send request ", requestID, ": ", message)

	resp, err := c.post(ctx, c.chatURL, requestID, "application/json", message)
	if err != nil {
		c.log.Error("Failed to send request: ", err)
		return nil, &Error{Kind: KindConnection, Op: ChatPath, Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.Error("Failed to close response body: ", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.Error("Failed to read response: ", err)
		return nil, &Error{Kind: KindConnection, Op: ChatPath, StatusCode: resp.StatusCode, Err: err}
	}

	if !isSuccess(resp.StatusCode) {
		c.log.Error("Chat request rejected: ", resp.Status)
		return nil, &Error{
			Kind:       KindRemote,
			Op:         ChatPath,
			StatusCode: resp.StatusCode,
			Body:       truncate(body, maxErrorBody),
			Err:        errors.New(resp.Status),
		}
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		c.log.Error("Failed to decode response: ", err)
		return nil, &Error{Kind: KindDecode, Op: ChatPath, StatusCode: resp.StatusCode, Err: err}
	}

	return &ChatResponse{
		StatusCode: resp.StatusCode,
		Raw:        json.RawMessage(body),
		Data:       data,
	}, nil
}

func (c *Client) post(ctx context.Context, target, requestID, accept, message string) (*http.Response, error) {
	requestData, err := json.Marshal(ChatRequest{Message: message})
	if err != nil {
		return nil, fmt.Errorf("serialize request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(requestData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", accept)
	req.Header.Set("X-Request-ID", requestID)

	return c.http.Do(req)
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		b = b[:n]
	}
	return append([]byte(nil), b...)
}
