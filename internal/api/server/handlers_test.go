package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockResponder struct {
	mock.Mock
}

func (m *MockResponder) Reply(ctx context.Context, message string) (Reply, error) {
	args := m.Called(ctx, message)
	return args.Get(0).(Reply), args.Error(1)
}

func TestEchoResponderSplitsWords(t *testing.T) {
	reply, err := EchoResponder{}.Reply(context.Background(), "book a slot")
	require.NoError(t, err)

	assert.Equal(t, "echo", reply.Intent)
	assert.Equal(t, map[string]any{"message": "book a slot"}, reply.Parameters)
	assert.Equal(t, []string{"Received: ", "book ", "a ", "slot"}, reply.Fragments)
	assert.Equal(t, "Received: book a slot", reply.Text())
}

func TestEchoResponderEmptyMessage(t *testing.T) {
	reply, err := EchoResponder{}.Reply(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, []string{"Received: "}, reply.Fragments)
}

func TestChatHandlerReturnsDocument(t *testing.T) {
	responder := new(MockResponder)
	responder.On("Reply", mock.Anything, "cancel my appointment").Return(Reply{
		Intent:     "cancel_appointment",
		Parameters: map[string]any{"appointment_id": "42"},
		Fragments:  []string{"Cancelled ", "appointment 42"},
	}, nil)

	mux := NewMux(responder)
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"cancel my appointment"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "cancel_appointment", got.Intent)
	assert.Equal(t, "42", got.Parameters["appointment_id"])
	assert.Equal(t, "Cancelled appointment 42", got.Result)
	responder.AssertExpectations(t)
}

func TestStreamHandlerWritesFragments(t *testing.T) {
	responder := new(MockResponder)
	responder.On("Reply", mock.Anything, "hi").Return(Reply{
		Fragments: []string{"Hel", "lo, ", "world"},
	}, nil)

	mux := NewMux(responder)
	req := httptest.NewRequest(http.MethodPost, "/chat/stream", strings.NewReader(`{"message":"hi"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, rec.Flushed)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "Hello, world", rec.Body.String())
	responder.AssertExpectations(t)
}

func TestHandlersRejectInvalidBody(t *testing.T) {
	responder := new(MockResponder)
	mux := NewMux(responder)

	for _, path := range []string{"/chat", "/chat/stream"} {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"message":`))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
	responder.AssertNotCalled(t, "Reply", mock.Anything, mock.Anything)
}

func TestHandlersReportResponderFailure(t *testing.T) {
	responder := new(MockResponder)
	responder.On("Reply", mock.Anything, "x").Return(Reply{}, errors.New("model unavailable"))

	mux := NewMux(responder)
	for _, path := range []string{"/chat", "/chat/stream"} {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"message":"x"}`))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "model unavailable", path)
	}
}

func TestRoutesOnlyAcceptPost(t *testing.T) {
	mux := NewMux(EchoResponder{})

	req := httptest.NewRequest(http.MethodGet, "/chat", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
