package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sectorpulse/internal/errors"
)

func TestSend(t *testing.T) {
	var gotPath, gotChatID, gotText, gotMode string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotPath = r.URL.Path
		gotChatID = r.Form.Get("chat_id")
		gotText = r.Form.Get("text")
		gotMode = r.Form.Get("parse_mode")
		w.Write([]byte(`{"ok":true,"result":{"message_id":42}}`))
	}))
	defer server.Close()

	client := NewClient("token123", "-100555", nil, WithBaseURL(server.URL))
	err := client.Send(context.Background(), "<b>report</b>")
	require.NoError(t, err)

	assert.Equal(t, "/bottoken123/sendMessage", gotPath)
	assert.Equal(t, "-100555", gotChatID)
	assert.Equal(t, "<b>report</b>", gotText)
	assert.Equal(t, "HTML", gotMode)
}

func TestSendAPIRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
	}))
	defer server.Close()

	client := NewClient("token123", "badchat", nil, WithBaseURL(server.URL))
	err := client.Send(context.Background(), "hello")

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errors.ErrTypeDelivery, appErr.Type)
	assert.Equal(t, "Bad Request: chat not found", appErr.Context["description"])
}

func TestSendOkFalseWithStatus200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":false,"description":"Flood control"}`))
	}))
	defer server.Close()

	client := NewClient("token123", "-100555", nil, WithBaseURL(server.URL))
	err := client.Send(context.Background(), "hello")
	assert.Error(t, err)
}

func TestSendTransportFailure(t *testing.T) {
	client := NewClient("token123", "-100555", nil, WithBaseURL("http://127.0.0.1:1"))
	err := client.Send(context.Background(), "hello")

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errors.ErrTypeDelivery, appErr.Type)
}
