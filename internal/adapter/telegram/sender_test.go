package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/simaogato/etfguard-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMessage(t *testing.T) *domain.NotificationMessage {
	t.Helper()
	msg, err := domain.NewNotificationMessage(4242, "GOF risk alert", "Overall risk: Danger", domain.NotificationPriorityUrgent)
	require.NoError(t, err)
	return msg
}

func TestSend(t *testing.T) {
	var got sendMessageRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/bot123:abc/sendMessage", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
	}))
	defer server.Close()

	sender := NewSender(server.URL, "123:abc", zerolog.New(nil).Level(zerolog.Disabled))

	err := sender.Send(context.Background(), testMessage(t))

	require.NoError(t, err)
	assert.Equal(t, int64(4242), got.ChatID)
	assert.Equal(t, "Markdown", got.ParseMode)
	assert.Equal(t, "*GOF risk alert*\n\nOverall risk: Danger", got.Text)
}

func TestSend_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
	}))
	defer server.Close()

	sender := NewSender(server.URL, "123:abc", zerolog.New(nil).Level(zerolog.Disabled))

	err := sender.Send(context.Background(), testMessage(t))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestSend_TokenNotLeaked(t *testing.T) {
	// nothing listens on this address
	sender := NewSender("http://127.0.0.1:1", "123:secret", zerolog.New(nil).Level(zerolog.Disabled))

	err := sender.Send(context.Background(), testMessage(t))

	require.Error(t, err)
	assert.NotContains(t, err.Error(), "123:secret")
}

func TestAvailable(t *testing.T) {
	log := zerolog.New(nil).Level(zerolog.Disabled)

	assert.True(t, NewSender("", "123:abc", log).Available())
	assert.False(t, NewSender("", "", log).Available())
	assert.False(t, NewSender("", "   ", log).Available())
}
