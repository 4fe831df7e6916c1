package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-service/pkg/config"
)

func TestNewWithoutKeyReturnsNop(t *testing.T) {
	m := New(&config.MailConfig{})
	_, ok := m.(Nop)
	assert.True(t, ok)

	assert.NoError(t, m.Send(context.Background(), "a@example.com", "subject", "body"))
}

func TestAPIMailerSend(t *testing.T) {
	var got sendRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := New(&config.MailConfig{
		APIKey:      "key-123",
		APIEndpoint: srv.URL,
		FromAddress: "Rentals <noreply@rental.local>",
		Timeout:     5 * time.Second,
	})

	err := m.Send(context.Background(), "tenant@example.com", "Overdue notice", "<p>pay up</p>")
	require.NoError(t, err)

	assert.Equal(t, "Bearer key-123", auth)
	assert.Equal(t, "Rentals <noreply@rental.local>", got.From)
	assert.Equal(t, []string{"tenant@example.com"}, got.To)
	assert.Equal(t, "Overdue notice", got.Subject)
	assert.Equal(t, "<p>pay up</p>", got.HTML)
}

func TestAPIMailerSendErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	m := New(&config.MailConfig{
		APIKey:      "key-123",
		APIEndpoint: srv.URL,
		Timeout:     5 * time.Second,
	})

	err := m.Send(context.Background(), "tenant@example.com", "s", "b")
	assert.Error(t, err)
}

func TestOverdueReminderBody(t *testing.T) {
	body := OverdueReminderBody("Alex Doyle", 12, 350.5, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))
	assert.Contains(t, body, "Alex Doyle")
	assert.Contains(t, body, "#12")
	assert.Contains(t, body, "350.50")
	assert.Contains(t, body, "2025-04-01")
}
