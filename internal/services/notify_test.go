package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghoststack-shark/Katie-team-notetaker-backend/internal/config"
)

func TestForwardPostsFlatPayload(t *testing.T) {
	var got map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc := NewNotifyService(config.Config{N8NWebhookURL: server.URL})

	err := svc.Forward(context.Background(), "m1", "joined", "T1")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"meetingId": "m1",
		"status":    "joined",
		"timestamp": "T1",
	}, got)
}

func TestForwardReportsRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("workflow disabled"))
	}))
	defer server.Close()

	svc := NewNotifyService(config.Config{N8NWebhookURL: server.URL})

	err := svc.Forward(context.Background(), "m1", "left", "T2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workflow disabled")
}

func TestForwardWithoutURLIsNoop(t *testing.T) {
	svc := NewNotifyService(config.Config{})

	assert.NoError(t, svc.Forward(context.Background(), "m1", "joined", "T1"))
}
