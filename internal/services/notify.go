package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ghoststack-shark/Katie-team-notetaker-backend/internal/config"
)

const notifyRequestTimeout = 15 * time.Second

// NotifyService forwards bot lifecycle transitions to the downstream
// workflow webhook. Delivery is best-effort, single attempt.
type NotifyService struct {
	url        string
	httpClient *http.Client
}

func NewNotifyService(cfg config.Config) *NotifyService {
	return &NotifyService{
		url: cfg.N8NWebhookURL,
		httpClient: &http.Client{
			Timeout: notifyRequestTimeout,
		},
	}
}

func (s *NotifyService) Forward(ctx context.Context, meetingID, status, timestamp string) error {
	if s.url == "" {
		return nil
	}

	payload := map[string]string{
		"meetingId": meetingID,
		"status":    status,
		"timestamp": timestamp,
	}

	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		return fmt.Errorf("encode notification payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, buf)
	if err != nil {
		return fmt.Errorf("create notification request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	// TODO: attach an API key header once the n8n webhook enforces auth

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("forward notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("notification rejected: status %d body %s", resp.StatusCode, string(body))
	}

	return nil
}
