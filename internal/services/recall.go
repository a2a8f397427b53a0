package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ghoststack-shark/Katie-team-notetaker-backend/internal/config"
)

const recallRequestTimeout = 60 * time.Second

// ProviderError carries the provider's HTTP status and raw error body so
// handlers can surface it verbatim to the caller.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("recall api error: status %d body %s", e.StatusCode, e.Body)
}

// RecallService talks to the Recall.ai bot API.
type RecallService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewRecallService(cfg config.Config) *RecallService {
	return &RecallService{
		apiKey:  cfg.RecallAPIKey,
		baseURL: strings.TrimSuffix(cfg.RecallBaseURL, "/"),
		httpClient: &http.Client{
			Timeout: recallRequestTimeout,
		},
	}
}

// CreateBot asks the provider to join a meeting. The caller's meetingId is
// embedded in the bot metadata so webhook events can be mapped back.
func (s *RecallService) CreateBot(ctx context.Context, joinURL, meetingID, subject string) (string, error) {
	if err := s.ensureAPIKey(); err != nil {
		return "", err
	}

	metadata := map[string]string{"meetingId": meetingID}
	if subject != "" {
		metadata["subject"] = subject
	}

	payload := map[string]any{
		"meeting_url": joinURL,
		"bot_name":    "Katie Notetaker",
		"metadata":    metadata,
	}

	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		return "", fmt.Errorf("encode create bot payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/bot/", buf)
	if err != nil {
		return "", fmt.Errorf("create bot request: %w", err)
	}

	req.Header.Set("Authorization", "Token "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", s.decodeAPIError(resp)
	}

	var bot struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&bot); err != nil {
		return "", fmt.Errorf("decode create bot response: %w", err)
	}
	if bot.ID == "" {
		return "", errors.New("create bot response has no bot id")
	}

	return bot.ID, nil
}

// GetBot fetches the full bot detail document. The shape is provider-defined
// so it is returned as a generic tree for tolerant lookup.
func (s *RecallService) GetBot(ctx context.Context, botID string) (map[string]any, error) {
	if err := s.ensureAPIKey(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/bot/"+botID+"/", nil)
	if err != nil {
		return nil, fmt.Errorf("create get bot request: %w", err)
	}

	req.Header.Set("Authorization", "Token "+s.apiKey)

	resp, err := s.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, s.decodeAPIError(resp)
	}

	var bot map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&bot); err != nil {
		return nil, fmt.Errorf("decode bot response: %w", err)
	}

	return bot, nil
}

// DownloadTranscript fetches a transcript artifact from a pre-signed URL.
// The URL embeds its own credentials, so no headers are attached.
func (s *RecallService) DownloadTranscript(ctx context.Context, url string) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create transcript download request: %w", err)
	}

	resp, err := s.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read transcript body: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &ProviderError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		// Some artifacts are served as plain text.
		return string(body), nil
	}
	return payload, nil
}

// TranscriptDownloadURL locates the pre-signed transcript location inside a
// bot detail document, if the recording has produced one yet.
func TranscriptDownloadURL(bot map[string]any) string {
	return lookupString(bot,
		"recordings.0.media_shortcuts.transcript.data.download_url",
		"recordings.0.media_shortcuts.transcript.download_url",
	)
}

// TranscriptArtifactID extracts the provider's transcript handle from a bot
// detail document.
func TranscriptArtifactID(bot map[string]any) string {
	return lookupString(bot,
		"recordings.0.media_shortcuts.transcript.id",
		"recordings.0.media_shortcuts.transcript.data.id",
	)
}

// do issues the request. The client timeout bounds the whole exchange
// including the body read, so no per-request context is layered on top:
// cancelling one after Do returns would abort bodies still streaming.
func (s *RecallService) do(req *http.Request) (*http.Response, error) {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("recall request failed: %w", err)
	}

	return resp, nil
}

func (s *RecallService) decodeAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	return &ProviderError{StatusCode: resp.StatusCode, Body: string(body)}
}

func (s *RecallService) ensureAPIKey() error {
	if strings.TrimSpace(s.apiKey) == "" {
		return errors.New("recall api key is not configured")
	}
	return nil
}
