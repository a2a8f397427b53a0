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

const summaryRequestTimeout = 5 * time.Minute

var summarySystemPrompt = "You are a meeting assistant. Summarize this meeting transcript in clear bullet points. Separate Decisions, Action Items and Key Discussion."

// SummaryService turns a normalized transcript into a short meeting summary.
type SummaryService struct {
	apiKey       string
	endpoint     string
	summaryModel string
	httpClient   *http.Client
}

func NewSummaryService(cfg config.Config) *SummaryService {
	return &SummaryService{
		apiKey:       cfg.OpenAIAPIKey,
		endpoint:     strings.TrimSuffix(cfg.OpenAIBaseURL, "/") + "/chat/completions",
		summaryModel: cfg.OpenAIModelSummary,
		httpClient: &http.Client{
			Timeout: summaryRequestTimeout,
		},
	}
}

func (s *SummaryService) Summarize(ctx context.Context, transcript, instructions string) (string, error) {
	if err := s.ensureAPIKey(); err != nil {
		return "", err
	}

	messages := []map[string]string{
		{"role": "system", "content": summarySystemPrompt},
		{"role": "user", "content": transcript},
	}
	if strings.TrimSpace(instructions) != "" {
		messages = append(messages, map[string]string{"role": "user", "content": instructions})
	}

	payload := map[string]any{
		"model":       s.summaryModel,
		"messages":    messages,
		"temperature": 0.2,
	}

	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		return "", fmt.Errorf("encode summary payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, buf)
	if err != nil {
		return "", fmt.Errorf("create summary request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", s.decodeAPIError(resp)
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("decode summary response: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", errors.New("no summary returned")
	}

	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}

// do issues the request. The client timeout already covers the body read,
// so no extra context is attached: cancelling one after Do returns would
// abort bodies still streaming.
func (s *SummaryService) do(req *http.Request) (*http.Response, error) {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}

	return resp, nil
}

func (s *SummaryService) decodeAPIError(resp *http.Response) error {
	var apiErr struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    any    `json:"code"`
		} `json:"error"`
	}

	body, _ := io.ReadAll(resp.Body)

	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return fmt.Errorf("openai api error: status %d type %s message %s", resp.StatusCode, apiErr.Error.Type, apiErr.Error.Message)
	}

	return fmt.Errorf("openai api error: status %d body %s", resp.StatusCode, string(body))
}

func (s *SummaryService) ensureAPIKey() error {
	if strings.TrimSpace(s.apiKey) == "" {
		return errors.New("openai api key is not configured")
	}
	return nil
}
