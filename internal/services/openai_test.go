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

func summaryTestService(baseURL string) *SummaryService {
	return NewSummaryService(config.Config{
		OpenAIAPIKey:       "test-key",
		OpenAIBaseURL:      baseURL,
		OpenAIModelSummary: "gpt-4o-mini",
	})
}

func TestSummarizeSendsTranscript(t *testing.T) {
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{
				map[string]any{"message": map[string]any{"content": "  - decided things  "}},
			},
		})
	}))
	defer server.Close()

	svc := summaryTestService(server.URL)

	summary, err := svc.Summarize(context.Background(), "Alice: Hi\nBob: let's decide", "focus on decisions")
	require.NoError(t, err)
	assert.Equal(t, "- decided things", summary)

	assert.Equal(t, "gpt-4o-mini", gotBody["model"])
	messages, ok := gotBody["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 3)

	transcriptMsg, _ := messages[1].(map[string]any)
	assert.Equal(t, "Alice: Hi\nBob: let's decide", transcriptMsg["content"])
	instructionsMsg, _ := messages[2].(map[string]any)
	assert.Equal(t, "focus on decisions", instructionsMsg["content"])
}

func TestSummarizeRequiresAPIKey(t *testing.T) {
	svc := NewSummaryService(config.Config{OpenAIBaseURL: "http://localhost:1"})

	_, err := svc.Summarize(context.Background(), "transcript", "")
	assert.Error(t, err)
}

func TestSummarizeSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit_error"}}`))
	}))
	defer server.Close()

	svc := summaryTestService(server.URL)

	_, err := svc.Summarize(context.Background(), "transcript", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestSummarizeEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer server.Close()

	svc := summaryTestService(server.URL)

	_, err := svc.Summarize(context.Background(), "transcript", "")
	assert.Error(t, err)
}
