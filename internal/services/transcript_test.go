package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTopLevelText(t *testing.T) {
	payload := map[string]any{"text": "hello  world ", "items": []any{}}

	assert.Equal(t, "hello  world ", NormalizeTranscript(payload))
}

func TestNormalizeSegmentArray(t *testing.T) {
	payload := map[string]any{
		"items": []any{
			map[string]any{"speaker": "Alice", "text": "Hi"},
			map[string]any{"text": "there"},
		},
	}

	assert.Equal(t, "Alice: Hi\nthere", NormalizeTranscript(payload))
}

func TestNormalizeSegmentFieldPriority(t *testing.T) {
	payload := map[string]any{
		"segments": []any{
			map[string]any{"speaker_name": "Bob", "transcript": "first"},
			map[string]any{"participant": "Carol", "content": "second"},
			map[string]any{"name": "Dave", "text": "third"},
		},
	}

	assert.Equal(t, "Bob: first\nCarol: second\nDave: third", NormalizeTranscript(payload))
}

func TestNormalizeSkipsTextlessSegments(t *testing.T) {
	payload := map[string]any{
		"results": []any{
			map[string]any{"speaker": "Alice"},
			map[string]any{"text": ""},
			"not an object",
			map[string]any{"text": "kept"},
		},
	}

	assert.Equal(t, "kept", NormalizeTranscript(payload))
}

func TestNormalizeArrayKeyOrder(t *testing.T) {
	// items is checked before data; data must be ignored here.
	payload := map[string]any{
		"data":  []any{map[string]any{"text": "wrong"}},
		"items": []any{map[string]any{"text": "right"}},
	}

	assert.Equal(t, "right", NormalizeTranscript(payload))
}

func TestNormalizeFallbackSerialization(t *testing.T) {
	payload := map[string]any{"weird": map[string]any{"shape": true}}

	out := NormalizeTranscript(payload)
	require.NotEmpty(t, out)

	var roundTrip map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &roundTrip))
	assert.Equal(t, map[string]any{"shape": true}, roundTrip["weird"])
}

func TestNormalizePlainTextPayloadVerbatim(t *testing.T) {
	// Non-JSON artifacts arrive as a bare string and must not be wrapped
	// in JSON quoting on the way out.
	assert.Equal(t, "Alice: Hi\nthere", NormalizeTranscript("Alice: Hi\nthere"))
	assert.Equal(t, "", NormalizeTranscript(""))
}

func TestNormalizeNeverFails(t *testing.T) {
	for _, payload := range []any{nil, 42, "plain text body", []any{1, 2}, map[string]any{"items": "not an array"}} {
		assert.NotPanics(t, func() {
			assert.NotNil(t, NormalizeTranscript(payload))
		})
	}
}

func TestTranscriptQuality(t *testing.T) {
	assert.Equal(t, "poor", TranscriptQuality(""))
	assert.Equal(t, "poor", TranscriptQuality("Alice: Hi\nthere"))
	assert.Equal(t, "ok", TranscriptQuality("This transcript is comfortably longer than forty characters."))
}
