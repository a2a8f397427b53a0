package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupStringPriorityOrder(t *testing.T) {
	node := map[string]any{
		"status": map[string]any{"code": "in_call"},
		"code":   "fallback",
	}

	assert.Equal(t, "in_call", lookupString(node, "status.code", "code"))
	assert.Equal(t, "fallback", lookupString(node, "status.missing", "code"))
}

func TestLookupStringSkipsNonStrings(t *testing.T) {
	node := map[string]any{
		"status": map[string]any{"code": 42},
		"code":   "done",
	}

	assert.Equal(t, "done", lookupString(node, "status.code", "code"))
}

func TestLookupStringArrayIndex(t *testing.T) {
	node := map[string]any{
		"recordings": []any{
			map[string]any{
				"media_shortcuts": map[string]any{
					"transcript": map[string]any{
						"data": map[string]any{"download_url": "https://signed.example/t.json"},
					},
				},
			},
		},
	}

	assert.Equal(t, "https://signed.example/t.json",
		lookupString(node, "recordings.0.media_shortcuts.transcript.data.download_url"))
	assert.Empty(t, lookupString(node, "recordings.1.media_shortcuts.transcript.data.download_url"))
	assert.Empty(t, lookupString(node, "recordings.x.media_shortcuts"))
}

func TestLookupStringMissingPathsTolerated(t *testing.T) {
	assert.Empty(t, lookupString(map[string]any{}, "a.b.c", "d"))
	assert.Empty(t, lookupString(nil, "a.b"))
	assert.Empty(t, lookupString("scalar", "a"))
}

func TestLookupMap(t *testing.T) {
	node := map[string]any{
		"payload": map[string]any{"bot_id": "b1"},
	}

	payload, ok := lookupMap(node, "data", "payload")
	assert.True(t, ok)
	assert.Equal(t, "b1", payload["bot_id"])

	_, ok = lookupMap(node, "data", "missing")
	assert.False(t, ok)
}
