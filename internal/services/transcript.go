package services

import (
	"encoding/json"
	"fmt"
	"strings"
)

// transcriptQualityThreshold separates a usable transcript from one that is
// probably empty or truncated.
const transcriptQualityThreshold = 40

var (
	transcriptArrayKeys  = []string{"items", "segments", "results", "data"}
	transcriptSpeakerKey = []string{"speaker", "speaker_name", "participant", "name"}
	transcriptTextKeys   = []string{"text", "transcript", "content"}
)

// NormalizeTranscript flattens a provider transcript payload into plain text.
// Known shapes are tried in priority order; anything unrecognized degrades to
// a serialized dump of the payload. It never fails.
func NormalizeTranscript(payload any) string {
	// Artifacts served as plain text arrive as a bare string; wrapping
	// them in JSON quoting would mangle the transcript.
	if text, ok := payload.(string); ok {
		return text
	}

	root, ok := payload.(map[string]any)
	if ok {
		if text, ok := root["text"].(string); ok {
			return text
		}

		for _, key := range transcriptArrayKeys {
			if segments, ok := root[key].([]any); ok {
				return joinSegments(segments)
			}
		}
	}

	serialized, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", payload)
	}
	return string(serialized)
}

// TranscriptQuality is "ok" when the normalized text looks substantive and
// "poor" otherwise.
func TranscriptQuality(text string) string {
	if len(text) > transcriptQualityThreshold {
		return "ok"
	}
	return "poor"
}

func joinSegments(segments []any) string {
	lines := make([]string, 0, len(segments))
	for _, raw := range segments {
		segment, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		text := firstStringField(segment, transcriptTextKeys)
		if text == "" {
			continue
		}

		speaker := firstStringField(segment, transcriptSpeakerKey)
		if speaker != "" {
			lines = append(lines, fmt.Sprintf("%s: %s", speaker, text))
		} else {
			lines = append(lines, text)
		}
	}
	return strings.Join(lines, "\n")
}

func firstStringField(node map[string]any, keys []string) string {
	for _, key := range keys {
		if value, ok := node[key].(string); ok && value != "" {
			return value
		}
	}
	return ""
}
