package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ghoststack-shark/Katie-team-notetaker-backend/internal/domain"
	"github.com/ghoststack-shark/Katie-team-notetaker-backend/internal/storage"
)

var (
	joinedStatusMarkers = []string{"in_call", "in_meeting", "in_waiting_room"}
	leftStatusMarkers   = []string{"done", "left", "call_ended"}
)

// Notifier is the downstream forwarding contract.
type Notifier interface {
	Forward(ctx context.Context, meetingID, status, timestamp string) error
}

// WebhookService interprets provider status events and applies their side
// effects: record mutation plus a best-effort downstream forward. The HTTP
// layer has already acknowledged the delivery by the time Process runs, so
// failures here are logged and dropped.
type WebhookService struct {
	store    storage.MeetingStore
	notifier Notifier
	now      func() time.Time
}

func NewWebhookService(store storage.MeetingStore, notifier Notifier) *WebhookService {
	return &WebhookService{
		store:    store,
		notifier: notifier,
		now:      time.Now,
	}
}

// Interpret extracts the interesting fields from an arbitrarily-shaped
// provider event. Missing fields never fail; every lookup degrades to the
// next candidate location.
func (s *WebhookService) Interpret(event map[string]any) domain.BotEvent {
	interpreted := domain.BotEvent{}

	interpreted.EventType = lookupString(event, "event", "event_type", "type")
	if interpreted.EventType == "" {
		interpreted.EventType = "unknown"
	}

	payload, ok := lookupMap(event, "data", "payload")
	if !ok {
		payload = event
	}

	interpreted.BotID = lookupString(payload, "bot_id", "bot.id", "id")
	interpreted.MeetingID = lookupString(payload,
		"metadata.meetingId",
		"bot.metadata.meetingId",
		"metadata.meeting_id",
		"bot.metadata.meeting_id",
	)
	interpreted.Timestamp = lookupString(payload,
		"status.created_at",
		"data.updated_at",
		"timestamp",
		"created_at",
		"updated_at",
	)
	if interpreted.Timestamp == "" {
		interpreted.Timestamp = s.now().UTC().Format(time.RFC3339)
	}
	interpreted.StatusValue = lookupString(payload, "status.code", "status", "code", "data.code")
	interpreted.TranscriptID = lookupString(payload, "transcript_id", "transcript.id", "data.transcript_id")

	return interpreted
}

// Process classifies an event and applies its side effects. Events without a
// resolvable meeting id are dropped without mutation or forwarding.
func (s *WebhookService) Process(ctx context.Context, event map[string]any) {
	interpreted := s.Interpret(event)

	eventType := strings.ToLower(interpreted.EventType)
	statusValue := strings.ToLower(interpreted.StatusValue)

	// Both checks run; a status matching both sets classifies as left.
	notifyStatus := ""
	if eventType != "" {
		if containsAny(statusValue, joinedStatusMarkers...) {
			notifyStatus = "joined"
		}
		if containsAny(statusValue, leftStatusMarkers...) {
			notifyStatus = "left"
		}
	}

	if notifyStatus == "" {
		log.Debug().
			Str("event_type", interpreted.EventType).
			Str("status_value", interpreted.StatusValue).
			Msg("webhook event ignored")
		return
	}

	if interpreted.MeetingID == "" {
		log.Warn().
			Str("event_type", interpreted.EventType).
			Str("bot_id", interpreted.BotID).
			Msg("webhook event has no resolvable meetingId")
		return
	}

	if err := s.applyTransition(ctx, interpreted, notifyStatus); err != nil {
		log.Error().Err(err).Str("meeting_id", interpreted.MeetingID).Msg("failed to persist webhook transition")
	}

	if err := s.notifier.Forward(ctx, interpreted.MeetingID, notifyStatus, interpreted.Timestamp); err != nil {
		log.Error().Err(err).Str("meeting_id", interpreted.MeetingID).Msg("failed to forward webhook event")
	} else {
		log.Info().
			Str("meeting_id", interpreted.MeetingID).
			Str("status", notifyStatus).
			Msg("webhook event forwarded")
	}
}

func (s *WebhookService) applyTransition(ctx context.Context, interpreted domain.BotEvent, notifyStatus string) error {
	meeting, err := s.store.Find(ctx, interpreted.MeetingID)
	if errors.Is(err, storage.ErrMeetingNotFound) {
		// Late or out-of-order delivery for a meeting this service never
		// created. Keep a minimal record rather than dropping the event.
		meeting = domain.Meeting{MeetingID: interpreted.MeetingID}
	} else if err != nil {
		return err
	}

	if interpreted.BotID != "" && meeting.RecallBotID == "" {
		meeting.RecallBotID = interpreted.BotID
	}
	if interpreted.TranscriptID != "" && interpreted.TranscriptID != meeting.TranscriptID {
		meeting.TranscriptID = interpreted.TranscriptID
	}

	switch notifyStatus {
	case "joined":
		meeting.Status = domain.StatusInMeeting
		if meeting.JoinTS == "" {
			meeting.JoinTS = interpreted.Timestamp
		}
	case "left":
		meeting.Status = domain.StatusLeft
		if meeting.LeaveTS == "" {
			meeting.LeaveTS = interpreted.Timestamp
		}
	}

	_, err = s.store.Upsert(ctx, meeting)
	return err
}
