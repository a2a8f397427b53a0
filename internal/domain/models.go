package domain

// Meeting is the persisted mapping from a caller's meeting identifier to the
// provider bot, transcript handle and lifecycle timestamps.
type Meeting struct {
	MeetingID    string `json:"meetingId" bson:"meetingId"`
	Subject      string `json:"subject,omitempty" bson:"subject,omitempty"`
	JoinURL      string `json:"joinUrl,omitempty" bson:"joinUrl,omitempty"`
	StartTime    string `json:"startTime,omitempty" bson:"startTime,omitempty"`
	EndTime      string `json:"endTime,omitempty" bson:"endTime,omitempty"`
	RecallBotID  string `json:"recallBotId,omitempty" bson:"recallBotId,omitempty"`
	TranscriptID string `json:"transcriptId,omitempty" bson:"transcriptId,omitempty"`
	Status       string `json:"status" bson:"status"`
	JoinTS       string `json:"joinTs,omitempty" bson:"joinTs,omitempty"`
	LeaveTS      string `json:"leaveTs,omitempty" bson:"leaveTs,omitempty"`
	CreatedAt    int64  `json:"createdAt" bson:"createdAt"`
}

const (
	StatusJoinRequested = "join_requested"
	StatusInMeeting     = "in_meeting"
	StatusLeft          = "left"
)

// BotEvent is the interpreted form of a provider webhook delivery.
type BotEvent struct {
	EventType    string
	BotID        string
	MeetingID    string
	Timestamp    string
	StatusValue  string
	TranscriptID string
}
