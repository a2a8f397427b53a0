package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ghoststack-shark/Katie-team-notetaker-backend/internal/domain"
)

// ErrMeetingNotFound is returned when no record exists for a meeting id.
var ErrMeetingNotFound = errors.New("meeting not found")

// MeetingStore is the persistence contract: one Meeting per meetingId,
// upsert-by-key semantics.
type MeetingStore interface {
	Upsert(ctx context.Context, meeting domain.Meeting) (domain.Meeting, error)
	Find(ctx context.Context, meetingID string) (domain.Meeting, error)
	List(ctx context.Context) ([]domain.Meeting, error)
}

type metaData struct {
	Meetings map[string]domain.Meeting `json:"meetings"`
}

// FileStore keeps all Meeting records in a single JSON file, rewritten
// atomically on every mutation. It is the default store when no Mongo
// connection string is configured.
type FileStore struct {
	mu   sync.RWMutex
	path string
	data metaData
}

func NewFileStore(baseDir string) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	store := &FileStore{path: filepath.Join(baseDir, "meetings.json")}
	if err := store.load(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *FileStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = metaData{Meetings: map[string]domain.Meeting{}}

	file, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return s.saveLocked()
	}
	if err != nil {
		return fmt.Errorf("open meetings file: %w", err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&s.data); err != nil {
		if errors.Is(err, io.EOF) {
			return s.saveLocked()
		}
		return fmt.Errorf("decode meetings file: %w", err)
	}

	if s.data.Meetings == nil {
		s.data.Meetings = map[string]domain.Meeting{}
	}
	return nil
}

func (s *FileStore) Upsert(_ context.Context, meeting domain.Meeting) (domain.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if meeting.MeetingID == "" {
		return domain.Meeting{}, errors.New("meetingId is required")
	}

	if existing, ok := s.data.Meetings[meeting.MeetingID]; ok && meeting.CreatedAt == 0 {
		meeting.CreatedAt = existing.CreatedAt
	}
	if meeting.CreatedAt == 0 {
		meeting.CreatedAt = time.Now().Unix()
	}

	s.data.Meetings[meeting.MeetingID] = meeting

	if err := s.saveLocked(); err != nil {
		return domain.Meeting{}, err
	}
	return meeting, nil
}

func (s *FileStore) Find(_ context.Context, meetingID string) (domain.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	meeting, ok := s.data.Meetings[meetingID]
	if !ok {
		return domain.Meeting{}, ErrMeetingNotFound
	}
	return meeting, nil
}

func (s *FileStore) List(_ context.Context) ([]domain.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	meetings := make([]domain.Meeting, 0, len(s.data.Meetings))
	for _, meeting := range s.data.Meetings {
		meetings = append(meetings, meeting)
	}
	return meetings, nil
}

func (s *FileStore) saveLocked() error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), "meetings-*.json")
	if err != nil {
		return fmt.Errorf("create temp meetings file: %w", err)
	}

	encoder := json.NewEncoder(tmp)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(s.data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("encode meetings: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp meetings file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace meetings file: %w", err)
	}

	return nil
}
