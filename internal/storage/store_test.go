package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghoststack-shark/Katie-team-notetaker-backend/internal/domain"
)

func TestFileStoreUpsertAndFind(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	meeting, err := store.Upsert(ctx, domain.Meeting{
		MeetingID: "m1",
		JoinURL:   "https://teams.example/x",
		Status:    domain.StatusJoinRequested,
	})
	require.NoError(t, err)
	assert.NotZero(t, meeting.CreatedAt)

	found, err := store.Find(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, meeting, found)
}

func TestFileStoreFindUnknown(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Find(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrMeetingNotFound)
}

func TestFileStoreUpsertKeepsCreatedAt(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	first, err := store.Upsert(ctx, domain.Meeting{MeetingID: "m1", Status: domain.StatusJoinRequested})
	require.NoError(t, err)

	updated, err := store.Upsert(ctx, domain.Meeting{MeetingID: "m1", Status: domain.StatusInMeeting})
	require.NoError(t, err)

	assert.Equal(t, first.CreatedAt, updated.CreatedAt)
	assert.Equal(t, domain.StatusInMeeting, updated.Status)

	meetings, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, meetings, 1)
}

func TestFileStoreRequiresMeetingID(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Upsert(context.Background(), domain.Meeting{})
	assert.Error(t, err)
}

func TestFileStoreSurvivesReload(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewFileStore(dir)
	require.NoError(t, err)

	_, err = store.Upsert(ctx, domain.Meeting{
		MeetingID:   "m1",
		RecallBotID: "b1",
		Status:      domain.StatusLeft,
		JoinTS:      "T1",
		LeaveTS:     "T2",
	})
	require.NoError(t, err)

	reloaded, err := NewFileStore(dir)
	require.NoError(t, err)

	meeting, err := reloaded.Find(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "b1", meeting.RecallBotID)
	assert.Equal(t, "T1", meeting.JoinTS)
	assert.Equal(t, "T2", meeting.LeaveTS)
}

func TestPDFPathStaysInsidePDFDir(t *testing.T) {
	am, err := NewArtifactManager(t.TempDir())
	require.NoError(t, err)

	pdfDir := filepath.Dir(am.PDFPath("m1"))

	assert.Equal(t, "m1", sanitizeID("m1"))
	assert.Equal(t, pdfDir, filepath.Dir(am.PDFPath("../../etc/passwd")))
	assert.Equal(t, pdfDir, filepath.Dir(am.PDFPath("a/b\\c")))
	assert.Equal(t, filepath.Join(pdfDir, "meeting.pdf"), am.PDFPath(""))
}
