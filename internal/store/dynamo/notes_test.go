package dynamo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jun/vidkeeper/internal/model"
	"github.com/jun/vidkeeper/internal/store"
)

// newTestStore returns a memory-backed store whose clock advances one minute per call.
func newTestStore() *NoteStore {
	s := NewNoteStore(nil, "Notes")
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	calls := 0
	s.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Minute)
	}
	return s
}

func create(t *testing.T, s *NoteStore, userID, videoID, content string, tags ...string) model.Note {
	t.Helper()
	n := &model.Note{UserID: userID, VideoID: videoID, Content: content, Tags: tags}
	require.NoError(t, s.Create(context.Background(), n))
	return *n
}

func TestNoteStore_CreateAssignsIdentity(t *testing.T) {
	s := newTestStore()
	n := create(t, s, "u1", "v1", "hello")

	require.NotEmpty(t, n.ID)
	require.False(t, n.CreatedAt.IsZero())
	require.Equal(t, n.CreatedAt, n.UpdatedAt)
	require.Equal(t, []string{}, n.Tags)
}

func TestNoteStore_ListNewestFirstAndScoped(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	first := create(t, s, "u1", "v1", "first")
	second := create(t, s, "u1", "v1", "second")
	create(t, s, "u1", "other-video", "elsewhere")
	create(t, s, "u2", "v1", "someone else")

	notes, err := s.List(ctx, "u1", "v1", store.NoteFilter{})
	require.NoError(t, err)
	require.Len(t, notes, 2)
	require.Equal(t, second.ID, notes[0].ID)
	require.Equal(t, first.ID, notes[1].ID)
}

func TestNoteStore_ListFilters(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	create(t, s, "u1", "v1", "Intro is too long", "intro", "pacing")
	create(t, s, "u1", "v1", "Fix the thumbnail", "design")
	create(t, s, "u1", "v1", "outro music", "audio")

	notes, err := s.List(ctx, "u1", "v1", store.NoteFilter{Search: "INTRO"})
	require.NoError(t, err)
	require.Len(t, notes, 1)
	require.Equal(t, "Intro is too long", notes[0].Content)

	notes, err = s.List(ctx, "u1", "v1", store.NoteFilter{Tags: []string{"audio", "design"}})
	require.NoError(t, err)
	require.Len(t, notes, 2)

	tags, err := s.Tags(ctx, "u1", "v1")
	require.NoError(t, err)
	require.Equal(t, []string{"audio", "design", "intro", "pacing"}, tags)
}

func TestNoteStore_Delete(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	n := create(t, s, "u1", "v1", "mine")

	require.ErrorIs(t, s.Delete(ctx, "u2", n.ID), store.ErrNotFound)
	require.ErrorIs(t, s.Delete(ctx, "u1", "missing"), store.ErrNotFound)

	require.NoError(t, s.Delete(ctx, "u1", n.ID))
	require.ErrorIs(t, s.Delete(ctx, "u1", n.ID), store.ErrNotFound)

	notes, err := s.List(ctx, "u1", "v1", store.NoteFilter{})
	require.NoError(t, err)
	require.Empty(t, notes)
}

func TestNoteStore_ListReturnsCopies(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	create(t, s, "u1", "v1", "x", "a")

	notes, err := s.List(ctx, "u1", "v1", store.NoteFilter{})
	require.NoError(t, err)
	notes[0].Tags[0] = "mutated"

	tags, err := s.Tags(ctx, "u1", "v1")
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, tags)
}

func TestEventStore_AppendInMemory(t *testing.T) {
	s := NewEventStore(nil, "EventLogs")
	entry := &model.EventLogEntry{UserID: "u1", Action: model.ActionCreateNote, VideoID: "v1"}
	require.NoError(t, s.Append(context.Background(), entry))

	require.NotEmpty(t, entry.ID)
	require.False(t, entry.Timestamp.IsZero())
	entries := s.Entries()
	require.Len(t, entries, 1)
	require.Equal(t, model.ActionCreateNote, entries[0].Action)
}
