package mongodb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jun/vidkeeper/internal/model"
	"github.com/jun/vidkeeper/internal/store"
)

// connectTestDB connects to MONGODB_URI with a throwaway database, or skips.
func connectTestDB(t *testing.T) *DB {
	t.Helper()
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := Connect(ctx, uri, "vidkeeper_test_"+uuid.NewString()[:8])
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.database.Drop(context.Background())
		_ = db.Close(context.Background())
	})
	return db
}

func TestMongoNotes_OwnerScopedDelete(t *testing.T) {
	db := connectTestDB(t)
	s := db.Notes()
	ctx := context.Background()

	note := &model.Note{UserID: "owner", VideoID: "v1", Content: "mine"}
	require.NoError(t, s.Create(ctx, note))

	require.ErrorIs(t, s.Delete(ctx, "intruder", note.ID), store.ErrNotFound)
	require.ErrorIs(t, s.Delete(ctx, "owner", "zzz"), store.ErrNotFound)

	notes, err := s.List(ctx, "owner", "v1", store.NoteFilter{})
	require.NoError(t, err)
	require.Len(t, notes, 1)

	require.NoError(t, s.Delete(ctx, "owner", note.ID))
	require.ErrorIs(t, s.Delete(ctx, "owner", note.ID), store.ErrNotFound)
}

func TestMongoNotes_ListAndTags(t *testing.T) {
	db := connectTestDB(t)
	s := db.Notes()
	ctx := context.Background()

	for _, n := range []model.Note{
		{Content: "Boost AUDIO", Tags: []string{"sound", "intro"}},
		{Content: "thumbnail idea", Tags: []string{"intro"}},
		{Content: "pacing is slow", Tags: []string{"pacing"}},
	} {
		n.UserID, n.VideoID = "u1", "v1"
		require.NoError(t, s.Create(ctx, &n))
		time.Sleep(5 * time.Millisecond)
	}
	require.NoError(t, s.Create(ctx, &model.Note{UserID: "u2", VideoID: "v1", Content: "audio", Tags: []string{"other"}}))

	notes, err := s.List(ctx, "u1", "v1", store.NoteFilter{})
	require.NoError(t, err)
	require.Len(t, notes, 3)
	assert.Equal(t, "pacing is slow", notes[0].Content)
	assert.Equal(t, "Boost AUDIO", notes[2].Content)

	notes, err = s.List(ctx, "u1", "v1", store.NoteFilter{Search: "audio"})
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Boost AUDIO", notes[0].Content)

	notes, err = s.List(ctx, "u1", "v1", store.NoteFilter{Tags: []string{"pacing", "sound"}})
	require.NoError(t, err)
	assert.Len(t, notes, 2)

	tags, err := s.Tags(ctx, "u1", "v1")
	require.NoError(t, err)
	assert.Equal(t, []string{"intro", "pacing", "sound"}, tags)
}
