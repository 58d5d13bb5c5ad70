package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/require"

	"github.com/jun/vidkeeper/internal/adapter"
	"github.com/jun/vidkeeper/internal/adapter/memory"
	"github.com/jun/vidkeeper/internal/crypto"
	"github.com/jun/vidkeeper/internal/eventlog"
	"github.com/jun/vidkeeper/internal/handler"
	"github.com/jun/vidkeeper/internal/model"
	"github.com/jun/vidkeeper/internal/session"
	"github.com/jun/vidkeeper/internal/store"
	"github.com/jun/vidkeeper/internal/store/dynamo"
)

const (
	testSecret  = "test-secret"
	testVideoID = "vid-123"
	testUserID  = "user-1"
	otherUserID = "user-2"
)

// countingNotes counts every call that reaches the note store.
type countingNotes struct {
	store.NoteStore
	calls atomic.Int32
}

func (c *countingNotes) Create(ctx context.Context, n *model.Note) error {
	c.calls.Add(1)
	return c.NoteStore.Create(ctx, n)
}

func (c *countingNotes) List(ctx context.Context, userID, videoID string, f store.NoteFilter) ([]model.Note, error) {
	c.calls.Add(1)
	return c.NoteStore.List(ctx, userID, videoID, f)
}

func (c *countingNotes) Tags(ctx context.Context, userID, videoID string) ([]string, error) {
	c.calls.Add(1)
	return c.NoteStore.Tags(ctx, userID, videoID)
}

func (c *countingNotes) Delete(ctx context.Context, userID, noteID string) error {
	c.calls.Add(1)
	return c.NoteStore.Delete(ctx, userID, noteID)
}

// failingEvents rejects every append.
type failingEvents struct{}

func (failingEvents) Append(context.Context, *model.EventLogEntry) error {
	return errors.New("event store unavailable")
}

type testEnv struct {
	sessions *session.Manager
	channel  *memory.Channel
	notes    *countingNotes
	events   *dynamo.EventStore

	video    *handler.VideoHandler
	comments *handler.CommentHandler
	noteH    *handler.NoteHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	e := &testEnv{
		sessions: session.NewManager(testSecret, crypto.NewMockEncryptor(), time.Hour),
		channel:  memory.NewChannel("UC-owner", "Owner"),
		notes:    &countingNotes{NoteStore: dynamo.NewNoteStore(nil, "Notes")},
		events:   dynamo.NewEventStore(nil, "EventLogs"),
	}
	e.channel.AddVideo(adapter.Video{
		ID:          testVideoID,
		Title:       "Original title",
		Description: "Original description",
		CategoryID:  "22",
		Tags:        []string{"x"},
		Statistics:  adapter.Statistics{ViewCount: 10},
	})
	e.wire(eventlog.NewRecorder(e.events))
	return e
}

func (e *testEnv) wire(recorder *eventlog.Recorder) {
	provider := memory.NewProvider(e.channel)
	e.video = handler.NewVideoHandler(e.sessions, provider, recorder, testVideoID)
	e.comments = handler.NewCommentHandler(e.sessions, provider, recorder, testVideoID)
	e.noteH = handler.NewNoteHandler(e.sessions, e.notes, recorder, testVideoID)
}

// downstream is the number of calls that reached the content provider or the note store.
func (e *testEnv) downstream() int {
	return e.channel.Calls() + int(e.notes.calls.Load())
}

func (e *testEnv) token(t *testing.T, userID string) string {
	t.Helper()
	tok, err := e.sessions.Issue(context.Background(), model.Session{
		UserID:      userID,
		Email:       userID + "@example.com",
		AccessToken: "access-" + userID,
	})
	require.NoError(t, err)
	return tok
}

func (e *testEnv) lastEvent(t *testing.T) model.EventLogEntry {
	t.Helper()
	entries := e.events.Entries()
	require.NotEmpty(t, entries)
	return entries[len(entries)-1]
}

func makeRequest(method, path, body, token string) events.APIGatewayProxyRequest {
	headers := map[string]string{"Content-Type": "application/json"}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return events.APIGatewayProxyRequest{
		HTTPMethod:     method,
		Path:           path,
		Body:           body,
		Headers:        headers,
		PathParameters: map[string]string{},
	}
}

func decode(t *testing.T, resp events.APIGatewayProxyResponse) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &m), resp.Body)
	return m
}

func requireError(t *testing.T, resp events.APIGatewayProxyResponse, status int, msg string) {
	t.Helper()
	require.Equal(t, status, resp.StatusCode, resp.Body)
	require.Equal(t, map[string]any{"error": msg}, decode(t, resp))
}
