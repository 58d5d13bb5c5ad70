package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/jun/vidkeeper/internal/eventlog"
	"github.com/jun/vidkeeper/internal/model"
	"github.com/jun/vidkeeper/internal/store"
)

// NoteHandler manages the caller's private notes on the managed video.
type NoteHandler struct {
	sessions Sessions
	notes    store.NoteStore
	recorder *eventlog.Recorder
	videoID  string
}

// NewNoteHandler creates a new NoteHandler.
func NewNoteHandler(sessions Sessions, notes store.NoteStore, recorder *eventlog.Recorder, videoID string) *NoteHandler {
	return &NoteHandler{sessions: sessions, notes: notes, recorder: recorder, videoID: videoID}
}

// ListNotes returns matching notes newest first, plus every tag in use regardless of the filter.
// Query: search (substring, case-insensitive), tags (comma separated, any may match).
func (h *NoteHandler) ListNotes(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	ctx, s, err := authenticate(ctx, h.sessions, req, false)
	if err != nil {
		return unauthorized(ctx, err), nil
	}

	filter := store.NoteFilter{Tags: store.ParseTags(req.QueryStringParameters["tags"])}
	// Whitespace-only search is no search; anything else is matched verbatim.
	if search := req.QueryStringParameters["search"]; strings.TrimSpace(search) != "" {
		filter.Search = search
	}

	notes, err := h.notes.List(ctx, s.UserID, h.videoID, filter)
	if err != nil {
		return failure(ctx, err, "", "Failed to fetch notes"), nil
	}
	allTags, err := h.notes.Tags(ctx, s.UserID, h.videoID)
	if err != nil {
		return failure(ctx, err, "", "Failed to fetch notes"), nil
	}
	if notes == nil {
		notes = []model.Note{}
	}

	details := map[string]any{"count": len(notes), "search": nil, "tags": nil}
	if filter.Search != "" {
		details["search"] = filter.Search
	}
	if len(filter.Tags) > 0 {
		details["tags"] = filter.Tags
	}
	h.recorder.Record(ctx, s.UserID, model.ActionFetchNotes, h.videoID, details)

	return jsonResponse(http.StatusOK, map[string]any{
		"success": true,
		"notes":   notes,
		"allTags": allTags,
	}), nil
}

// CreateNote stores a note. tags may be a comma separated string or an array of strings.
func (h *NoteHandler) CreateNote(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	ctx, s, err := authenticate(ctx, h.sessions, req, false)
	if err != nil {
		return unauthorized(ctx, err), nil
	}

	var payload struct {
		Content string          `json:"content"`
		Tags    json.RawMessage `json:"tags"`
	}
	if err := decodeBody(req, &payload); err != nil {
		return errorResponse(http.StatusBadRequest, msgInvalidBody), nil
	}
	if strings.TrimSpace(payload.Content) == "" {
		return errorResponse(http.StatusBadRequest, "Content is required"), nil
	}
	tags, err := parseTagsField(payload.Tags)
	if err != nil {
		return errorResponse(http.StatusBadRequest, "Tags must be a comma separated string or a list of strings"), nil
	}

	note := &model.Note{
		UserID:  s.UserID,
		VideoID: h.videoID,
		Content: payload.Content,
		Tags:    tags,
	}
	if err := h.notes.Create(ctx, note); err != nil {
		return failure(ctx, err, "", "Failed to create note"), nil
	}

	h.recorder.Record(ctx, s.UserID, model.ActionCreateNote, h.videoID, map[string]any{
		"noteId": note.ID,
		"tags":   note.Tags,
	})

	return jsonResponse(http.StatusCreated, map[string]any{
		"success": true,
		"note":    note,
	}), nil
}

// DeleteNote removes one of the caller's notes. Another user's note reports 404.
func (h *NoteHandler) DeleteNote(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	ctx, s, err := authenticate(ctx, h.sessions, req, false)
	if err != nil {
		return unauthorized(ctx, err), nil
	}

	id := req.PathParameters["id"]
	if id == "" {
		return errorResponse(http.StatusBadRequest, "Note ID is required"), nil
	}

	if err := h.notes.Delete(ctx, s.UserID, id); err != nil {
		return failure(ctx, err, "Note not found or unauthorized", "Failed to delete note"), nil
	}

	h.recorder.Record(ctx, s.UserID, model.ActionDeleteNote, h.videoID, map[string]any{
		"noteId": id,
	})

	return jsonResponse(http.StatusOK, map[string]any{
		"success": true,
		"message": "Note deleted successfully",
	}), nil
}

// parseTagsField accepts null, "a, b" or ["a", " b "] and normalizes like store.ParseTags.
func parseTagsField(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return []string{}, nil
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return store.ParseTags(text), nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, errors.New("unsupported tags value")
	}
	tags := []string{}
	for _, t := range list {
		tags = append(tags, store.ParseTags(t)...)
	}
	return tags, nil
}
