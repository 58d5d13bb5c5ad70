package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/jun/vidkeeper/internal/adapter"
	"github.com/jun/vidkeeper/internal/eventlog"
	"github.com/jun/vidkeeper/internal/model"
)

// VideoHandler serves the managed video's metadata and the caller's channel id.
type VideoHandler struct {
	sessions Sessions
	provider adapter.ContentProvider
	recorder *eventlog.Recorder
	videoID  string
}

// NewVideoHandler creates a new VideoHandler for videoID.
func NewVideoHandler(sessions Sessions, provider adapter.ContentProvider, recorder *eventlog.Recorder, videoID string) *VideoHandler {
	return &VideoHandler{sessions: sessions, provider: provider, recorder: recorder, videoID: videoID}
}

// contentClient validates the session and builds a content client from its access token.
func contentClient(ctx context.Context, sessions Sessions, provider adapter.ContentProvider, req events.APIGatewayProxyRequest) (context.Context, *model.Session, adapter.ContentClient, error) {
	ctx, s, err := authenticate(ctx, sessions, req, true)
	if err != nil {
		return ctx, nil, nil, err
	}
	client, err := provider.ForToken(ctx, s.AccessToken)
	if err != nil {
		return ctx, nil, nil, err
	}
	return ctx, s, client, nil
}

// GetVideo returns the video's snippet, statistics and content details.
func (h *VideoHandler) GetVideo(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	ctx, s, client, err := contentClient(ctx, h.sessions, h.provider, req)
	if err != nil {
		return failure(ctx, err, "Video not found", "Failed to fetch video"), nil
	}

	video, err := client.GetVideo(ctx, h.videoID)
	if err != nil {
		return failure(ctx, err, "Video not found", "Failed to fetch video"), nil
	}

	h.recorder.Record(ctx, s.UserID, model.ActionFetchVideo, h.videoID, map[string]any{
		"title": video.Title,
	})

	return jsonResponse(http.StatusOK, map[string]any{
		"success": true,
		"video":   video,
	}), nil
}

// UpdateVideo replaces title and description. Category and tags are carried over by the client.
func (h *VideoHandler) UpdateVideo(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	ctx, s, err := authenticate(ctx, h.sessions, req, true)
	if err != nil {
		return unauthorized(ctx, err), nil
	}

	var payload struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := decodeBody(req, &payload); err != nil {
		return errorResponse(http.StatusBadRequest, msgInvalidBody), nil
	}
	if strings.TrimSpace(payload.Title) == "" || strings.TrimSpace(payload.Description) == "" {
		return errorResponse(http.StatusBadRequest, "Title and description are required"), nil
	}

	client, err := h.provider.ForToken(ctx, s.AccessToken)
	if err != nil {
		return failure(ctx, err, "Video not found", "Failed to update video"), nil
	}
	update, err := client.UpdateVideo(ctx, h.videoID, payload.Title, payload.Description)
	if err != nil {
		return failure(ctx, err, "Video not found", "Failed to update video"), nil
	}

	h.recorder.Record(ctx, s.UserID, model.ActionUpdateVideo, h.videoID, map[string]any{
		"oldTitle":       update.Previous.Title,
		"newTitle":       payload.Title,
		"oldDescription": update.Previous.Description,
		"newDescription": payload.Description,
	})

	return jsonResponse(http.StatusOK, map[string]any{
		"success": true,
		"message": "Video updated successfully",
		"video":   update.Updated,
	}), nil
}

// GetChannel returns the id of the caller's own channel.
func (h *VideoHandler) GetChannel(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	ctx, _, client, err := contentClient(ctx, h.sessions, h.provider, req)
	if err != nil {
		return failure(ctx, err, "Channel not found", "Failed to fetch channel"), nil
	}

	channelID, err := client.GetChannelID(ctx)
	if err != nil {
		return failure(ctx, err, "Channel not found", "Failed to fetch channel"), nil
	}

	return jsonResponse(http.StatusOK, map[string]any{
		"success":   true,
		"channelId": channelID,
	}), nil
}
