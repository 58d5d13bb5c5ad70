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

// CommentHandler lists, posts and deletes comments on the managed video.
type CommentHandler struct {
	sessions Sessions
	provider adapter.ContentProvider
	recorder *eventlog.Recorder
	videoID  string
}

func NewCommentHandler(sessions Sessions, provider adapter.ContentProvider, recorder *eventlog.Recorder, videoID string) *CommentHandler {
	return &CommentHandler{sessions: sessions, provider: provider, recorder: recorder, videoID: videoID}
}

// ListComments returns the most recent page of comment threads.
func (h *CommentHandler) ListComments(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	ctx, s, client, err := contentClient(ctx, h.sessions, h.provider, req)
	if err != nil {
		return failure(ctx, err, "Video not found", "Failed to fetch comments"), nil
	}

	threads, err := client.ListComments(ctx, h.videoID)
	if err != nil {
		return failure(ctx, err, "Video not found", "Failed to fetch comments"), nil
	}
	if threads == nil {
		threads = []adapter.CommentThread{}
	}

	h.recorder.Record(ctx, s.UserID, model.ActionFetchComments, h.videoID, map[string]any{
		"count": len(threads),
	})

	return jsonResponse(http.StatusOK, map[string]any{
		"success":  true,
		"comments": threads,
	}), nil
}

// AddComment posts a reply when parentId is given and a new top-level thread otherwise.
func (h *CommentHandler) AddComment(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	ctx, s, err := authenticate(ctx, h.sessions, req, true)
	if err != nil {
		return unauthorized(ctx, err), nil
	}

	var payload struct {
		Text     string `json:"text"`
		ParentID string `json:"parentId"`
	}
	if err := decodeBody(req, &payload); err != nil {
		return errorResponse(http.StatusBadRequest, msgInvalidBody), nil
	}
	if strings.TrimSpace(payload.Text) == "" {
		return errorResponse(http.StatusBadRequest, "Comment text is required"), nil
	}

	client, err := h.provider.ForToken(ctx, s.AccessToken)
	if err != nil {
		return failure(ctx, err, "Comment not found", "Failed to add comment"), nil
	}

	var (
		comment *adapter.Comment
		action  model.Action
	)
	if payload.ParentID != "" {
		action = model.ActionReplyComment
		comment, err = client.ReplyToComment(ctx, payload.ParentID, payload.Text)
	} else {
		action = model.ActionAddComment
		comment, err = client.AddComment(ctx, h.videoID, payload.Text)
	}
	if err != nil {
		return failure(ctx, err, "Comment not found", "Failed to add comment"), nil
	}

	var parentID any
	if payload.ParentID != "" {
		parentID = payload.ParentID
	}
	h.recorder.Record(ctx, s.UserID, action, h.videoID, map[string]any{
		"text":      payload.Text,
		"parentId":  parentID,
		"commentId": comment.ID,
	})

	return jsonResponse(http.StatusCreated, map[string]any{
		"success": true,
		"comment": comment,
	}), nil
}

// DeleteComment forwards the delete. The provider enforces that only the author may delete.
func (h *CommentHandler) DeleteComment(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	ctx, s, err := authenticate(ctx, h.sessions, req, true)
	if err != nil {
		return unauthorized(ctx, err), nil
	}

	id := req.PathParameters["id"]
	if id == "" {
		return errorResponse(http.StatusBadRequest, "Comment ID is required"), nil
	}

	client, err := h.provider.ForToken(ctx, s.AccessToken)
	if err != nil {
		return failure(ctx, err, "Comment not found", "Failed to delete comment"), nil
	}
	if err := client.DeleteComment(ctx, id); err != nil {
		return failure(ctx, err, "Comment not found", "Failed to delete comment"), nil
	}

	h.recorder.Record(ctx, s.UserID, model.ActionDeleteComment, h.videoID, map[string]any{
		"commentId": id,
	})

	return jsonResponse(http.StatusOK, map[string]any{
		"success": true,
		"message": "Comment deleted successfully",
	}), nil
}
