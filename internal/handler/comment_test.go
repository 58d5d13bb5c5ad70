package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jun/vidkeeper/internal/model"
)

func TestCommentHandler_AddThenList(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	tok := e.token(t, testUserID)

	for _, text := range []string{"first", "second"} {
		resp, err := e.comments.AddComment(ctx, makeRequest("POST", "/comments", `{"text":"`+text+`"}`, tok))
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode, resp.Body)
	}

	resp, err := e.comments.ListComments(ctx, makeRequest("GET", "/comments", "", tok))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	comments := decode(t, resp)["comments"].([]any)
	require.Len(t, comments, 2)
	newest := comments[0].(map[string]any)["topLevelComment"].(map[string]any)
	assert.Equal(t, "second", newest["textOriginal"])

	ev := e.lastEvent(t)
	assert.Equal(t, model.ActionFetchComments, ev.Action)
	assert.Equal(t, 2, ev.Details["count"])
}

func TestCommentHandler_ListEmpty(t *testing.T) {
	e := newTestEnv(t)

	resp, err := e.comments.ListComments(context.Background(), makeRequest("GET", "/comments", "", e.token(t, testUserID)))
	require.NoError(t, err)
	assert.Equal(t, []any{}, decode(t, resp)["comments"])
}

func TestCommentHandler_ParentIDSelectsOperation(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	tok := e.token(t, testUserID)

	resp, err := e.comments.AddComment(ctx, makeRequest("POST", "/comments", `{"text":"top"}`, tok))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	parentID := decode(t, resp)["comment"].(map[string]any)["id"].(string)
	assert.Equal(t, []string{"client", "commentThreads.insert"}, e.channel.Ops())
	assert.Equal(t, model.ActionAddComment, e.lastEvent(t).Action)
	assert.Nil(t, e.lastEvent(t).Details["parentId"])

	resp, err = e.comments.AddComment(ctx, makeRequest("POST", "/comments", `{"text":"top","parentId":"`+parentID+`"}`, tok))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, []string{"client", "commentThreads.insert", "client", "comments.insert"}, e.channel.Ops())

	ev := e.lastEvent(t)
	assert.Equal(t, model.ActionReplyComment, ev.Action)
	assert.Equal(t, parentID, ev.Details["parentId"])
	assert.Equal(t, "top", ev.Details["text"])
	assert.NotEmpty(t, ev.Details["commentId"])
}

func TestCommentHandler_AddComment_BadRequest(t *testing.T) {
	e := newTestEnv(t)

	resp, err := e.comments.AddComment(context.Background(), makeRequest("POST", "/comments", `{"text":""}`, e.token(t, testUserID)))
	require.NoError(t, err)
	requireError(t, resp, http.StatusBadRequest, "Comment text is required")
	require.Zero(t, e.channel.Calls())
}

func TestCommentHandler_Delete(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	tok := e.token(t, testUserID)

	resp, err := e.comments.AddComment(ctx, makeRequest("POST", "/comments", `{"text":"bye"}`, tok))
	require.NoError(t, err)
	id := decode(t, resp)["comment"].(map[string]any)["id"].(string)

	req := makeRequest("DELETE", "/comments/"+id, "", tok)
	req.PathParameters["id"] = id
	resp, err = e.comments.DeleteComment(ctx, req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]any{"success": true, "message": "Comment deleted successfully"}, decode(t, resp))
	assert.Equal(t, model.ActionDeleteComment, e.lastEvent(t).Action)
	assert.Equal(t, id, e.lastEvent(t).Details["commentId"])
}

func TestCommentHandler_Delete_Errors(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	tok := e.token(t, testUserID)

	resp, err := e.comments.DeleteComment(ctx, makeRequest("DELETE", "/comments/", "", tok))
	require.NoError(t, err)
	requireError(t, resp, http.StatusBadRequest, "Comment ID is required")

	req := makeRequest("DELETE", "/comments/missing", "", tok)
	req.PathParameters["id"] = "missing"
	resp, err = e.comments.DeleteComment(ctx, req)
	require.NoError(t, err)
	requireError(t, resp, http.StatusNotFound, "Comment not found")
}
