package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jun/vidkeeper/internal/adapter"
)

func newTestClient(t *testing.T) (*Channel, adapter.ContentClient) {
	t.Helper()
	ch := NewChannel("UC-owner", "Owner")
	ch.AddVideo(adapter.Video{ID: "vid1", Title: "Old", Description: "old", CategoryID: "22", Tags: []string{"x"}})
	client, err := NewProvider(ch).ForToken(context.Background(), "token")
	require.NoError(t, err)
	return ch, client
}

func TestClient_UpdateVideo_KeepsCategoryAndTags(t *testing.T) {
	ch, client := newTestClient(t)

	update, err := client.UpdateVideo(context.Background(), "vid1", "T", "D")
	require.NoError(t, err)
	assert.Equal(t, "Old", update.Previous.Title)

	writes := ch.Writes()
	require.Len(t, writes, 1)
	assert.Equal(t, "22", writes[0].CategoryID)
	assert.Equal(t, []string{"x"}, writes[0].Tags)
}

func TestClient_UpdateVideo_NotFound(t *testing.T) {
	ch, client := newTestClient(t)

	_, err := client.UpdateVideo(context.Background(), "missing", "T", "D")
	require.ErrorIs(t, err, adapter.ErrNotFound)
	assert.Empty(t, ch.Writes())
}

func TestClient_RejectedToken(t *testing.T) {
	ch, client := newTestClient(t)
	ch.RejectToken("token")

	_, err := client.GetVideo(context.Background(), "vid1")
	require.ErrorIs(t, err, adapter.ErrUnauthorized)
}

func TestClient_CommentsNewestFirst(t *testing.T) {
	_, client := newTestClient(t)
	ctx := context.Background()

	first, err := client.AddComment(ctx, "vid1", "first")
	require.NoError(t, err)
	second, err := client.AddComment(ctx, "vid1", "second")
	require.NoError(t, err)

	threads, err := client.ListComments(ctx, "vid1")
	require.NoError(t, err)
	require.Len(t, threads, 2)
	assert.Equal(t, second.ID, threads[0].TopLevelComment.ID)
	assert.Equal(t, first.ID, threads[1].TopLevelComment.ID)
}

func TestClient_ReplyAndDelete(t *testing.T) {
	ch, client := newTestClient(t)
	ctx := context.Background()

	parent, err := client.AddComment(ctx, "vid1", "question")
	require.NoError(t, err)
	reply, err := client.ReplyToComment(ctx, parent.ID, "answer")
	require.NoError(t, err)
	assert.Equal(t, parent.ID, reply.ParentID)

	threads, err := client.ListComments(ctx, "vid1")
	require.NoError(t, err)
	require.Len(t, threads[0].Replies, 1)
	assert.EqualValues(t, 1, threads[0].TotalReplyCount)

	require.NoError(t, client.DeleteComment(ctx, reply.ID))
	require.NoError(t, client.DeleteComment(ctx, parent.ID))

	threads, err = client.ListComments(ctx, "vid1")
	require.NoError(t, err)
	assert.Empty(t, threads)

	require.ErrorIs(t, client.DeleteComment(ctx, parent.ID), adapter.ErrNotFound)
	assert.Equal(t, "client", ch.Ops()[0])
}

func TestClient_GetChannelID_NoChannel(t *testing.T) {
	client, err := NewProvider(NewChannel("", "")).ForToken(context.Background(), "token")
	require.NoError(t, err)

	_, err = client.GetChannelID(context.Background())
	require.ErrorIs(t, err, adapter.ErrNotFound)
}
