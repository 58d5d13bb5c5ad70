package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jun/vidkeeper/internal/adapter"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"
)

var videoParts = []string{"snippet", "statistics", "contentDetails"}

// Client implements adapter.ContentClient for the YouTube Data API v3.
type Client struct {
	service *yt.Service
}

// NewClient creates a Client that authenticates every call with accessToken.
// No refresh is attempted; an expired token surfaces as adapter.ErrUnauthorized.
func NewClient(ctx context.Context, accessToken string, opts ...option.ClientOption) (*Client, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	all := append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)

	srv, err := yt.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve YouTube client: %w", err)
	}
	return &Client{service: srv}, nil
}

// GetChannelID returns the id of the authenticated account's channel.
func (c *Client) GetChannelID(ctx context.Context) (string, error) {
	r, err := c.service.Channels.List([]string{"id"}).
		Mine(true).
		MaxResults(1).
		Context(ctx).
		Do()
	if err != nil {
		return "", wrap("unable to list channels", err)
	}
	if len(r.Items) == 0 || r.Items[0].Id == "" {
		return "", fmt.Errorf("channel: %w", adapter.ErrNotFound)
	}
	return r.Items[0].Id, nil
}

// GetVideo retrieves snippet, statistics and content details of a video.
func (c *Client) GetVideo(ctx context.Context, videoID string) (*adapter.Video, error) {
	v, err := c.fetchVideo(ctx, videoID, videoParts)
	if err != nil {
		return nil, err
	}
	video := toVideo(v)
	return &video, nil
}

// UpdateVideo sets title and description, carrying over the current category id and tags.
func (c *Client) UpdateVideo(ctx context.Context, videoID, title, description string) (*adapter.VideoUpdate, error) {
	current, err := c.fetchVideo(ctx, videoID, []string{"snippet"})
	if err != nil {
		return nil, err
	}

	snippet := current.Snippet
	if snippet == nil {
		snippet = &yt.VideoSnippet{}
	}
	tags := snippet.Tags
	if tags == nil {
		tags = []string{}
	}

	res, err := c.service.Videos.Update([]string{"snippet"}, &yt.Video{
		Id: videoID,
		Snippet: &yt.VideoSnippet{
			Title:       title,
			Description: description,
			CategoryId:  snippet.CategoryId,
			Tags:        tags,
		},
	}).Context(ctx).Do()
	if err != nil {
		return nil, wrap("unable to update video", err)
	}

	return &adapter.VideoUpdate{
		Previous: toVideo(current),
		Updated:  toVideo(res),
	}, nil
}

func (c *Client) fetchVideo(ctx context.Context, videoID string, parts []string) (*yt.Video, error) {
	r, err := c.service.Videos.List(parts).
		Id(videoID).
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrap("unable to list videos", err)
	}
	if len(r.Items) == 0 {
		return nil, fmt.Errorf("video %s: %w", videoID, adapter.ErrNotFound)
	}
	return r.Items[0], nil
}

// ListComments returns the first page of comment threads ordered by time.
func (c *Client) ListComments(ctx context.Context, videoID string) ([]adapter.CommentThread, error) {
	r, err := c.service.CommentThreads.List([]string{"snippet", "replies"}).
		VideoId(videoID).
		MaxResults(adapter.CommentPageSize).
		Order("time").
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrap("unable to list comment threads", err)
	}

	threads := make([]adapter.CommentThread, 0, len(r.Items))
	for _, item := range r.Items {
		threads = append(threads, toThread(item))
	}
	return threads, nil
}

// AddComment inserts a new top-level comment thread.
func (c *Client) AddComment(ctx context.Context, videoID, text string) (*adapter.Comment, error) {
	res, err := c.service.CommentThreads.Insert([]string{"snippet"}, &yt.CommentThread{
		Snippet: &yt.CommentThreadSnippet{
			VideoId: videoID,
			TopLevelComment: &yt.Comment{
				Snippet: &yt.CommentSnippet{TextOriginal: text},
			},
		},
	}).Context(ctx).Do()
	if err != nil {
		return nil, wrap("unable to insert comment thread", err)
	}

	thread := toThread(res)
	comment := thread.TopLevelComment
	if comment.ID == "" {
		comment.ID = res.Id
	}
	return &comment, nil
}

// ReplyToComment inserts a reply under parentID.
func (c *Client) ReplyToComment(ctx context.Context, parentID, text string) (*adapter.Comment, error) {
	res, err := c.service.Comments.Insert([]string{"snippet"}, &yt.Comment{
		Snippet: &yt.CommentSnippet{
			ParentId:     parentID,
			TextOriginal: text,
		},
	}).Context(ctx).Do()
	if err != nil {
		return nil, wrap("unable to insert reply", err)
	}

	comment := toComment(res)
	return &comment, nil
}

// DeleteComment deletes a comment by id.
func (c *Client) DeleteComment(ctx context.Context, commentID string) error {
	if err := c.service.Comments.Delete(commentID).Context(ctx).Do(); err != nil {
		return wrap("unable to delete comment", err)
	}
	return nil
}

// wrap maps API status codes onto the adapter sentinel errors.
func wrap(msg string, err error) error {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		switch gErr.Code {
		case http.StatusUnauthorized:
			return fmt.Errorf("%s: %w: %v", msg, adapter.ErrUnauthorized, err)
		case http.StatusForbidden:
			if authRejected(gErr) {
				return fmt.Errorf("%s: %w: %v", msg, adapter.ErrUnauthorized, err)
			}
		case http.StatusNotFound:
			return fmt.Errorf("%s: %w: %v", msg, adapter.ErrNotFound, err)
		}
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// authRejected reports whether a 403 is about the caller's grant rather than quota or policy.
func authRejected(gErr *googleapi.Error) bool {
	for _, item := range gErr.Errors {
		switch item.Reason {
		case "insufficientPermissions", "forbidden", "authError":
			return true
		}
	}
	return false
}

func toVideo(v *yt.Video) adapter.Video {
	video := adapter.Video{ID: v.Id, Tags: []string{}}
	if s := v.Snippet; s != nil {
		video.Title = s.Title
		video.Description = s.Description
		video.CategoryID = s.CategoryId
		video.ChannelID = s.ChannelId
		video.PublishedAt = parseTime(s.PublishedAt)
		if s.Tags != nil {
			video.Tags = s.Tags
		}
		video.Thumbnails = toThumbnails(s.Thumbnails)
	}
	if st := v.Statistics; st != nil {
		video.Statistics = adapter.Statistics{
			ViewCount:     st.ViewCount,
			LikeCount:     st.LikeCount,
			FavoriteCount: st.FavoriteCount,
			CommentCount:  st.CommentCount,
		}
	}
	if cd := v.ContentDetails; cd != nil {
		video.Duration = cd.Duration
	}
	return video
}

func toThumbnails(d *yt.ThumbnailDetails) map[string]adapter.Thumbnail {
	if d == nil {
		return nil
	}
	out := make(map[string]adapter.Thumbnail)
	for name, t := range map[string]*yt.Thumbnail{
		"default":  d.Default,
		"medium":   d.Medium,
		"high":     d.High,
		"standard": d.Standard,
		"maxres":   d.Maxres,
	} {
		if t == nil {
			continue
		}
		out[name] = adapter.Thumbnail{URL: t.Url, Width: t.Width, Height: t.Height}
	}
	return out
}

func toThread(t *yt.CommentThread) adapter.CommentThread {
	thread := adapter.CommentThread{ID: t.Id, Replies: []adapter.Comment{}}
	if s := t.Snippet; s != nil {
		thread.TotalReplyCount = s.TotalReplyCount
		if s.TopLevelComment != nil {
			thread.TopLevelComment = toComment(s.TopLevelComment)
			if thread.TopLevelComment.VideoID == "" {
				thread.TopLevelComment.VideoID = s.VideoId
			}
		}
	}
	if t.Replies != nil {
		for _, r := range t.Replies.Comments {
			thread.Replies = append(thread.Replies, toComment(r))
		}
	}
	return thread
}

func toComment(c *yt.Comment) adapter.Comment {
	comment := adapter.Comment{ID: c.Id}
	if s := c.Snippet; s != nil {
		comment.VideoID = s.VideoId
		comment.ParentID = s.ParentId
		comment.AuthorDisplayName = s.AuthorDisplayName
		comment.AuthorProfileImageURL = s.AuthorProfileImageUrl
		comment.TextDisplay = s.TextDisplay
		comment.TextOriginal = s.TextOriginal
		comment.LikeCount = s.LikeCount
		comment.PublishedAt = parseTime(s.PublishedAt)
		comment.UpdatedAt = parseTime(s.UpdatedAt)
		if s.AuthorChannelId != nil {
			comment.AuthorChannelID = s.AuthorChannelId.Value
		}
	}
	return comment
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}
