package adapter

import (
	"context"
	"time"
)

// CommentPageSize is the number of comment threads fetched by ListComments.
const CommentPageSize = 100

// Thumbnail is one rendition of a video thumbnail.
type Thumbnail struct {
	URL    string `json:"url"`
	Width  int64  `json:"width,omitempty"`
	Height int64  `json:"height,omitempty"`
}

// Statistics holds the public counters of a video.
type Statistics struct {
	ViewCount     uint64 `json:"viewCount"`
	LikeCount     uint64 `json:"likeCount"`
	FavoriteCount uint64 `json:"favoriteCount"`
	CommentCount  uint64 `json:"commentCount"`
}

// Video mirrors the remote video resource.
type Video struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	CategoryID  string               `json:"categoryId"`
	Tags        []string             `json:"tags"`
	ChannelID   string               `json:"channelId,omitempty"`
	PublishedAt time.Time            `json:"publishedAt"`
	Duration    string               `json:"duration,omitempty"`
	Thumbnails  map[string]Thumbnail `json:"thumbnails,omitempty"`
	Statistics  Statistics           `json:"statistics"`
}

// VideoUpdate is the outcome of UpdateVideo: the state read before the write and the state
// returned by the write.
type VideoUpdate struct {
	Previous Video `json:"previous"`
	Updated  Video `json:"updated"`
}

// Comment mirrors a remote comment or reply.
type Comment struct {
	ID                    string    `json:"id"`
	VideoID               string    `json:"videoId,omitempty"`
	ParentID              string    `json:"parentId,omitempty"`
	AuthorDisplayName     string    `json:"authorDisplayName"`
	AuthorChannelID       string    `json:"authorChannelId,omitempty"`
	AuthorProfileImageURL string    `json:"authorProfileImageUrl,omitempty"`
	TextDisplay           string    `json:"textDisplay"`
	TextOriginal          string    `json:"textOriginal"`
	LikeCount             int64     `json:"likeCount"`
	PublishedAt           time.Time `json:"publishedAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

// CommentThread is a top-level comment with its replies.
type CommentThread struct {
	ID              string    `json:"id"`
	TopLevelComment Comment   `json:"topLevelComment"`
	TotalReplyCount int64     `json:"totalReplyCount"`
	Replies         []Comment `json:"replies"`
}

// ContentClient defines the operations on the external video-hosting API.
// Every method fails with ErrUnauthorized when the access token is rejected.
type ContentClient interface {
	// GetChannelID returns the channel owned by the authenticated account.
	GetChannelID(ctx context.Context) (string, error)

	// GetVideo retrieves a video's metadata and statistics.
	GetVideo(ctx context.Context, videoID string) (*Video, error)

	// UpdateVideo replaces the title and description. It reads the current video first and
	// resends its category id and tags, since the remote API clears them when omitted.
	UpdateVideo(ctx context.Context, videoID, title, description string) (*VideoUpdate, error)

	// ListComments returns the first page of comment threads, most recent first.
	ListComments(ctx context.Context, videoID string) ([]CommentThread, error)

	// AddComment starts a new top-level thread on the video.
	AddComment(ctx context.Context, videoID, text string) (*Comment, error)

	// ReplyToComment adds a reply under an existing comment.
	ReplyToComment(ctx context.Context, parentID, text string) (*Comment, error)

	// DeleteComment deletes a comment by id. Authorization is left to the remote API.
	DeleteComment(ctx context.Context, commentID string) error
}
