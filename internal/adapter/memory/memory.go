package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jun/vidkeeper/internal/adapter"
)

// Channel is an in-process stand-in for a video-hosting account: its videos and their
// comment threads. It backs dev mode and tests.
type Channel struct {
	mu        sync.RWMutex
	channelID string
	owner     string
	videos    map[string]adapter.Video
	threads   map[string][]adapter.CommentThread // videoID -> newest first
	rejected  map[string]bool
	ops       []string
	writes    []adapter.Video
}

// NewChannel creates an empty channel. An empty channelID simulates an account without one.
func NewChannel(channelID, owner string) *Channel {
	return &Channel{
		channelID: channelID,
		owner:     owner,
		videos:    make(map[string]adapter.Video),
		threads:   make(map[string][]adapter.CommentThread),
		rejected:  make(map[string]bool),
	}
}

// AddVideo stores or replaces a video.
func (c *Channel) AddVideo(v adapter.Video) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v.Tags == nil {
		v.Tags = []string{}
	}
	c.videos[v.ID] = v
}

// RemoveVideo deletes a video.
func (c *Channel) RemoveVideo(videoID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.videos, videoID)
}

// RejectToken makes every call made with token fail with adapter.ErrUnauthorized.
func (c *Channel) RejectToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rejected[token] = true
}

// Ops returns the names of the operations invoked so far, in order.
func (c *Channel) Ops() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.ops...)
}

// Calls returns the number of operations invoked so far, client construction included.
func (c *Channel) Calls() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.ops)
}

// Writes returns every video resource sent by UpdateVideo.
func (c *Channel) Writes() []adapter.Video {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]adapter.Video(nil), c.writes...)
}

// Provider implements adapter.ContentProvider on top of a Channel.
type Provider struct {
	channel *Channel
}

// NewProvider creates a new in-memory provider.
func NewProvider(channel *Channel) *Provider {
	return &Provider{channel: channel}
}

// ForToken returns a Client bound to the channel.
func (p *Provider) ForToken(ctx context.Context, accessToken string) (adapter.ContentClient, error) {
	p.channel.mu.Lock()
	p.channel.ops = append(p.channel.ops, "client")
	p.channel.mu.Unlock()
	return &Client{channel: p.channel, token: accessToken}, nil
}

// Client implements adapter.ContentClient against a Channel.
type Client struct {
	channel *Channel
	token   string
}

// begin records the operation and checks the token. The caller must hold the lock.
func (m *Client) begin(op string) error {
	m.channel.ops = append(m.channel.ops, op)
	if m.channel.rejected[m.token] {
		return fmt.Errorf("%s: %w", op, adapter.ErrUnauthorized)
	}
	return nil
}

func (m *Client) GetChannelID(ctx context.Context) (string, error) {
	m.channel.mu.Lock()
	defer m.channel.mu.Unlock()
	if err := m.begin("channels.list"); err != nil {
		return "", err
	}
	if m.channel.channelID == "" {
		return "", fmt.Errorf("channel: %w", adapter.ErrNotFound)
	}
	return m.channel.channelID, nil
}

func (m *Client) GetVideo(ctx context.Context, videoID string) (*adapter.Video, error) {
	m.channel.mu.Lock()
	defer m.channel.mu.Unlock()
	if err := m.begin("videos.list"); err != nil {
		return nil, err
	}
	v, ok := m.channel.videos[videoID]
	if !ok {
		return nil, fmt.Errorf("video %s: %w", videoID, adapter.ErrNotFound)
	}
	return &v, nil
}

func (m *Client) UpdateVideo(ctx context.Context, videoID, title, description string) (*adapter.VideoUpdate, error) {
	m.channel.mu.Lock()
	defer m.channel.mu.Unlock()
	if err := m.begin("videos.list"); err != nil {
		return nil, err
	}
	current, ok := m.channel.videos[videoID]
	if !ok {
		return nil, fmt.Errorf("video %s: %w", videoID, adapter.ErrNotFound)
	}
	if err := m.begin("videos.update"); err != nil {
		return nil, err
	}

	write := adapter.Video{
		ID:          videoID,
		Title:       title,
		Description: description,
		CategoryID:  current.CategoryID,
		Tags:        append([]string{}, current.Tags...),
	}
	m.channel.writes = append(m.channel.writes, write)

	updated := current
	updated.Title = write.Title
	updated.Description = write.Description
	updated.CategoryID = write.CategoryID
	updated.Tags = write.Tags
	m.channel.videos[videoID] = updated

	return &adapter.VideoUpdate{Previous: current, Updated: updated}, nil
}

func (m *Client) ListComments(ctx context.Context, videoID string) ([]adapter.CommentThread, error) {
	m.channel.mu.Lock()
	defer m.channel.mu.Unlock()
	if err := m.begin("commentThreads.list"); err != nil {
		return nil, err
	}
	threads := m.channel.threads[videoID]
	if len(threads) > adapter.CommentPageSize {
		threads = threads[:adapter.CommentPageSize]
	}
	out := make([]adapter.CommentThread, len(threads))
	for i, t := range threads {
		t.Replies = append([]adapter.Comment{}, t.Replies...)
		out[i] = t
	}
	return out, nil
}

func (m *Client) AddComment(ctx context.Context, videoID, text string) (*adapter.Comment, error) {
	m.channel.mu.Lock()
	defer m.channel.mu.Unlock()
	if err := m.begin("commentThreads.insert"); err != nil {
		return nil, err
	}
	comment := m.newComment(text)
	comment.VideoID = videoID
	thread := adapter.CommentThread{
		ID:              comment.ID,
		TopLevelComment: comment,
		Replies:         []adapter.Comment{},
	}
	m.channel.threads[videoID] = append([]adapter.CommentThread{thread}, m.channel.threads[videoID]...)
	return &comment, nil
}

func (m *Client) ReplyToComment(ctx context.Context, parentID, text string) (*adapter.Comment, error) {
	m.channel.mu.Lock()
	defer m.channel.mu.Unlock()
	if err := m.begin("comments.insert"); err != nil {
		return nil, err
	}
	for videoID, threads := range m.channel.threads {
		for i := range threads {
			if threads[i].TopLevelComment.ID != parentID {
				continue
			}
			reply := m.newComment(text)
			reply.VideoID = videoID
			reply.ParentID = parentID
			threads[i].Replies = append(threads[i].Replies, reply)
			threads[i].TotalReplyCount++
			return &reply, nil
		}
	}
	return nil, fmt.Errorf("comment %s: %w", parentID, adapter.ErrNotFound)
}

func (m *Client) DeleteComment(ctx context.Context, commentID string) error {
	m.channel.mu.Lock()
	defer m.channel.mu.Unlock()
	if err := m.begin("comments.delete"); err != nil {
		return err
	}
	for videoID, threads := range m.channel.threads {
		for i := range threads {
			if threads[i].TopLevelComment.ID == commentID {
				m.channel.threads[videoID] = append(threads[:i:i], threads[i+1:]...)
				return nil
			}
			for j, r := range threads[i].Replies {
				if r.ID == commentID {
					threads[i].Replies = append(threads[i].Replies[:j:j], threads[i].Replies[j+1:]...)
					threads[i].TotalReplyCount--
					return nil
				}
			}
		}
	}
	return fmt.Errorf("comment %s: %w", commentID, adapter.ErrNotFound)
}

func (m *Client) newComment(text string) adapter.Comment {
	now := time.Now().UTC()
	return adapter.Comment{
		ID:                uuid.New().String(),
		AuthorDisplayName: m.channel.owner,
		AuthorChannelID:   m.channel.channelID,
		TextDisplay:       text,
		TextOriginal:      text,
		PublishedAt:       now,
		UpdatedAt:         now,
	}
}
