package model

import "time"

// Session is the identity and delegated credentials carried in the signed session token.
type Session struct {
	UserID            string    `json:"id"`
	Email             string    `json:"email,omitempty"`
	Name              string    `json:"name,omitempty"`
	AccessToken       string    `json:"-"`
	RefreshToken      string    `json:"-"`
	AccessTokenExpiry time.Time `json:"-"`
}

// Note is a personal annotation scoped to one (user, video) pair.
type Note struct {
	ID        string    `json:"id" dynamodbav:"id"`
	UserID    string    `json:"userId" dynamodbav:"user_id"`
	VideoID   string    `json:"videoId" dynamodbav:"video_id"`
	Content   string    `json:"content" dynamodbav:"content"`
	Tags      []string  `json:"tags" dynamodbav:"tags"`
	CreatedAt time.Time `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" dynamodbav:"updated_at"`
}

// Action enumerates the audited operations.
type Action string

const (
	ActionFetchVideo    Action = "fetch_video"
	ActionUpdateVideo   Action = "update_video"
	ActionFetchComments Action = "fetch_comments"
	ActionAddComment    Action = "add_comment"
	ActionReplyComment  Action = "reply_comment"
	ActionDeleteComment Action = "delete_comment"
	ActionCreateNote    Action = "create_note"
	ActionFetchNotes    Action = "fetch_notes"
	ActionDeleteNote    Action = "delete_note"
)

// EventLogEntry is one append-only audit record.
type EventLogEntry struct {
	ID        string         `json:"id" dynamodbav:"id"`
	UserID    string         `json:"userId" dynamodbav:"user_id"`
	Action    Action         `json:"action" dynamodbav:"action"`
	VideoID   string         `json:"videoId,omitempty" dynamodbav:"video_id,omitempty"`
	Details   map[string]any `json:"details,omitempty" dynamodbav:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp" dynamodbav:"timestamp"`
}
