// Package eventlog records an audit trail of user actions. Recording is best effort: a failed
// write is logged and never reaches the caller.
package eventlog

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jun/vidkeeper/internal/model"
	"github.com/jun/vidkeeper/internal/store"
)

// Recorder writes audit entries to an EventStore.
type Recorder struct {
	events store.EventStore
	now    func() time.Time
}

// NewRecorder creates a Recorder. A nil store turns recording into a no-op.
func NewRecorder(events store.EventStore) *Recorder {
	return &Recorder{events: events, now: time.Now}
}

// Record appends an entry for the action. Errors are logged at warn level and swallowed.
func (r *Recorder) Record(ctx context.Context, userID string, action model.Action, videoID string, details map[string]any) {
	if r == nil || r.events == nil {
		return
	}
	entry := &model.EventLogEntry{
		UserID:    userID,
		Action:    action,
		VideoID:   videoID,
		Details:   details,
		Timestamp: r.now().UTC(),
	}
	if err := r.events.Append(ctx, entry); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).
			Str("action", string(action)).
			Str("user_id", userID).
			Msg("failed to record event")
	}
}
