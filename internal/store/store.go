// Package store defines the first-party persistence contracts (notes and the audit trail)
// and the matching rules shared by every backend.
package store

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/jun/vidkeeper/internal/model"
)

// ErrNotFound is returned when a note does not exist or belongs to another user.
var ErrNotFound = errors.New("note not found")

// NoteFilter narrows a note listing. Zero values match everything.
type NoteFilter struct {
	// Search is matched case-insensitively as a substring of the content.
	Search string
	// Tags matches notes carrying at least one of the tags.
	Tags []string
}

// NoteStore persists notes scoped to (user, video).
type NoteStore interface {
	// Create assigns an id and timestamps to note and stores it.
	Create(ctx context.Context, note *model.Note) error

	// List returns the user's notes for a video matching filter, newest first.
	List(ctx context.Context, userID, videoID string, filter NoteFilter) ([]model.Note, error)

	// Tags returns every distinct tag on the user's notes for a video, sorted.
	Tags(ctx context.Context, userID, videoID string) ([]string, error)

	// Delete removes a note owned by userID. A missing or foreign id yields ErrNotFound.
	Delete(ctx context.Context, userID, noteID string) error
}

// EventStore appends audit entries.
type EventStore interface {
	Append(ctx context.Context, entry *model.EventLogEntry) error
}

// ParseTags splits comma separated input, trimming each entry and dropping empty ones.
// Order and duplicates are preserved.
func ParseTags(raw string) []string {
	tags := []string{}
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// Matches reports whether note satisfies filter.
func (f NoteFilter) Matches(note model.Note) bool {
	if f.Search != "" && !strings.Contains(strings.ToLower(note.Content), strings.ToLower(f.Search)) {
		return false
	}
	if len(f.Tags) == 0 {
		return true
	}
	for _, want := range f.Tags {
		for _, have := range note.Tags {
			if have == want {
				return true
			}
		}
	}
	return false
}

// UniqueTags returns the sorted set of tags used across notes.
func UniqueTags(notes []model.Note) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, n := range notes {
		for _, t := range n.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

// SortNewestFirst orders notes by creation time, most recent first.
func SortNewestFirst(notes []model.Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].CreatedAt.After(notes[j].CreatedAt)
	})
}
