package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jun/vidkeeper/internal/model"
	"github.com/jun/vidkeeper/internal/store"
)

type eventDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"userId"`
	Action    string             `bson:"action"`
	VideoID   string             `bson:"videoId,omitempty"`
	Details   map[string]any     `bson:"details,omitempty"`
	Timestamp time.Time          `bson:"timestamp"`
}

// EventStore is backed by the eventlogs collection.
type EventStore struct {
	coll *mongo.Collection
}

var _ store.EventStore = (*EventStore)(nil)

func (s *EventStore) Append(ctx context.Context, entry *model.EventLogEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	doc := eventDoc{
		ID:        primitive.NewObjectID(),
		UserID:    entry.UserID,
		Action:    string(entry.Action),
		VideoID:   entry.VideoID,
		Details:   entry.Details,
		Timestamp: entry.Timestamp,
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	entry.ID = doc.ID.Hex()
	return nil
}
