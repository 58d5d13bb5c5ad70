package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jun/vidkeeper/internal/model"
	"github.com/jun/vidkeeper/internal/store"
)

type noteDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"userId"`
	VideoID   string             `bson:"videoId"`
	Content   string             `bson:"content"`
	Tags      []string           `bson:"tags"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d noteDoc) toModel() model.Note {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return model.Note{
		ID:        d.ID.Hex(),
		UserID:    d.UserID,
		VideoID:   d.VideoID,
		Content:   d.Content,
		Tags:      tags,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

// NoteStore is backed by the notes collection.
type NoteStore struct {
	coll *mongo.Collection
}

var _ store.NoteStore = (*NoteStore)(nil)

func (s *NoteStore) Create(ctx context.Context, note *model.Note) error {
	// Mongo stores milliseconds; truncate so the returned note matches what a later read sees.
	now := time.Now().UTC().Truncate(time.Millisecond)
	if note.Tags == nil {
		note.Tags = []string{}
	}
	doc := noteDoc{
		ID:        primitive.NewObjectID(),
		UserID:    note.UserID,
		VideoID:   note.VideoID,
		Content:   note.Content,
		Tags:      note.Tags,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}
	note.ID = doc.ID.Hex()
	note.CreatedAt = now
	note.UpdatedAt = now
	return nil
}

func (s *NoteStore) List(ctx context.Context, userID, videoID string, filter store.NoteFilter) ([]model.Note, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.coll.Find(ctx, listFilter(userID, videoID, filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	var docs []noteDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode notes: %w", err)
	}
	notes := make([]model.Note, 0, len(docs))
	for _, d := range docs {
		notes = append(notes, d.toModel())
	}
	return notes, nil
}

func (s *NoteStore) Tags(ctx context.Context, userID, videoID string) ([]string, error) {
	values, err := s.coll.Distinct(ctx, "tags", ownerFilter(userID, videoID))
	if err != nil {
		return nil, fmt.Errorf("failed to collect tags: %w", err)
	}
	tags := make([]string, 0, len(values))
	for _, v := range values {
		if t, ok := v.(string); ok {
			tags = append(tags, t)
		}
	}
	sort.Strings(tags)
	return tags, nil
}

func (s *NoteStore) Delete(ctx context.Context, userID, noteID string) error {
	oid, err := primitive.ObjectIDFromHex(noteID)
	if err != nil {
		return store.ErrNotFound
	}
	err = s.coll.FindOneAndDelete(ctx, bson.D{
		{Key: "_id", Value: oid},
		{Key: "userId", Value: userID},
	}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return nil
}

func ownerFilter(userID, videoID string) bson.D {
	return bson.D{
		{Key: "userId", Value: userID},
		{Key: "videoId", Value: videoID},
	}
}

func listFilter(userID, videoID string, filter store.NoteFilter) bson.D {
	f := ownerFilter(userID, videoID)
	if filter.Search != "" {
		f = append(f, bson.E{Key: "content", Value: primitive.Regex{
			Pattern: regexp.QuoteMeta(filter.Search),
			Options: "i",
		}})
	}
	if len(filter.Tags) > 0 {
		f = append(f, bson.E{Key: "tags", Value: bson.D{{Key: "$in", Value: filter.Tags}}})
	}
	return f
}
