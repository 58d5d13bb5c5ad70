// Package dynamo stores notes and audit entries in DynamoDB. A store built with a nil client
// keeps everything in process, which is what dev mode and the handler tests run against.
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/jun/vidkeeper/internal/model"
	"github.com/jun/vidkeeper/internal/store"
)

// NoteStore keeps notes in a table partitioned by user_id with id as the sort key.
type NoteStore struct {
	client    *dynamodb.Client
	tableName string

	// In-memory fallback, keyed by user then note id.
	mu    sync.RWMutex
	notes map[string]map[string]model.Note

	now func() time.Time
}

var _ store.NoteStore = (*NoteStore)(nil)

// NewNoteStore returns a store backed by client, or by process memory when client is nil.
func NewNoteStore(client *dynamodb.Client, tableName string) *NoteStore {
	return &NoteStore{
		client:    client,
		tableName: tableName,
		notes:     make(map[string]map[string]model.Note),
		now:       time.Now,
	}
}

func (s *NoteStore) Create(ctx context.Context, note *model.Note) error {
	now := s.now().UTC()
	note.ID = uuid.NewString()
	note.CreatedAt = now
	note.UpdatedAt = now
	if note.Tags == nil {
		note.Tags = []string{}
	}

	if s.client == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.notes[note.UserID] == nil {
			s.notes[note.UserID] = make(map[string]model.Note)
		}
		stored := *note
		stored.Tags = append([]string{}, note.Tags...)
		s.notes[note.UserID][note.ID] = stored
		return nil
	}

	item, err := attributevalue.MarshalMap(note)
	if err != nil {
		return fmt.Errorf("failed to marshal note: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return fmt.Errorf("failed to put note: %w", err)
	}
	return nil
}

func (s *NoteStore) List(ctx context.Context, userID, videoID string, filter store.NoteFilter) ([]model.Note, error) {
	all, err := s.forVideo(ctx, userID, videoID)
	if err != nil {
		return nil, err
	}
	out := make([]model.Note, 0, len(all))
	for _, n := range all {
		if filter.Matches(n) {
			out = append(out, n)
		}
	}
	store.SortNewestFirst(out)
	return out, nil
}

func (s *NoteStore) Tags(ctx context.Context, userID, videoID string) ([]string, error) {
	all, err := s.forVideo(ctx, userID, videoID)
	if err != nil {
		return nil, err
	}
	return store.UniqueTags(all), nil
}

func (s *NoteStore) Delete(ctx context.Context, userID, noteID string) error {
	if s.client == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.notes[userID][noteID]; !ok {
			return store.ErrNotFound
		}
		delete(s.notes[userID], noteID)
		return nil
	}

	// The key includes user_id, so another user's id never matches.
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"user_id": &types.AttributeValueMemberS{Value: userID},
			"id":      &types.AttributeValueMemberS{Value: noteID},
		},
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return store.ErrNotFound
		}
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return nil
}

// forVideo loads every note the user wrote for a video, unordered.
func (s *NoteStore) forVideo(ctx context.Context, userID, videoID string) ([]model.Note, error) {
	if s.client == nil {
		s.mu.RLock()
		defer s.mu.RUnlock()
		var out []model.Note
		for _, n := range s.notes[userID] {
			if n.VideoID == videoID {
				n.Tags = append([]string{}, n.Tags...)
				out = append(out, n)
			}
		}
		return out, nil
	}

	var out []model.Note
	p := dynamodb.NewQueryPaginator(s.client, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("user_id = :uid"),
		FilterExpression:       aws.String("video_id = :vid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
			":vid": &types.AttributeValueMemberS{Value: videoID},
		},
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query notes: %w", err)
		}
		var notes []model.Note
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &notes); err != nil {
			return nil, fmt.Errorf("failed to unmarshal notes: %w", err)
		}
		out = append(out, notes...)
	}
	return out, nil
}
