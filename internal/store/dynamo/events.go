package dynamo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/uuid"

	"github.com/jun/vidkeeper/internal/model"
	"github.com/jun/vidkeeper/internal/store"
)

// EventStore appends audit entries to a table keyed by id.
type EventStore struct {
	client    *dynamodb.Client
	tableName string

	mu      sync.Mutex
	entries []model.EventLogEntry
}

var _ store.EventStore = (*EventStore)(nil)

// NewEventStore returns an event store backed by client, or by process memory when client is nil.
func NewEventStore(client *dynamodb.Client, tableName string) *EventStore {
	return &EventStore{client: client, tableName: tableName}
}

func (s *EventStore) Append(ctx context.Context, entry *model.EventLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	if s.client == nil {
		s.mu.Lock()
		s.entries = append(s.entries, *entry)
		s.mu.Unlock()
		return nil
	}

	item, err := attributevalue.MarshalMap(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("failed to put event: %w", err)
	}
	return nil
}

// Entries returns a copy of the entries held in memory. It is empty for a DynamoDB-backed store.
func (s *EventStore) Entries() []model.EventLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.EventLogEntry(nil), s.entries...)
}
