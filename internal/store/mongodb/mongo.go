// Package mongodb stores notes and audit entries in MongoDB collections named notes and eventlogs.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	notesCollection  = "notes"
	eventsCollection = "eventlogs"

	pingTries = 5
)

// DB owns the client and hands out the collection-backed stores.
type DB struct {
	client   *mongo.Client
	database *mongo.Database
}

// Connect dials uri and pings the primary, retrying with exponential backoff.
func Connect(ctx context.Context, uri, database string) (*DB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetAppName("vidkeeper"))
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
			log.Warn().Err(err).Msg("mongo ping failed")
			return struct{}{}, err
		}
		return struct{}{}, nil
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(pingTries))
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to reach mongo: %w", err)
	}

	return &DB{client: client, database: client.Database(database)}, nil
}

// Notes returns the note store.
func (db *DB) Notes() *NoteStore {
	return &NoteStore{coll: db.database.Collection(notesCollection)}
}

// Events returns the event log store.
func (db *DB) Events() *EventStore {
	return &EventStore{coll: db.database.Collection(eventsCollection)}
}

// Close disconnects the client.
func (db *DB) Close(ctx context.Context) error {
	return db.client.Disconnect(ctx)
}
