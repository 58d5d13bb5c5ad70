package adapter

import (
	"context"
)

// ContentProvider defines how to get a ContentClient for a delegated access token.
type ContentProvider interface {
	// ForToken returns a ContentClient acting with the given access token.
	ForToken(ctx context.Context, accessToken string) (ContentClient, error)
}
