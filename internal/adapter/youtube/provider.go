package youtube

import (
	"context"
	"fmt"

	"github.com/jun/vidkeeper/internal/adapter"
	"google.golang.org/api/option"
)

// Provider implements adapter.ContentProvider for the YouTube Data API.
type Provider struct {
	opts []option.ClientOption
}

// NewProvider creates a new YouTube provider. The options are appended to every client it
// builds, which lets tests point the clients at a local endpoint.
func NewProvider(opts ...option.ClientOption) *Provider {
	return &Provider{opts: opts}
}

// ForToken returns a Client acting with the given access token.
func (p *Provider) ForToken(ctx context.Context, accessToken string) (adapter.ContentClient, error) {
	client, err := NewClient(ctx, accessToken, p.opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube client: %w", err)
	}
	return client, nil
}
