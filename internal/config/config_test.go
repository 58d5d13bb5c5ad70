package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	t.Setenv("YOUTUBE_VIDEO_ID", "dQw4w9WgXcQ")
	t.Setenv("GOOGLE_CLIENT_ID", "client-id")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")

	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.False(t, cfg.DevMode)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "http://localhost:3000", cfg.FrontendURL)
	assert.Equal(t, "/vidkeeper/google-client-secret", cfg.Google.ClientSecretParam)
	assert.Equal(t, "/vidkeeper/jwt-secret", cfg.JWTSecretParam)
	assert.Equal(t, "alias/vidkeeper-session-key", cfg.KMSKeyID)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, StoreMongoDB, cfg.StoreType)
	assert.Equal(t, "vidkeeper", cfg.Mongo.Database)
	assert.Equal(t, "Notes", cfg.Dynamo.NotesTable)
	assert.Equal(t, "EventLogs", cfg.Dynamo.EventLogTable)
	assert.Equal(t, "http://localhost:3000/api/auth/callback", cfg.RedirectURL())
}

func TestParse_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("YOUTUBE_VIDEO_ID", "from-env")
	t.Setenv("STORE_TYPE", "memory")
	t.Setenv("DEV_MODE", "true")

	cfg, err := Parse([]string{"--video-id=from-flag", "--session-ttl=2h"})
	require.NoError(t, err)
	assert.Equal(t, "from-flag", cfg.VideoID)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, StoreMemory, cfg.StoreType)
	assert.Equal(t, "http://localhost:8080/auth/callback", cfg.RedirectURL())
}

func TestParse_Invalid(t *testing.T) {
	t.Setenv("STORE_TYPE", "mongodb")

	_, err := Parse(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YOUTUBE_VIDEO_ID")
	assert.Contains(t, err.Error(), "GOOGLE_CLIENT_ID")
	assert.Contains(t, err.Error(), "MONGODB_URI")
}

func TestParse_UnknownStore(t *testing.T) {
	t.Setenv("YOUTUBE_VIDEO_ID", "v")
	t.Setenv("STORE_TYPE", "postgres")
	t.Setenv("DEV_MODE", "true")

	_, err := Parse(nil)
	require.Error(t, err)
}

func TestRedirectURL_Explicit(t *testing.T) {
	cfg := Config{Google: GoogleFlags{RedirectURL: "https://app.example.com/api/auth/callback"}}
	assert.Equal(t, "https://app.example.com/api/auth/callback", cfg.RedirectURL())
}
