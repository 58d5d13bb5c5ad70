// Package config holds the service settings, read from flags and environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alecthomas/kong"
)

const (
	StoreMongoDB  = "mongodb"
	StoreDynamoDB = "dynamodb"
	StoreMemory   = "memory"
)

type Config struct {
	DevMode     bool   `help:"development mode: in-memory channel, env secrets, demo login, no origin check" env:"DEV_MODE"`
	ListenAddr  string `help:"local HTTP listen address" default:":8080" env:"LISTEN_ADDR"`
	FrontendURL string `help:"frontend origin for redirects and CORS" default:"http://localhost:3000" env:"FRONTEND_URL"`

	Google GoogleFlags `embed:"" prefix:"google-"`

	JWTSecretParam        string        `help:"secret name of the session signing key" default:"/vidkeeper/jwt-secret" env:"JWT_SECRET_PARAM"`
	APIGatewaySecretParam string        `help:"secret name of the origin verification value" default:"/vidkeeper/api-gateway-secret" env:"API_GATEWAY_SECRET_PARAM"`
	KMSKeyID              string        `help:"KMS key sealing refresh tokens" default:"alias/vidkeeper-session-key" env:"KMS_KEY_ID"`
	SessionTTL            time.Duration `help:"session lifetime" default:"24h" env:"SESSION_TTL"`

	VideoID string `help:"the video this deployment manages" env:"YOUTUBE_VIDEO_ID"`

	StoreType string      `help:"note store backend" default:"mongodb" env:"STORE_TYPE" enum:"mongodb,dynamodb,memory"`
	Mongo     MongoFlags  `embed:"" prefix:"mongodb-"`
	Dynamo    DynamoFlags `embed:"" prefix:"dynamodb-"`
}

type GoogleFlags struct {
	ClientID          string `help:"OAuth client id" env:"GOOGLE_CLIENT_ID"`
	ClientSecretParam string `help:"secret name of the OAuth client secret" default:"/vidkeeper/google-client-secret" env:"GOOGLE_CLIENT_SECRET_PARAM"`
	RedirectURL       string `help:"OAuth callback URL (derived when empty)" env:"GOOGLE_REDIRECT_URL"`
}

type MongoFlags struct {
	URI      string `help:"MongoDB connection string" env:"MONGODB_URI"`
	Database string `help:"MongoDB database" default:"vidkeeper" env:"MONGODB_DATABASE"`
}

type DynamoFlags struct {
	NotesTable    string `help:"notes table" default:"Notes" env:"NOTES_TABLE"`
	EventLogTable string `help:"event log table" default:"EventLogs" env:"EVENT_LOG_TABLE"`
}

// Validate is called by kong after parsing.
func (c *Config) Validate() error {
	var errs []error
	if c.VideoID == "" {
		errs = append(errs, errors.New("YOUTUBE_VIDEO_ID is required"))
	}
	if !c.DevMode && c.Google.ClientID == "" {
		errs = append(errs, errors.New("GOOGLE_CLIENT_ID is required outside dev mode"))
	}
	if c.StoreType == StoreMongoDB && c.Mongo.URI == "" {
		errs = append(errs, errors.New("MONGODB_URI is required for the mongodb store"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL))
	}
	return errors.Join(errs...)
}

// RedirectURL returns the OAuth callback URL, derived from the listen address in dev mode
// and from the frontend URL otherwise.
func (c *Config) RedirectURL() string {
	if c.Google.RedirectURL != "" {
		return c.Google.RedirectURL
	}
	if c.DevMode {
		host := c.ListenAddr
		if strings.HasPrefix(host, ":") {
			host = "localhost" + host
		}
		return "http://" + host + "/auth/callback"
	}
	return strings.TrimSuffix(c.FrontendURL, "/") + "/api/auth/callback"
}

// Parse reads args and the environment into a validated Config.
func Parse(args []string, options ...kong.Option) (*Config, error) {
	var cfg Config
	options = append([]kong.Option{
		kong.Name("vidkeeper"),
		kong.Description("Companion service for managing one YouTube video."),
	}, options...)
	parser, err := kong.New(&cfg, options...)
	if err != nil {
		return nil, err
	}
	if _, err := parser.Parse(args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
