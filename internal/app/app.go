package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog"

	"github.com/jun/vidkeeper/internal/adapter"
	"github.com/jun/vidkeeper/internal/adapter/memory"
	"github.com/jun/vidkeeper/internal/adapter/youtube"
	"github.com/jun/vidkeeper/internal/auth"
	"github.com/jun/vidkeeper/internal/config"
	"github.com/jun/vidkeeper/internal/crypto"
	"github.com/jun/vidkeeper/internal/eventlog"
	"github.com/jun/vidkeeper/internal/handler"
	"github.com/jun/vidkeeper/internal/secret"
	"github.com/jun/vidkeeper/internal/session"
	"github.com/jun/vidkeeper/internal/store"
	"github.com/jun/vidkeeper/internal/store/dynamo"
	"github.com/jun/vidkeeper/internal/store/mongodb"
)

const devJWTSecret = "default-dev-secret"

// HybridProvider sends demo sessions to the in-memory channel and everyone else to YouTube.
type HybridProvider struct {
	youtubeProvider adapter.ContentProvider
	memoryProvider  adapter.ContentProvider
}

func (h *HybridProvider) ForToken(ctx context.Context, accessToken string) (adapter.ContentClient, error) {
	if accessToken == handler.DemoAccessToken {
		return h.memoryProvider.ForToken(ctx, accessToken)
	}
	return h.youtubeProvider.ForToken(ctx, accessToken)
}

// Deps are the collaborators the router is assembled from.
type Deps struct {
	Sessions         handler.Sessions
	Flow             handler.LoginFlow
	Provider         adapter.ContentProvider
	Notes            store.NoteStore
	Events           store.EventStore
	APIGatewaySecret string
}

// App holds the dependencies for the Lambda function and the local server.
type App struct {
	logger zerolog.Logger

	authHandler    *handler.AuthHandler
	videoHandler   *handler.VideoHandler
	commentHandler *handler.CommentHandler
	noteHandler    *handler.NoteHandler

	devMode          bool
	frontendURL      string
	apiGatewaySecret string

	closers []func(context.Context) error
}

// NewApp builds the production or dev-mode wiring described by cfg.
func NewApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var resolver secret.Resolver
	var encryptor crypto.Encryptor
	if cfg.DevMode {
		resolver = secret.NewEnvResolver()
		encryptor = crypto.NewMockEncryptor()
		logger.Info().Msg("dev mode: env secrets, mock encryptor, demo login enabled")
	} else {
		resolver = secret.NewSSMResolver(ssm.NewFromConfig(awsCfg))
		encryptor = crypto.NewKMSEncryptor(kms.NewFromConfig(awsCfg), cfg.KMSKeyID)
	}

	secrets, err := secret.Load(ctx, resolver, secret.Names{
		GoogleClientSecret: cfg.Google.ClientSecretParam,
		JWTSecret:          cfg.JWTSecretParam,
		APIGatewaySecret:   cfg.APIGatewaySecretParam,
	}, !cfg.DevMode)
	if err != nil {
		if !cfg.DevMode {
			return nil, err
		}
		logger.Warn().Err(err).Msg("some secrets are unset")
	}
	if secrets.JWTSecret == "" {
		secrets.JWTSecret = devJWTSecret
	}

	var provider adapter.ContentProvider = youtube.NewProvider()
	if cfg.DevMode {
		provider = &HybridProvider{
			youtubeProvider: provider,
			memoryProvider:  memory.NewProvider(demoChannel(cfg.VideoID)),
		}
	}

	a := &App{}
	var notes store.NoteStore
	var events store.EventStore
	switch cfg.StoreType {
	case config.StoreMongoDB:
		db, err := mongodb.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		notes, events = db.Notes(), db.Events()
	case config.StoreDynamoDB:
		client := dynamodb.NewFromConfig(awsCfg)
		notes = dynamo.NewNoteStore(client, cfg.Dynamo.NotesTable)
		events = dynamo.NewEventStore(client, cfg.Dynamo.EventLogTable)
	case config.StoreMemory:
		notes = dynamo.NewNoteStore(nil, cfg.Dynamo.NotesTable)
		events = dynamo.NewEventStore(nil, cfg.Dynamo.EventLogTable)
	default:
		return nil, fmt.Errorf("unknown store type %q", cfg.StoreType)
	}
	logger.Info().Str("store", cfg.StoreType).Str("video_id", cfg.VideoID).Msg("store selected")

	flow := auth.NewAuthService(auth.NewOAuthConfig(cfg.Google.ClientID, secrets.GoogleClientSecret, cfg.RedirectURL()))

	a.assemble(cfg, Deps{
		Sessions:         session.NewManager(secrets.JWTSecret, encryptor, cfg.SessionTTL),
		Flow:             flow,
		Provider:         provider,
		Notes:            notes,
		Events:           events,
		APIGatewaySecret: secrets.APIGatewaySecret,
	}, logger)
	return a, nil
}

// New assembles an App from explicit dependencies.
func New(cfg *config.Config, d Deps, logger zerolog.Logger) *App {
	a := &App{}
	a.assemble(cfg, d, logger)
	return a
}

func (a *App) assemble(cfg *config.Config, d Deps, logger zerolog.Logger) {
	recorder := eventlog.NewRecorder(d.Events)

	a.logger = logger
	a.devMode = cfg.DevMode
	a.frontendURL = cfg.FrontendURL
	a.apiGatewaySecret = d.APIGatewaySecret

	a.authHandler = handler.NewAuthHandler(d.Flow, d.Sessions, cfg.FrontendURL, cfg.DevMode)
	a.videoHandler = handler.NewVideoHandler(d.Sessions, d.Provider, recorder, cfg.VideoID)
	a.commentHandler = handler.NewCommentHandler(d.Sessions, d.Provider, recorder, cfg.VideoID)
	a.noteHandler = handler.NewNoteHandler(d.Sessions, d.Notes, recorder, cfg.VideoID)
}

// Close releases store connections.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c(ctx))
	}
	return errors.Join(errs...)
}

// demoChannel seeds the in-memory channel used by demo sessions.
func demoChannel(videoID string) *memory.Channel {
	ch := memory.NewChannel("UC-demo-channel", "Demo User")
	ch.AddVideo(adapter.Video{
		ID:          videoID,
		Title:       "Demo video",
		Description: "A stand-in for the managed video. Edits stay in this process.",
		CategoryID:  "22",
		Tags:        []string{"demo"},
		PublishedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	return ch
}

// HandleRequest routes API Gateway requests to the appropriate handler.
func (a *App) HandleRequest(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	started := time.Now()
	method := req.HTTPMethod
	// Strip /api prefix if present (for CloudFront proxying)
	path := strings.TrimPrefix(req.Path, "/api")
	if path == "" {
		path = "/"
	}

	log := a.logger.With().
		Str("method", method).
		Str("path", path).
		Str("request_id", req.RequestContext.RequestID).
		Logger()
	ctx = log.WithContext(ctx)

	resp := a.route(ctx, method, path, req)

	log.Info().
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(started)).
		Msg("request")

	return a.corsResponse(resp), nil
}

func (a *App) route(ctx context.Context, method, path string, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	if method == http.MethodOptions {
		return events.APIGatewayProxyResponse{StatusCode: http.StatusNoContent}
	}

	// Only CloudFront knows the origin secret.
	if !a.devMode && header(req.Headers, "X-Origin-Verify") != a.apiGatewaySecret {
		zerolog.Ctx(ctx).Warn().Msg("missing or invalid X-Origin-Verify header")
		return jsonError(http.StatusForbidden, "Forbidden")
	}

	if req.PathParameters == nil {
		req.PathParameters = make(map[string]string)
	}

	switch {
	case method == http.MethodGet && path == "/auth/login":
		return must(ctx)(a.authHandler.Login(ctx, req))
	case method == http.MethodGet && path == "/auth/callback":
		return must(ctx)(a.authHandler.Callback(ctx, req))
	case method == http.MethodGet && path == "/auth/demo-login":
		return must(ctx)(a.authHandler.DemoLogin(ctx, req))
	case method == http.MethodPost && path == "/auth/logout":
		return must(ctx)(a.authHandler.Logout(ctx, req))
	case method == http.MethodGet && path == "/auth/user":
		return must(ctx)(a.authHandler.GetUser(ctx, req))

	case method == http.MethodGet && path == "/video":
		return must(ctx)(a.videoHandler.GetVideo(ctx, req))
	case method == http.MethodPut && path == "/video/update":
		return must(ctx)(a.videoHandler.UpdateVideo(ctx, req))
	case method == http.MethodGet && path == "/channel":
		return must(ctx)(a.videoHandler.GetChannel(ctx, req))

	case method == http.MethodGet && path == "/comments":
		return must(ctx)(a.commentHandler.ListComments(ctx, req))
	case method == http.MethodPost && path == "/comments":
		return must(ctx)(a.commentHandler.AddComment(ctx, req))
	case method == http.MethodDelete && strings.HasPrefix(path, "/comments/"):
		req.PathParameters["id"] = trailingID(path, "/comments/")
		return must(ctx)(a.commentHandler.DeleteComment(ctx, req))

	case method == http.MethodGet && path == "/notes":
		return must(ctx)(a.noteHandler.ListNotes(ctx, req))
	case method == http.MethodPost && path == "/notes":
		return must(ctx)(a.noteHandler.CreateNote(ctx, req))
	case method == http.MethodDelete && strings.HasPrefix(path, "/notes/"):
		req.PathParameters["id"] = trailingID(path, "/notes/")
		return must(ctx)(a.noteHandler.DeleteNote(ctx, req))
	}

	return jsonError(http.StatusNotFound, fmt.Sprintf("Not Found: %s %s", method, path))
}

// trailingID returns the single path segment after prefix, or "" when there is none or more than one.
func trailingID(path, prefix string) string {
	id := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}

// corsResponse adds CORS headers to an API Gateway response.
func (a *App) corsResponse(resp events.APIGatewayProxyResponse) events.APIGatewayProxyResponse {
	if resp.Headers == nil {
		resp.Headers = make(map[string]string)
	}
	resp.Headers["Access-Control-Allow-Origin"] = a.frontendURL
	resp.Headers["Access-Control-Allow-Credentials"] = "true"
	resp.Headers["Access-Control-Allow-Methods"] = "GET,POST,PUT,DELETE,OPTIONS"
	resp.Headers["Access-Control-Allow-Headers"] = "Content-Type,Authorization"
	return resp
}

// must turns a handler error into a logged 500.
func must(ctx context.Context) func(events.APIGatewayProxyResponse, error) events.APIGatewayProxyResponse {
	return func(resp events.APIGatewayProxyResponse, err error) events.APIGatewayProxyResponse {
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("handler error")
			return jsonError(http.StatusInternalServerError, "Internal Server Error")
		}
		return resp
	}
}

func jsonError(status int, msg string) events.APIGatewayProxyResponse {
	body, _ := json.Marshal(map[string]string{"error": msg})
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Body:       string(body),
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

func header(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}
