package main

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/jun/vidkeeper/internal/app"
	"github.com/jun/vidkeeper/internal/config"
	"github.com/jun/vidkeeper/internal/logger"
)

const maxBodyBytes = 1 << 20

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		l := logger.Setup(true)
		l.Warn().Err(err).Msg("failed to read .env")
	}

	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		l := logger.Setup(true)
		l.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.Setup(cfg.DevMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.NewApp(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialise app")
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           newRouter(application, log),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Bool("dev_mode", cfg.DevMode).Msg("starting local server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if err := application.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to close app")
	}
}

func newRouter(application *app.App, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.HandleFunc("/*", func(w http.ResponseWriter, r *http.Request) {
		req, err := toProxyRequest(r)
		if err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		resp, err := application.HandleRequest(r.Context(), req)
		if err != nil {
			log.Error().Err(err).Msg("handler failed")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		writeProxyResponse(w, resp)
	})

	return r
}

// toProxyRequest converts a local HTTP request into the API Gateway shape the app routes on.
func toProxyRequest(r *http.Request) (events.APIGatewayProxyRequest, error) {
	body, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err != nil {
		return events.APIGatewayProxyRequest{}, err
	}

	headers := make(map[string]string, len(r.Header))
	for k, v := range r.Header {
		headers[k] = v[0]
	}
	// Go moves Host out of the header map.
	headers["Host"] = r.Host

	query := make(map[string]string)
	for k, v := range r.URL.Query() {
		query[k] = v[0]
	}

	req := events.APIGatewayProxyRequest{
		Path:                            r.URL.Path,
		HTTPMethod:                      r.Method,
		Headers:                         headers,
		MultiValueHeaders:               r.Header,
		QueryStringParameters:           query,
		MultiValueQueryStringParameters: r.URL.Query(),
		RequestContext: events.APIGatewayProxyRequestContext{
			RequestID: middleware.GetReqID(r.Context()),
			Identity:  events.APIGatewayRequestIdentity{SourceIP: r.RemoteAddr},
		},
	}
	if utf8.Valid(body) {
		req.Body = string(body)
	} else {
		req.Body = base64.StdEncoding.EncodeToString(body)
		req.IsBase64Encoded = true
	}
	return req, nil
}

func writeProxyResponse(w http.ResponseWriter, resp events.APIGatewayProxyResponse) {
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	for k, vs := range resp.MultiValueHeaders {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}

	body := []byte(resp.Body)
	if resp.IsBase64Encoded {
		if decoded, err := base64.StdEncoding.DecodeString(resp.Body); err == nil {
			body = decoded
		}
	}

	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(body)
}
