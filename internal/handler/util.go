package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog"

	"github.com/jun/vidkeeper/internal/adapter"
	"github.com/jun/vidkeeper/internal/model"
	"github.com/jun/vidkeeper/internal/store"
)

// Sessions issues and validates session tokens. *session.Manager implements it.
type Sessions interface {
	Issue(ctx context.Context, s model.Session) (string, error)
	FromHeaders(ctx context.Context, headers map[string]string) (*model.Session, error)
	TTL() time.Duration
}

var (
	errUnauthenticated = errors.New("unauthenticated")
	errNoAccessToken   = errors.New("session has no access token")
)

const (
	msgUnauthorized  = "Unauthorized"
	msgTokenRejected = "Access token expired or revoked, please sign in again"
	msgInvalidBody   = "Invalid request body"
)

// authenticate validates the request's session and returns a context whose logger carries the
// user id. withAccessToken additionally requires delegated provider credentials.
func authenticate(ctx context.Context, sessions Sessions, req events.APIGatewayProxyRequest, withAccessToken bool) (context.Context, *model.Session, error) {
	s, err := sessions.FromHeaders(ctx, req.Headers)
	if err != nil {
		return ctx, nil, fmt.Errorf("%w: %v", errUnauthenticated, err)
	}
	if withAccessToken && s.AccessToken == "" {
		return ctx, nil, fmt.Errorf("%w: %v", errUnauthenticated, errNoAccessToken)
	}
	ctx = zerolog.Ctx(ctx).With().Str("user_id", s.UserID).Logger().WithContext(ctx)
	return ctx, s, nil
}

// failure maps err onto the error taxonomy. notFound is the message for a missing resource;
// internal is the generic message shown when the cause must stay in the log.
func failure(ctx context.Context, err error, notFound, internal string) events.APIGatewayProxyResponse {
	log := zerolog.Ctx(ctx)
	switch {
	case errors.Is(err, errUnauthenticated):
		return unauthorized(ctx, err)
	case errors.Is(err, adapter.ErrUnauthorized):
		log.Warn().Err(err).Msg("provider rejected access token")
		return errorResponse(http.StatusUnauthorized, msgTokenRejected)
	case errors.Is(err, adapter.ErrNotFound), errors.Is(err, store.ErrNotFound):
		log.Info().Err(err).Msg("resource not found")
		return errorResponse(http.StatusNotFound, notFound)
	default:
		log.Error().Err(err).Msg(internal)
		return errorResponse(http.StatusInternalServerError, internal)
	}
}

func unauthorized(ctx context.Context, err error) events.APIGatewayProxyResponse {
	zerolog.Ctx(ctx).Debug().Err(err).Msg("rejected request")
	return errorResponse(http.StatusUnauthorized, msgUnauthorized)
}

func errorResponse(status int, msg string) events.APIGatewayProxyResponse {
	return jsonResponse(status, map[string]string{"error": msg})
}

func jsonResponse(status int, body any) events.APIGatewayProxyResponse {
	b, err := json.Marshal(body)
	if err != nil {
		status = http.StatusInternalServerError
		b = []byte(`{"error":"Internal Server Error"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Body:       string(b),
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}
}

// decodeBody unmarshals a JSON body. An empty body decodes to the zero value.
func decodeBody(req events.APIGatewayProxyRequest, dst any) error {
	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return err
		}
		body = decoded
	}
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, dst)
}

// cookieValue returns the named cookie from the request's Cookie header.
func cookieValue(req events.APIGatewayProxyRequest, name string) string {
	h := http.Header{}
	for k, v := range req.Headers {
		if http.CanonicalHeaderKey(k) == "Cookie" {
			h.Add("Cookie", v)
		}
	}
	for _, v := range req.MultiValueHeaders["Cookie"] {
		h.Add("Cookie", v)
	}
	r := http.Request{Header: h}
	if c, err := r.Cookie(name); err == nil {
		return c.Value
	}
	return ""
}
