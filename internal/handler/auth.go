package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jun/vidkeeper/internal/model"
	"github.com/jun/vidkeeper/internal/session"
)

const (
	stateCookie = "oauth_state"
	stateMaxAge = 600

	// DemoAccessToken is the delegated token carried by demo sessions. Only the in-memory
	// content provider accepts it.
	DemoAccessToken = "demo-access-token"
)

// LoginFlow is the identity provider side of login. *auth.AuthService implements it.
type LoginFlow interface {
	GenerateAuthURL(state string) string
	CompleteLogin(ctx context.Context, code string) (*model.Session, error)
}

// AuthHandler handles login, logout and the current-user lookup.
type AuthHandler struct {
	flow        LoginFlow
	sessions    Sessions
	frontendURL string
	devMode     bool
}

// NewAuthHandler creates a new AuthHandler. devMode enables the demo login and relaxes the
// cookie SameSite policy to Lax.
func NewAuthHandler(flow LoginFlow, sessions Sessions, frontendURL string, devMode bool) *AuthHandler {
	return &AuthHandler{
		flow:        flow,
		sessions:    sessions,
		frontendURL: strings.TrimSuffix(frontendURL, "/"),
		devMode:     devMode,
	}
}

// Login redirects to the provider's consent page with a fresh state bound to a cookie.
func (h *AuthHandler) Login(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	state := uuid.NewString()
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusFound,
		Headers: map[string]string{
			"Location": h.flow.GenerateAuthURL(state),
		},
		MultiValueHeaders: map[string][]string{
			"Set-Cookie": {h.cookie(stateCookie, state, stateMaxAge, http.SameSiteLaxMode)},
		},
	}, nil
}

// Callback completes the code exchange and issues the session cookie.
func (h *AuthHandler) Callback(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	q := req.QueryStringParameters
	if reason := q["error"]; reason != "" {
		zerolog.Ctx(ctx).Info().Str("reason", reason).Msg("login declined")
		return errorResponse(http.StatusBadRequest, "Login was not authorized"), nil
	}
	code := q["code"]
	if code == "" {
		return errorResponse(http.StatusBadRequest, "Missing code"), nil
	}
	state := cookieValue(req, stateCookie)
	if state == "" || q["state"] != state {
		return errorResponse(http.StatusBadRequest, "Invalid state"), nil
	}

	s, err := h.flow.CompleteLogin(ctx, code)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("login failed")
		return errorResponse(http.StatusInternalServerError, "Failed to complete login"), nil
	}
	if s.RefreshToken == "" {
		zerolog.Ctx(ctx).Warn().Str("user_id", s.UserID).Msg("provider returned no refresh token")
	}

	return h.startSession(ctx, *s)
}

// DemoLogin issues a session for a throwaway user without the provider. Dev mode only.
func (h *AuthHandler) DemoLogin(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if !h.devMode {
		return errorResponse(http.StatusNotFound, "Not found"), nil
	}
	return h.startSession(ctx, model.Session{
		UserID:      "demo-user-" + uuid.NewString(),
		Email:       "demo@vidkeeper.local",
		Name:        "Demo User",
		AccessToken: DemoAccessToken,
	})
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	resp := jsonResponse(http.StatusOK, map[string]any{"success": true})
	resp.MultiValueHeaders = map[string][]string{
		"Set-Cookie": {h.cookie(session.CookieName, "", -1, h.sameSite())},
	}
	return resp, nil
}

// GetUser returns the identity carried by the session.
func (h *AuthHandler) GetUser(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	ctx, s, err := authenticate(ctx, h.sessions, req, false)
	if err != nil {
		return unauthorized(ctx, err), nil
	}
	return jsonResponse(http.StatusOK, map[string]any{
		"success": true,
		"user":    s,
	}), nil
}

func (h *AuthHandler) startSession(ctx context.Context, s model.Session) (events.APIGatewayProxyResponse, error) {
	token, err := h.sessions.Issue(ctx, s)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("user_id", s.UserID).Msg("failed to issue session")
		return errorResponse(http.StatusInternalServerError, "Failed to sign session"), nil
	}
	zerolog.Ctx(ctx).Info().Str("user_id", s.UserID).Msg("session started")

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusFound,
		Headers: map[string]string{
			"Location": h.frontendURL + "/?success=true",
		},
		MultiValueHeaders: map[string][]string{
			"Set-Cookie": {
				h.cookie(session.CookieName, token, int(h.sessions.TTL().Seconds()), h.sameSite()),
				h.cookie(stateCookie, "", -1, http.SameSiteLaxMode),
			},
		},
	}, nil
}

// sameSite is None in production, where the API is reached through a separate origin.
func (h *AuthHandler) sameSite() http.SameSite {
	if h.devMode {
		return http.SameSiteLaxMode
	}
	return http.SameSiteNoneMode
}

// cookie formats a Set-Cookie value. A negative maxAge deletes the cookie.
func (h *AuthHandler) cookie(name, value string, maxAge int, sameSite http.SameSite) string {
	c := http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: sameSite,
	}
	return c.String()
}
