// Package session issues and validates the signed session token that carries a user's
// identity and delegated provider credentials between requests.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jun/vidkeeper/internal/crypto"
	"github.com/jun/vidkeeper/internal/model"
)

const (
	// CookieName is the cookie carrying the session token.
	CookieName = "session_token"

	// DefaultTTL is the session lifetime when none is configured.
	DefaultTTL = 24 * time.Hour

	claimsVersion = 1
)

var (
	ErrNoToken      = errors.New("no session token")
	ErrInvalidToken = errors.New("invalid session token")
)

// Claims is the JWT payload. The refresh token is sealed by the configured Encryptor.
type Claims struct {
	Version           int    `json:"ver"`
	Email             string `json:"email,omitempty"`
	Name              string `json:"name,omitempty"`
	AccessToken       string `json:"at,omitempty"`
	RefreshToken      string `json:"rt,omitempty"`
	AccessTokenExpiry int64  `json:"ate,omitempty"`
	jwt.RegisteredClaims
}

// Manager signs and verifies HS256 session tokens.
type Manager struct {
	secret    []byte
	encryptor crypto.Encryptor
	ttl       time.Duration
	now       func() time.Time
}

// NewManager creates a Manager. A non-positive ttl selects DefaultTTL.
func NewManager(secret string, encryptor crypto.Encryptor, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{secret: []byte(secret), encryptor: encryptor, ttl: ttl, now: time.Now}
}

// TTL returns the session lifetime.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Issue signs a token for s.
func (m *Manager) Issue(ctx context.Context, s model.Session) (string, error) {
	if s.UserID == "" {
		return "", errors.New("session has no user id")
	}
	now := m.now()
	claims := Claims{
		Version:     claimsVersion,
		Email:       s.Email,
		Name:        s.Name,
		AccessToken: s.AccessToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	if !s.AccessTokenExpiry.IsZero() {
		claims.AccessTokenExpiry = s.AccessTokenExpiry.UnixMilli()
	}
	if s.RefreshToken != "" {
		sealed, err := m.encryptor.Encrypt(ctx, s.RefreshToken)
		if err != nil {
			return "", fmt.Errorf("seal refresh token: %w", err)
		}
		claims.RefreshToken = sealed
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

// Validate verifies token and returns the session it carries. Any failure wraps ErrInvalidToken.
func (m *Manager) Validate(ctx context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Version != claimsVersion {
		return nil, fmt.Errorf("%w: unsupported claims version %d", ErrInvalidToken, claims.Version)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	s := &model.Session{
		UserID:      claims.Subject,
		Email:       claims.Email,
		Name:        claims.Name,
		AccessToken: claims.AccessToken,
	}
	if claims.AccessTokenExpiry > 0 {
		s.AccessTokenExpiry = time.UnixMilli(claims.AccessTokenExpiry).UTC()
	}
	if claims.RefreshToken != "" {
		rt, err := m.encryptor.Decrypt(ctx, claims.RefreshToken)
		if err != nil {
			return nil, fmt.Errorf("%w: refresh token: %v", ErrInvalidToken, err)
		}
		s.RefreshToken = rt
	}
	return s, nil
}

// FromHeaders validates the token found in headers (see TokenFromHeaders).
func (m *Manager) FromHeaders(ctx context.Context, headers map[string]string) (*model.Session, error) {
	return m.Validate(ctx, TokenFromHeaders(headers))
}

// TokenFromHeaders returns the bearer token from Authorization, or else the session cookie.
// Header names match case-insensitively.
func TokenFromHeaders(headers map[string]string) string {
	if auth := header(headers, "Authorization"); auth != "" {
		if scheme, token, ok := strings.Cut(auth, " "); ok && strings.EqualFold(scheme, "Bearer") {
			if token = strings.TrimSpace(token); token != "" {
				return token
			}
		}
	}
	if raw := header(headers, "Cookie"); raw != "" {
		r := http.Request{Header: http.Header{"Cookie": {raw}}}
		if c, err := r.Cookie(CookieName); err == nil {
			return c.Value
		}
	}
	return ""
}

func header(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}
