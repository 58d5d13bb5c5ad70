// Package auth runs the Google OAuth2 authorization-code flow and turns the result into a
// session.
package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	goauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/jun/vidkeeper/internal/model"
)

// Scopes requested at login. youtube.force-ssl covers video edits and comment moderation.
var Scopes = []string{
	"openid",
	"email",
	"profile",
	"https://www.googleapis.com/auth/youtube.force-ssl",
}

// NewOAuthConfig returns the Google OAuth2 config for the web client.
func NewOAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       Scopes,
		Endpoint:     google.Endpoint,
	}
}

// AuthService handles the OAuth2 login flow.
type AuthService struct {
	oauthConfig *oauth2.Config
	// userinfoOpts are appended when building the userinfo client; tests point it at a fake server.
	userinfoOpts []option.ClientOption
}

// NewAuthService creates a new AuthService.
func NewAuthService(oauthConfig *oauth2.Config, userinfoOpts ...option.ClientOption) *AuthService {
	return &AuthService{oauthConfig: oauthConfig, userinfoOpts: userinfoOpts}
}

// GenerateAuthURL returns the consent URL. Offline access with forced consent makes Google
// return a refresh token on every login.
func (s *AuthService) GenerateAuthURL(state string) string {
	return s.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// CompleteLogin exchanges code for tokens and reads the account profile.
func (s *AuthService) CompleteLogin(ctx context.Context, code string) (*model.Session, error) {
	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	opts := append([]option.ClientOption{
		option.WithTokenSource(s.oauthConfig.TokenSource(ctx, token)),
	}, s.userinfoOpts...)
	svc, err := goauth2.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create userinfo client: %w", err)
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get userinfo: %w", err)
	}
	if info.Id == "" {
		return nil, errors.New("userinfo has no account id")
	}

	return &model.Session{
		UserID:            info.Id,
		Email:             info.Email,
		Name:              info.Name,
		AccessToken:       token.AccessToken,
		RefreshToken:      token.RefreshToken,
		AccessTokenExpiry: token.Expiry,
	}, nil
}
