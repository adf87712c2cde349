package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	apperrors "pocketledger/internal/errors"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// googleAuthService exchanges authorization codes for Google profiles.
type googleAuthService struct {
	conf        *oauth2.Config
	userInfoURL string
}

// NewGoogleAuthService creates a GoogleAuthServicer. With an empty client ID
// or secret the service reports itself disabled.
func NewGoogleAuthService(clientID, clientSecret, redirectURL string) GoogleAuthServicer {
	return &googleAuthService{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		userInfoURL: googleUserInfoURL,
	}
}

func (s *googleAuthService) Enabled() bool {
	return s.conf.ClientID != "" && s.conf.ClientSecret != ""
}

func (s *googleAuthService) AuthCodeURL(state string) string {
	return s.conf.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades code for a token and fetches the signed-in profile. Only
// verified emails are accepted.
func (s *googleAuthService) Exchange(ctx context.Context, code string) (*GoogleProfile, error) {
	if !s.Enabled() {
		return nil, apperrors.ErrOAuthNotConfigured
	}
	if code == "" {
		return nil, apperrors.WithMessage(apperrors.ErrOAuthFailed, "Missing authorization code")
	}

	token, err := s.conf.Exchange(ctx, code)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrOAuthFailed, fmt.Errorf("exchange code: %w", err))
	}

	resp, err := s.conf.Client(ctx, token).Get(s.userInfoURL)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrOAuthFailed, fmt.Errorf("get user info: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Wrap(apperrors.ErrOAuthFailed, fmt.Errorf("user info status %d", resp.StatusCode))
	}

	var profile GoogleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrOAuthFailed, fmt.Errorf("decode user info: %w", err))
	}
	if !profile.VerifiedEmail {
		return nil, apperrors.WithMessage(apperrors.ErrOAuthFailed, "Google email address is not verified")
	}
	return &profile, nil
}
