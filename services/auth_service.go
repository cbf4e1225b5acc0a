package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

// AuthService runs the Google authorization-code flow.
type AuthService struct {
	oauth       *oauth2.Config
	userInfoURL string
}

func NewAuthService(clientID, clientSecret, redirectURL string) *AuthService {
	return &AuthService{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		userInfoURL: googleUserInfoURL,
	}
}

func (s *AuthService) Configured() bool {
	return s.oauth.ClientID != "" && s.oauth.ClientSecret != ""
}

func (s *AuthService) LoginURL(state string) string {
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Authenticate trades an authorization code for the signed-in user's identity.
func (s *AuthService) Authenticate(ctx context.Context, code string) (GoogleUser, error) {
	tok, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return GoogleUser{}, fmt.Errorf("exchange code: %w", err)
	}
	return s.fetchUser(ctx, s.oauth.Client(ctx, tok))
}

func (s *AuthService) fetchUser(ctx context.Context, client *http.Client) (GoogleUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return GoogleUser{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return GoogleUser{}, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return GoogleUser{}, fmt.Errorf("read userinfo: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return GoogleUser{}, fmt.Errorf("userinfo error %d: %s", resp.StatusCode, string(body))
	}

	var u GoogleUser
	if err := json.Unmarshal(body, &u); err != nil {
		return GoogleUser{}, fmt.Errorf("parse userinfo: %w", err)
	}
	if u.Email == "" {
		return GoogleUser{}, fmt.Errorf("userinfo has no email")
	}
	return u, nil
}
