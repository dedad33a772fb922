package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
	goauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"scenecraft-backend/internal/config"
)

var ErrOAuthFailed = errors.New("oauth authentication failed")

// OAuthProfile normalized user info from an OAuth provider
type OAuthProfile struct {
	ProviderID  string
	Provider    string
	Username    string
	DisplayName string
	Email       string
	Avatar      string
}

// OAuthManager drives the Google and GitHub authorization-code flows
type OAuthManager struct {
	google *oauth2.Config
	github *oauth2.Config
}

// NewOAuthManager builds provider configs from app settings
func NewOAuthManager(cfg *config.OAuthConfig) *OAuthManager {
	return &OAuthManager{
		google: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.CallbackBaseURL + "/api/auth/google/callback",
			Scopes:       []string{"profile", "email"},
			Endpoint:     endpoints.Google,
		},
		github: &oauth2.Config{
			ClientID:     cfg.GitHubClientID,
			ClientSecret: cfg.GitHubClientSecret,
			RedirectURL:  cfg.CallbackBaseURL + "/api/auth/github/callback",
			Scopes:       []string{"user:email"},
			Endpoint:     endpoints.GitHub,
		},
	}
}

// GoogleAuthURL returns the Google consent page URL
func (m *OAuthManager) GoogleAuthURL(state string) string {
	return m.google.AuthCodeURL(state)
}

// GitHubAuthURL returns the GitHub consent page URL
func (m *OAuthManager) GitHubAuthURL(state string) string {
	return m.github.AuthCodeURL(state)
}

// ExchangeGoogle trades an authorization code for the user's Google profile
func (m *OAuthManager) ExchangeGoogle(ctx context.Context, code string) (*OAuthProfile, error) {
	token, err := m.google.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("google code exchange: %w", err)
	}

	svc, err := goauth2.NewService(ctx, option.WithTokenSource(m.google.TokenSource(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("google userinfo service: %w", err)
	}

	info, err := svc.Userinfo.Get().Do()
	if err != nil {
		return nil, fmt.Errorf("google userinfo: %w", err)
	}

	if info.Email == "" {
		return nil, ErrOAuthFailed
	}

	return &OAuthProfile{
		ProviderID:  info.Id,
		Provider:    "google",
		DisplayName: info.Name,
		Email:       info.Email,
		Avatar:      info.Picture,
	}, nil
}

// githubUser response from the GitHub user API
type githubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

// githubEmail response entry from the GitHub emails API
type githubEmail struct {
	Email   string `json:"email"`
	Primary bool   `json:"primary"`
}

// ExchangeGitHub trades an authorization code for the user's GitHub profile
func (m *OAuthManager) ExchangeGitHub(ctx context.Context, code string) (*OAuthProfile, error) {
	token, err := m.github.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("github code exchange: %w", err)
	}

	client := m.github.Client(ctx, token)

	var user githubUser
	if err := getJSON(ctx, client, "https://api.github.com/user", &user); err != nil {
		return nil, fmt.Errorf("github user: %w", err)
	}

	email := user.Email
	if email == "" {
		var emails []githubEmail
		if err := getJSON(ctx, client, "https://api.github.com/user/emails", &emails); err == nil {
			for _, e := range emails {
				if e.Primary {
					email = e.Email
					break
				}
			}
		}
	}
	// GitHub accounts may hide their email entirely
	if email == "" {
		email = user.Login + "@github.com"
	}

	displayName := user.Name
	if displayName == "" {
		displayName = user.Login
	}

	return &OAuthProfile{
		ProviderID:  fmt.Sprintf("%d", user.ID),
		Provider:    "github",
		Username:    user.Login,
		DisplayName: displayName,
		Email:       email,
		Avatar:      user.AvatarURL,
	}, nil
}

func getJSON(ctx context.Context, client *http.Client, url string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(dst)
}
