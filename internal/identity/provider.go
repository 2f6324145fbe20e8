package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/devanagari-foods/storefront/internal/config"
	"github.com/devanagari-foods/storefront/internal/domain/user"
)

// Session is an authenticated provider session.
type Session struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"`
	User         user.Profile `json:"user"`
}

// Provider is an HTTP client for the hosted identity provider.
// The provider owns credentials and token issuance; this service only
// consumes the sessions it hands out.
type Provider struct {
	baseURL     string
	redirectURL string
	httpClient  *http.Client
}

// NewProvider creates a new identity provider client
func NewProvider(cfg *config.Config) *Provider {
	return &Provider{
		baseURL:     cfg.Identity.ProviderURL,
		redirectURL: cfg.Identity.OAuthRedirectURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// providerUser is the provider's user payload. Display fields live in
// user_metadata.
type providerUser struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	UserMetadata struct {
		FullName  string `json:"full_name"`
		AvatarURL string `json:"avatar_url"`
	} `json:"user_metadata"`
}

func (u *providerUser) profile() (user.Profile, error) {
	id, err := uuid.Parse(u.ID)
	if err != nil {
		return user.Profile{}, fmt.Errorf("invalid identity id %q: %w", u.ID, err)
	}
	return user.Profile{
		ID:        id,
		Email:     u.Email,
		FullName:  u.UserMetadata.FullName,
		AvatarURL: u.UserMetadata.AvatarURL,
		Phone:     u.Phone,
	}, nil
}

type sessionResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"`
	User         providerUser `json:"user"`
}

func (r *sessionResponse) session() (*Session, error) {
	p, err := r.User.profile()
	if err != nil {
		return nil, err
	}
	return &Session{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		ExpiresIn:    r.ExpiresIn,
		User:         p,
	}, nil
}

// SignUp registers a new identity with email and password.
func (p *Provider) SignUp(ctx context.Context, email, password, fullName string) (*Session, error) {
	body := map[string]interface{}{
		"email":    email,
		"password": password,
		"data": map[string]string{
			"full_name": fullName,
		},
	}

	var resp sessionResponse
	if err := p.call(ctx, http.MethodPost, "/auth/v1/signup", "", body, &resp); err != nil {
		return nil, err
	}
	return resp.session()
}

// SignIn exchanges email and password for a session.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}

	var resp sessionResponse
	if err := p.call(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", "", body, &resp); err != nil {
		return nil, err
	}
	return resp.session()
}

// OAuthURL builds the hosted OAuth login URL. The provider redirects the
// browser back to the configured post-login URL after consent.
func (p *Provider) OAuthURL(oauthProvider string) string {
	q := url.Values{}
	q.Set("provider", oauthProvider)
	q.Set("redirect_to", p.redirectURL)
	return p.baseURL + "/auth/v1/authorize?" + q.Encode()
}

// UserFromToken fetches the canonical identity for a session token.
func (p *Provider) UserFromToken(ctx context.Context, token string) (user.Profile, error) {
	var resp providerUser
	if err := p.call(ctx, http.MethodGet, "/auth/v1/user", token, nil, &resp); err != nil {
		return user.Profile{}, err
	}
	return resp.profile()
}

// SignOut revokes the provider session behind the token.
func (p *Provider) SignOut(ctx context.Context, token string) error {
	return p.call(ctx, http.MethodPost, "/auth/v1/logout", token, nil, nil)
}

func (p *Provider) call(ctx context.Context, method, path, token string, body, dest interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("identity provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(resp.Body)
		var apiErr struct {
			Message string `json:"msg"`
			Error   string `json:"error_description"`
		}
		_ = json.Unmarshal(data, &apiErr)
		msg := apiErr.Message
		if msg == "" {
			msg = apiErr.Error
		}
		if msg == "" {
			msg = string(data)
		}
		return fmt.Errorf("identity provider returned status %d: %s", resp.StatusCode, msg)
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to parse identity provider response: %w", err)
	}
	return nil
}
