// Package social signs users in through OAuth2 authorization-code providers.
//
// A provider is configured with its client credentials, endpoints and a
// userinfo URL. Exchange trades an authorization code for a token and reads
// the account's email and names from the userinfo endpoint.
package social

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
)

// maxUserInfoBytes caps the userinfo response body.
const maxUserInfoBytes = 1 << 20

var (
	ErrUnknownProvider = errors.New("unknown social provider")
	ErrExchange        = errors.New("authorization code exchange failed")
	ErrUserInfo        = errors.New("failed to fetch user info")
	ErrNoEmail         = errors.New("provider did not return an email address")
	ErrUnverifiedEmail = errors.New("provider email address is not verified")
)

// Identity is what a provider tells us about the signed-in account.
type Identity struct {
	Email     string
	FirstName string
	LastName  string
}

// Provider is one OAuth2 authorization-code provider.
type Provider struct {
	Name        string
	OAuth       *oauth2.Config
	UserInfoURL string
	// HTTPClient, when set, is used for the token and userinfo requests.
	HTTPClient *http.Client
}

type userInfo struct {
	Email         string `json:"email"`
	EmailVerified *bool  `json:"email_verified"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
}

// AuthCodeURL returns the URL the browser is sent to for consent.
func (p *Provider) AuthCodeURL(state string) string {
	return p.OAuth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// RedirectURL is where the provider sends the browser back with a code.
func (p *Provider) RedirectURL() string {
	return p.OAuth.RedirectURL
}

// Exchange trades code for a token and resolves the account behind it.
func (p *Provider) Exchange(ctx context.Context, code string) (*Identity, error) {
	if p.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, p.HTTPClient)
	}

	token, err := p.OAuth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExchange, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.UserInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUserInfo, err)
	}
	resp, err := p.OAuth.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUserInfo, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUserInfo, resp.StatusCode)
	}

	var info userInfo
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxUserInfoBytes)).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUserInfo, err)
	}
	if info.Email == "" {
		return nil, ErrNoEmail
	}
	if info.EmailVerified != nil && !*info.EmailVerified {
		return nil, ErrUnverifiedEmail
	}

	return &Identity{
		Email:     info.Email,
		FirstName: info.GivenName,
		LastName:  info.FamilyName,
	}, nil
}

// Registry maps provider names, as used in the /o/{provider}/ path, to providers.
type Registry map[string]*Provider

// Add registers p under its name.
func (r Registry) Add(p *Provider) {
	r[p.Name] = p
}

// Lookup returns the named provider.
func (r Registry) Lookup(name string) (*Provider, error) {
	if p, ok := r[name]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
}

// Google returns the google-oauth2 provider.
func Google(clientID, clientSecret, redirectURL string) *Provider {
	return &Provider{
		Name: "google-oauth2",
		OAuth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://accounts.google.com/o/oauth2/auth",
				TokenURL: "https://oauth2.googleapis.com/token",
			},
		},
		UserInfoURL: "https://openidconnect.googleapis.com/v1/userinfo",
	}
}
