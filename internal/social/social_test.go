package social

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/oauth2"
)

// newFakeProvider serves a token endpoint that accepts the code "good" and a
// userinfo endpoint returning info for the issued token.
func newFakeProvider(t *testing.T, info map[string]any) *Provider {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.Form.Get("code") != "good" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"provider-token","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer provider-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(info)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return &Provider{
		Name: "fake",
		OAuth: &oauth2.Config{
			ClientID:     "client",
			ClientSecret: "secret",
			RedirectURL:  "http://localhost:3000/auth/fake",
			Endpoint: oauth2.Endpoint{
				AuthURL:   srv.URL + "/auth",
				TokenURL:  srv.URL + "/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		UserInfoURL: srv.URL + "/userinfo",
		HTTPClient:  srv.Client(),
	}
}

func TestExchange(t *testing.T) {
	p := newFakeProvider(t, map[string]any{
		"email":          "Ada@Example.com",
		"email_verified": true,
		"given_name":     "Ada",
		"family_name":    "Lovelace",
	})

	id, err := p.Exchange(context.Background(), "good")
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}
	if id.Email != "Ada@Example.com" || id.FirstName != "Ada" || id.LastName != "Lovelace" {
		t.Errorf("identity = %+v", id)
	}
}

func TestExchangeErrors(t *testing.T) {
	tests := []struct {
		name string
		info map[string]any
		code string
		want error
	}{
		{"rejected code", map[string]any{"email": "a@example.com"}, "bad", ErrExchange},
		{"no email", map[string]any{"given_name": "Ada"}, "good", ErrNoEmail},
		{"unverified", map[string]any{"email": "a@example.com", "email_verified": false}, "good", ErrUnverifiedEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newFakeProvider(t, tt.info)
			_, err := p.Exchange(context.Background(), tt.code)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Exchange error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestExchangeUserInfoFailure(t *testing.T) {
	p := newFakeProvider(t, nil)
	p.UserInfoURL = p.OAuth.Endpoint.AuthURL // 404 on the fake server

	_, err := p.Exchange(context.Background(), "good")
	if !errors.Is(err, ErrUserInfo) {
		t.Fatalf("Exchange error = %v, want ErrUserInfo", err)
	}
}

func TestAuthCodeURL(t *testing.T) {
	p := Google("client-id", "secret", "http://localhost:3000/auth/google")

	u := p.AuthCodeURL("state123")
	for _, want := range []string{"accounts.google.com", "client_id=client-id", "state=state123", "scope=openid+email+profile"} {
		if !strings.Contains(u, want) {
			t.Errorf("AuthCodeURL() = %q, missing %q", u, want)
		}
	}
	if p.RedirectURL() != "http://localhost:3000/auth/google" {
		t.Errorf("RedirectURL() = %q", p.RedirectURL())
	}
}

func TestRegistryLookup(t *testing.T) {
	r := Registry{"google-oauth2": Google("id", "secret", "http://localhost/cb")}

	if _, err := r.Lookup("google-oauth2"); err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if _, err := r.Lookup("github"); !errors.Is(err, ErrUnknownProvider) {
		t.Fatalf("Lookup(github) error = %v", err)
	}
}
