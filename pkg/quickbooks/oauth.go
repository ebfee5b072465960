package quickbooks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

const (
	AuthorizeURL = "https://appcenter.intuit.com/connect/oauth2"
	TokenURL     = "https://oauth.platform.intuit.com/oauth2/v1/tokens/bearer"
)

// Endpoint is Intuit's OAuth2 endpoint. Client credentials go in a Basic auth header.
var Endpoint = oauth2.Endpoint{
	AuthURL:   AuthorizeURL,
	TokenURL:  TokenURL,
	AuthStyle: oauth2.AuthStyleInHeader,
}

// TokenUpdateFunc persists a refreshed token pair.
type TokenUpdateFunc func(token *oauth2.Token) error

// OAuthService wraps the authorization-code flow and token refresh for one Intuit app.
type OAuthService struct {
	config *oauth2.Config
	skew   time.Duration
	now    func() time.Time
}

// NewOAuthService creates the service. Tokens expiring within skew are refreshed.
func NewOAuthService(clientID, clientSecret, redirectURI string, scopes []string, skew time.Duration) *OAuthService {
	return &OAuthService{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       scopes,
			Endpoint:     Endpoint,
		},
		skew: skew,
		now:  time.Now,
	}
}

// SetEndpoint overrides the Intuit endpoint.
func (s *OAuthService) SetEndpoint(ep oauth2.Endpoint) {
	s.config.Endpoint = ep
}

// AuthCodeURL returns the consent URL for the given state.
func (s *OAuthService) AuthCodeURL(state string) string {
	return s.config.AuthCodeURL(state)
}

// Exchange trades an authorization code for a token pair.
func (s *OAuthService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}
	return tok, nil
}

// ExpiringSoon reports whether the access token is missing or expires within the skew window.
func (s *OAuthService) ExpiringSoon(tok *oauth2.Token) bool {
	if tok == nil || tok.AccessToken == "" {
		return true
	}
	if tok.Expiry.IsZero() {
		return false
	}
	return !s.now().Add(s.skew).Before(tok.Expiry)
}

// TokenSource returns a source that hands out current while it is fresh and
// otherwise refreshes it, calling onRefresh with the new pair before returning it.
func (s *OAuthService) TokenSource(ctx context.Context, current *oauth2.Token, onRefresh TokenUpdateFunc) oauth2.TokenSource {
	return &notifyTokenSource{
		ctx:      ctx,
		service:  s,
		current:  current,
		callback: onRefresh,
	}
}

type notifyTokenSource struct {
	mu       sync.Mutex
	ctx      context.Context
	service  *OAuthService
	current  *oauth2.Token
	callback TokenUpdateFunc
}

func (s *notifyTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.service.ExpiringSoon(s.current) {
		return s.current, nil
	}
	if s.current == nil || s.current.RefreshToken == "" {
		return nil, errors.New("no refresh token available")
	}

	// No access token, so the refresher always calls the token endpoint.
	t, err := s.service.config.TokenSource(s.ctx, &oauth2.Token{RefreshToken: s.current.RefreshToken}).Token()
	if err != nil {
		return nil, fmt.Errorf("refresh access token: %w", err)
	}

	if s.callback != nil {
		if err := s.callback(t); err != nil {
			return nil, fmt.Errorf("persist refreshed token: %w", err)
		}
	}
	s.current = t
	return t, nil
}

// RefreshTokenExpiry reads Intuit's x_refresh_token_expires_in extra field.
func RefreshTokenExpiry(tok *oauth2.Token, now time.Time) *time.Time {
	if tok == nil {
		return nil
	}
	var seconds int64
	switch v := tok.Extra("x_refresh_token_expires_in").(type) {
	case float64:
		seconds = int64(v)
	case json.Number:
		seconds, _ = v.Int64()
	case string:
		seconds, _ = strconv.ParseInt(v, 10, 64)
	}
	if seconds <= 0 {
		return nil
	}
	exp := now.Add(time.Duration(seconds) * time.Second)
	return &exp
}
