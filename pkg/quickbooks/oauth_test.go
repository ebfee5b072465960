package quickbooks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func tokenServer(t *testing.T, calls *int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "client", user)
		require.Equal(t, "secret", pass)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		require.Equal(t, "refresh-1", r.PostForm.Get("refresh_token"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"access-2","refresh_token":"refresh-2","token_type":"bearer","expires_in":3600,"x_refresh_token_expires_in":8726400}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestOAuth(srv *httptest.Server) *OAuthService {
	s := NewOAuthService("client", "secret", "http://localhost/cb", []string{"com.intuit.quickbooks.accounting"}, 120*time.Second)
	s.SetEndpoint(oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token", AuthStyle: oauth2.AuthStyleInHeader})
	return s
}

func TestTokenSourceRefreshesWithinSkew(t *testing.T) {
	calls := 0
	srv := tokenServer(t, &calls)
	svc := newTestOAuth(srv)

	var persisted *oauth2.Token
	current := &oauth2.Token{AccessToken: "access-1", RefreshToken: "refresh-1", Expiry: time.Now().Add(90 * time.Second)}
	ts := svc.TokenSource(context.Background(), current, func(tok *oauth2.Token) error {
		persisted = tok
		return nil
	})

	tok, err := ts.Token()
	require.NoError(t, err)
	require.Equal(t, "access-2", tok.AccessToken)
	require.Equal(t, 1, calls)
	require.NotNil(t, persisted)
	require.Equal(t, "refresh-2", persisted.RefreshToken)

	exp := RefreshTokenExpiry(persisted, time.Now())
	require.NotNil(t, exp)
	require.WithinDuration(t, time.Now().Add(8726400*time.Second), *exp, time.Minute)

	// fresh token is reused
	_, err = ts.Token()
	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

func TestTokenSourceKeepsFreshToken(t *testing.T) {
	calls := 0
	srv := tokenServer(t, &calls)
	svc := newTestOAuth(srv)

	current := &oauth2.Token{AccessToken: "access-1", RefreshToken: "refresh-1", Expiry: time.Now().Add(30 * time.Minute)}
	tok, err := svc.TokenSource(context.Background(), current, nil).Token()
	require.NoError(t, err)
	require.Equal(t, "access-1", tok.AccessToken)
	require.Zero(t, calls)
}

func TestTokenSourceRequiresRefreshToken(t *testing.T) {
	calls := 0
	srv := tokenServer(t, &calls)
	svc := newTestOAuth(srv)

	_, err := svc.TokenSource(context.Background(), &oauth2.Token{AccessToken: "a", Expiry: time.Now()}, nil).Token()
	require.Error(t, err)
	require.Zero(t, calls)
}

func TestAuthCodeURL(t *testing.T) {
	svc := NewOAuthService("client", "secret", "http://localhost/cb", []string{"com.intuit.quickbooks.accounting"}, time.Minute)
	u, err := url.Parse(svc.AuthCodeURL("state-1"))
	require.NoError(t, err)
	require.Equal(t, "appcenter.intuit.com", u.Host)
	q := u.Query()
	require.Equal(t, "client", q.Get("client_id"))
	require.Equal(t, "code", q.Get("response_type"))
	require.Equal(t, "state-1", q.Get("state"))
	require.Equal(t, "com.intuit.quickbooks.accounting", q.Get("scope"))
	require.Equal(t, "http://localhost/cb", q.Get("redirect_uri"))
}
