// Package auth manages the OAuth2 credential lifecycle of a Listonic account.
//
// A Session logs in with the password grant, refreshes with the refresh grant
// and silently logs in again when the refresh token is rejected. Concurrent
// callers share a single in-flight login or refresh.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/stacklok/listonic-sync/internal/apierrors"
)

const (
	// SafetyMargin is subtracted from the expiry when deciding whether a token is still usable
	SafetyMargin = 60 * time.Second

	// DefaultTokenLifetime is assumed when neither expires_in nor a JWT exp claim is available
	DefaultTokenLifetime = time.Hour

	renewKey = "renew"
	loginKey = "login"
)

// Config holds what a Session needs to talk to the token endpoint
type Config struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Email        string
	Password     string
}

// Session owns the token of one account
type Session struct {
	oauth      *oauth2.Config
	email      string
	password   string
	httpClient *http.Client
	now        func() time.Time

	store TokenStore
	group singleflight.Group
}

// Option configures a Session
type Option func(*Session)

// WithHTTPClient sets the HTTP client used for token requests
func WithHTTPClient(client *http.Client) Option {
	return func(s *Session) {
		s.httpClient = client
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// NewSession creates a session without performing any network call
func NewSession(cfg Config, opts ...Option) *Session {
	s := &Session{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint: oauth2.Endpoint{
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		email:    cfg.Email,
		password: cfg.Password,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// HasToken reports whether an access token is held
func (s *Session) HasToken() bool {
	return !s.store.Get().IsZero()
}

// HasRefreshToken reports whether a refresh token is held
func (s *Session) HasRefreshToken() bool {
	return s.store.Get().RefreshToken != ""
}

// Token returns the stored token without validating it
func (s *Session) Token() Token {
	return s.store.Get()
}

// Authenticate performs the password grant and stores the resulting token
func (s *Session) Authenticate(ctx context.Context) (Token, error) {
	v, err, _ := s.group.Do(loginKey, func() (any, error) {
		return s.login(ctx)
	})
	if err != nil {
		return Token{}, err
	}
	return v.(Token), nil
}

// EnsureValidToken returns a usable token, refreshing or logging in as needed
func (s *Session) EnsureValidToken(ctx context.Context) (Token, error) {
	if tok := s.store.Get(); tok.Usable(s.now()) {
		return tok, nil
	}

	v, err, _ := s.group.Do(renewKey, func() (any, error) {
		// Another caller may have renewed while we waited on the group.
		tok := s.store.Get()
		if tok.Usable(s.now()) {
			return tok, nil
		}
		return s.renew(ctx, tok)
	})
	if err != nil {
		return Token{}, err
	}
	return v.(Token), nil
}

// ForceRefresh renews a token the server rejected. If the stored access token
// no longer matches stale, another caller already renewed it and the stored
// token is returned without a network call.
func (s *Session) ForceRefresh(ctx context.Context, stale Token) (Token, error) {
	v, err, _ := s.group.Do(renewKey, func() (any, error) {
		tok := s.store.Get()
		if !tok.IsZero() && tok.AccessToken != stale.AccessToken {
			return tok, nil
		}
		return s.renew(ctx, tok)
	})
	if err != nil {
		return Token{}, err
	}
	return v.(Token), nil
}

// renew uses the refresh token when there is one and falls back to a silent login
func (s *Session) renew(ctx context.Context, current Token) (Token, error) {
	if current.RefreshToken == "" {
		return s.login(ctx)
	}

	tok, err := s.refresh(ctx, current.RefreshToken)
	if err == nil {
		return tok, nil
	}
	if !apierrors.IsAuth(err) {
		return Token{}, err
	}

	slog.Info("Refresh token rejected, logging in again")
	return s.login(ctx)
}

func (s *Session) login(ctx context.Context) (Token, error) {
	slog.Debug("Requesting token with password grant")

	oauthTok, err := s.oauth.PasswordCredentialsToken(s.clientContext(ctx), s.email, s.password)
	if err != nil {
		err = s.classifyTokenError("password grant", err)
		if apierrors.IsAuth(err) {
			s.store.Clear()
		}
		return Token{}, err
	}

	tok := s.fromOAuth(oauthTok, "")
	s.store.Set(tok)
	return tok, nil
}

func (s *Session) refresh(ctx context.Context, refreshToken string) (Token, error) {
	slog.Debug("Requesting token with refresh grant")

	src := s.oauth.TokenSource(s.clientContext(ctx), &oauth2.Token{RefreshToken: refreshToken})
	oauthTok, err := src.Token()
	if err != nil {
		return Token{}, s.classifyTokenError("refresh grant", err)
	}

	tok := s.fromOAuth(oauthTok, refreshToken)
	s.store.Set(tok)
	return tok, nil
}

func (s *Session) clientContext(ctx context.Context) context.Context {
	if s.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
}

// fromOAuth converts an oauth2 token, resolving expiry from expires_in, then the JWT exp claim,
// then DefaultTokenLifetime
func (s *Session) fromOAuth(t *oauth2.Token, previousRefresh string) Token {
	tok := Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		ExpiresAt:    t.Expiry,
		IssuedAt:     s.now(),
	}
	if tok.RefreshToken == "" {
		tok.RefreshToken = previousRefresh
	}
	if tok.ExpiresAt.IsZero() {
		if exp, ok := expiryFromJWT(t.AccessToken); ok {
			tok.ExpiresAt = exp
		} else {
			tok.ExpiresAt = s.now().Add(DefaultTokenLifetime)
		}
	}
	return tok
}

// classifyTokenError maps token endpoint failures onto the error taxonomy
func (s *Session) classifyTokenError(grant string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}

	var retrieveErr *oauth2.RetrieveError
	if !errors.As(err, &retrieveErr) || retrieveErr.Response == nil {
		return apierrors.NewTransientError(grant, err)
	}

	code := retrieveErr.Response.StatusCode
	switch {
	case code == http.StatusBadRequest, code == http.StatusUnauthorized, code == http.StatusForbidden:
		return apierrors.NewAuthError(fmt.Sprintf("%s rejected with HTTP %d", grant, code), err)
	case code >= http.StatusInternalServerError:
		return apierrors.NewTransientError(fmt.Sprintf("%s failed with HTTP %d", grant, code), err)
	case retrieveErr.ErrorCode != "":
		// 2xx carrying an OAuth2 error field
		return apierrors.NewAuthError(fmt.Sprintf("%s rejected: %s", grant, retrieveErr.ErrorCode), err)
	default:
		return apierrors.FromStatus(code, s.oauth.Endpoint.TokenURL, string(retrieveErr.Body))
	}
}
