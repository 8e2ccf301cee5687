package auth

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/oauth2"
)

type PersistFunc func(ctx context.Context, token *oauth2.Token) error

// TokenSource hands out the current access token of one session, refreshing
// it through the underlying oauth2 source when it expires.
type TokenSource struct {
	mu      sync.Mutex
	src     oauth2.TokenSource
	last    string
	persist PersistFunc
}

func NewTokenSource(initial *oauth2.Token, src oauth2.TokenSource, persist PersistFunc) *TokenSource {
	s := &TokenSource{
		src:     src,
		persist: persist,
	}
	if initial != nil {
		s.last = initial.AccessToken
	}
	return s
}

func (s *TokenSource) AccessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.src.Token()
	if err != nil {
		return "", fmt.Errorf("failed to get token: %v", err)
	}

	if token.AccessToken != s.last {
		s.last = token.AccessToken
		if s.persist != nil {
			if err := s.persist(ctx, token); err != nil {
				slog.WarnContext(
					ctx, "failed to persist refreshed token",
					slog.String("error", err.Error()),
					slog.String("module", "auth"),
				)
			}
		}
	}

	return token.AccessToken, nil
}
