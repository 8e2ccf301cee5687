package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type sequenceSource struct {
	tokens []string
	calls  int
	err    error
}

func (s *sequenceSource) Token() (*oauth2.Token, error) {
	if s.err != nil {
		return nil, s.err
	}
	i := s.calls
	if i >= len(s.tokens) {
		i = len(s.tokens) - 1
	}
	s.calls++
	return &oauth2.Token{AccessToken: s.tokens[i]}, nil
}

func TestTokenSourcePersistsOnlyOnChange(t *testing.T) {
	src := &sequenceSource{tokens: []string{"a", "a", "b"}}

	var persisted []string
	ts := NewTokenSource(&oauth2.Token{AccessToken: "a"}, src, func(ctx context.Context, tok *oauth2.Token) error {
		persisted = append(persisted, tok.AccessToken)
		return nil
	})

	for _, want := range []string{"a", "a", "b", "b"} {
		got, err := ts.AccessToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, []string{"b"}, persisted)
}

func TestTokenSourceError(t *testing.T) {
	ts := NewTokenSource(nil, &sequenceSource{err: errors.New("refresh token revoked")}, nil)
	_, err := ts.AccessToken(context.Background())
	assert.ErrorContains(t, err, "refresh token revoked")
}

func TestPersistFailureDoesNotFailRequest(t *testing.T) {
	src := &sequenceSource{tokens: []string{"new"}}
	ts := NewTokenSource(&oauth2.Token{AccessToken: "old"}, src, func(ctx context.Context, tok *oauth2.Token) error {
		return errors.New("store down")
	})
	got, err := ts.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new", got)
}

func TestEndSessionURL(t *testing.T) {
	g := &Gateway{endSession: "https://org.okta.com/oauth2/default/v1/logout"}
	u := g.EndSessionURL("idt", "http://localhost:3000/")
	assert.Contains(t, u, "id_token_hint=idt")
	assert.Contains(t, u, "post_logout_redirect_uri=http%3A%2F%2Flocalhost%3A3000%2F")

	assert.Empty(t, (&Gateway{}).EndSessionURL("idt", "/"))
}

func TestAuthCodeURLCarriesPKCE(t *testing.T) {
	g := &Gateway{oauth: &oauth2.Config{
		ClientID:    "client",
		Endpoint:    oauth2.Endpoint{AuthURL: "https://org.okta.com/oauth2/default/v1/authorize"},
		RedirectURL: "http://localhost:3000/login/callback",
		Scopes:      scopes,
	}}
	u := g.AuthCodeURL("state-1", NewVerifier())
	assert.Contains(t, u, "state=state-1")
	assert.Contains(t, u, "code_challenge_method=S256")
	assert.Contains(t, u, "redirect_uri=http%3A%2F%2Flocalhost%3A3000%2Flogin%2Fcallback")
}
