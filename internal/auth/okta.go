// Package auth wraps the Okta OpenID Connect flows used by the web UI and the
// bearer token check used by the API.
package auth

import (
	"context"
	"fmt"
	"net/url"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/totegamma/supermarkets/internal/config"
	"github.com/totegamma/supermarkets/internal/domain"
)

var scopes = []string{oidc.ScopeOpenID, "profile", "email", oidc.ScopeOfflineAccess}

// Login is the outcome of a successful authorization code exchange.
type Login struct {
	Token   *oauth2.Token
	IDToken string
	Subject string
	Name    string
}

type Gateway struct {
	oauth      *oauth2.Config
	verifier   *oidc.IDTokenVerifier
	endSession string
}

// NewGateway discovers the issuer metadata and prepares the authorization
// code flow for the web client.
func NewGateway(ctx context.Context, conf config.Okta, redirectURL string) (*Gateway, error) {
	provider, err := oidc.NewProvider(ctx, conf.Issuer())
	if err != nil {
		return nil, fmt.Errorf("failed to discover issuer %s: %v", conf.Issuer(), err)
	}

	var metadata struct {
		EndSessionEndpoint string `json:"end_session_endpoint"`
	}
	if err := provider.Claims(&metadata); err != nil {
		return nil, fmt.Errorf("failed to read provider metadata: %v", err)
	}

	return &Gateway{
		oauth: &oauth2.Config{
			ClientID:     conf.ClientID,
			ClientSecret: conf.ClientSecret,
			Endpoint:     provider.Endpoint(),
			RedirectURL:  redirectURL,
			Scopes:       scopes,
		},
		verifier:   provider.Verifier(&oidc.Config{ClientID: conf.ClientID}),
		endSession: metadata.EndSessionEndpoint,
	}, nil
}

func NewState() string {
	return uuid.NewString()
}

func NewVerifier() string {
	return oauth2.GenerateVerifier()
}

func (g *Gateway) AuthCodeURL(state, verifier string) string {
	return g.oauth.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
}

func (g *Gateway) Exchange(ctx context.Context, code, verifier string) (*Login, error) {
	token, err := g.oauth.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %v", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, fmt.Errorf("token response carries no id_token")
	}

	idToken, err := g.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify id_token: %v", err)
	}

	var claims struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to read id_token claims: %v", err)
	}
	name := claims.Name
	if name == "" {
		name = claims.Email
	}

	return &Login{
		Token:   token,
		IDToken: rawIDToken,
		Subject: idToken.Subject,
		Name:    name,
	}, nil
}

// TokenSource returns the per-session source of bearer tokens. persist is
// called whenever a refresh produced a new token.
func (g *Gateway) TokenSource(token *oauth2.Token, persist PersistFunc) *TokenSource {
	return NewTokenSource(token, g.oauth.TokenSource(context.Background(), token), persist)
}

// EndSessionURL is where the browser goes to sign out of Okta. It is empty
// when the issuer does not advertise an end session endpoint.
func (g *Gateway) EndSessionURL(idToken, postLogoutRedirect string) string {
	if g.endSession == "" {
		return ""
	}
	u, err := url.Parse(g.endSession)
	if err != nil {
		return ""
	}
	q := u.Query()
	q.Set("id_token_hint", idToken)
	q.Set("post_logout_redirect_uri", postLogoutRedirect)
	u.RawQuery = q.Encode()
	return u.String()
}

// AccessTokenVerifier checks bearer tokens presented to the API.
type AccessTokenVerifier struct {
	verifier *oidc.IDTokenVerifier
}

func NewAccessTokenVerifier(ctx context.Context, conf config.Okta) (*AccessTokenVerifier, error) {
	provider, err := oidc.NewProvider(ctx, conf.Issuer())
	if err != nil {
		return nil, fmt.Errorf("failed to discover issuer %s: %v", conf.Issuer(), err)
	}
	return &AccessTokenVerifier{
		verifier: provider.Verifier(&oidc.Config{ClientID: conf.Audience}),
	}, nil
}

func (v *AccessTokenVerifier) Verify(ctx context.Context, rawToken string) (domain.Claims, error) {
	token, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return domain.Claims{}, err
	}

	var claims struct {
		UID string `json:"uid"`
	}
	if err := token.Claims(&claims); err != nil {
		return domain.Claims{}, err
	}

	return domain.Claims{
		Subject: token.Subject,
		UserID:  claims.UID,
	}, nil
}
