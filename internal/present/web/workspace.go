package web

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/oauth2"

	"github.com/totegamma/supermarkets/client"
	"github.com/totegamma/supermarkets/internal/infrastructure/session"
	"github.com/totegamma/supermarkets/internal/manager"
)

// workspaces holds one record store per logged in session. Entries expire
// after ttl without use.
type workspaces struct {
	cache    *cache.Cache
	api      *client.Client
	auth     Authenticator
	sessions session.Store
}

func newWorkspaces(api *client.Client, auth Authenticator, sessions session.Store, ttl time.Duration) *workspaces {
	return &workspaces{
		cache:    cache.New(ttl, ttl/2),
		api:      api,
		auth:     auth,
		sessions: sessions,
	}
}

func (w *workspaces) get(sid string, sess *session.Session) *manager.Store {
	if v, ok := w.cache.Get(sid); ok {
		w.cache.SetDefault(sid, v)
		return v.(*manager.Store)
	}

	persist := func(ctx context.Context, token *oauth2.Token) error {
		current, err := w.sessions.Get(ctx, sid)
		if err != nil {
			return err
		}
		current.Token = token
		return w.sessions.Save(ctx, sid, current)
	}

	tokens := w.auth.TokenSource(sess.Token, persist)
	store := manager.NewStore(w.api.WithTokenSource(tokens), manager.NewErrorChannel())

	if err := w.cache.Add(sid, store, cache.DefaultExpiration); err != nil {
		// another request created it first
		if v, ok := w.cache.Get(sid); ok {
			return v.(*manager.Store)
		}
	}
	return store
}

func (w *workspaces) drop(sid string) {
	w.cache.Delete(sid)
}
