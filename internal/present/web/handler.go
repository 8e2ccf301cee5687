package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/zeebo/xxh3"
	"golang.org/x/oauth2"

	"github.com/totegamma/supermarkets"
	"github.com/totegamma/supermarkets/client"
	"github.com/totegamma/supermarkets/internal/auth"
	"github.com/totegamma/supermarkets/internal/infrastructure/session"
	"github.com/totegamma/supermarkets/internal/manager"
)

// Authenticator is the part of the Okta gateway the web UI needs.
type Authenticator interface {
	AuthCodeURL(state, verifier string) string
	Exchange(ctx context.Context, code, verifier string) (*auth.Login, error)
	TokenSource(token *oauth2.Token, persist auth.PersistFunc) *auth.TokenSource
	EndSessionURL(idToken, postLogoutRedirect string) string
}

type Options struct {
	PublicURL    string
	CookieName   string
	CookieSecure bool
	SessionTTL   time.Duration
}

type Handler struct {
	opts       Options
	auth       Authenticator
	sessions   session.Store
	workspaces *workspaces
}

func NewHandler(opts Options, authenticator Authenticator, sessions session.Store, api *client.Client) *Handler {
	return &Handler{
		opts:       opts,
		auth:       authenticator,
		sessions:   sessions,
		workspaces: newWorkspaces(api, authenticator, sessions, opts.SessionTTL),
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.Use(h.loadSession)

	e.GET("/", h.handleHome)
	e.GET("/login", h.handleLogin)
	e.GET("/login/callback", h.handleCallback)
	e.POST("/logout", h.handleLogout)

	g := e.Group(supermarkets.CollectionPath, h.requireLogin)
	g.GET("", h.handleList)
	g.GET("/:id", h.handleEditor)
	g.POST("/:id", h.handleSubmit)
	g.GET("/:id/delete", h.handleDeletePrompt)
	g.POST("/:id/delete", h.handleDelete)

	e.POST("/errors/ack", h.handleAcknowledge, h.requireLogin)
}

func (h *Handler) page(c echo.Context, title string) pageData {
	_, sess := currentSession(c)
	data := pageData{Title: title}
	if sess.LoggedIn() {
		data.LoggedIn = true
		data.UserName = sess.Name
	}
	return data
}

func (h *Handler) store(c echo.Context) *manager.Store {
	sid, sess := currentSession(c)
	return h.workspaces.get(sid, sess)
}

func (h *Handler) handleHome(c echo.Context) error {
	return c.Render(http.StatusOK, "home", h.page(c, "Supermarkets"))
}

func (h *Handler) handleLogin(c echo.Context) error {
	ctx := c.Request().Context()

	sid, _ := currentSession(c)
	if sid == "" {
		sid = session.NewID()
	}

	sess := &session.Session{
		State:    auth.NewState(),
		Verifier: auth.NewVerifier(),
	}
	if err := h.sessions.Save(ctx, sid, sess); err != nil {
		return fmt.Errorf("failed to save session: %v", err)
	}
	h.setSessionCookie(c, sid)

	return c.Redirect(http.StatusSeeOther, h.auth.AuthCodeURL(sess.State, sess.Verifier))
}

func (h *Handler) handleCallback(c echo.Context) error {
	ctx := c.Request().Context()

	sid, sess := currentSession(c)
	if sid == "" || sess == nil || sess.State == "" || c.QueryParam("state") != sess.State {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid login state")
	}
	if e := c.QueryParam("error"); e != "" {
		return echo.NewHTTPError(http.StatusUnauthorized, e+": "+c.QueryParam("error_description"))
	}

	login, err := h.auth.Exchange(ctx, c.QueryParam("code"), sess.Verifier)
	if err != nil {
		slog.ErrorContext(
			ctx, "login failed",
			slog.String("error", err.Error()),
			slog.String("module", "web"),
		)
		return echo.NewHTTPError(http.StatusBadGateway, "login failed")
	}

	// a fresh id once logged in
	if err := h.sessions.Delete(ctx, sid); err != nil {
		slog.WarnContext(ctx, "failed to drop login session", slog.String("error", err.Error()), slog.String("module", "web"))
	}
	h.workspaces.drop(sid)

	newSid := session.NewID()
	err = h.sessions.Save(ctx, newSid, &session.Session{
		Token:   login.Token,
		IDToken: login.IDToken,
		Subject: login.Subject,
		Name:    login.Name,
	})
	if err != nil {
		return fmt.Errorf("failed to save session: %v", err)
	}
	h.setSessionCookie(c, newSid)

	return c.Redirect(http.StatusSeeOther, supermarkets.CollectionPath)
}

func (h *Handler) handleLogout(c echo.Context) error {
	ctx := c.Request().Context()

	target := "/"
	sid, sess := currentSession(c)
	if sid != "" {
		if err := h.sessions.Delete(ctx, sid); err != nil {
			slog.WarnContext(ctx, "failed to delete session", slog.String("error", err.Error()), slog.String("module", "web"))
		}
		h.workspaces.drop(sid)
		if sess != nil && sess.IDToken != "" {
			if u := h.auth.EndSessionURL(sess.IDToken, strings.TrimSuffix(h.opts.PublicURL, "/")+"/"); u != "" {
				target = u
			}
		}
	}
	h.clearSessionCookie(c)

	return c.Redirect(http.StatusSeeOther, target)
}

func (h *Handler) listPage(c echo.Context, store *manager.Store, view *manager.ListView) pageData {
	data := h.page(c, "Supermarket Manager")
	data.Loading = store.State() == manager.StateLoading
	data.Items = view.Items()
	data.ShowEmpty = view.ShowEmpty()
	data.EmptyMessage = manager.EmptyMessage
	data.NewHref = supermarkets.CollectionPath + "/" + supermarkets.NewParam
	data.Error = store.Errors().Message()
	return data
}

func (h *Handler) handleList(c echo.Context) error {
	ctx := c.Request().Context()
	store := h.store(c)
	view := manager.NewListView(store, &redirectNavigator{})

	// failures land in the error channel and are rendered below
	_ = view.Mount(ctx)

	data := h.listPage(c, store, view)
	if data.Error == "" {
		etag := listETag(store.Fingerprint(), data.Items)
		c.Response().Header().Set("ETag", etag)
		c.Response().Header().Set("Cache-Control", "private, no-cache")
		if c.Request().Header.Get("If-None-Match") == etag {
			return c.NoContent(http.StatusNotModified)
		}
	}
	return c.Render(http.StatusOK, "list", data)
}

// listETag covers the records and the relative times rendered for them, so
// a cached page goes stale once "Updated ..." would read differently.
func listETag(fingerprint uint64, items []manager.Item) string {
	hasher := xxh3.New()
	fmt.Fprintf(hasher, "%x", fingerprint)
	for _, item := range items {
		fmt.Fprintf(hasher, "\x00%d\x00%s", item.ID, item.Secondary)
	}
	return fmt.Sprintf(`"%x"`, hasher.Sum64())
}

func (h *Handler) handleEditor(c echo.Context) error {
	ctx := c.Request().Context()
	store := h.store(c)
	nav := &redirectNavigator{}
	view := manager.NewListView(store, nav)

	_ = view.Mount(ctx)

	editor, ok := manager.OpenEditor(store, nav, c.Param("id"))
	if target, redirect := nav.Target(); redirect {
		return c.Redirect(http.StatusSeeOther, target)
	}

	data := h.listPage(c, store, view)
	if ok {
		data.Editor = &editorData{
			Action: c.Request().URL.Path,
			IsNew:  editor.IsNew(),
			Values: editor.Values(),
		}
	}
	return c.Render(http.StatusOK, "list", data)
}

// ensureMounted loads a workspace that has not been shown yet, e.g. after a
// restart dropped the in-memory workspaces.
func ensureMounted(ctx context.Context, store *manager.Store) {
	if store.State() == manager.StateLoading {
		_ = store.Mount(ctx)
	}
}

func (h *Handler) handleSubmit(c echo.Context) error {
	ctx := c.Request().Context()
	store := h.store(c)
	nav := &redirectNavigator{}

	ensureMounted(ctx, store)

	editor, ok := manager.OpenEditor(store, nav, c.Param("id"))
	if !ok {
		target, redirect := nav.Target()
		if !redirect {
			target = supermarkets.CollectionPath
		}
		return c.Redirect(http.StatusSeeOther, target)
	}

	if c.FormValue("action") == "cancel" {
		editor.Cancel()
	} else {
		fields := supermarkets.Fields{
			Identifier: c.FormValue("identifier"),
			Name:       c.FormValue("name"),
			URL:        c.FormValue("url"),
		}
		// the error is already on the error channel
		_ = editor.Submit(ctx, fields)
	}

	target, _ := nav.Target()
	return c.Redirect(http.StatusSeeOther, target)
}

func (h *Handler) findRecord(c echo.Context, store *manager.Store) (supermarkets.Supermarket, bool) {
	id, err := supermarkets.ParseID(c.Param("id"))
	if err != nil {
		return supermarkets.Supermarket{}, false
	}
	return store.Find(id)
}

func (h *Handler) handleDeletePrompt(c echo.Context) error {
	ctx := c.Request().Context()
	store := h.store(c)
	ensureMounted(ctx, store)

	record, ok := h.findRecord(c, store)
	if !ok {
		return c.Redirect(http.StatusSeeOther, supermarkets.CollectionPath)
	}

	data := h.page(c, "Delete supermarket")
	data.Prompt = manager.DeletePrompt(record)
	data.Action = c.Request().URL.Path
	data.Error = store.Errors().Message()
	return c.Render(http.StatusOK, "confirm", data)
}

func (h *Handler) handleDelete(c echo.Context) error {
	ctx := c.Request().Context()
	store := h.store(c)
	ensureMounted(ctx, store)

	record, ok := h.findRecord(c, store)
	if !ok {
		return c.Redirect(http.StatusSeeOther, supermarkets.CollectionPath)
	}

	answer := c.FormValue("confirm") == "yes"
	confirmer := manager.ConfirmFunc(func(ctx context.Context, prompt string) (bool, error) {
		return answer, nil
	})

	view := manager.NewListView(store, &redirectNavigator{})
	_ = view.Delete(ctx, record, confirmer)

	return c.Redirect(http.StatusSeeOther, supermarkets.CollectionPath)
}

func (h *Handler) handleAcknowledge(c echo.Context) error {
	h.store(c).Errors().Acknowledge()
	return c.Redirect(http.StatusSeeOther, supermarkets.CollectionPath)
}
