package web

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/totegamma/supermarkets/internal/infrastructure/session"
)

const (
	ctxSessionID = "sm-sessionID"
	ctxSession   = "sm-session"
)

// loadSession resolves the session cookie. Unknown or expired ids leave the
// request without a session.
func (h *Handler) loadSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cookie, err := c.Cookie(h.opts.CookieName)
		if err == nil && cookie.Value != "" {
			sess, err := h.sessions.Get(c.Request().Context(), cookie.Value)
			switch {
			case err == nil:
				c.Set(ctxSessionID, cookie.Value)
				c.Set(ctxSession, sess)
			case !errors.Is(err, session.ErrNotFound):
				slog.WarnContext(
					c.Request().Context(), "failed to load session",
					slog.String("error", err.Error()),
					slog.String("module", "web"),
				)
			}
		}
		return next(c)
	}
}

// requireLogin sends anonymous visitors to the login flow.
func (h *Handler) requireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sid, sess := currentSession(c)
		if sid == "" || !sess.LoggedIn() {
			return c.Redirect(http.StatusSeeOther, "/login")
		}
		return next(c)
	}
}

func currentSession(c echo.Context) (string, *session.Session) {
	sid, _ := c.Get(ctxSessionID).(string)
	sess, _ := c.Get(ctxSession).(*session.Session)
	return sid, sess
}

func (h *Handler) setSessionCookie(c echo.Context, sid string) {
	c.SetCookie(&http.Cookie{
		Name:     h.opts.CookieName,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.opts.SessionTTL / time.Second),
	})
}

func (h *Handler) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     h.opts.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
