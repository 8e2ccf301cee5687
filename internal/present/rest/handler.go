package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/totegamma/supermarkets"
	"github.com/totegamma/supermarkets/internal/domain"
	"github.com/totegamma/supermarkets/internal/present/rest/presenter"
	"github.com/totegamma/supermarkets/internal/usecase"
)

// EventSubscriber is the receiving side of the change signal.
type EventSubscriber interface {
	Subscribe(ctx context.Context, channel string) (<-chan supermarkets.Event, error)
}

type Handler struct {
	supermarket *usecase.SupermarketUsecase
	signal      EventSubscriber
	auth        echo.MiddlewareFunc
}

// NewHandler wires the API. signal may be nil, which disables /realtime.
func NewHandler(
	supermarket *usecase.SupermarketUsecase,
	signal EventSubscriber,
	auth echo.MiddlewareFunc,
) *Handler {
	return &Handler{
		supermarket: supermarket,
		signal:      signal,
		auth:        auth,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	g := e.Group(supermarkets.CollectionPath, h.auth)
	g.GET("", h.handleList)
	g.POST("", h.handleCreate)
	g.PUT("/:id", h.handleUpdate)
	g.DELETE("/:id", h.handleDelete)

	if h.signal != nil {
		e.GET("/realtime", h.handleRealtime)
	}
}

func (h *Handler) handleList(c echo.Context) error {
	ctx := c.Request().Context()

	list, err := h.supermarket.List(ctx)
	if err != nil {
		return presenter.InternalError(c, err)
	}
	if list == nil {
		list = []supermarkets.Supermarket{}
	}
	return presenter.OK(c, list)
}

// bindFields decodes the body strictly as JSON; echo's Bind would also accept
// form and query values.
func bindFields(c echo.Context) (supermarkets.Fields, error) {
	var fields supermarkets.Fields
	err := json.NewDecoder(c.Request().Body).Decode(&fields)
	return fields, err
}

func (h *Handler) handleCreate(c echo.Context) error {
	ctx := c.Request().Context()

	fields, err := bindFields(c)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid json body")
	}

	created, err := h.supermarket.Create(ctx, fields)
	if err != nil {
		return h.mutationError(c, err)
	}
	return presenter.OK(c, created)
}

func (h *Handler) handleUpdate(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := supermarkets.ParseID(c.Param("id"))
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	fields, err := bindFields(c)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid json body")
	}

	updated, err := h.supermarket.Update(ctx, id, fields)
	if err != nil {
		return h.mutationError(c, err)
	}
	return presenter.OK(c, updated)
}

func (h *Handler) handleDelete(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := supermarkets.ParseID(c.Param("id"))
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	err = h.supermarket.Delete(ctx, id)
	if err != nil {
		return h.mutationError(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) mutationError(c echo.Context, err error) error {
	var verr usecase.ValidationError
	var nf domain.NotFoundError
	switch {
	case errors.As(err, &verr):
		return presenter.BadRequest(c, verr)
	case errors.As(err, &nf):
		return presenter.NotFound(c, nf.Error())
	case errors.Is(err, domain.ErrNotFound):
		return presenter.NotFound(c, "supermarket not found")
	default:
		return presenter.InternalError(c, err)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleRealtime forwards change events to the socket. The socket is
// write-only; reads only serve to notice the peer closing.
func (h *Handler) handleRealtime(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer ws.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	events, err := h.signal.Subscribe(ctx, domain.SignalChannel)
	if err != nil {
		slog.ErrorContext(
			ctx, "Failed to subscribe",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return nil
	}

	go func() {
		defer cancel()
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				wsErr, ok := err.(*websocket.CloseError)
				if ok && !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
					slog.DebugContext(
						ctx, "WebSocket closed",
						slog.String("error", wsErr.Error()),
						slog.String("module", "socket"),
					)
				}
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if err := ws.WriteJSON(event); err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}
