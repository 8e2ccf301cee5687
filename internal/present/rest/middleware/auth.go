package middleware

import (
	"context"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/totegamma/supermarkets/internal/domain"
	"github.com/totegamma/supermarkets/internal/present/rest/presenter"
	"github.com/totegamma/supermarkets/internal/service"
)

var tracer = otel.Tracer("auth")

type AuthMiddleware struct {
	auth *service.AuthService
}

func NewAuthMiddleware(auth *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		auth: auth,
	}
}

// RequireBearer rejects requests without a valid access token and stores the
// requester on the request context otherwise.
func (s *AuthMiddleware) RequireBearer(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "Auth.Middleware.RequireBearer")
		defer span.End()

		authHeader := c.Request().Header.Get("authorization")
		if authHeader == "" {
			span.RecordError(fmt.Errorf("missing authentication header"))
			return presenter.Unauthorized(c, "missing bearer token")
		}

		authType, token, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(authType, "Bearer") {
			span.RecordError(fmt.Errorf("only Bearer is acceptable"))
			return presenter.Unauthorized(c, "only Bearer is acceptable")
		}

		result, err := s.auth.AuthBearer(ctx, strings.TrimSpace(token))
		if err != nil {
			span.RecordError(errors.Wrap(err, "AuthMiddleware.RequireBearer: s.auth.AuthBearer failed"))
			return presenter.Unauthorized(c, "invalid bearer token")
		}

		ctx = context.WithValue(ctx, domain.RequesterSubjectCtxKey, result.Subject)
		ctx = context.WithValue(ctx, domain.RequesterUserIDCtxKey, result.UserID)
		span.SetAttributes(attribute.String("RequesterSubject", result.Subject))

		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}
