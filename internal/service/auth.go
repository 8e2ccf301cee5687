package service

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/totegamma/supermarkets/internal/domain"
)

var tracer = otel.Tracer("auth")

// TokenVerifier checks a raw bearer token against the issuer.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (domain.Claims, error)
}

type AuthService struct {
	verifier TokenVerifier
}

func NewAuthService(verifier TokenVerifier) *AuthService {
	return &AuthService{
		verifier: verifier,
	}
}

type AuthResult struct {
	Subject string
	UserID  string
}

func (s *AuthService) AuthBearer(ctx context.Context, token string) (*AuthResult, error) {
	ctx, span := tracer.Start(ctx, "Auth.Service.AuthBearer")
	defer span.End()

	if token == "" {
		err := fmt.Errorf("empty bearer token")
		span.RecordError(err)
		return nil, err
	}

	claims, err := s.verifier.Verify(ctx, token)
	if err != nil {
		span.RecordError(errors.Wrap(err, "token verification failed"))
		return nil, err
	}

	if claims.Subject == "" {
		err := fmt.Errorf("token has no subject")
		span.RecordError(err)
		return nil, err
	}

	return &AuthResult{
		Subject: claims.Subject,
		UserID:  claims.UserID,
	}, nil
}
