package usecase

import (
	"context"

	"github.com/totegamma/supermarkets"
)

// SupermarketRepository defines storage operations for supermarkets.
type SupermarketRepository interface {
	List(ctx context.Context) ([]supermarkets.Supermarket, error)
	Get(ctx context.Context, id int64) (supermarkets.Supermarket, error)
	Create(ctx context.Context, fields supermarkets.Fields) (supermarkets.Supermarket, error)
	Update(ctx context.Context, id int64, fields supermarkets.Fields) (supermarkets.Supermarket, error)
	Delete(ctx context.Context, id int64) error
}

// EventPublisher fans change notifications out to other instances.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, event supermarkets.Event) error
}
