package usecase

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/totegamma/supermarkets"
	"github.com/totegamma/supermarkets/internal/domain"
)

var tracer = otel.Tracer("usecase")

// ValidationError is returned for input the API refuses to store.
type ValidationError struct {
	Field string
}

func (e ValidationError) Error() string {
	return e.Field + " is required"
}

type SupermarketUsecase struct {
	repo      SupermarketRepository
	publisher EventPublisher
}

// NewSupermarketUsecase builds the usecase. publisher may be nil, in which
// case no change events are sent.
func NewSupermarketUsecase(repo SupermarketRepository, publisher EventPublisher) *SupermarketUsecase {
	return &SupermarketUsecase{repo: repo, publisher: publisher}
}

func (uc *SupermarketUsecase) List(ctx context.Context) ([]supermarkets.Supermarket, error) {
	ctx, span := tracer.Start(ctx, "Supermarket.Usecase.List")
	defer span.End()

	list, err := uc.repo.List(ctx)
	if err != nil {
		span.RecordError(errors.Wrap(err, "list failed"))
		return nil, err
	}
	return list, nil
}

func (uc *SupermarketUsecase) Get(ctx context.Context, id int64) (supermarkets.Supermarket, error) {
	ctx, span := tracer.Start(ctx, "Supermarket.Usecase.Get")
	defer span.End()

	item, err := uc.repo.Get(ctx, id)
	if err != nil {
		span.RecordError(errors.Wrap(err, "get failed"))
		return supermarkets.Supermarket{}, err
	}
	return item, nil
}

func (uc *SupermarketUsecase) Create(ctx context.Context, fields supermarkets.Fields) (supermarkets.Supermarket, error) {
	ctx, span := tracer.Start(ctx, "Supermarket.Usecase.Create")
	defer span.End()

	if !fields.HasName() {
		return supermarkets.Supermarket{}, ValidationError{Field: "name"}
	}

	created, err := uc.repo.Create(ctx, fields)
	if err != nil {
		span.RecordError(errors.Wrap(err, "create failed"))
		return supermarkets.Supermarket{}, err
	}

	uc.publish(ctx, supermarkets.EventCreated, created.ID)
	return created, nil
}

func (uc *SupermarketUsecase) Update(ctx context.Context, id int64, fields supermarkets.Fields) (supermarkets.Supermarket, error) {
	ctx, span := tracer.Start(ctx, "Supermarket.Usecase.Update")
	defer span.End()

	if !fields.HasName() {
		return supermarkets.Supermarket{}, ValidationError{Field: "name"}
	}

	updated, err := uc.repo.Update(ctx, id, fields)
	if err != nil {
		span.RecordError(errors.Wrap(err, "update failed"))
		return supermarkets.Supermarket{}, err
	}

	uc.publish(ctx, supermarkets.EventUpdated, updated.ID)
	return updated, nil
}

func (uc *SupermarketUsecase) Delete(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "Supermarket.Usecase.Delete")
	defer span.End()

	err := uc.repo.Delete(ctx, id)
	if err != nil {
		span.RecordError(errors.Wrap(err, "delete failed"))
		return err
	}

	uc.publish(ctx, supermarkets.EventDeleted, id)
	return nil
}

// publish never fails the request; the write has already happened.
func (uc *SupermarketUsecase) publish(ctx context.Context, eventType string, id int64) {
	if uc.publisher == nil {
		return
	}
	err := uc.publisher.Publish(ctx, domain.SignalChannel, supermarkets.Event{Type: eventType, ID: id})
	if err != nil {
		slog.WarnContext(
			ctx, "failed to publish event",
			slog.String("error", err.Error()),
			slog.String("type", eventType),
			slog.Int64("id", id),
			slog.String("module", "usecase"),
		)
	}
}
