package manager

import (
	"context"

	"github.com/totegamma/supermarkets"
)

// RecordService performs the four CRUD calls against the API.
type RecordService interface {
	List(ctx context.Context) ([]supermarkets.Supermarket, error)
	Create(ctx context.Context, fields supermarkets.Fields) (supermarkets.Supermarket, error)
	Update(ctx context.Context, id int64, fields supermarkets.Fields) (supermarkets.Supermarket, error)
	Delete(ctx context.Context, id int64) error
}

// Navigator is the routing capability handed to the views.
type Navigator interface {
	GoTo(path string)
	GoBack()
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function into a Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}
