package manager

import (
	"context"

	"github.com/totegamma/supermarkets"
)

// Editor edits a single supermarket in a modal form. The seed is either an
// existing record or the zero value for a new one.
type Editor struct {
	store *Store
	nav   Navigator
	seed  supermarkets.Supermarket
}

func NewEditor(store *Store, nav Navigator, seed supermarkets.Supermarket) *Editor {
	return &Editor{
		store: store,
		nav:   nav,
		seed:  seed,
	}
}

// OpenEditor resolves the /supermarkets/:id route parameter. It returns false
// while the store is still loading, and also when the id matches nothing, in
// which case the navigator is sent back to the list.
func OpenEditor(store *Store, nav Navigator, param string) (*Editor, bool) {
	if store.State() == StateLoading {
		return nil, false
	}

	if param == supermarkets.NewParam {
		return NewEditor(store, nav, supermarkets.Supermarket{}), true
	}

	id, err := supermarkets.ParseID(param)
	if err != nil {
		nav.GoTo(supermarkets.CollectionPath)
		return nil, false
	}

	record, ok := store.Find(id)
	if !ok {
		nav.GoTo(supermarkets.CollectionPath)
		return nil, false
	}

	return NewEditor(store, nav, record), true
}

func (e *Editor) Seed() supermarkets.Supermarket {
	return e.seed
}

func (e *Editor) IsNew() bool {
	return !e.seed.Persisted()
}

func (e *Editor) Values() supermarkets.Fields {
	return e.seed.Fields()
}

// Submit saves the form and navigates back to the list. Navigation happens
// whether or not the save succeeded; a failure only shows up through the
// error channel and the refreshed list.
func (e *Editor) Submit(ctx context.Context, fields supermarkets.Fields) error {
	var err error
	if e.seed.Persisted() {
		err = e.store.Update(ctx, e.seed.ID, fields)
	} else {
		err = e.store.Create(ctx, fields)
	}
	e.nav.GoBack()
	return err
}

func (e *Editor) Cancel() {
	e.nav.GoBack()
}
