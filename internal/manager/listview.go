package manager

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/totegamma/supermarkets"
)

const EmptyMessage = "No supermarkets to display"

type Item struct {
	ID        int64
	Name      string
	Secondary string
	Href      string
	Record    supermarkets.Supermarket
}

type ListView struct {
	store *Store
	nav   Navigator
}

func NewListView(store *Store, nav Navigator) *ListView {
	return &ListView{
		store: store,
		nav:   nav,
	}
}

func (v *ListView) Mount(ctx context.Context) error {
	return v.store.Mount(ctx)
}

// Items returns the saved records in display order.
func (v *ListView) Items() []Item {
	records := Sort(v.store.Snapshot())

	items := make([]Item, 0, len(records))
	for _, record := range records {
		if !record.Persisted() {
			continue
		}
		item := Item{
			ID:     record.ID,
			Name:   record.Name,
			Href:   supermarkets.ItemPath(record.ID),
			Record: record,
		}
		if record.UpdatedAt.IsSet() {
			item.Secondary = "Updated " + humanize.Time(record.UpdatedAt.Time)
		}
		items = append(items, item)
	}
	return items
}

// ShowEmpty is true once loading finished with nothing to show.
func (v *ListView) ShowEmpty() bool {
	return v.store.State() == StateReady && len(v.Items()) == 0
}

func (v *ListView) New() {
	v.nav.GoTo(supermarkets.CollectionPath + "/" + supermarkets.NewParam)
}

func (v *ListView) Open(id int64) {
	v.nav.GoTo(supermarkets.ItemPath(id))
}

func DeletePrompt(record supermarkets.Supermarket) string {
	return fmt.Sprintf("Are you sure you want to delete \"%s\"", record.Name)
}

// Delete asks for confirmation and, only when given, deletes the record and
// refreshes. A declined prompt is not an error.
func (v *ListView) Delete(ctx context.Context, record supermarkets.Supermarket, confirmer Confirmer) error {
	ok, err := confirmer.Confirm(ctx, DeletePrompt(record))
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	return v.store.Delete(ctx, record.ID)
}

// Sort orders records by updatedAt descending with unset timestamps last,
// then by name ascending.
func Sort(records []supermarkets.Supermarket) []supermarkets.Supermarket {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, compareRecords)
	return sorted
}

func compareRecords(a, b supermarkets.Supermarket) int {
	if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
		return c
	}
	return strings.Compare(a.Name, b.Name)
}
