package engine

import (
	"context"

	"github.com/pznebula/valuator/valuator/catalog"
	"github.com/pznebula/valuator/valuator/database/models"
)

// FieldStore is the slice of the field repository the engine needs.
type FieldStore interface {
	GetByGame(ctx context.Context, gameName string) ([]*models.GameField, error)
}

// FieldResolver merges persisted field definitions over the built-in catalog
// defaults. The flagship game keeps its built-in definitions so catalog data
// and admin edits cannot drift apart for it.
type FieldResolver struct {
	store  FieldStore
	cat    *catalog.Catalog
	pinned string
}

func NewFieldResolver(store FieldStore, cat *catalog.Catalog) *FieldResolver {
	return &FieldResolver{store: store, cat: cat, pinned: "三角洲行动"}
}

// FieldsFor returns the effective field definitions for a game.
func (r *FieldResolver) FieldsFor(ctx context.Context, gameName string) ([]catalog.Field, error) {
	defaults := r.cat.Fields(gameName)
	if gameName == r.pinned || r.store == nil {
		return defaults, nil
	}

	stored, err := r.store.GetByGame(ctx, gameName)
	if err != nil {
		return nil, err
	}
	if len(stored) == 0 {
		return defaults, nil
	}

	fields := make([]catalog.Field, 0, len(stored))
	for _, f := range stored {
		fields = append(fields, catalog.Field{
			Key:         f.FieldKey,
			Label:       f.Label,
			Placeholder: f.Placeholder,
			Type:        catalog.FieldType(f.Type),
			Options:     f.Options,
			Group:       f.GroupName,
		})
	}
	return fields, nil
}
