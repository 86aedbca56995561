package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/pznebula/valuator/valuator/database/models"
	"github.com/uptrace/bun"
)

type FieldRepository interface {
	GetByGame(ctx context.Context, gameName string) ([]*models.GameField, error)
	GetAll(ctx context.Context) ([]*models.GameField, error)
	Upsert(ctx context.Context, field *models.GameField) error
	Delete(ctx context.Context, gameName, fieldKey string) error
}

type fieldRepository struct {
	db *bun.DB
}

func NewFieldRepository(db *bun.DB) FieldRepository {
	return &fieldRepository{db: db}
}

func (r *fieldRepository) GetByGame(ctx context.Context, gameName string) ([]*models.GameField, error) {
	var fields []*models.GameField
	err := r.db.NewSelect().
		Model(&fields).
		Where("game_name = ?", gameName).
		Order("position ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return fields, nil
}

func (r *fieldRepository) GetAll(ctx context.Context) ([]*models.GameField, error) {
	var fields []*models.GameField
	err := r.db.NewSelect().
		Model(&fields).
		Order("game_name ASC", "position ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return fields, nil
}

func (r *fieldRepository) Upsert(ctx context.Context, field *models.GameField) error {
	var existing models.GameField
	err := r.db.NewSelect().
		Model(&existing).
		Where("game_name = ? AND field_key = ?", field.GameName, field.FieldKey).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		_, err = r.db.NewInsert().Model(field).Exec(ctx)
		return err
	}
	if err != nil {
		return err
	}

	_, err = r.db.NewUpdate().
		Model(field).
		Set("label = ?", field.Label).
		Set("placeholder = ?", field.Placeholder).
		Set("type = ?", field.Type).
		Set("options = ?", field.Options).
		Set("group_name = ?", field.GroupName).
		Set("position = ?", field.Position).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("game_name = ? AND field_key = ?", field.GameName, field.FieldKey).
		Exec(ctx)
	return err
}

func (r *fieldRepository) Delete(ctx context.Context, gameName, fieldKey string) error {
	_, err := r.db.NewDelete().
		Model(&models.GameField{}).
		Where("game_name = ? AND field_key = ?", gameName, fieldKey).
		Exec(ctx)
	return err
}
