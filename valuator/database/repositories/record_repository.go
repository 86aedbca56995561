package repositories

import (
	"context"

	"github.com/pznebula/valuator/valuator/database/models"
	"github.com/uptrace/bun"
)

type RecordRepository interface {
	GetByGame(ctx context.Context, gameName string) ([]*models.MarketRecord, error)
	GetSoldByGame(ctx context.Context, gameName string) ([]*models.MarketRecord, error)
	Insert(ctx context.Context, record *models.MarketRecord) error
	InsertBatch(ctx context.Context, records []*models.MarketRecord) error
	Update(ctx context.Context, record *models.MarketRecord) error
	Delete(ctx context.Context, id int64) error
	CountByGame(ctx context.Context, gameName string) (int, error)
}

type recordRepository struct {
	db *bun.DB
}

func NewRecordRepository(db *bun.DB) RecordRepository {
	return &recordRepository{db: db}
}

func (r *recordRepository) GetByGame(ctx context.Context, gameName string) ([]*models.MarketRecord, error) {
	var records []*models.MarketRecord
	err := r.db.NewSelect().
		Model(&records).
		Where("game_name = ?", gameName).
		Order("recorded_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *recordRepository) GetSoldByGame(ctx context.Context, gameName string) ([]*models.MarketRecord, error) {
	var records []*models.MarketRecord
	err := r.db.NewSelect().
		Model(&records).
		Where("game_name = ? AND kind = ?", gameName, models.RecordKindSold).
		Order("recorded_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *recordRepository) Insert(ctx context.Context, record *models.MarketRecord) error {
	_, err := r.db.NewInsert().Model(record).Exec(ctx)
	return err
}

func (r *recordRepository) InsertBatch(ctx context.Context, records []*models.MarketRecord) error {
	if len(records) == 0 {
		return nil
	}
	_, err := r.db.NewInsert().Model(&records).Exec(ctx)
	return err
}

func (r *recordRepository) Update(ctx context.Context, record *models.MarketRecord) error {
	_, err := r.db.NewUpdate().
		Model(record).
		WherePK().
		Exec(ctx)
	return err
}

func (r *recordRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.NewDelete().
		Model(&models.MarketRecord{}).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func (r *recordRepository) CountByGame(ctx context.Context, gameName string) (int, error) {
	return r.db.NewSelect().
		Model(&models.MarketRecord{}).
		Where("game_name = ?", gameName).
		Count(ctx)
}
