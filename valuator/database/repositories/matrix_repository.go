package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/pznebula/valuator/valuator/catalog"
	"github.com/pznebula/valuator/valuator/database/models"
	"github.com/uptrace/bun"
)

type MatrixRepository interface {
	// GetByGame returns the matrix for a game, building a seeded default
	// when the game has never been calibrated.
	GetByGame(ctx context.Context, gameName string) (*models.PricingMatrix, error)
	Save(ctx context.Context, matrix *models.PricingMatrix) error
}

type matrixRepository struct {
	db *bun.DB
}

func NewMatrixRepository(db *bun.DB) MatrixRepository {
	return &matrixRepository{db: db}
}

func (r *matrixRepository) GetByGame(ctx context.Context, gameName string) (*models.PricingMatrix, error) {
	var matrix models.PricingMatrix
	err := r.db.NewSelect().
		Model(&matrix).
		Where("game_name = ?", gameName).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.PricingMatrix{
			GameName:         gameName,
			Rates:            catalog.DefaultMatrixRates(gameName),
			RealNameDiscount: catalog.DefaultRealNameDiscount,
			LastUpdated:      time.Now(),
		}, nil
	}
	if err != nil {
		return nil, err
	}
	if matrix.Rates == nil {
		matrix.Rates = make(map[string]float64)
	}
	return &matrix, nil
}

func (r *matrixRepository) Save(ctx context.Context, matrix *models.PricingMatrix) error {
	_, err := r.db.NewInsert().
		Model(matrix).
		On("CONFLICT (game_name) DO UPDATE").
		Set("rates = EXCLUDED.rates").
		Set("real_name_discount = EXCLUDED.real_name_discount").
		Set("last_updated = EXCLUDED.last_updated").
		Exec(ctx)
	return err
}
