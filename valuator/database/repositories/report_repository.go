package repositories

import (
	"context"

	"github.com/pznebula/valuator/valuator/database/models"
	"github.com/uptrace/bun"
)

// Bounded history sizes per game.
const (
	maxReportsPerGame  = 10
	maxInsightsPerGame = 50
)

type ReportRepository interface {
	GetByGame(ctx context.Context, gameName string) ([]*models.MarketReport, error)
	Insert(ctx context.Context, report *models.MarketReport) error
}

type reportRepository struct {
	db *bun.DB
}

func NewReportRepository(db *bun.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) GetByGame(ctx context.Context, gameName string) ([]*models.MarketReport, error) {
	var reports []*models.MarketReport
	err := r.db.NewSelect().
		Model(&reports).
		Where("game_name = ?", gameName).
		Order("date DESC").
		Limit(maxReportsPerGame).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return reports, nil
}

// Insert stores the report and trims the game's history to the bound.
func (r *reportRepository) Insert(ctx context.Context, report *models.MarketReport) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(report).Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewDelete().
			Model(&models.MarketReport{}).
			Where("game_name = ?", report.GameName).
			Where("id NOT IN (SELECT id FROM market_reports WHERE game_name = ? ORDER BY date DESC LIMIT ?)",
				report.GameName, maxReportsPerGame).
			Exec(ctx)
		return err
	})
}

type InsightRepository interface {
	GetByGame(ctx context.Context, gameName string) ([]*models.LearningInsight, error)
	Insert(ctx context.Context, insight *models.LearningInsight) error
}

type insightRepository struct {
	db *bun.DB
}

func NewInsightRepository(db *bun.DB) InsightRepository {
	return &insightRepository{db: db}
}

func (r *insightRepository) GetByGame(ctx context.Context, gameName string) ([]*models.LearningInsight, error) {
	var insights []*models.LearningInsight
	err := r.db.NewSelect().
		Model(&insights).
		Where("game_name = ?", gameName).
		Order("created_at DESC").
		Limit(maxInsightsPerGame).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return insights, nil
}

func (r *insightRepository) Insert(ctx context.Context, insight *models.LearningInsight) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(insight).Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewDelete().
			Model(&models.LearningInsight{}).
			Where("game_name = ?", insight.GameName).
			Where("id NOT IN (SELECT id FROM learning_insights WHERE game_name = ? ORDER BY created_at DESC LIMIT ?)",
				insight.GameName, maxInsightsPerGame).
			Exec(ctx)
		return err
	})
}
