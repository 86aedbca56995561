package repositories

import (
	"context"

	"github.com/pznebula/valuator/valuator/database/models"
	"github.com/uptrace/bun"
)

type RuleRepository interface {
	GetByGame(ctx context.Context, gameName string) ([]*models.PriceRule, error)
	Insert(ctx context.Context, rule *models.PriceRule) error
	InsertBatch(ctx context.Context, rules []*models.PriceRule) error
	Update(ctx context.Context, rule *models.PriceRule) error
	Delete(ctx context.Context, id int64) error
}

type ruleRepository struct {
	db *bun.DB
}

func NewRuleRepository(db *bun.DB) RuleRepository {
	return &ruleRepository{db: db}
}

func (r *ruleRepository) GetByGame(ctx context.Context, gameName string) ([]*models.PriceRule, error) {
	var rules []*models.PriceRule
	err := r.db.NewSelect().
		Model(&rules).
		Where("game_name = ?", gameName).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *ruleRepository) Insert(ctx context.Context, rule *models.PriceRule) error {
	_, err := r.db.NewInsert().Model(rule).Exec(ctx)
	return err
}

func (r *ruleRepository) InsertBatch(ctx context.Context, rules []*models.PriceRule) error {
	if len(rules) == 0 {
		return nil
	}
	_, err := r.db.NewInsert().Model(&rules).Exec(ctx)
	return err
}

func (r *ruleRepository) Update(ctx context.Context, rule *models.PriceRule) error {
	_, err := r.db.NewUpdate().
		Model(rule).
		WherePK().
		Exec(ctx)
	return err
}

func (r *ruleRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.NewDelete().
		Model(&models.PriceRule{}).
		Where("id = ?", id).
		Exec(ctx)
	return err
}
