package migration

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pznebula/valuator/valuator/database/models"
)

// Migrator imports the legacy browser-era dataset from MongoDB into
// Postgres: market references, calibrated matrices and manual price rules.
type Migrator struct {
	pgDB      *bun.DB
	mongoDB   *mongo.Database
	batchSize int
	collNames map[string]string
}

func NewMigrator(pgDB *bun.DB, client *mongo.Client, dbName string) *Migrator {
	return &Migrator{
		pgDB:      pgDB,
		mongoDB:   client.Database(dbName),
		batchSize: 1000,
		collNames: map[string]string{
			"references": "references",
			"matrices":   "pricing_matrices",
			"rules":      "price_rules",
		},
	}
}

// SetBatchSize overrides the default insert batch size.
func (m *Migrator) SetBatchSize(size int) {
	if size > 0 {
		m.batchSize = size
	}
}

// SetCollectionName overrides a source collection name.
func (m *Migrator) SetCollectionName(kind, name string) {
	if kind != "" && name != "" {
		m.collNames[kind] = name
	}
}

// mongoReference mirrors the legacy reference document shape.
type mongoReference struct {
	GameName    string  `bson:"gameName"`
	Description string  `bson:"description"`
	Price       float64 `bson:"price"`
	Type        string  `bson:"type"`
	Source      string  `bson:"source"`
	Date        string  `bson:"date"`
}

type mongoMatrix struct {
	GameName         string             `bson:"gameName"`
	Rates            map[string]float64 `bson:"rates"`
	RealNameDiscount float64            `bson:"realNameDiscount"`
	LastUpdated      string             `bson:"lastUpdated"`
}

type mongoRule struct {
	GameName   string  `bson:"gameName"`
	FieldKey   string  `bson:"fieldKey"`
	MatchValue string  `bson:"matchValue"`
	Keyword    string  `bson:"keyword"`
	Price      float64 `bson:"price"`
	Type       string  `bson:"type"`
}

// MigrateAll runs every migration step in order. References come first so a
// partial run still leaves calibration with usable history.
func (m *Migrator) MigrateAll(ctx context.Context) error {
	start := time.Now()
	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"references", m.MigrateReferences},
		{"matrices", m.MigrateMatrices},
		{"rules", m.MigrateRules},
	}

	for _, step := range steps {
		slog.Info("Starting migration step",
			slog.String("type", "db"),
			slog.String("step", step.name))
		if err := step.fn(ctx); err != nil {
			return fmt.Errorf("migration failed at step %s: %w", step.name, err)
		}
	}

	slog.Info("Legacy migration completed",
		slog.String("type", "db"),
		slog.Duration("took", time.Since(start)))
	return nil
}

// MigrateReferences copies legacy market references into market_records.
func (m *Migrator) MigrateReferences(ctx context.Context) error {
	coll := m.mongoDB.Collection(m.collNames["references"])
	cur, err := coll.Find(ctx, bson.D{})
	if err != nil {
		slog.Warn("references collection not found, skipping",
			slog.String("type", "db"),
			slog.Any("error", err))
		return nil
	}
	defer cur.Close(ctx)

	total := 0
	skipped := 0
	var batch []*models.MarketRecord
	for cur.Next(ctx) {
		var ref mongoReference
		if err := cur.Decode(&ref); err != nil {
			skipped++
			continue
		}
		rec := convertReference(ref)
		if rec == nil {
			skipped++
			continue
		}
		batch = append(batch, rec)
		if len(batch) >= m.batchSize {
			if err := m.insertRecords(ctx, batch); err != nil {
				return err
			}
			total += len(batch)
			batch = batch[:0]
		}
	}
	if err := cur.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		if err := m.insertRecords(ctx, batch); err != nil {
			return err
		}
		total += len(batch)
	}

	slog.Info("References migrated",
		slog.String("type", "db"),
		slog.Int("imported", total),
		slog.Int("skipped", skipped))
	return nil
}

// MigrateMatrices copies calibrated matrices, one per game.
func (m *Migrator) MigrateMatrices(ctx context.Context) error {
	coll := m.mongoDB.Collection(m.collNames["matrices"])
	cur, err := coll.Find(ctx, bson.D{})
	if err != nil {
		slog.Warn("matrices collection not found, skipping",
			slog.String("type", "db"),
			slog.Any("error", err))
		return nil
	}
	defer cur.Close(ctx)

	count := 0
	for cur.Next(ctx) {
		var mm mongoMatrix
		if err := cur.Decode(&mm); err != nil || mm.GameName == "" {
			continue
		}
		matrix := &models.PricingMatrix{
			GameName:         mm.GameName,
			Rates:            mm.Rates,
			RealNameDiscount: mm.RealNameDiscount,
			LastUpdated:      parseLegacyDate(mm.LastUpdated),
		}
		if matrix.Rates == nil {
			matrix.Rates = map[string]float64{}
		}
		if matrix.RealNameDiscount <= 0 {
			matrix.RealNameDiscount = 1
		}
		_, err := m.pgDB.NewInsert().
			Model(matrix).
			On("CONFLICT (game_name) DO UPDATE").
			Set("rates = EXCLUDED.rates").
			Set("real_name_discount = EXCLUDED.real_name_discount").
			Set("last_updated = EXCLUDED.last_updated").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to upsert matrix for %s: %w", mm.GameName, err)
		}
		count++
	}
	if err := cur.Err(); err != nil {
		return err
	}

	slog.Info("Matrices migrated",
		slog.String("type", "db"),
		slog.Int("imported", count))
	return nil
}

// MigrateRules copies manual price rules.
func (m *Migrator) MigrateRules(ctx context.Context) error {
	coll := m.mongoDB.Collection(m.collNames["rules"])
	cur, err := coll.Find(ctx, bson.D{})
	if err != nil {
		slog.Warn("rules collection not found, skipping",
			slog.String("type", "db"),
			slog.Any("error", err))
		return nil
	}
	defer cur.Close(ctx)

	var batch []*models.PriceRule
	total := 0
	for cur.Next(ctx) {
		var mr mongoRule
		if err := cur.Decode(&mr); err != nil {
			continue
		}
		rule := convertRule(mr)
		if rule == nil {
			continue
		}
		batch = append(batch, rule)
		if len(batch) >= m.batchSize {
			if _, err := m.pgDB.NewInsert().Model(&batch).Exec(ctx); err != nil {
				return fmt.Errorf("failed to insert rules batch: %w", err)
			}
			total += len(batch)
			batch = batch[:0]
		}
	}
	if err := cur.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		if _, err := m.pgDB.NewInsert().Model(&batch).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert rules batch: %w", err)
		}
		total += len(batch)
	}

	slog.Info("Rules migrated",
		slog.String("type", "db"),
		slog.Int("imported", total))
	return nil
}

// insertRecords batch inserts and halves the batch on timeout, the pooler
// occasionally cuts off large inserts.
func (m *Migrator) insertRecords(ctx context.Context, records []*models.MarketRecord) error {
	if _, err := m.pgDB.NewInsert().Model(&records).Exec(ctx); err != nil {
		if isTimeoutErr(err) && len(records) > 1 {
			mid := len(records) / 2
			if err := m.insertRecords(ctx, records[:mid]); err != nil {
				return err
			}
			return m.insertRecords(ctx, records[mid:])
		}
		return fmt.Errorf("failed to insert records batch: %w", err)
	}
	return nil
}

func convertReference(ref mongoReference) *models.MarketRecord {
	if ref.GameName == "" || ref.Price <= 0 || ref.Description == "" {
		return nil
	}
	kind := models.RecordKindListing
	if ref.Type == "sold" {
		kind = models.RecordKindSold
	}
	source := ref.Source
	if source == "" {
		source = "legacy_import"
	}
	return &models.MarketRecord{
		GameName:    ref.GameName,
		Description: ref.Description,
		Price:       ref.Price,
		Kind:        kind,
		Source:      source,
		RecordedAt:  parseLegacyDate(ref.Date),
	}
}

func convertRule(mr mongoRule) *models.PriceRule {
	if mr.GameName == "" || mr.FieldKey == "" {
		return nil
	}
	ruleType := mr.Type
	switch ruleType {
	case models.RuleAdd, models.RuleSubtract, models.RuleMultiply, models.RuleDivide:
	default:
		ruleType = models.RuleAdd
	}
	return &models.PriceRule{
		GameName:   mr.GameName,
		FieldKey:   mr.FieldKey,
		MatchValue: mr.MatchValue,
		Keyword:    mr.Keyword,
		Price:      mr.Price,
		Type:       ruleType,
	}
}

// Legacy dates arrive as "2006-01-02" or RFC 3339.
func parseLegacyDate(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Now()
}

func isTimeoutErr(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "i/o timeout") ||
		strings.Contains(s, "timeout") ||
		strings.Contains(s, "context deadline")
}
