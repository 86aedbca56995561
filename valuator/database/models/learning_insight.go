package models

import (
	"time"

	"github.com/uptrace/bun"
)

// LearningInsight is a short model-generated note about newly ingested
// records, kept as bounded history per game.
type LearningInsight struct {
	bun.BaseModel `bun:"table:learning_insights,alias:li"`

	ID          int64     `bun:"id,pk,autoincrement"`
	GameName    string    `bun:"game_name,notnull"`
	Kind        string    `bun:"kind,notnull"`
	BatchSize   int       `bun:"batch_size,notnull"`
	Insight     string    `bun:"insight,notnull"`
	KeyPatterns []string  `bun:"key_patterns,type:jsonb"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
