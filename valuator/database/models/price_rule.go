package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Rule combination operators.
const (
	RuleAdd      = "add"
	RuleSubtract = "subtract"
	RuleMultiply = "multiply"
	RuleDivide   = "divide"
)

// MatchAny is the match value for rules that apply to every value of a
// numeric field.
const MatchAny = "*"

// PriceRule is one row of the deterministic pricing table.
type PriceRule struct {
	bun.BaseModel `bun:"table:price_rules,alias:pr"`

	ID         int64     `bun:"id,pk,autoincrement"`
	GameName   string    `bun:"game_name,notnull"`
	FieldKey   string    `bun:"field_key,notnull"`
	MatchValue string    `bun:"match_value,notnull"`
	Keyword    string    `bun:"keyword"`
	Price      float64   `bun:"price,notnull"`
	Type       string    `bun:"type,notnull"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
