package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Record kinds. A listing carries an asking price, a sold record a confirmed
// transaction price.
const (
	RecordKindListing = "listing"
	RecordKindSold    = "sold"
)

// MarketRecord is one historical sale or listing used for calibration and
// comparable matching.
type MarketRecord struct {
	bun.BaseModel `bun:"table:market_records,alias:mr"`

	ID          int64     `bun:"id,pk,autoincrement"`
	GameName    string    `bun:"game_name,notnull"`
	Description string    `bun:"description,notnull"`
	Price       float64   `bun:"price,notnull"`
	Kind        string    `bun:"kind,notnull,default:'listing'"`
	Source      string    `bun:"source"`
	RecordedAt  time.Time `bun:"recorded_at,notnull"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
