package models

import (
	"time"

	"github.com/uptrace/bun"
)

// GameField is a persisted attribute definition for one game. Admin edits
// overlay the built-in catalog defaults.
type GameField struct {
	bun.BaseModel `bun:"table:game_fields,alias:gf"`

	ID          int64     `bun:"id,pk,autoincrement"`
	GameName    string    `bun:"game_name,notnull"`
	FieldKey    string    `bun:"field_key,notnull"`
	Label       string    `bun:"label,notnull"`
	Placeholder string    `bun:"placeholder"`
	Type        string    `bun:"type,notnull"`
	Options     []string  `bun:"options,type:jsonb"`
	GroupName   string    `bun:"group_name"`
	Position    int       `bun:"position,notnull,default:0"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}
