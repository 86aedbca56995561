package models

import (
	"time"

	"github.com/uptrace/bun"
)

// PricingMatrix holds the calibrated unit prices for one game. Rate keys are
// either a bare numeric field key or "fieldKey:option" for choice fields.
type PricingMatrix struct {
	bun.BaseModel `bun:"table:pricing_matrices,alias:pm"`

	ID               int64              `bun:"id,pk,autoincrement"`
	GameName         string             `bun:"game_name,notnull,unique"`
	Rates            map[string]float64 `bun:"rates,type:jsonb"`
	RealNameDiscount float64            `bun:"real_name_discount,notnull,default:0.95"`
	LastUpdated      time.Time          `bun:"last_updated,notnull"`
}

// Clone returns a deep copy so calibration can build the replacement matrix
// without mutating the one other goroutines may still read.
func (m *PricingMatrix) Clone() *PricingMatrix {
	rates := make(map[string]float64, len(m.Rates))
	for k, v := range m.Rates {
		rates[k] = v
	}
	return &PricingMatrix{
		ID:               m.ID,
		GameName:         m.GameName,
		Rates:            rates,
		RealNameDiscount: m.RealNameDiscount,
		LastUpdated:      m.LastUpdated,
	}
}
