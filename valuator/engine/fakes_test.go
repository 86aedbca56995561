package engine

import (
	"context"
	"time"

	"github.com/pznebula/valuator/valuator/catalog"
	"github.com/pznebula/valuator/valuator/database/models"
)

type fakeRecords struct {
	records []*models.MarketRecord
	err     error
}

func (f *fakeRecords) GetByGame(_ context.Context, _ string) ([]*models.MarketRecord, error) {
	return f.records, f.err
}

func (f *fakeRecords) GetSoldByGame(_ context.Context, _ string) ([]*models.MarketRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	var sold []*models.MarketRecord
	for _, r := range f.records {
		if r.Kind == models.RecordKindSold {
			sold = append(sold, r)
		}
	}
	return sold, nil
}

type fakeMatrices struct {
	matrix *models.PricingMatrix
	saved  *models.PricingMatrix
}

func (f *fakeMatrices) GetByGame(_ context.Context, _ string) (*models.PricingMatrix, error) {
	return f.matrix, nil
}

func (f *fakeMatrices) Save(_ context.Context, m *models.PricingMatrix) error {
	f.saved = m
	return nil
}

type fakeReports struct {
	inserted []*models.MarketReport
}

func (f *fakeReports) Insert(_ context.Context, r *models.MarketReport) error {
	f.inserted = append(f.inserted, r)
	return nil
}

type fakeRules struct {
	rules    []*models.PriceRule
	inserted []*models.PriceRule
}

func (f *fakeRules) GetByGame(_ context.Context, _ string) ([]*models.PriceRule, error) {
	return f.rules, nil
}

func (f *fakeRules) InsertBatch(_ context.Context, rules []*models.PriceRule) error {
	f.inserted = append(f.inserted, rules...)
	return nil
}

func testMatrix(game string, rates map[string]float64) *models.PricingMatrix {
	if rates == nil {
		rates = map[string]float64{}
	}
	return &models.PricingMatrix{
		GameName:         game,
		Rates:            rates,
		RealNameDiscount: catalog.DefaultRealNameDiscount,
		LastUpdated:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func soldRecord(game, desc string, price float64) *models.MarketRecord {
	return &models.MarketRecord{GameName: game, Description: desc, Price: price, Kind: models.RecordKindSold}
}

func listingRecord(game, desc string, price float64) *models.MarketRecord {
	return &models.MarketRecord{GameName: game, Description: desc, Price: price, Kind: models.RecordKindListing}
}
