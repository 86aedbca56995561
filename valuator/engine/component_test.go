package engine

import (
	"context"
	"testing"
)

func newTestComponentPricer(t *testing.T, matrices *fakeMatrices) *ComponentPricer {
	t.Helper()
	p, err := NewComponentPricer(matrices)
	if err != nil {
		t.Fatalf("NewComponentPricer() error = %v", err)
	}
	return p
}

func TestComponentPricer_RealNameDiscount(t *testing.T) {
	matrices := &fakeMatrices{matrix: testMatrix(testGame, map[string]float64{
		"safe_box:S7顶级安全箱9(3x3)": 400,
	})}
	p := newTestComponentPricer(t, matrices)

	got, err := p.Price(context.Background(), Request{
		GameName: testGame,
		Attributes: map[string]string{
			"safe_box":         "S7顶级安全箱9(3x3)",
			"real_name_status": "不可二次实名",
		},
	})
	if err != nil {
		t.Fatalf("Price() error = %v", err)
	}
	if got.InfrastructureValue != 400 {
		t.Errorf("InfrastructureValue = %v, want 400", got.InfrastructureValue)
	}
	if got.RealNameDiscount != 0.95 {
		t.Errorf("RealNameDiscount = %v, want 0.95", got.RealNameDiscount)
	}
	if got.FinalCalculated != 380 {
		t.Errorf("FinalCalculated = %v, want 380", got.FinalCalculated)
	}
}

func TestComponentPricer_NoDiscountWhenReverifiable(t *testing.T) {
	matrices := &fakeMatrices{matrix: testMatrix(testGame, map[string]float64{
		"safe_box:S7顶级安全箱9(3x3)": 400,
	})}
	p := newTestComponentPricer(t, matrices)

	got, err := p.Price(context.Background(), Request{
		GameName: testGame,
		Attributes: map[string]string{
			"safe_box":         "S7顶级安全箱9(3x3)",
			"real_name_status": "可二次实名",
		},
	})
	if err != nil {
		t.Fatalf("Price() error = %v", err)
	}
	if got.FinalCalculated != 400 {
		t.Errorf("FinalCalculated = %v, want 400", got.FinalCalculated)
	}
}

func TestComponentPricer_NumericTimesRate(t *testing.T) {
	matrices := &fakeMatrices{matrix: testMatrix(testGame, map[string]float64{
		"asset_total_m": 1.5,
	})}
	p := newTestComponentPricer(t, matrices)

	got, err := p.Price(context.Background(), Request{
		GameName:   testGame,
		Attributes: map[string]string{"asset_total_m": "200"},
	})
	if err != nil {
		t.Fatalf("Price() error = %v", err)
	}
	if got.AssetsValue != 300 {
		t.Errorf("AssetsValue = %v, want 300", got.AssetsValue)
	}
}

func TestComponentPricer_CategoryRouting(t *testing.T) {
	matrices := &fakeMatrices{matrix: testMatrix(testGame, map[string]float64{
		"operator_skins:红狼-蚀金玫瑰":      1200,
		"infra_warehouse:仓库LV.10 (满级)": 150,
		"rank_level:三角洲巅峰":            50,
	})}
	p := newTestComponentPricer(t, matrices)

	got, err := p.Price(context.Background(), Request{
		GameName: testGame,
		Attributes: map[string]string{
			"operator_skins":  "红狼-蚀金玫瑰",
			"infra_warehouse": "仓库LV.10 (满级)",
			"rank_level":      "三角洲巅峰",
		},
	})
	if err != nil {
		t.Fatalf("Price() error = %v", err)
	}
	if got.SkinValue != 1200 {
		t.Errorf("SkinValue = %v, want 1200", got.SkinValue)
	}
	if got.InfrastructureValue != 150 {
		t.Errorf("InfrastructureValue = %v, want 150", got.InfrastructureValue)
	}
	if got.ExtraValue != 50 {
		t.Errorf("ExtraValue = %v, want 50", got.ExtraValue)
	}
	if got.RawTotal != 1400 {
		t.Errorf("RawTotal = %v, want 1400", got.RawTotal)
	}
}

func TestComponentPricer_UnratedSkinFallback(t *testing.T) {
	matrices := &fakeMatrices{matrix: testMatrix(testGame, nil)}
	p := newTestComponentPricer(t, matrices)

	got, err := p.Price(context.Background(), Request{
		GameName:   testGame,
		Attributes: map[string]string{"operator_skins": "无名-夜鹰"},
	})
	if err != nil {
		t.Fatalf("Price() error = %v", err)
	}
	if got.SkinValue != 10 {
		t.Errorf("SkinValue = %v, want flat 10 fallback", got.SkinValue)
	}
}

func TestGetRate(t *testing.T) {
	rates := map[string]float64{
		"operator_skins:红狼-蚀金玫瑰": 1200,
		"melee_skins:近战武器-北极星":   300,
	}

	tests := []struct {
		name string
		key  string
		opt  string
		want float64
	}{
		{name: "exact", key: "operator_skins", opt: "红狼-蚀金玫瑰", want: 1200},
		{name: "normalized equality", key: "operator_skins", opt: "红狼 - 蚀金玫瑰", want: 1200},
		{name: "suffix containment", key: "operator_skins", opt: "蚀金玫瑰", want: 1200},
		{name: "wrong field", key: "operator_skins", opt: "近战武器-北极星", want: 0},
		{name: "unknown option", key: "operator_skins", opt: "不存在", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getRate(rates, tt.key, tt.opt); got != tt.want {
				t.Errorf("getRate(%q, %q) = %v, want %v", tt.key, tt.opt, got, tt.want)
			}
		})
	}
}
