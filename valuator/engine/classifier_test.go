package engine

import (
	"reflect"
	"testing"

	"github.com/pznebula/valuator/valuator/catalog"
)

func deltaFields(t *testing.T, cat *catalog.Catalog) []catalog.Field {
	t.Helper()
	fields := cat.Fields("三角洲行动")
	if len(fields) == 0 {
		t.Fatal("no field definitions for 三角洲行动")
	}
	return fields
}

func TestExtractNumericValue(t *testing.T) {
	tests := []struct {
		name string
		desc string
		key  string
		want float64
	}{
		{name: "assets in millions", desc: "总资产150M 哈夫币8000w", key: "asset_total_m", want: 150},
		{name: "assets decimal", desc: "资产 3.5m", key: "asset_total_m", want: 3.5},
		{name: "assets in yi scales by 100", desc: "资产2亿", key: "asset_total_m", want: 200},
		{name: "currency in wan", desc: "哈夫币 8000w", key: "currency_havoc_w", want: 8000},
		{name: "currency unit char", desc: "哈夫币300万", key: "currency_havoc_w", want: 300},
		{name: "v weapon count", desc: "12V 满配", key: "v_weapon_count", want: 12},
		{name: "skin count", desc: "全套 45皮", key: "skin_count", want: 45},
		{name: "no unit no match", desc: "资产很多", key: "asset_total_m", want: 0},
		{name: "wrong family", desc: "资产150M", key: "currency_havoc_w", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractNumericValue(tt.desc, tt.key); got != tt.want {
				t.Errorf("ExtractNumericValue(%q, %q) = %v, want %v", tt.desc, tt.key, got, tt.want)
			}
		})
	}
}

func TestClassify_CollectibleWithTierAndAssets(t *testing.T) {
	cat := catalog.Default()
	fields := deltaFields(t, cat)

	got := Classify("K416突击步枪-命运(极品S) 资产150M", fields, cat)

	wantCollections := []string{"collection_weapon:K416突击步枪-命运(极品S)"}
	if !reflect.DeepEqual(got.Collections, wantCollections) {
		t.Errorf("Collections = %v, want %v", got.Collections, wantCollections)
	}
	if got.AssetsM != 150 {
		t.Errorf("AssetsM = %v, want 150", got.AssetsM)
	}
	if len(got.Ops) != 0 || len(got.Melee) != 0 {
		t.Errorf("unexpected extra matches: ops=%v melee=%v", got.Ops, got.Melee)
	}
}

func TestClassify_CollectibleDefaultsToLowestTier(t *testing.T) {
	cat := catalog.Default()
	fields := deltaFields(t, cat)

	got := Classify("出售 Vector冲锋枪-美杜莎 账号", fields, cat)

	want := []string{"collection_weapon:Vector冲锋枪-美杜莎(极品C)"}
	if !reflect.DeepEqual(got.Collections, want) {
		t.Errorf("Collections = %v, want %v", got.Collections, want)
	}
}

func TestClassify_CollectibleMatchedOncePerBase(t *testing.T) {
	cat := catalog.Default()
	fields := deltaFields(t, cat)

	// Two tier tokens on one base yield one key per tier, no duplicates.
	got := Classify("K416突击步枪-命运 极品S 极品A 双形态", fields, cat)

	want := []string{
		"collection_weapon:K416突击步枪-命运(极品S)",
		"collection_weapon:K416突击步枪-命运(极品A)",
	}
	if !reflect.DeepEqual(got.Collections, want) {
		t.Errorf("Collections = %v, want %v", got.Collections, want)
	}
}

func TestClassify_RoutesCategories(t *testing.T) {
	cat := catalog.Default()
	fields := deltaFields(t, cat)

	got := Classify("红狼-蚀金玫瑰 近战武器-北极星 S7顶级安全箱9(3x3) 仓库LV.10 (满级) 挂饰-北极星", fields, cat)

	if len(got.Ops) != 1 || got.Ops[0] != "operator_skins:红狼-蚀金玫瑰" {
		t.Errorf("Ops = %v", got.Ops)
	}
	if len(got.Melee) != 1 || got.Melee[0] != "melee_skins:近战武器-北极星" {
		t.Errorf("Melee = %v", got.Melee)
	}
	if len(got.SafeBox) != 1 || got.SafeBox[0] != "safe_box:S7顶级安全箱9(3x3)" {
		t.Errorf("SafeBox = %v", got.SafeBox)
	}
	if len(got.Infra) == 0 || got.Infra[0] != "infra_warehouse:仓库LV.10 (满级)" {
		t.Errorf("Infra = %v", got.Infra)
	}
	if len(got.Charms) == 0 {
		t.Errorf("Charms = %v", got.Charms)
	}
}

func TestClassify_NoiseDoesNotMatch(t *testing.T) {
	cat := catalog.Default()
	fields := deltaFields(t, cat)

	got := Classify("QQ登录 可二次实名 无找回 包赔", fields, cat)
	if !got.Empty() {
		t.Errorf("expected empty classification, got %+v", got)
	}
}

func TestSearchTerms(t *testing.T) {
	got := searchTerms("红狼-蚀金玫瑰")
	want := []string{"红狼蚀金玫瑰", "蚀金玫瑰", "蚀金玫瑰"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("searchTerms = %v, want %v", got, want)
	}
}
