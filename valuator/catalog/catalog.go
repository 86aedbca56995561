package catalog

import (
	"strings"
)

// FieldType tells the pricing core how to interpret a raw attribute value.
type FieldType string

const (
	FieldText        FieldType = "text"
	FieldNumber      FieldType = "number"
	FieldSelect      FieldType = "select"
	FieldMultiSelect FieldType = "multiselect"
)

// Field describes one account attribute of a game.
type Field struct {
	Key         string
	Label       string
	Placeholder string
	Type        FieldType
	Options     []string
	Group       string
}

// Catalog holds the static reference data the classifier and weight engine
// match descriptions against. It is built once at startup and passed
// explicitly to every component that needs it.
type Catalog struct {
	HotItems              []string
	CollectionWeaponBases []string
	Qualities             []string
	MeleeItems            []string
	LegendaryCharms       []string
	Operators             []string
	GameFields            map[string][]Field
}

var hotItems = []string{
	"蛊-能天使午夜邮差",
	"红狼-蚀金玫瑰",
	"露娜-黑天际线",
	"骇爪-水墨云图",
	"骇爪-维什戴尔",
	"近战武器-北极星",
	"近战武器-信条",
}

var collectionWeaponBases = []string{
	"ASVal突击步枪-悬赏令",
	"M7战斗步枪-棱镜攻势S2",
	"腾龙突击步枪-气象感应",
	"K416突击步枪-命运",
	"AUG突击步枪-气象感应",
	"M4A1突击步枪-棱镜攻势",
	"SCAR-H战斗步枪-电玩高手",
	"Vector冲锋枪-美杜莎",
	"QBZ95-1突击步枪-王牌之剑",
}

// Qualities ordered highest to lowest.
var qualities = []string{"极品S", "极品A", "极品B", "极品C"}

var meleeItems = []string{
	"近战武器-北极星",
	"近战武器-信条",
	"近战武器-黑海",
	"近战武器-影锋",
	"近战武器-怜悯",
	"近战武器-电锯惊魂",
	"近战武器-赤枭",
	"近战武器-黑鹰",
}

var legendaryCharms = []string{
	"毁灭之源", "黑夜猎手", "肘击王", "余烬之影", "挂饰-蚀金玫瑰", "统统拿走",
	"挂饰-维什戴尔", "挂饰-黑·天际线", "麦小鼠", "挂饰-北极星", "挂饰-水墨云图", "赤霄游龙",
	"王国利刃", "白王后", "王国之杖", "慵懒魔女", "挂饰-赤枭", "挂饰-怜悯", "挂饰-影锋",
	"挂饰-黄金坦克", "挂饰-黑暗力量", "挂饰-黑海", "骇客纪元", "低音艺术家", "黑暗摇滚",
}

var operators = []string{
	"骇爪-维什戴尔", "蛊-能天使午夜邮差", "红狼-蚀金玫瑰", "露娜-黑天际线", "骇爪-水墨云图",
	"红狼-电锯惊魂", "露娜-金牌射手", "威龙-飞虎", "无名-夜鹰", "蜂医-送葬人无题密令",
	"威龙-蛟龙特战队", "深蓝-不破誓约", "威龙-壮志凌云", "蜂医-黑鹰坠落", "红狼-黑鹰坠落",
	"牧羊人-黑鹰坠落", "乌鲁鲁-黑鹰坠落", "蜂医-危险物质", "牧羊人-街头之王", "威龙-铁面判官",
}

var commonRealName = []string{"可二次实名", "不可二次实名"}

// Default builds the stock catalog with field definitions for all supported
// games. Admin-edited field sets loaded from storage overlay these.
func Default() *Catalog {
	return &Catalog{
		HotItems:              hotItems,
		CollectionWeaponBases: collectionWeaponBases,
		Qualities:             qualities,
		MeleeItems:            meleeItems,
		LegendaryCharms:       legendaryCharms,
		Operators:             operators,
		GameFields:            defaultGameFields(),
	}
}

// Fields returns the field definitions for a game, or nil if unknown.
func (c *Catalog) Fields(gameName string) []Field {
	return c.GameFields[gameName]
}

// IsHot reports whether an item name matches the hot-items list. Containment
// is tested both ways so truncated scraped names still match.
func (c *Catalog) IsHot(name string) bool {
	for _, hot := range c.HotItems {
		if strings.Contains(name, hot) || strings.Contains(hot, name) {
			return true
		}
	}
	return false
}

// LowestQuality returns the fallback tier used when a collectible matches
// without an explicit quality token.
func (c *Catalog) LowestQuality() string {
	if len(c.Qualities) == 0 {
		return ""
	}
	return c.Qualities[len(c.Qualities)-1]
}

func defaultGameFields() map[string][]Field {
	return map[string][]Field{
		"三角洲行动": {
			{Key: "account_type", Label: "登录方式 / Login", Type: FieldSelect, Options: []string{"QQ登录", "微信登录"}, Group: "基础信息"},
			{Key: "real_name_status", Label: "实名情况 / Real Name", Type: FieldSelect, Options: commonRealName, Group: "基础信息"},
			{Key: "rank_level", Label: "烽火地带段位 / Rank", Type: FieldSelect, Options: []string{"三角洲巅峰", "黑鹰", "钻石", "铂金", "黄金", "白银", "青铜"}, Group: "基础信息"},
			{Key: "asset_total_m", Label: "总资产 (M) / Total Assets", Type: FieldNumber, Placeholder: "填写数字 (10M为计算单位)", Group: "基础信息"},
			{Key: "currency_havoc_w", Label: "哈夫币 (w) / Havoc Coin", Type: FieldNumber, Placeholder: "填写数字 (200w为计算单位)", Group: "基础信息"},
			{Key: "safe_box", Label: "安全箱 / Safe Box", Type: FieldSelect, Options: []string{"S7顶级安全箱9(3x3)", "S7高级安全箱6(2x3)", "进阶安全箱4(2x2)", "高级安全箱", "体验卡/无"}, Group: "基础信息"},
			{Key: "infra_warehouse", Label: "仓库 / Warehouse", Type: FieldSelect, Options: []string{"仓库LV.10 (满级)", "仓库LV.9", "仓库LV.8", "仓库LV.7", "仓库LV.6", "仓库LV.5及以下"}, Group: "特勤处"},
			{Key: "infra_range", Label: "靶场 / Range", Type: FieldSelect, Options: []string{"靶场LV.7 (满级)", "靶场LV.6", "靶场LV.5", "靶场LV.4及以下"}, Group: "特勤处"},
			{Key: "infra_training", Label: "训练中心 / Training", Type: FieldSelect, Options: []string{"训练中心LV.7 (满级)", "训练中心LV.6", "训练中心LV.5", "训练中心LV.4及以下"}, Group: "特勤处"},
			{Key: "infra_diving", Label: "潜水中心 / Diving Center", Type: FieldSelect, Options: []string{"潜水中心LV.3 (满级)", "潜水中心LV.2", "潜水中心LV.1", "未解锁"}, Group: "特勤处"},
			{Key: "infra_collection", Label: "收藏室 / Collection", Type: FieldSelect, Options: []string{"收藏室LV.2 (满级)", "收藏室LV.1", "未解锁"}, Group: "特勤处"},
			{Key: "collection_weapon", Label: "典藏武器 / Collection Wep", Type: FieldMultiSelect, Options: collectionWeaponBases, Group: "核心资产"},
			{Key: "operator_skins", Label: "干员皮肤 / Operator Skins", Type: FieldMultiSelect, Options: operators, Group: "核心资产"},
			{Key: "melee_skins", Label: "刀具 / Melee", Type: FieldMultiSelect, Options: meleeItems, Group: "核心资产"},
			{Key: "legendary_charms", Label: "传说挂饰 / Leg. Charms", Type: FieldMultiSelect, Options: legendaryCharms, Group: "核心资产"},
			{Key: "linked_games", Label: "连体游戏 / Linked Accounts", Type: FieldMultiSelect, Options: []string{"LOL", "王者荣耀", "和平精英", "CF手游", "火影忍者", "DNF", "无畏契约"}, Group: "增值服务"},
		},
		"和平精英": {
			{Key: "account_type", Label: "登录方式 / Login", Type: FieldSelect, Options: []string{"QQ", "微信"}, Group: "基础信息"},
			{Key: "real_name_status", Label: "实名情况 / Real Name", Type: FieldSelect, Options: commonRealName, Group: "基础信息"},
			{Key: "os_type", Label: "系统 / OS", Type: FieldSelect, Options: []string{"安卓", "iOS"}, Group: "基础信息"},
			{Key: "rank_level", Label: "历史最高段位 / Peak Rank", Type: FieldSelect, Options: []string{"无敌战神", "超级王牌", "皇冠", "星钻", "白金", "黄金"}, Group: "基础信息"},
			{Key: "skin_count", Label: "套装数量 / Skin Count", Type: FieldNumber, Group: "核心资产"},
			{Key: "gun_skin_count", Label: "枪械皮肤数量 / Gun Skins", Type: FieldNumber, Group: "核心资产"},
			{Key: "car_skins", Label: "载具皮肤 / Vehicle Skins", Type: FieldMultiSelect, Options: []string{"玛莎拉蒂", "特斯拉", "兰博基尼", "阿斯顿马丁", "迈凯伦"}, Group: "核心资产"},
		},
		"王者荣耀": {
			{Key: "account_type", Label: "登录方式 / Login", Type: FieldSelect, Options: []string{"QQ", "微信"}, Group: "基础信息"},
			{Key: "real_name_status", Label: "实名情况 / Real Name", Type: FieldSelect, Options: commonRealName, Group: "基础信息"},
			{Key: "os_type", Label: "系统 / OS", Type: FieldSelect, Options: []string{"安卓", "iOS"}, Group: "基础信息"},
			{Key: "hero_count", Label: "英雄数量 / Hero Count", Type: FieldNumber, Group: "基础信息"},
			{Key: "skin_count", Label: "皮肤数量 / Skin Count", Type: FieldNumber, Group: "核心资产"},
			{Key: "legendary_skin_count", Label: "传说/典藏皮肤数量 / Legendary Skins", Type: FieldNumber, Group: "核心资产"},
			{Key: "rare_skins", Label: "稀有/限定皮肤 / Rare Skins", Type: FieldText, Group: "核心资产"},
		},
		"无畏契约 (Valorant)": {
			{Key: "server", Label: "服务器 / Server", Type: FieldSelect, Options: []string{"国服", "国际服"}, Group: "基础信息"},
			{Key: "rank", Label: "段位 / Rank", Type: FieldSelect, Options: []string{"赋能战魂", "神话", "超凡入圣", "钻石", "铂金", "黄金", "白银", "青铜", "黑铁"}, Group: "基础信息"},
			{Key: "skin_value", Label: "皮肤总价值(估算) / Est. Skin Value", Type: FieldNumber, Group: "核心资产"},
			{Key: "knife_skins", Label: "近战武器皮肤 / Knife Skins", Type: FieldText, Group: "核心资产"},
			{Key: "vandal_skins", Label: "暴徒皮肤 / Vandal Skins", Type: FieldText, Group: "核心资产"},
			{Key: "phantom_skins", Label: "幻影皮肤 / Phantom Skins", Type: FieldText, Group: "核心资产"},
		},
		"穿越火线 (CF)": {
			{Key: "server", Label: "大区 / Server", Type: FieldText, Group: "基础信息"},
			{Key: "real_name_status", Label: "实名情况 / Real Name", Type: FieldSelect, Options: commonRealName, Group: "基础信息"},
			{Key: "v_weapon_count", Label: "VVIP英雄级数量 / VVIP Count", Type: FieldNumber, Group: "核心资产"},
			{Key: "king_weapon_count", Label: "王者武器数量 / King Wep Count", Type: FieldNumber, Group: "核心资产"},
			{Key: "rank", Label: "军衔 / Rank", Type: FieldText, Group: "基础信息"},
			{Key: "rare_characters", Label: "稀有角色 / Rare Chars", Type: FieldText, Group: "核心资产"},
		},
	}
}

// DefaultMatrixRates returns the seed unit prices used when a game has never
// been calibrated.
func DefaultMatrixRates(gameName string) map[string]float64 {
	if gameName != "三角洲行动" {
		return map[string]float64{}
	}
	return map[string]float64{
		"asset_total_m":               1.5,
		"currency_havoc_w":            0.5,
		"safe_box:S7顶级安全箱9(3x3)":      400,
		"infra_warehouse:仓库LV.10 (满级)": 150,
		"infra_range:靶场LV.7 (满级)":      80,
	}
}

// DefaultRealNameDiscount is the multiplier applied to accounts that cannot
// be re-verified under a new identity.
const DefaultRealNameDiscount = 0.95

// Games lists the game names this catalog has field definitions for.
func (c *Catalog) Games() []string {
	names := make([]string, 0, len(c.GameFields))
	for name := range c.GameFields {
		names = append(names, name)
	}
	return names
}
