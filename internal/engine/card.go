package engine

import "fmt"

// CardKind 卡牌种类
// 封闭枚举，规则属性统一登记在 catalog 中
type CardKind int

const (
	TapiocaPearl      CardKind = iota // 珍珠：多数/少数跨玩家计分
	BrownSugarMilkTea                 // 黑糖奶茶
	ThaiTea                           // 泰式奶茶
	MochiIceCream                     // 麻薯冰淇淋：按数量阶梯计分
	MatchaTea                         // 抹茶
	MysteryTea                        // 神秘茶：抽到后替换下家手牌
	PoppingBubbles                    // 爆爆珠：与果茶配对三倍计分
	MangoTea                          // 芒果茶（果茶）
	LycheeTea                         // 荔枝茶（果茶）
	PassionFruitTea                   // 百香果茶（果茶）
	DrinkTray                         // 饮料托盘：可收回手牌，本回合多选一张

	kindCount
)

// Card 卡牌规则属性（不可变）
type Card struct {
	Code        string    // 线上传输用的稳定编码
	Name        string    // 显示名称
	Description string    // 规则说明
	FlavorText  string    // 风味文字
	Score       int       // 基础分
	Selectable  bool      // 是否可被直接选取
	FruitTea    bool      // 是否果茶
	OnDraft     DraftHook // 抽选后触发的效果（可选）
}

var catalog = [kindCount]Card{
	TapiocaPearl: {
		Code:        "tapioca_pearl",
		Name:        "Tapioca Pearl",
		Description: "Most Tapioca Pearls: +6 points (split if tied). Least Tapioca Pearls: -6 points (split if tied).",
		FlavorText:  "chewy, sweet and fought over",
		Score:       0,
		Selectable:  true,
	},
	BrownSugarMilkTea: {
		Code:        "brown_sugar_milk_tea",
		Name:        "Brown Sugar Milk Tea",
		Description: "+1 point. Counts towards the tea set bonus.",
		FlavorText:  "a classic blend",
		Score:       1,
		Selectable:  true,
	},
	ThaiTea: {
		Code:        "thai_tea",
		Name:        "Thai Tea",
		Description: "+2 points. Counts towards the tea set bonus.",
		FlavorText:  "orange, creamy, unmistakable",
		Score:       2,
		Selectable:  true,
	},
	MochiIceCream: {
		Code:        "mochi_ice_cream",
		Name:        "Mochi Ice Cream",
		Description: "Grants 1/3/6/10/15 points based on quantity.",
		FlavorText:  "like an ice cream filled dumpling",
		Score:       0,
		Selectable:  true,
	},
	MatchaTea: {
		Code:        "matcha_tea",
		Name:        "Matcha Tea",
		Description: "+3 points. Counts towards the tea set bonus.",
		FlavorText:  "whisked, never stirred",
		Score:       3,
		Selectable:  true,
	},
	MysteryTea: {
		Code:        "mystery_tea",
		Name:        "Mystery Tea",
		Description: "+2 points. After drafting this card, the hand you pass on is replaced with random cards from the deck. Counts towards the tea set bonus.",
		FlavorText:  "nobody knows what is in it",
		Score:       2,
		Selectable:  true,
		OnDraft:     reshuffleReceiverHand,
	},
	PoppingBubbles: {
		Code:        "popping_bubbles",
		Name:        "Popping Bubbles",
		Description: "Pairs with the next fruit tea you draft to triple its points. Each Popping Bubbles boosts one fruit tea.",
		FlavorText:  "pop!",
		Score:       0,
		Selectable:  true,
	},
	MangoTea: {
		Code:        "mango_tea",
		Name:        "Mango Tea",
		Description: "+2 points. Fruit tea: tripled when paired with Popping Bubbles.",
		FlavorText:  "summer in a cup",
		Score:       2,
		Selectable:  true,
		FruitTea:    true,
	},
	LycheeTea: {
		Code:        "lychee_tea",
		Name:        "Lychee Tea",
		Description: "+3 points. Fruit tea: tripled when paired with Popping Bubbles.",
		FlavorText:  "floral and sweet",
		Score:       3,
		Selectable:  true,
		FruitTea:    true,
	},
	PassionFruitTea: {
		Code:        "passion_fruit_tea",
		Name:        "Passion Fruit Tea",
		Description: "+1 point. Fruit tea: tripled when paired with Popping Bubbles.",
		FlavorText:  "tart on purpose",
		Score:       1,
		Selectable:  true,
		FruitTea:    true,
	},
	DrinkTray: {
		Code:        "drink_tray",
		Name:        "Drink Tray",
		Description: "Can be activated to return it to your hand and draft one extra card that turn.",
		FlavorText:  "",
		Score:       0,
		Selectable:  true,
	},
}

// AllKinds 按固定顺序返回全部卡牌种类
func AllKinds() []CardKind {
	kinds := make([]CardKind, 0, kindCount)
	for k := CardKind(0); k < kindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// Valid 是否为已登记的卡牌种类
func (k CardKind) Valid() bool {
	return k >= 0 && k < kindCount
}

// Info 获取完整的规则属性
func (k CardKind) Info() Card {
	if !k.Valid() {
		return Card{Code: "unknown", Name: "Unknown"}
	}
	return catalog[k]
}

func (k CardKind) Code() string        { return k.Info().Code }
func (k CardKind) Name() string        { return k.Info().Name }
func (k CardKind) Description() string { return k.Info().Description }
func (k CardKind) FlavorText() string  { return k.Info().FlavorText }
func (k CardKind) Score() int          { return k.Info().Score }
func (k CardKind) Selectable() bool    { return k.Info().Selectable }
func (k CardKind) IsFruitTea() bool    { return k.Info().FruitTea }
func (k CardKind) OnDraft() DraftHook  { return k.Info().OnDraft }

// String 实现 fmt.Stringer
func (k CardKind) String() string {
	return k.Name()
}

// MarshalText 使 CardKind 可以作为 JSON map 的 key
func (k CardKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("unknown card kind %d", int(k))
	}
	return []byte(catalog[k].Code), nil
}

// UnmarshalText 解析线上传输的卡牌编码
func (k *CardKind) UnmarshalText(text []byte) error {
	kind, err := ParseCardKind(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// ParseCardKind 根据编码或显示名称查找卡牌种类
func ParseCardKind(s string) (CardKind, error) {
	for k := CardKind(0); k < kindCount; k++ {
		if catalog[k].Code == s || catalog[k].Name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown card kind %q", s)
}
