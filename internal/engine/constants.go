package engine

// cardsPerPlayer 支持的人数 -> 每轮每人发牌数
var cardsPerPlayer = map[int]int{
	2: 10,
	3: 9,
	4: 8,
	5: 7,
}

const (
	// MinPlayers 最少玩家数
	MinPlayers = 2
	// MaxPlayers 最多玩家数
	MaxPlayers = 5
	// DefaultRoundCount 默认轮数
	DefaultRoundCount = 3
)

// 计分常量
const (
	boostMultiplier = 3
	mochiCap        = 5
	tapiocaAward    = 6.0
	teaSetBonus     = 5
	boostedSuffix   = " (boosted)"
	tapiocaCategory = "Tapioca Pearl Majority/Minority"
	teaSetCategory  = "Tea Set Bonus"
)

// mochiTiers 麻薯冰淇淋数量 -> 分数（下标即数量）
var mochiTiers = [mochiCap + 1]int{0, 1, 3, 6, 10, 15}

// teaSetKinds 参与茶套组奖励的四种非果茶
var teaSetKinds = [4]CardKind{ThaiTea, MatchaTea, BrownSugarMilkTea, MysteryTea}

// CardsPerPlayer 查询某人数每轮的发牌数
func CardsPerPlayer(numPlayers int) (int, bool) {
	n, ok := cardsPerPlayer[numPlayers]
	return n, ok
}

// DefaultDistribution 内置的默认卡牌配比
func DefaultDistribution() Cards {
	return Cards{
		TapiocaPearl:      14,
		BrownSugarMilkTea: 14,
		ThaiTea:           12,
		MochiIceCream:     8,
		MatchaTea:         10,
		MysteryTea:        6,
		PoppingBubbles:    10,
		MangoTea:          10,
		LycheeTea:         10,
		PassionFruitTea:   10,
		DrinkTray:         10,
	}
}
