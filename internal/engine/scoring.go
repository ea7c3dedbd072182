package engine

import (
	"math"
	"sort"
)

// CategoryScore 单项得分
type CategoryScore struct {
	Category string  `json:"category"`
	Points   float64 `json:"points"`
}

// ScoreBreakdown 得分明细
type ScoreBreakdown struct {
	Categories []CategoryScore `json:"category_scores"`
	Total      float64         `json:"total_score"`
}

func (b *ScoreBreakdown) add(category string, points float64) {
	b.Categories = append(b.Categories, CategoryScore{Category: category, Points: points})
	b.Total += points
}

// ScorePlayer 计算玩家得分
// 只依赖公开信息，客户端拿到快照后也能独立计算
func ScorePlayer(playerID int, players []PlayerPublic) ScoreBreakdown {
	var b ScoreBreakdown
	if playerID < 0 || playerID >= len(players) {
		return b
	}
	p := players[playerID]

	scoreBase(&b, p)
	scoreBoosted(&b, p)
	scoreMochi(&b, p)
	scoreTapioca(&b, playerID, players)
	scoreTeaSet(&b, p)

	return b
}

// scoreBase 基础分：除麻薯冰淇淋外，每种公开卡牌 = 基础分 × 数量
func scoreBase(b *ScoreBreakdown, p PlayerPublic) {
	for _, kind := range p.Public.Kinds() {
		if kind == MochiIceCream {
			continue
		}
		b.add(kind.Name(), float64(kind.Score()*p.Public[kind]))
	}
}

// scoreBoosted 加成果茶三倍
func scoreBoosted(b *ScoreBreakdown, p PlayerPublic) {
	for _, kind := range p.Boosted.Kinds() {
		b.add(kind.Name()+boostedSuffix, float64(kind.Score()*boostMultiplier*p.Boosted[kind]))
	}
}

// scoreMochi 麻薯冰淇淋按数量分档，最多计 5 张
func scoreMochi(b *ScoreBreakdown, p PlayerPublic) {
	count := p.Public.Count(MochiIceCream)
	if count <= 0 {
		return
	}
	b.add(MochiIceCream.Name(), float64(mochiTiers[min(count, mochiCap)]))
}

// scoreTapioca 珍珠多数/少数：最多者平分 +6（需大于 0），最少者平分 -6
func scoreTapioca(b *ScoreBreakdown, playerID int, players []PlayerPublic) {
	counts := make([]int, len(players))
	for i, p := range players {
		counts[i] = p.Public.Count(TapiocaPearl)
	}

	maxCount, minCount := counts[0], counts[0]
	for _, c := range counts[1:] {
		maxCount = max(maxCount, c)
		minCount = min(minCount, c)
	}

	maxTies, minTies := 0, 0
	for _, c := range counts {
		if c == maxCount {
			maxTies++
		}
		if c == minCount {
			minTies++
		}
	}

	mine := counts[playerID]
	points := 0.0
	if mine == maxCount && maxCount > 0 {
		points += tapiocaAward / float64(maxTies)
	}
	if mine == minCount {
		points -= tapiocaAward / float64(minTies)
	}

	if math.Abs(points) < 1e-9 {
		return
	}
	b.add(tapiocaCategory, points)
}

// scoreTeaSet 茶组合：四种茶数量降序排列，组数 = min(第一, 第二, 第三 + 第四)
func scoreTeaSet(b *ScoreBreakdown, p PlayerPublic) {
	counts := make([]int, len(teaSetKinds))
	for i, kind := range teaSetKinds {
		counts[i] = p.Public.Count(kind)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(counts)))

	sets := min(counts[0], counts[1], counts[2]+counts[3])
	if sets <= 0 {
		return
	}
	b.add(teaSetCategory, float64(sets*teaSetBonus))
}
