package engine

// Player 玩家
type Player struct {
	ID      int    // 稳定的座位索引
	Name    string // 显示名称
	Hand    Cards  // 私有手牌
	Public  Cards  // 已抽选的公开卡牌
	Boosted Cards  // 与爆爆珠配对的果茶，单独计数，三倍计分
}

func newPlayer(id int, name string) *Player {
	return &Player{
		ID:      id,
		Name:    name,
		Hand:    make(Cards),
		Public:  make(Cards),
		Boosted: make(Cards),
	}
}

// PlayerPublic 所有人可见的玩家信息
type PlayerPublic struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Public  Cards  `json:"public_cards"`
	Boosted Cards  `json:"boosted_fruit_teas"`
}

// ToPublic 生成公开视图（拷贝）
func (p *Player) ToPublic() PlayerPublic {
	return PlayerPublic{
		ID:      p.ID,
		Name:    p.Name,
		Public:  p.Public.Clone(),
		Boosted: p.Boosted.Clone(),
	}
}
