package engine

import "log/slog"

// Config 创建游戏的配置
type Config struct {
	PlayerNames  []string     // 玩家显示名称，顺序即玩家 id
	Seed         *uint64      // 随机种子，为空时随机生成并通过 Game.Seed 返回
	Distribution Cards        // 自定义卡牌配比，为空时使用 DefaultDistribution
	RoundCount   int          // 轮数，0 表示 DefaultRoundCount
	Logger       *slog.Logger // 可选，为空时不输出日志
}

// SeedPtr 便于构造 Config.Seed
func SeedPtr(seed uint64) *uint64 {
	return &seed
}
