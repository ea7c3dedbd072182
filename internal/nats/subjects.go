package nats

import "fmt"

// QueueGroupHost 主机进程队列组，多个 host 实例共享玩家请求
const QueueGroupHost = "boba-host"

// Subjects 构建带前缀的 Subject
//
//	{prefix}.game.{gameId}.player.{playerId}  主机 -> 单个玩家
//	{prefix}.game.{gameId}.broadcast          主机 -> 所有玩家
//	{prefix}.host.requests                    玩家 -> 主机（request/reply）
type Subjects struct {
	prefix string
}

// NewSubjects 创建 Subject 构建器，前缀为空时使用 boba
func NewSubjects(prefix string) Subjects {
	if prefix == "" {
		prefix = "boba"
	}
	return Subjects{prefix: prefix}
}

func (s Subjects) Player(gameID string, playerID int) string {
	return fmt.Sprintf("%s.game.%s.player.%d", s.prefix, gameID, playerID)
}

func (s Subjects) Broadcast(gameID string) string {
	return fmt.Sprintf("%s.game.%s.broadcast", s.prefix, gameID)
}

func (s Subjects) Requests() string {
	return s.prefix + ".host.requests"
}
