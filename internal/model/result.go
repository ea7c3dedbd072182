package model

import (
	"time"

	"sudooom.boba/internal/protocol"
)

// GameResult 已结束对局的最终结果
type GameResult struct {
	GameID     string                `json:"game_id"`
	Seed       uint64                `json:"seed"`
	RoundCount int                   `json:"round_count"`
	Reason     protocol.EndReason    `json:"reason"`
	Scores     []protocol.FinalScore `json:"scores"`
	FinishedAt time.Time             `json:"finished_at"`
}

// Winners 最高分的玩家（可能并列）
func (r *GameResult) Winners() []protocol.FinalScore {
	var winners []protocol.FinalScore
	for _, s := range r.Scores {
		switch {
		case len(winners) == 0 || s.Score > winners[0].Score:
			winners = []protocol.FinalScore{s}
		case s.Score == winners[0].Score:
			winners = append(winners, s)
		}
	}
	return winners
}
