package protocol

import (
	"encoding/json"
	"fmt"

	"sudooom.boba/internal/engine"
)

// ============== 上行消息 (玩家 -> 主机) ==============

// ClientMessage 玩家请求封装，Token 为座位凭证
type ClientMessage struct {
	GameID  string        `json:"game_id"`
	Token   string        `json:"token"`
	Payload ClientPayload `json:"payload"`
}

// ClientPayload 玩家请求载荷，同时只有一个字段非空
type ClientPayload struct {
	SubmitTurn      *SubmitTurn      `json:"submit_turn,omitempty"`
	ToggleDrinkTray *ToggleDrinkTray `json:"toggle_drink_tray,omitempty"`
	Sync            *Sync            `json:"sync,omitempty"`
	Leave           *Leave           `json:"leave,omitempty"`
}

// SubmitTurn 提交本回合的选择
type SubmitTurn struct {
	Selected  engine.Cards `json:"selected"`
	Remaining engine.Cards `json:"remaining"`
}

// ToggleDrinkTray 激活或撤销饮料托盘
type ToggleDrinkTray struct {
	Activate bool `json:"activate"`
}

// Sync 请求最新的对局视图（重连后使用）
type Sync struct{}

// Leave 主动离开，对所有人结束对局
type Leave struct{}

// ============== 下行消息 (主机 -> 玩家) ==============

// HostMessage 主机推送封装
type HostMessage struct {
	GameID  string      `json:"game_id"`
	Payload HostPayload `json:"payload"`
}

// HostPayload 主机推送载荷
type HostPayload struct {
	GameUpdate *GameUpdate `json:"game_update,omitempty"`
	GameEnded  *GameEnded  `json:"game_ended,omitempty"`
	Error      *Error      `json:"error,omitempty"`
}

// GameUpdate 发给单个玩家的对局视图
type GameUpdate struct {
	PlayerID       int                   `json:"player_id"`
	Hand           engine.Cards          `json:"hand"`
	PlayersPublic  []engine.PlayerPublic `json:"players_public"`
	GameStatus     engine.GameStatus     `json:"game_status"`
	SelectionLimit int                   `json:"selection_limit"`
}

// FinalScore 最终得分
type FinalScore struct {
	PlayerID  int                   `json:"player_id"`
	Name      string                `json:"name"`
	Score     float64               `json:"score"`
	Breakdown engine.ScoreBreakdown `json:"breakdown"`
}

// EndReasonKind 对局结束原因
type EndReasonKind string

const (
	EndCompleted          EndReasonKind = "completed"
	EndPlayerDisconnected EndReasonKind = "player_disconnected"
	EndAborted            EndReasonKind = "aborted"
)

// EndReason 结束原因，玩家断线时带上玩家 id
type EndReason struct {
	Kind     EndReasonKind `json:"kind"`
	PlayerID *int          `json:"player_id,omitempty"`
	Detail   string        `json:"detail,omitempty"`
}

func (r EndReason) String() string {
	switch {
	case r.PlayerID != nil:
		return fmt.Sprintf("%s(%d)", r.Kind, *r.PlayerID)
	case r.Detail != "":
		return fmt.Sprintf("%s: %s", r.Kind, r.Detail)
	default:
		return string(r.Kind)
	}
}

// GameEnded 对局结束通知
type GameEnded struct {
	FinalScores []FinalScore `json:"final_scores"`
	Reason      EndReason    `json:"reason"`
}

// Error 发给出错玩家的错误
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Snapshot 对局公开快照（不含任何手牌），用于缓存与 HTTP 查询
type Snapshot struct {
	GameID        string                `json:"game_id"`
	Seed          uint64                `json:"seed"`
	PlayersPublic []engine.PlayerPublic `json:"players_public"`
	GameStatus    engine.GameStatus     `json:"game_status"`
	DeckSize      int                   `json:"deck_size"`
	Ended         *GameEnded            `json:"ended,omitempty"`
	UpdatedAt     int64                 `json:"updated_at"`
}

// DecodeClientMessage 解码并检查载荷
func DecodeClientMessage(data []byte) (*ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.GameID == "" {
		return nil, fmt.Errorf("missing game_id")
	}

	set := 0
	p := msg.Payload
	for _, present := range []bool{p.SubmitTurn != nil, p.ToggleDrinkTray != nil, p.Sync != nil, p.Leave != nil} {
		if present {
			set++
		}
	}
	if set != 1 {
		return nil, fmt.Errorf("payload must carry exactly one message, got %d", set)
	}
	return &msg, nil
}
