package engine

// PassDirection 传牌方向
type PassDirection string

const (
	// PassLeft 奇数轮：玩家 i 的手牌传给 i+1
	PassLeft PassDirection = "left"
	// PassRight 偶数轮：玩家 i 的手牌传给 i-1
	PassRight PassDirection = "right"
)

// PassDirectionForRound 根据轮次奇偶决定传牌方向
func PassDirectionForRound(round int) PassDirection {
	if round%2 == 1 {
		return PassLeft
	}
	return PassRight
}

// PlayerTurnState 玩家本回合的提交状态
type PlayerTurnState string

const (
	TurnNotSelected PlayerTurnState = "not_selected"
	TurnSelected    PlayerTurnState = "selected"
)

// GameStatus 对外公开的游戏状态
type GameStatus struct {
	Round            int               `json:"round"`
	Turn             int               `json:"turn"`
	RoundCount       int               `json:"round_count"`
	PassDirection    PassDirection     `json:"pass_direction"`
	IsGameOver       bool              `json:"is_game_over"`
	PlayerTurnStates []PlayerTurnState `json:"player_turn_states"`
}
