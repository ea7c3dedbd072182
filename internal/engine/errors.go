package engine

import "fmt"

// GameError 游戏错误类型
type GameError struct {
	Code    string         // 错误代码
	Message string         // 错误消息
	Cause   error          // 原因错误
	Context map[string]any // 错误上下文
}

func (e *GameError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *GameError) Unwrap() error {
	return e.Cause
}

// Is 按错误代码匹配，使包装后的错误仍然可以用 errors.Is 判断
func (e *GameError) Is(target error) bool {
	t, ok := target.(*GameError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewGameError 创建游戏错误
func NewGameError(code, message string) *GameError {
	return &GameError{
		Code:    code,
		Message: message,
	}
}

// WithCause 返回附带原因错误的副本，不修改预定义错误
func (e *GameError) WithCause(cause error) *GameError {
	out := e.clone()
	out.Cause = cause
	return out
}

// WithContext 返回附带上下文信息的副本
func (e *GameError) WithContext(key string, value any) *GameError {
	out := e.clone()
	out.Context[key] = value
	return out
}

func (e *GameError) clone() *GameError {
	ctx := make(map[string]any, len(e.Context)+1)
	for k, v := range e.Context {
		ctx[k] = v
	}
	return &GameError{
		Code:    e.Code,
		Message: e.Message,
		Cause:   e.Cause,
		Context: ctx,
	}
}

// 配置相关错误
var (
	ErrInvalidConfig = NewGameError("INVALID_CONFIG", "invalid game configuration")
	ErrInvalidPlayer = NewGameError("INVALID_PLAYER", "player id out of range")
)

// 回合相关错误
var (
	ErrInvalidSubmission = NewGameError("INVALID_SUBMISSION", "selected and remaining cards do not reconstruct the hand")
	ErrTurnIncomplete    = NewGameError("TURN_INCOMPLETE", "not every player has submitted this turn")
	ErrAlreadySubmitted  = NewGameError("ALREADY_SUBMITTED", "player has already submitted this turn")
)

// 牌堆与轮次相关错误
var (
	ErrNotEnoughCards = NewGameError("NOT_ENOUGH_CARDS", "not enough cards in deck for new round")
	ErrRoundLimit     = NewGameError("ROUND_LIMIT", "already at the final round")
	ErrGameOver       = NewGameError("GAME_OVER", "game is over")
)

// 卡牌效果相关错误
var (
	ErrNoDrinkTray    = NewGameError("NO_DRINK_TRAY", "no Drink Tray available")
	ErrDrinkTrayState = NewGameError("DRINK_TRAY_STATE", "Drink Tray cannot be toggled now")
	ErrEffectFailed   = NewGameError("EFFECT_FAILED", "draft effect failed")
)

// ErrExternal 外部协作方（传输层等）透传的不透明错误
var ErrExternal = NewGameError("EXTERNAL", "external failure")

// External 把外部错误文本包装成 GameError，消息原样对外展示
func External(msg string) *GameError {
	out := ErrExternal.clone()
	out.Message = msg
	return out
}
