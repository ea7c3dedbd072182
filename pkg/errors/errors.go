package errors

import (
	"errors"
	"fmt"

	"sudooom.boba/internal/engine"
)

// AppError 服务层错误，携带对外的数字错误码
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewError 创建错误
func NewError(code int, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap 附带原始错误
func (e *AppError) Wrap(err error) *AppError {
	return &AppError{Code: e.Code, Message: e.Message, Err: err}
}

// Is 判断 err 链上是否有相同错误码的 AppError
func Is(err error, target *AppError) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == target.Code
	}
	return false
}

// GetCode 获取错误码，规则引擎错误按错误类型映射，其他错误视为服务器错误
func GetCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	var gameErr *engine.GameError
	if errors.As(err, &gameErr) {
		if code, ok := gameCodes[gameErr.Code]; ok {
			return code
		}
	}
	return CodeServerError
}

// GetMessage 获取对外展示的错误消息
func GetMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	var gameErr *engine.GameError
	if errors.As(err, &gameErr) {
		return gameErr.Message
	}
	return "服务器内部错误"
}

// ============== 错误码定义 ==============

const (
	CodeSuccess = 0

	// 认证相关 10000-10999
	CodeTokenInvalid = 10003
	CodeTokenExpired = 10004
	CodeSeatMismatch = 10006

	// 参数 11000-11999
	CodeInvalidParams = 11002

	// 大厅相关 20000-20999
	CodeLobbyNotFound = 20001
	CodeLobbyFull     = 20002
	CodeLobbyStarted  = 20003
	CodeNameTaken     = 20004
	CodeNotHost       = 20005
	CodeNotEnough     = 20006
	CodeSeatSecret    = 20007

	// 对局相关 21000-21999
	CodeGameNotFound      = 21001
	CodeInvalidSubmission = 21002
	CodeSelectionRule     = 21003
	CodeDrinkTray         = 21004
	CodeTurnState         = 21005
	CodeGameEnded         = 21006
	CodeInvalidPlayer     = 21007
	CodeTooManyGames      = 21008

	// 系统错误 50000-50999
	CodeServerError  = 50001
	CodeDBError      = 50002
	CodeStorageError = 50003
)

// gameCodes 规则引擎错误类型 -> 错误码
var gameCodes = map[string]int{
	engine.ErrInvalidConfig.Code:     CodeInvalidParams,
	engine.ErrInvalidPlayer.Code:     CodeInvalidPlayer,
	engine.ErrInvalidSubmission.Code: CodeInvalidSubmission,
	engine.ErrTurnIncomplete.Code:    CodeTurnState,
	engine.ErrAlreadySubmitted.Code:  CodeTurnState,
	engine.ErrNotEnoughCards.Code:    CodeServerError,
	engine.ErrRoundLimit.Code:        CodeTurnState,
	engine.ErrGameOver.Code:          CodeGameEnded,
	engine.ErrNoDrinkTray.Code:       CodeDrinkTray,
	engine.ErrDrinkTrayState.Code:    CodeDrinkTray,
	engine.ErrEffectFailed.Code:      CodeServerError,
	engine.ErrExternal.Code:          CodeServerError,
}

// ============== 预定义错误 ==============

var (
	ErrTokenInvalid  = NewError(CodeTokenInvalid, "座位凭证无效")
	ErrTokenExpired  = NewError(CodeTokenExpired, "座位凭证已过期")
	ErrSeatMismatch  = NewError(CodeSeatMismatch, "座位凭证与对局不匹配")
	ErrInvalidParams = NewError(CodeInvalidParams, "参数校验失败")
)

var (
	ErrLobbyNotFound = NewError(CodeLobbyNotFound, "大厅不存在")
	ErrLobbyFull     = NewError(CodeLobbyFull, "大厅已满")
	ErrLobbyStarted  = NewError(CodeLobbyStarted, "对局已开始")
	ErrNameTaken     = NewError(CodeNameTaken, "昵称已被占用")
	ErrNotHost       = NewError(CodeNotHost, "只有房主可以开始对局")
	ErrNotEnough     = NewError(CodeNotEnough, "玩家人数不足")
	ErrSeatSecret    = NewError(CodeSeatSecret, "座位密钥无效")
)

var (
	ErrGameNotFound  = NewError(CodeGameNotFound, "对局不存在")
	ErrSelectionRule = NewError(CodeSelectionRule, "选牌数量或种类不符合规则")
	ErrGameEnded     = NewError(CodeGameEnded, "对局已结束")
	ErrTooManyGames  = NewError(CodeTooManyGames, "对局数量已达上限")
)

var (
	ErrServerError  = NewError(CodeServerError, "服务器内部错误")
	ErrDBError      = NewError(CodeDBError, "数据库错误")
	ErrStorageError = NewError(CodeStorageError, "缓存服务错误")
)
