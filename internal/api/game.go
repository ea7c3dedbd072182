package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"sudooom.boba/internal/health"
	"sudooom.boba/internal/middleware"
	"sudooom.boba/internal/protocol"
	"sudooom.boba/internal/service"
	"sudooom.boba/pkg/response"
)

// MessageHandler 玩家请求处理（与 NATS 通道共用）
type MessageHandler interface {
	HandleClientMessage(ctx context.Context, msg *protocol.ClientMessage) *protocol.HostMessage
}

// GameHandler 对局接口
type GameHandler struct {
	gameService *service.GameService
	messages    MessageHandler
}

// NewGameHandler 创建对局处理器
func NewGameHandler(gameService *service.GameService, messages MessageHandler) *GameHandler {
	return &GameHandler{gameService: gameService, messages: messages}
}

// Status 公开快照
// GET /api/v1/games/:id/status
func (h *GameHandler) Status(c *gin.Context) {
	snap, err := h.gameService.Snapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, snap)
}

// Scores 当前得分
// GET /api/v1/games/:id/scores
func (h *GameHandler) Scores(c *gin.Context) {
	scores, err := h.gameService.Scores(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"scores": scores})
}

// Me 玩家自己的视图
// GET /api/v1/games/:id/me
func (h *GameHandler) Me(c *gin.Context) {
	seat := middleware.GetSeat(c)
	view, err := h.gameService.PlayerView(c.Param("id"), seat.PlayerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

// Action 提交玩家请求，载荷与 NATS 上行消息相同
// POST /api/v1/games/:id/actions
func (h *GameHandler) Action(c *gin.Context) {
	var payload protocol.ClientPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.InvalidParams(c, err)
		return
	}

	reply := h.messages.HandleClientMessage(c.Request.Context(), &protocol.ClientMessage{
		GameID:  c.Param("id"),
		Token:   middleware.GetSeatToken(c),
		Payload: payload,
	})
	if e := reply.Payload.Error; e != nil {
		response.ErrorWithMsg(c, e.Code, e.Message)
		return
	}
	response.Success(c, reply.Payload)
}

// ResultHandler 历史结果接口
type ResultHandler struct {
	gameService *service.GameService
}

// NewResultHandler 创建结果处理器
func NewResultHandler(gameService *service.GameService) *ResultHandler {
	return &ResultHandler{gameService: gameService}
}

// List 最近结果
// GET /api/v1/results?limit=20
func (h *ResultHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	results, err := h.gameService.RecentResults(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"list": results})
}

// Get 单局结果
// GET /api/v1/results/:id
func (h *ResultHandler) Get(c *gin.Context) {
	result, err := h.gameService.Result(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Health 健康检查，依赖断开时返回 503
// GET /health
func Health(checker *health.Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := checker.Check(c.Request.Context())
		code := http.StatusOK
		if !status.Healthy() {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	}
}
