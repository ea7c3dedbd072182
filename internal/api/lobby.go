package api

import (
	"github.com/gin-gonic/gin"

	"sudooom.boba/internal/service"
	"sudooom.boba/pkg/response"
)

// LobbyHandler 大厅接口
type LobbyHandler struct {
	lobbyService *service.LobbyService
}

// NewLobbyHandler 创建大厅处理器
func NewLobbyHandler(lobbyService *service.LobbyService) *LobbyHandler {
	return &LobbyHandler{lobbyService: lobbyService}
}

// Create 创建大厅
// POST /api/v1/lobbies
func (h *LobbyHandler) Create(c *gin.Context) {
	var req service.CreateLobbyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c, err)
		return
	}

	ticket, err := h.lobbyService.CreateLobby(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, ticket)
}

// Get 查询大厅
// GET /api/v1/lobbies/:id
func (h *LobbyHandler) Get(c *gin.Context) {
	lobby, err := h.lobbyService.GetLobby(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, lobby)
}

// Join 加入大厅
// POST /api/v1/lobbies/:id/join
func (h *LobbyHandler) Join(c *gin.Context) {
	var req service.JoinLobbyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c, err)
		return
	}

	ticket, err := h.lobbyService.JoinLobby(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, ticket)
}

// Start 房主开局
// POST /api/v1/lobbies/:id/start
func (h *LobbyHandler) Start(c *gin.Context) {
	var req service.StartGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c, err)
		return
	}

	resp, err := h.lobbyService.StartGame(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, resp)
}

// ClaimSeat 凭座位密钥领取座位凭证
// POST /api/v1/lobbies/:id/seat
func (h *LobbyHandler) ClaimSeat(c *gin.Context) {
	var req service.ClaimSeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c, err)
		return
	}

	ticket, err := h.lobbyService.ClaimSeat(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, ticket)
}
