package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"sudooom.boba/internal/token"
	appErrors "sudooom.boba/pkg/errors"
	"sudooom.boba/pkg/response"
)

const (
	seatClaimsKey = "seat_claims"
	seatTokenKey  = "seat_token"
)

// SeatVerifier 校验座位凭证
type SeatVerifier interface {
	ValidateFor(tokenString, gameID string) (*token.SeatClaims, error)
}

// SeatAuth 座位凭证中间件，凭证必须属于路径参数 :id 对应的对局
func SeatAuth(verifier SeatVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := extractToken(c.GetHeader("Authorization"))
		if tok == "" {
			response.Unauthorized(c, appErrors.ErrTokenInvalid)
			c.Abort()
			return
		}

		claims, err := verifier.ValidateFor(tok, c.Param("id"))
		if err != nil {
			response.Unauthorized(c, err)
			c.Abort()
			return
		}

		c.Set(seatClaimsKey, claims)
		c.Set(seatTokenKey, tok)
		c.Next()
	}
}

// extractToken 从 Authorization header 提取 token
func extractToken(authHeader string) string {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return parts[1]
}

// GetSeat 从 context 获取座位声明
func GetSeat(c *gin.Context) *token.SeatClaims {
	claims, exists := c.Get(seatClaimsKey)
	if !exists {
		return nil
	}
	return claims.(*token.SeatClaims)
}

// GetSeatToken 从 context 获取原始凭证
func GetSeatToken(c *gin.Context) string {
	return c.GetString(seatTokenKey)
}
