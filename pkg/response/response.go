package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "sudooom.boba/pkg/errors"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    appErrors.CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// ErrorWithMsg 自定义错误消息
func ErrorWithMsg(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
	})
}

// InvalidParams 参数校验失败
func InvalidParams(c *gin.Context, err error) {
	ErrorWithMsg(c, appErrors.CodeInvalidParams, err.Error())
}

// Error 从 AppError / GameError 生成错误响应
func Error(c *gin.Context, err error) {
	ErrorWithMsg(c, appErrors.GetCode(err), appErrors.GetMessage(err))
}

// Unauthorized 未认证
func Unauthorized(c *gin.Context, err error) {
	code := appErrors.CodeTokenInvalid
	message := appErrors.ErrTokenInvalid.Message
	if appErrors.Is(err, appErrors.ErrTokenExpired) || appErrors.Is(err, appErrors.ErrSeatMismatch) {
		code = appErrors.GetCode(err)
		message = appErrors.GetMessage(err)
	}
	c.JSON(http.StatusUnauthorized, Response{
		Code:    code,
		Message: message,
	})
}
