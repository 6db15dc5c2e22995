package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 业务错误码，0 代表成功
const (
	CodeOK         = 0
	CodeBadRequest = 40000
	CodeAuth       = 40100
	CodeNotFound   = 40400
	CodeConflict   = 40900
	CodeUpstream   = 50200 // LLM / 语音服务失败
	CodeServer     = 50000
)

// Response 统一响应结构
type Response struct {
	Code int         `json:"code"` // 0 代表成功，非 0 代表错误码
	Msg  string      `json:"msg"`  // 提示信息
	Data interface{} `json:"data"` // 数据载荷
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code: CodeOK,
		Msg:  "success",
		Data: data,
	})
}

// Error 错误响应，业务码由 HTTP 状态推导
func Error(c *gin.Context, httpStatus int, msg string) {
	ErrorWithData(c, httpStatus, msg, nil)
}

// ErrorWithData 失败但仍需带回数据 (比如聊天失败时的通用回复)
func ErrorWithData(c *gin.Context, httpStatus int, msg string, data interface{}) {
	c.AbortWithStatusJSON(httpStatus, Response{
		Code: codeFor(httpStatus),
		Msg:  msg,
		Data: data,
	})
}

func codeFor(status int) int {
	switch status {
	case http.StatusBadRequest:
		return CodeBadRequest
	case http.StatusUnauthorized:
		return CodeAuth
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusConflict:
		return CodeConflict
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		return CodeUpstream
	}
	return CodeServer
}
