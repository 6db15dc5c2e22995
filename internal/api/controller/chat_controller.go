package controller

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/leon37/KindKeeper/internal/api/middleware"
	"github.com/leon37/KindKeeper/internal/api/response"
	"github.com/leon37/KindKeeper/internal/model"
	"github.com/leon37/KindKeeper/internal/service"
)

const maxImageBytes = 10 << 20

type ChatController struct {
	chat *service.ChatService
}

func NewChatController(chat *service.ChatService) *ChatController {
	return &ChatController{chat: chat}
}

type SendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// History 聊天记录
// @Summary 获取聊天记录
// @Description 按时间升序；记录为空时先写入开场白
// @Tags Chat
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]model.ChatMessage}
// @Router /chat/messages [get]
func (ctrl *ChatController) History(c *gin.Context) {
	uid := middleware.UserID(c)
	if _, _, err := ctrl.chat.Greet(c.Request.Context(), uid); err != nil {
		fail(c, "greet", err)
		return
	}
	list, err := ctrl.chat.History(c.Request.Context(), uid)
	if err != nil {
		fail(c, "chat history", err)
		return
	}
	if list == nil {
		list = []model.ChatMessage{}
	}
	response.Success(c, list)
}

// Send 发送文本消息
// @Summary 发送文本消息
// @Description 解析意图、写入账本并返回助手回复。失败时 data 里仍带通用回复，供前端朗读
// @Tags Chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SendMessageRequest true "消息内容"
// @Success 200 {object} response.Response{data=service.ChatReply}
// @Failure 502 {object} response.Response{data=service.ChatReply}
// @Router /chat/messages [post]
func (ctrl *ChatController) Send(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	reply, err := ctrl.chat.SendText(c.Request.Context(), middleware.UserID(c), req.Text)
	respondReply(c, reply, err)
}

// SendImage 上传账单照片
// @Summary 上传账单照片
// @Tags Chat
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image formData file true "账单照片"
// @Success 200 {object} response.Response{data=service.ChatReply}
// @Router /chat/images [post]
func (ctrl *ChatController) SendImage(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil {
		badRequest(c, err)
		return
	}
	if fh.Size > maxImageBytes {
		response.Error(c, http.StatusRequestEntityTooLarge, "图片过大")
		return
	}
	f, err := fh.Open()
	if err != nil {
		badRequest(c, err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		badRequest(c, err)
		return
	}

	reply, err := ctrl.chat.SendImage(c.Request.Context(), middleware.UserID(c), data, fh.Header.Get("Content-Type"))
	respondReply(c, reply, err)
}

// Clear 清空聊天记录
// @Summary 清空聊天记录
// @Tags Chat
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /chat/messages [delete]
func (ctrl *ChatController) Clear(c *gin.Context) {
	if err := ctrl.chat.ClearHistory(c.Request.Context(), middleware.UserID(c)); err != nil {
		fail(c, "clear chat", err)
		return
	}
	response.Success(c, nil)
}

// respondReply 失败时仍把通用回复放在 data 里
func respondReply(c *gin.Context, reply *service.ChatReply, err error) {
	if err != nil {
		var data interface{}
		if reply != nil {
			data = reply
		}
		failWithData(c, "chat", err, data)
		return
	}
	response.Success(c, reply)
}
