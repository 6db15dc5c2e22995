package controller

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/leon37/KindKeeper/internal/api/middleware"
	"github.com/leon37/KindKeeper/internal/api/response"
	"github.com/leon37/KindKeeper/internal/infrastructure/audio"
	"github.com/leon37/KindKeeper/internal/infrastructure/speech"
	"github.com/leon37/KindKeeper/internal/service"
)

const maxChunkBytes = 1 << 20

type VoiceController struct {
	voice    *service.VoiceService
	speakers *speech.Registry
}

func NewVoiceController(voice *service.VoiceService, speakers *speech.Registry) *VoiceController {
	return &VoiceController{voice: voice, speakers: speakers}
}

type StartRecordingRequest struct {
	MimeType string `json:"mime_type"`
}

type SpeakRequest struct {
	Text string `json:"text" binding:"required,max=2000"`
}

// Start 开始录音
// @Summary 开始录音
// @Description 已在录音时为空操作
// @Tags Voice
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body StartRecordingRequest false "音频格式，默认 audio/webm"
// @Success 200 {object} response.Response
// @Router /voice/start [post]
func (ctrl *VoiceController) Start(c *gin.Context) {
	var req StartRecordingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	if req.MimeType == "" {
		req.MimeType = audio.DefaultMimeType
	}
	if err := ctrl.voice.Start(c.Request.Context(), middleware.UserID(c), req.MimeType); err != nil {
		fail(c, "start recording", err)
		return
	}
	response.Success(c, gin.H{"recording": true})
}

// Chunk 上传一段音频
// @Summary 上传音频分片
// @Description 请求体为原始音频字节
// @Tags Voice
// @Accept octet-stream
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response "未在录音"
// @Router /voice/chunk [post]
func (ctrl *VoiceController) Chunk(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxChunkBytes+1))
	if err != nil {
		badRequest(c, err)
		return
	}
	if len(data) > maxChunkBytes {
		response.Error(c, http.StatusRequestEntityTooLarge, "分片过大")
		return
	}

	err = ctrl.voice.Chunk(middleware.UserID(c), data)
	if errors.Is(err, service.ErrNotRecording) {
		response.Error(c, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		fail(c, "audio chunk", err)
		return
	}
	response.Success(c, gin.H{"received": len(data)})
}

// Stop 结束录音并处理
// @Summary 结束录音
// @Description 转写录音并按文本消息处理；未在录音时返回空结果
// @Tags Voice
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=service.VoiceReply}
// @Router /voice/stop [post]
func (ctrl *VoiceController) Stop(c *gin.Context) {
	reply, err := ctrl.voice.Stop(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		failWithData(c, "voice", err, reply)
		return
	}
	response.Success(c, reply)
}

// responsePlayer 把合成好的音频直接写回 HTTP 响应
type responsePlayer struct {
	c      *gin.Context
	played bool
}

func (p *responsePlayer) Play(_ context.Context, r io.Reader) error {
	p.played = true
	p.c.Header("Content-Type", "audio/mpeg")
	p.c.Status(http.StatusOK)
	_, err := io.Copy(p.c.Writer, r)
	return err
}

// Speak 朗读文本
// @Summary 朗读文本
// @Description 同一用户的新请求会打断正在进行的朗读
// @Tags Voice
// @Accept json
// @Produce audio/mpeg
// @Security BearerAuth
// @Param request body SpeakRequest true "要朗读的文本"
// @Success 200 {file} binary
// @Failure 502 {object} response.Response
// @Router /speech [post]
func (ctrl *VoiceController) Speak(c *gin.Context) {
	var req SpeakRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	p := &responsePlayer{c: c}
	ctrl.speakers.For(middleware.UserID(c)).Speak(c.Request.Context(), req.Text, p)
	if !p.played {
		response.Error(c, http.StatusBadGateway, "语音合成暂时不可用")
	}
}
