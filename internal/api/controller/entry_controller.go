package controller

import (
	"io"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/leon37/KindKeeper/internal/api/middleware"
	"github.com/leon37/KindKeeper/internal/api/response"
	"github.com/leon37/KindKeeper/internal/events"
	"github.com/leon37/KindKeeper/internal/model"
	"github.com/leon37/KindKeeper/internal/service"
)

// Subscriber 只需要订阅能力，由 events.Bus 实现
type Subscriber interface {
	Subscribe(h events.Handler) (unsubscribe func())
}

type EntryController struct {
	bus       Subscriber
	ledger    *service.LedgerService
	memory    *service.MemoryService
	keepAlive time.Duration
}

func NewEntryController(bus Subscriber, ledger *service.LedgerService, memory *service.MemoryService) *EntryController {
	return &EntryController{bus: bus, ledger: ledger, memory: memory, keepAlive: 25 * time.Second}
}

// Stream 新记录推送 (SSE)
// @Summary 订阅新记录
// @Description Server-Sent Events，事件名 ENTRY_ADDED，数据为 VoiceEntry。EventSource 可用 ?token= 鉴权
// @Tags Entries
// @Produce text/event-stream
// @Security BearerAuth
// @Success 200 {object} model.VoiceEntry
// @Router /entries/stream [get]
func (ctrl *EntryController) Stream(c *gin.Context) {
	uid := middleware.UserID(c)
	ch := make(chan model.VoiceEntry, 16)

	unsubscribe := ctrl.bus.Subscribe(func(e model.VoiceEntry) {
		if e.UserID != uid {
			return
		}
		select {
		case ch <- e:
		default:
			slog.Warn("sse client lagging, entry dropped", "uid", uid, "entry_id", e.ID)
		}
	})
	defer unsubscribe()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(ctrl.keepAlive)
	defer ticker.Stop()

	slog.Info("sse client connected", "uid", uid)
	c.SSEvent("ready", gin.H{"user_id": uid})
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			slog.Info("sse client gone", "uid", uid)
			return false
		case e := <-ch:
			c.SSEvent(events.EntryAdded, e)
			return true
		case <-ticker.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		}
	})
}

type SearchQuery struct {
	Q     string `form:"q" binding:"required"`
	Limit int    `form:"limit"`
}

// Search 语义检索历史记录
// @Summary 语义检索历史记录
// @Tags Entries
// @Produce json
// @Security BearerAuth
// @Param q query string true "查询内容"
// @Param limit query int false "返回条数，默认 5"
// @Success 200 {object} response.Response{data=[]repository.MemoryResult}
// @Failure 503 {object} response.Response "未配置向量检索"
// @Router /entries/search [get]
func (ctrl *EntryController) Search(c *gin.Context) {
	var q SearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	results, err := ctrl.memory.Search(c.Request.Context(), middleware.UserID(c), q.Q, q.Limit)
	if err != nil {
		fail(c, "entry search", err)
		return
	}
	response.Success(c, results)
}

// VoiceEntries 审计记录列表
// @Summary 语音/文本输入的审计记录
// @Tags Entries
// @Produce json
// @Security BearerAuth
// @Param start_date query string false "开始日期 2006-01-02"
// @Param end_date query string false "结束日期 2006-01-02"
// @Success 200 {object} response.Response{data=[]model.VoiceEntry}
// @Router /voice-entries [get]
func (ctrl *EntryController) VoiceEntries(c *gin.Context) {
	var q RangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	dr, err := q.toRange()
	if err != nil {
		badRequest(c, err)
		return
	}
	list, err := ctrl.ledger.VoiceEntries(c.Request.Context(), middleware.UserID(c), dr)
	if err != nil {
		fail(c, "voice entries", err)
		return
	}
	if list == nil {
		list = []model.VoiceEntry{}
	}
	response.Success(c, list)
}
