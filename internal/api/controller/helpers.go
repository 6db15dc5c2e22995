package controller

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/leon37/KindKeeper/internal/api/middleware"
	"github.com/leon37/KindKeeper/internal/api/response"
	"github.com/leon37/KindKeeper/internal/infrastructure/audio"
	"github.com/leon37/KindKeeper/internal/infrastructure/llm"
	"github.com/leon37/KindKeeper/internal/infrastructure/ocr"
	"github.com/leon37/KindKeeper/internal/repository"
	"github.com/leon37/KindKeeper/internal/service"
)

// RangeQuery 通用日期筛选，格式 2006-01-02，结束日期包含当天
type RangeQuery struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

func (q RangeQuery) toRange() (repository.DateRange, error) {
	var dr repository.DateRange
	if q.StartDate != "" {
		t, err := time.ParseInLocation("2006-01-02", q.StartDate, time.Local)
		if err != nil {
			return dr, err
		}
		dr.Start = t
	}
	if q.EndDate != "" {
		t, err := time.ParseInLocation("2006-01-02", q.EndDate, time.Local)
		if err != nil {
			return dr, err
		}
		dr.End = t.Add(24*time.Hour - time.Nanosecond)
	}
	return dr, nil
}

// fail 把 service / repository 的错误映射成 HTTP 状态
func fail(c *gin.Context, op string, err error) {
	failWithData(c, op, err, nil)
}

func failWithData(c *gin.Context, op string, err error, data interface{}) {
	status, msg := http.StatusInternalServerError, "服务器内部错误"
	switch {
	case errors.Is(err, repository.ErrNotFound):
		status, msg = http.StatusNotFound, "记录不存在"
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, llm.ErrEmptyInput),
		errors.Is(err, llm.ErrEmptyAudio), errors.Is(err, ocr.ErrEmptyImage):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, llm.ErrNetwork), errors.Is(err, llm.ErrParse):
		status, msg = http.StatusBadGateway, "AI 服务暂时不可用，请稍后再试"
	case errors.Is(err, audio.ErrStopping):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrMemoryDisabled):
		status, msg = http.StatusServiceUnavailable, err.Error()
	}
	slog.Error(op+" failed", "uid", middleware.UserID(c), "status", status, "err", err)
	response.ErrorWithData(c, status, msg, data)
}

func badRequest(c *gin.Context, err error) {
	slog.Warn("params invalid", "path", c.FullPath(), "err", err)
	response.Error(c, http.StatusBadRequest, "参数校验失败: "+err.Error())
}
