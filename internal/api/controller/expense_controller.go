package controller

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/leon37/KindKeeper/internal/api/middleware"
	"github.com/leon37/KindKeeper/internal/api/response"
	"github.com/leon37/KindKeeper/internal/model"
	"github.com/leon37/KindKeeper/internal/repository"
	"github.com/leon37/KindKeeper/internal/service"
)

// LedgerController 账本页面：支出、收入、提醒、保姆出勤、月度汇总、导出
type LedgerController struct {
	ledger *service.LedgerService
	export *service.ExportService
}

func NewLedgerController(ledger *service.LedgerService, export *service.ExportService) *LedgerController {
	return &LedgerController{ledger: ledger, export: export}
}

// ListRequest 列表请求参数
type ListRequest struct {
	RangeQuery
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"page_size,default=20"`
	Category string `form:"category"`
	Source   string `form:"source"`
}

type ListResponse[T any] struct {
	List  []T   `json:"list"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
}

// ListExpenses 支出列表
// @Summary 获取支出列表
// @Description 按日期倒序，可按分类和日期筛选
// @Tags Ledger
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码"
// @Param page_size query int false "每页条数"
// @Param category query string false "分类 GROCERIES|MEDICAL|BILLS|MAID|VEHICLE|MISC"
// @Param start_date query string false "开始日期 2006-01-02"
// @Param end_date query string false "结束日期 2006-01-02"
// @Success 200 {object} response.Response
// @Router /expenses [get]
func (ctrl *LedgerController) ListExpenses(c *gin.Context) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}
	dr, err := req.toRange()
	if err != nil {
		badRequest(c, err)
		return
	}

	page, err := ctrl.ledger.Expenses(c.Request.Context(), repository.ExpenseFilter{
		UserID:     middleware.UserID(c),
		Category:   req.Category,
		Range:      dr,
		Pagination: repository.Pagination{Page: req.Page, PageSize: req.PageSize},
	})
	if err != nil {
		fail(c, "list expenses", err)
		return
	}
	response.Success(c, ListResponse[model.Expense]{List: orEmpty(page.Items), Total: page.Total, Page: req.Page})
}

// CreateExpense 手动记一笔支出
// @Summary 手动记一笔支出
// @Tags Ledger
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.ExpenseInput true "支出"
// @Success 200 {object} response.Response{data=model.Expense}
// @Router /expenses [post]
func (ctrl *LedgerController) CreateExpense(c *gin.Context) {
	var req service.ExpenseInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	e, err := ctrl.ledger.AddExpense(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		fail(c, "create expense", err)
		return
	}
	response.Success(c, e)
}

// ListIncome 收入列表
// @Summary 获取收入列表
// @Tags Ledger
// @Produce json
// @Security BearerAuth
// @Param source query string false "来源"
// @Param start_date query string false "开始日期 2006-01-02"
// @Param end_date query string false "结束日期 2006-01-02"
// @Success 200 {object} response.Response
// @Router /income [get]
func (ctrl *LedgerController) ListIncome(c *gin.Context) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}
	dr, err := req.toRange()
	if err != nil {
		badRequest(c, err)
		return
	}

	page, err := ctrl.ledger.Income(c.Request.Context(), repository.IncomeFilter{
		UserID:     middleware.UserID(c),
		Source:     req.Source,
		Range:      dr,
		Pagination: repository.Pagination{Page: req.Page, PageSize: req.PageSize},
	})
	if err != nil {
		fail(c, "list income", err)
		return
	}
	response.Success(c, ListResponse[model.IncomeEntry]{List: orEmpty(page.Items), Total: page.Total, Page: req.Page})
}

// CreateIncome 手动记一笔收入
// @Summary 手动记一笔收入
// @Tags Ledger
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.IncomeInput true "收入"
// @Success 200 {object} response.Response{data=model.IncomeEntry}
// @Router /income [post]
func (ctrl *LedgerController) CreateIncome(c *gin.Context) {
	var req service.IncomeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	e, err := ctrl.ledger.AddIncome(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		fail(c, "create income", err)
		return
	}
	response.Success(c, e)
}

type ReminderQuery struct {
	RangeQuery
	Status string `form:"status"`
}

// ListReminders 提醒列表
// @Summary 获取提醒列表
// @Description 按到期日升序
// @Tags Ledger
// @Produce json
// @Security BearerAuth
// @Param status query string false "PENDING|COMPLETED|CANCELLED"
// @Success 200 {object} response.Response{data=[]model.Reminder}
// @Router /reminders [get]
func (ctrl *LedgerController) ListReminders(c *gin.Context) {
	var q ReminderQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	status := model.ReminderStatus(q.Status)
	if status != "" && !status.Valid() {
		badRequest(c, fmt.Errorf("unknown status %q", q.Status))
		return
	}
	dr, err := q.toRange()
	if err != nil {
		badRequest(c, err)
		return
	}

	list, err := ctrl.ledger.Reminders(c.Request.Context(), repository.ReminderFilter{
		UserID: middleware.UserID(c),
		Status: status,
		Range:  dr,
	})
	if err != nil {
		fail(c, "list reminders", err)
		return
	}
	response.Success(c, orEmpty(list))
}

// CreateReminder 新建提醒
// @Summary 新建提醒
// @Tags Ledger
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.ReminderInput true "提醒"
// @Success 200 {object} response.Response{data=model.Reminder}
// @Router /reminders [post]
func (ctrl *LedgerController) CreateReminder(c *gin.Context) {
	var req service.ReminderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	r, err := ctrl.ledger.AddReminder(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		fail(c, "create reminder", err)
		return
	}
	response.Success(c, r)
}

// ListProviders 家政人员列表
// @Summary 家政人员列表
// @Tags Household
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]model.ServiceProvider}
// @Router /providers [get]
func (ctrl *LedgerController) ListProviders(c *gin.Context) {
	list, err := ctrl.ledger.Providers(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, "list providers", err)
		return
	}
	response.Success(c, orEmpty(list))
}

// CreateProvider 新增家政人员
// @Summary 新增家政人员
// @Tags Household
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.ProviderInput true "家政人员"
// @Success 200 {object} response.Response{data=model.ServiceProvider}
// @Router /providers [post]
func (ctrl *LedgerController) CreateProvider(c *gin.Context) {
	var req service.ProviderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := ctrl.ledger.AddProvider(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		fail(c, "create provider", err)
		return
	}
	response.Success(c, p)
}

// ListAttendance 出勤记录
// @Summary 出勤记录
// @Tags Household
// @Produce json
// @Security BearerAuth
// @Param id path string true "provider id"
// @Success 200 {object} response.Response{data=[]model.AttendanceLog}
// @Failure 404 {object} response.Response
// @Router /providers/{id}/attendance [get]
func (ctrl *LedgerController) ListAttendance(c *gin.Context) {
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
	list, err := ctrl.ledger.Attendance(c.Request.Context(), repository.AttendanceFilter{
		UserID:     middleware.UserID(c),
		ProviderID: c.Param("id"),
		Range:      dr,
	})
	if err != nil {
		fail(c, "list attendance", err)
		return
	}
	response.Success(c, orEmpty(list))
}

// MarkAttendance 记一次出勤
// @Summary 记一次出勤
// @Tags Household
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "provider id"
// @Param request body service.AttendanceInput true "出勤"
// @Success 200 {object} response.Response{data=model.AttendanceLog}
// @Failure 404 {object} response.Response
// @Router /providers/{id}/attendance [post]
func (ctrl *LedgerController) MarkAttendance(c *gin.Context) {
	var req service.AttendanceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	l, err := ctrl.ledger.MarkAttendance(c.Request.Context(), middleware.UserID(c), c.Param("id"), req)
	if err != nil {
		fail(c, "mark attendance", err)
		return
	}
	response.Success(c, l)
}

// MonthlySummary 月度汇总
// @Summary 月度汇总
// @Tags Ledger
// @Produce json
// @Security BearerAuth
// @Param month query string false "月份 2006-01，默认当月"
// @Success 200 {object} response.Response{data=repository.MonthlySummary}
// @Router /summary/monthly [get]
func (ctrl *LedgerController) MonthlySummary(c *gin.Context) {
	month := c.Query("month")
	if month != "" {
		if _, err := time.Parse("2006-01", month); err != nil {
			badRequest(c, err)
			return
		}
	}
	sum, err := ctrl.ledger.MonthlySummary(c.Request.Context(), middleware.UserID(c), month)
	if err != nil {
		fail(c, "monthly summary", err)
		return
	}
	response.Success(c, sum)
}

// Export 导出账本
// @Summary 导出账本 (xlsx)
// @Tags Ledger
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param start_date query string false "开始日期 2006-01-02"
// @Param end_date query string false "结束日期 2006-01-02"
// @Success 200 {file} binary
// @Router /logbook/export [get]
func (ctrl *LedgerController) Export(c *gin.Context) {
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

	var buf bytes.Buffer
	if err := ctrl.export.Logbook(c.Request.Context(), middleware.UserID(c), dr, &buf); err != nil {
		fail(c, "export logbook", err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"logbook_%s.xlsx\"", time.Now().Format("20060102")))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func orEmpty[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
