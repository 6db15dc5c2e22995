package repository

import (
	"context"
	"time"

	"github.com/leon37/KindKeeper/internal/model"
	"gorm.io/gorm"
)

// ExpenseFilter 列表筛选条件
type ExpenseFilter struct {
	UserID   string
	Category string
	Range    DateRange
	Pagination
}

// ExpenseRepo 定义接口 (为了以后方便 Mock)
type ExpenseRepo interface {
	Create(ctx context.Context, expense *model.Expense) error
	List(ctx context.Context, filter ExpenseFilter) ([]model.Expense, int64, error)
}

type expenseRepo struct {
	db *gorm.DB
}

func NewExpenseRepo(db *gorm.DB) ExpenseRepo {
	return &expenseRepo{db: db}
}

// Create 插入一条记录，缺省日期用当前时间
func (r *expenseRepo) Create(ctx context.Context, expense *model.Expense) error {
	if expense.ID == "" {
		expense.ID = newID()
	}
	if expense.Date.IsZero() {
		expense.Date = time.Now()
	}
	// WithContext 确保请求超时能传递到数据库层
	return r.db.WithContext(ctx).Create(expense).Error
}

func (r *expenseRepo) List(ctx context.Context, f ExpenseFilter) ([]model.Expense, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Expense{}).Where("user_id = ?", f.UserID)
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	q = f.Range.apply(q, "date")

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []model.Expense
	if err := f.Pagination.apply(q.Order("date desc")).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
