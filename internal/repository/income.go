package repository

import (
	"context"
	"time"

	"github.com/leon37/KindKeeper/internal/model"
	"gorm.io/gorm"
)

type IncomeFilter struct {
	UserID string
	Source string
	Range  DateRange
	Pagination
}

type IncomeRepo interface {
	Create(ctx context.Context, income *model.IncomeEntry) error
	List(ctx context.Context, filter IncomeFilter) ([]model.IncomeEntry, int64, error)
}

type incomeRepo struct {
	db *gorm.DB
}

func NewIncomeRepo(db *gorm.DB) IncomeRepo {
	return &incomeRepo{db: db}
}

func (r *incomeRepo) Create(ctx context.Context, income *model.IncomeEntry) error {
	if income.ID == "" {
		income.ID = newID()
	}
	if income.Date.IsZero() {
		income.Date = time.Now()
	}
	return r.db.WithContext(ctx).Create(income).Error
}

func (r *incomeRepo) List(ctx context.Context, f IncomeFilter) ([]model.IncomeEntry, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.IncomeEntry{}).Where("user_id = ?", f.UserID)
	if f.Source != "" {
		q = q.Where("source = ?", f.Source)
	}
	q = f.Range.apply(q, "date")

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []model.IncomeEntry
	if err := f.Pagination.apply(q.Order("date desc")).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
