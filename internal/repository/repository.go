package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound 记录不存在 (包括不属于当前用户的记录)
var ErrNotFound = errors.New("record not found")

// Pagination 分页参数，PageSize<=0 表示不分页
type Pagination struct {
	Page     int
	PageSize int
}

func (p Pagination) apply(q *gorm.DB) *gorm.DB {
	if p.PageSize <= 0 {
		return q
	}
	page := p.Page
	if page < 1 {
		page = 1
	}
	return q.Offset((page - 1) * p.PageSize).Limit(p.PageSize)
}

// DateRange 闭区间；零值表示不限制
type DateRange struct {
	Start time.Time
	End   time.Time
}

func (r DateRange) apply(q *gorm.DB, column string) *gorm.DB {
	if !r.Start.IsZero() {
		q = q.Where(column+" >= ?", r.Start)
	}
	if !r.End.IsZero() {
		q = q.Where(column+" <= ?", r.End)
	}
	return q
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
