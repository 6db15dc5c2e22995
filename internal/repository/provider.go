package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/leon37/KindKeeper/internal/model"
	"gorm.io/gorm"
)

type ProviderRepo interface {
	Create(ctx context.Context, provider *model.ServiceProvider) error
	List(ctx context.Context, userID string) ([]model.ServiceProvider, error)
	GetByID(ctx context.Context, userID, id string) (*model.ServiceProvider, error)
}

type AttendanceFilter struct {
	UserID     string
	ProviderID string
	Range      DateRange
}

type AttendanceRepo interface {
	Create(ctx context.Context, log *model.AttendanceLog) error
	List(ctx context.Context, filter AttendanceFilter) ([]model.AttendanceLog, error)
}

type providerRepo struct {
	db *gorm.DB
}

func NewProviderRepo(db *gorm.DB) ProviderRepo {
	return &providerRepo{db: db}
}

// Create 不做重名检查，同名 provider 会重复插入
func (r *providerRepo) Create(ctx context.Context, provider *model.ServiceProvider) error {
	if provider.ID == "" {
		provider.ID = newID()
	}
	return r.db.WithContext(ctx).Create(provider).Error
}

func (r *providerRepo) List(ctx context.Context, userID string) ([]model.ServiceProvider, error) {
	var list []model.ServiceProvider
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("name").Find(&list).Error
	return list, err
}

func (r *providerRepo) GetByID(ctx context.Context, userID, id string) (*model.ServiceProvider, error) {
	var p model.ServiceProvider
	err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

type attendanceRepo struct {
	db *gorm.DB
}

func NewAttendanceRepo(db *gorm.DB) AttendanceRepo {
	return &attendanceRepo{db: db}
}

// Create 校验 provider 存在且属于同一用户
func (r *attendanceRepo) Create(ctx context.Context, log *model.AttendanceLog) error {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.ServiceProvider{}).
		Where("user_id = ? AND id = ?", log.UserID, log.ProviderID).
		Count(&n).Error
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("provider %s: %w", log.ProviderID, ErrNotFound)
	}

	if log.ID == "" {
		log.ID = newID()
	}
	if log.Date.IsZero() {
		log.Date = time.Now()
	}
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *attendanceRepo) List(ctx context.Context, f AttendanceFilter) ([]model.AttendanceLog, error) {
	q := r.db.WithContext(ctx).Where("user_id = ? AND provider_id = ?", f.UserID, f.ProviderID)
	q = f.Range.apply(q, "date")

	var list []model.AttendanceLog
	err := q.Order("date desc").Find(&list).Error
	return list, err
}
