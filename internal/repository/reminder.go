package repository

import (
	"context"

	"github.com/leon37/KindKeeper/internal/model"
	"gorm.io/gorm"
)

type ReminderFilter struct {
	UserID string
	Status model.ReminderStatus
	Range  DateRange
}

type ReminderRepo interface {
	Create(ctx context.Context, reminder *model.Reminder) error
	List(ctx context.Context, filter ReminderFilter) ([]model.Reminder, error)
}

type reminderRepo struct {
	db *gorm.DB
}

func NewReminderRepo(db *gorm.DB) ReminderRepo {
	return &reminderRepo{db: db}
}

// Create 新提醒一律为 PENDING
func (r *reminderRepo) Create(ctx context.Context, reminder *model.Reminder) error {
	if reminder.ID == "" {
		reminder.ID = newID()
	}
	reminder.Status = model.ReminderPending
	return r.db.WithContext(ctx).Create(reminder).Error
}

func (r *reminderRepo) List(ctx context.Context, f ReminderFilter) ([]model.Reminder, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", f.UserID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	q = f.Range.apply(q, "due_date")

	var list []model.Reminder
	err := q.Order("due_date asc").Find(&list).Error
	return list, err
}
