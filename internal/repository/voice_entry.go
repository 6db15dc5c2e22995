package repository

import (
	"context"

	"github.com/leon37/KindKeeper/internal/model"
	"gorm.io/gorm"
)

// VoiceEntryRepo 只增不改
type VoiceEntryRepo interface {
	Create(ctx context.Context, entry *model.VoiceEntry) error
	List(ctx context.Context, userID string, r DateRange) ([]model.VoiceEntry, error)
}

type voiceEntryRepo struct {
	db *gorm.DB
}

func NewVoiceEntryRepo(db *gorm.DB) VoiceEntryRepo {
	return &voiceEntryRepo{db: db}
}

func (r *voiceEntryRepo) Create(ctx context.Context, entry *model.VoiceEntry) error {
	if entry.ID == "" {
		entry.ID = newID()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *voiceEntryRepo) List(ctx context.Context, userID string, dr DateRange) ([]model.VoiceEntry, error) {
	q := dr.apply(r.db.WithContext(ctx).Where("user_id = ?", userID), "created_at")

	var list []model.VoiceEntry
	err := q.Order("created_at desc").Find(&list).Error
	return list, err
}
