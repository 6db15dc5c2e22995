package repository

import (
	"context"
	"errors"

	"github.com/leon37/KindKeeper/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileRepo 紧急联系人、绑定银行与个人设置
type ProfileRepo struct {
	db *gorm.DB
}

func NewProfileRepo(db *gorm.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

func (r *ProfileRepo) AddContact(ctx context.Context, c *model.EmergencyContact) error {
	if c.ID == "" {
		c.ID = newID()
	}
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *ProfileRepo) Contacts(ctx context.Context, userID string) ([]model.EmergencyContact, error) {
	var list []model.EmergencyContact
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at").Find(&list).Error
	return list, err
}

func (r *ProfileRepo) AddBank(ctx context.Context, b *model.LinkedBank) error {
	if b.ID == "" {
		b.ID = newID()
	}
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *ProfileRepo) Banks(ctx context.Context, userID string) ([]model.LinkedBank, error) {
	var list []model.LinkedBank
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at").Find(&list).Error
	return list, err
}

// Settings 没有记录时返回默认设置
func (r *ProfileRepo) Settings(ctx context.Context, userID string) (*model.UserSettings, error) {
	var s model.UserSettings
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return DefaultSettings(userID), nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ProfileRepo) SaveSettings(ctx context.Context, s *model.UserSettings) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(s).Error
}

func DefaultSettings(userID string) *model.UserSettings {
	return &model.UserSettings{
		UserID:       userID,
		Language:     "en-IN",
		VoiceEnabled: true,
		LargeText:    true,
		Currency:     "INR",
	}
}
