package service

import (
	"context"

	"github.com/leon37/KindKeeper/internal/model"
	"github.com/leon37/KindKeeper/internal/repository"
)

type ContactInput struct {
	Name         string `json:"name" binding:"required"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone" binding:"required"`
}

type BankInput struct {
	BankName      string `json:"bank_name" binding:"required"`
	AccountType   string `json:"account_type"`
	AccountNumber string `json:"account_number" binding:"required"`
}

type SettingsInput struct {
	Language     string `json:"language" binding:"required"`
	VoiceEnabled bool   `json:"voice_enabled"`
	LargeText    bool   `json:"large_text"`
	Currency     string `json:"currency" binding:"required,len=3"`
}

// ProfileService 当前用户会话：用户 + 设置 + 紧急联系人 + 银行
type ProfileService struct {
	users    *repository.UserRepository
	profiles *repository.ProfileRepo
}

func NewProfileService(users *repository.UserRepository, profiles *repository.ProfileRepo) *ProfileService {
	return &ProfileService{users: users, profiles: profiles}
}

func (s *ProfileService) Get(ctx context.Context, userID string) (*model.Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	settings, err := s.profiles.Settings(ctx, userID)
	if err != nil {
		return nil, err
	}
	contacts, err := s.profiles.Contacts(ctx, userID)
	if err != nil {
		return nil, err
	}
	banks, err := s.profiles.Banks(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &model.Profile{User: *user, Settings: *settings, Contacts: contacts, Banks: banks}, nil
}

func (s *ProfileService) AddContact(ctx context.Context, userID string, in ContactInput) (*model.EmergencyContact, error) {
	c := &model.EmergencyContact{UserID: userID, Name: in.Name, Relationship: in.Relationship, Phone: in.Phone}
	if err := s.profiles.AddContact(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ProfileService) AddBank(ctx context.Context, userID string, in BankInput) (*model.LinkedBank, error) {
	b := &model.LinkedBank{UserID: userID, BankName: in.BankName, AccountType: in.AccountType, AccountNumber: in.AccountNumber}
	if err := s.profiles.AddBank(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *ProfileService) SaveSettings(ctx context.Context, userID string, in SettingsInput) (*model.UserSettings, error) {
	st := &model.UserSettings{
		UserID:       userID,
		Language:     in.Language,
		VoiceEnabled: in.VoiceEnabled,
		LargeText:    in.LargeText,
		Currency:     in.Currency,
	}
	if err := s.profiles.SaveSettings(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}
