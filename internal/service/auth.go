package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/leon37/KindKeeper/internal/config"
	"github.com/leon37/KindKeeper/internal/model"
	"github.com/leon37/KindKeeper/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
)

type AuthService struct {
	userRepo *repository.UserRepository
	profiles *repository.ProfileRepo
	jwt      config.JWTConfig
}

func NewAuthService(userRepo *repository.UserRepository, profiles *repository.ProfileRepo, jwtCfg config.JWTConfig) *AuthService {
	return &AuthService{userRepo: userRepo, profiles: profiles, jwt: jwtCfg}
}

// Register 注册逻辑，同时写入默认设置
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	// 1. 检查是否存在 (DB Unique Index 兜底)
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	// 2. 密码加密
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	// 3. 落库
	id, _ := uuid.NewV7()
	user := &model.User{
		ID:       id.String(),
		Name:     name,
		Email:    email,
		Password: string(hash),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	if err := s.profiles.SaveSettings(ctx, repository.DefaultSettings(user.ID)); err != nil {
		return nil, fmt.Errorf("save default settings: %w", err)
	}
	return user, nil
}

// Login 登录逻辑，返回 Token 和用户
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	// 1. 查用户
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, ErrInvalidCredentials // 模糊报错为了安全
	}

	// 2. 比对密码
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	// 3. 生成 JWT
	token, err := s.generateToken(user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) generateToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour * time.Duration(s.jwt.ExpireHours)).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwt.Secret))
}

// ParseToken 校验签名和过期时间，返回 user_id
func ParseToken(secret, tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", fmt.Errorf("invalid token: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token claims")
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return "", errors.New("token has no user_id")
	}
	return userID, nil
}
