package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/vnkhanh/checkout-survey/models"
	"github.com/vnkhanh/checkout-survey/utils"
)

// AuthService: đăng ký/đăng nhập cho merchant, token mang domain của shop.
type AuthService struct {
	db     *gorm.DB
	secret string
}

func NewAuthService(db *gorm.DB, jwtSecret string) *AuthService {
	return &AuthService{db: db, secret: jwtSecret}
}

func (s *AuthService) Register(ctx context.Context, email, password, shop string) (*models.AdminUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.AdminUser{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}
	user := models.AdminUser{
		Email:        email,
		PasswordHash: hash,
		ShopDomain:   strings.TrimSuffix(strings.TrimSpace(shop), "/"),
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return &user, nil
}

// Login trả về token và user; sai email hay sai mật khẩu đều là ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.AdminUser, error) {
	var user models.AdminUser
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, fmt.Errorf("login: %w", err)
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(s.secret, user.ID, user.ShopDomain)
	if err != nil {
		return "", nil, fmt.Errorf("login: %w", err)
	}
	return token, &user, nil
}

// Authenticate kiểm tra token và trả về admin tương ứng.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.AdminUser, error) {
	claims, err := utils.VerifyToken(s.secret, token)
	if err != nil {
		return nil, err
	}
	var user models.AdminUser
	if err := s.db.WithContext(ctx).First(&user, "id = ?", claims.UserID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
