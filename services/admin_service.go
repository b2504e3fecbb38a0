package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Hasan-Al-Banna-Nahid/retreat/models"
)

type AdminService struct {
	DB *gorm.DB
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{DB: db}
}

var errInvalidCredentials = &models.Error{Kind: models.KindUnauthorized, Message: "invalid credentials"}

// Authenticate checks a username and password against the stored bcrypt hash.
func (s *AdminService) Authenticate(ctx context.Context, username, password string) (models.Admin, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return models.Admin{}, models.NewValidationError("username and password required", nil)
	}
	var admin models.Admin
	if err := s.DB.WithContext(ctx).Where("username = ?", username).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Admin{}, errInvalidCredentials
		}
		return models.Admin{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)) != nil {
		return models.Admin{}, errInvalidCredentials
	}
	return admin, nil
}

func (s *AdminService) Create(ctx context.Context, fullName, username, password, role string) (models.Admin, error) {
	if role != models.RoleApprover && role != models.RoleViewer {
		return models.Admin{}, models.NewValidationError("unknown role", map[string]string{"role": "must be approver or viewer"})
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.Admin{}, err
	}
	admin := models.Admin{FullName: fullName, Username: strings.TrimSpace(username), Password: string(hash), Role: role}
	if err := s.DB.WithContext(ctx).Create(&admin).Error; err != nil {
		if isDuplicateError(err) {
			return models.Admin{}, &models.Error{Kind: models.KindConflict, Message: "username already taken", Err: err}
		}
		return models.Admin{}, err
	}
	return admin, nil
}

func (s *AdminService) List(ctx context.Context) ([]models.Admin, error) {
	admins := []models.Admin{}
	err := s.DB.WithContext(ctx).Order("id").Find(&admins).Error
	return admins, err
}
