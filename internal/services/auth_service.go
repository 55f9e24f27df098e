package services

import (
	"strings"

	"gorm.io/gorm"

	"jobboard_backend/internal/auth"
	"jobboard_backend/internal/models"
	"jobboard_backend/internal/repositories"
	"jobboard_backend/internal/services/dto"
	"jobboard_backend/pkg/apperrors"
)

type AuthService struct {
	Users repositories.UserRepository
}

func NewAuthService(users repositories.UserRepository) *AuthService {
	return &AuthService{Users: users}
}

// Register создает пользователя с ролью applicant или recruiter.
// Админов через публичную регистрацию не бывает.
func (s *AuthService) Register(db *gorm.DB, req dto.RegisterRequest) (*models.User, error) {
	role := req.Role
	if role != models.UserRoleApplicant && role != models.UserRoleRecruiter {
		return nil, apperrors.ErrInvalidUserRole
	}

	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.ErrWeakPassword
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Name:         req.Name,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Role:         role,
		CompanyName:  req.CompanyName,
		City:         req.City,
	}
	if err := s.Users.Create(db, user); err != nil {
		if apperrors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, apperrors.InternalError(err)
	}
	return user, nil
}

// Login проверяет учетные данные и выдает JWT.
// Не раскрываем, что именно неверно - email или пароль.
func (s *AuthService) Login(db *gorm.DB, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.Users.FindByEmail(db, req.Email)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.LoginResponse{
		AccessToken: token,
		UserID:      user.ID,
		Role:        user.Role,
		Name:        user.Name,
	}, nil
}
