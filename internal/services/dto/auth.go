package dto

import "jobboard_backend/internal/models"

// RegisterRequest представляет тело запроса регистрации
// @Description role - applicant или recruiter; company_name только для рекрутеров
type RegisterRequest struct {
	Name        string          `json:"name" validate:"required,max=100"`
	Email       string          `json:"email" validate:"required,email"`
	Password    string          `json:"password" validate:"required,min=6"`
	Role        models.UserRole `json:"role" validate:"required,oneof=applicant recruiter"`
	CompanyName *string         `json:"company_name,omitempty"`
	City        *string         `json:"city,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	UserID      string          `json:"user_id"`
	Role        models.UserRole `json:"role"`
	Name        string          `json:"name"`
}
