package dto

import "time"

type RegisterRequest struct {
	Name                 string   `json:"name" binding:"required,max=255"`
	Email                string   `json:"email" binding:"required,email,max=255"`
	Password             string   `json:"password" binding:"required,min=6,max=100"`
	PasswordConfirmation string   `json:"password_confirmation" binding:"required,eqfield=Password"`
	UserType             string   `json:"user_type" binding:"required,oneof=beginner trader regulator"`
	RiskProfile          string   `json:"risk_profile" binding:"required,oneof=conservative moderate aggressive"`
	InitialCapital       *float64 `json:"initial_capital" binding:"omitempty,gte=0"`
	Phone                string   `json:"phone" binding:"required,max=20"`
	CIN                  string   `json:"cin" binding:"required,max=50"`
	DateOfBirth          string   `json:"date_of_birth" binding:"required,datetime=2006-01-02,adult"`
	Address              string   `json:"address" binding:"required,max=500"`
	City                 string   `json:"city" binding:"required,max=100"`
	PreferredLanguage    string   `json:"preferred_language" binding:"omitempty,oneof=fr en ar"`

	InvestmentExperience string `json:"investment_experience" binding:"omitempty,oneof=none low medium high"`
	InvestmentObjective  string `json:"investment_objective" binding:"omitempty,oneof=growth income preservation"`
	InvestmentHorizon    string `json:"investment_horizon" binding:"omitempty,oneof=short medium long"`
}

// UpdateProfileRequest is a partial update: nil fields are left untouched.
type UpdateProfileRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=255"`
	Prenom   *string `json:"prenom" binding:"omitempty,max=255"`
	Email    *string `json:"email" binding:"omitempty,email,max=255"`
	Phone    *string `json:"phone" binding:"omitempty,max=20"`
	Address  *string `json:"address" binding:"omitempty,max=255"`
	CIN      *string `json:"cin" binding:"omitempty,max=20"`
	Company  *string `json:"company" binding:"omitempty,max=255"`
	Position *string `json:"position" binding:"omitempty,max=255"`
	Industry *string `json:"industry" binding:"omitempty,max=255"`
	Website  *string `json:"website" binding:"omitempty,url,max=255"`
}

type ChangePasswordRequest struct {
	CurrentPassword         string `json:"current_password" binding:"required"`
	NewPassword             string `json:"new_password" binding:"required,min=6,max=100"`
	NewPasswordConfirmation string `json:"new_password_confirmation" binding:"required"`
}

type UserResponse struct {
	ID                   uint       `json:"id"`
	Name                 string     `json:"name"`
	Prenom               string     `json:"prenom,omitempty"`
	Email                string     `json:"email"`
	Phone                string     `json:"phone,omitempty"`
	CIN                  string     `json:"cin,omitempty"`
	DateOfBirth          string     `json:"date_of_birth,omitempty"`
	Address              string     `json:"address,omitempty"`
	City                 string     `json:"city,omitempty"`
	Country              string     `json:"country"`
	PreferredLanguage    string     `json:"preferred_language"`
	UserType             string     `json:"user_type"`
	RiskProfile          string     `json:"risk_profile"`
	InitialCapital       float64    `json:"initial_capital"`
	CurrentCapital       float64    `json:"current_capital"`
	InvestmentExperience string     `json:"investment_experience"`
	InvestmentObjective  string     `json:"investment_objective"`
	InvestmentHorizon    string     `json:"investment_horizon"`
	Company              string     `json:"company,omitempty"`
	Position             string     `json:"position,omitempty"`
	Industry             string     `json:"industry,omitempty"`
	Website              string     `json:"website,omitempty"`
	EmailVerifiedAt      *time.Time `json:"email_verified_at"`
	IsActive             bool       `json:"is_active"`
	LastLogin            *time.Time `json:"last_login,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}
