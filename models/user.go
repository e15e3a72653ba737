package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================================
// USER MODEL
// ============================================================================

type UserType string

const (
	UserProfessional UserType = "professional"
	UserStudent      UserType = "student"
	UserUnspecified  UserType = "unspecified"
)

type FinancialProfile struct {
	UserType      UserType        `json:"user_type"`
	CompanyName   string          `json:"company_name,omitempty"`
	SalaryDay     int             `json:"salary_day,omitempty"`
	CollegeName   string          `json:"college_name,omitempty"`
	MonthlyIncome decimal.Decimal `json:"monthly_income"`
}

type User struct {
	ID               string           `json:"id"`
	Email            string           `json:"email"`
	Name             string           `json:"name"`
	Avatar           string           `json:"avatar,omitempty"`
	PasswordHash     string           `json:"-"` // Never expose in JSON
	TOTPSecret       string           `json:"-"` // Never expose in JSON
	TOTPEnabled      bool             `json:"totp_enabled"`
	FinancialProfile FinancialProfile `json:"financial_profile"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// DisplayName falls back to the email when no name is set.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// ============================================================================
// AUTHENTICATION REQUESTS
// ============================================================================

type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	TOTPCode string `json:"totp_code,omitempty"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// ============================================================================
// PROFILE, PASSWORD & 2FA
// ============================================================================

type UpdateProfileRequest struct {
	Name   string `json:"name" binding:"required"`
	Avatar string `json:"avatar"`
}

// UpdateFinancialProfileRequest only touches fields that are present.
type UpdateFinancialProfileRequest struct {
	UserType      *UserType        `json:"user_type" binding:"omitempty,oneof=professional student unspecified"`
	CompanyName   *string          `json:"company_name"`
	SalaryDay     *int             `json:"salary_day" binding:"omitempty,min=1,max=31"`
	CollegeName   *string          `json:"college_name"`
	MonthlyIncome *decimal.Decimal `json:"monthly_income"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
}

type TOTPSetupResponse struct {
	Secret string `json:"secret"`
	QRCode string `json:"qr_code"`
}

type VerifyTOTPRequest struct {
	Code string `json:"code" binding:"required,len=6"`
}

type DisableTOTPRequest struct {
	Password string `json:"password" binding:"required"`
	Code     string `json:"code" binding:"required"`
}

type DeleteAccountRequest struct {
	Password string `json:"password" binding:"required"`
}
