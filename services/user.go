package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/LovationAdmin/finance-tracker-api/models"
	"github.com/LovationAdmin/finance-tracker-api/utils"
)

// Encrypted TOTP secrets carry this prefix so plaintext rows from before
// DATA_ENCRYPTION_KEY was set still verify.
const encryptedSecretPrefix = "enc:"

type UserService struct {
	users         UserStore
	jwtSecret     string
	tokenTTL      time.Duration
	encryptionKey string
}

func NewUserService(users UserStore, jwtSecret string, tokenTTL time.Duration, encryptionKey string) *UserService {
	return &UserService{
		users:         users,
		jwtSecret:     jwtSecret,
		tokenTTL:      tokenTTL,
		encryptionKey: encryptionKey,
	}
}

func (s *UserService) Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: hash,
		FinancialProfile: models.FinancialProfile{
			UserType: models.UserUnspecified,
		},
	}
	if err := s.users.Create(ctx, user); err != nil {
		utils.LogAuthAction("signup", email, false)
		return nil, err
	}

	utils.LogAuthAction("signup", email, true)
	return s.authResponse(user)
}

// Login checks the password and, when 2FA is enabled, the TOTP code.
func (s *UserService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		utils.LogAuthAction("login", email, false)
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, err
	}
	if !utils.CheckPassword(req.Password, user.PasswordHash) {
		utils.LogAuthAction("login", email, false)
		return nil, models.ErrInvalidCredentials
	}

	if user.TOTPEnabled {
		if req.TOTPCode == "" {
			return nil, models.ErrTOTPRequired
		}
		if err := s.checkTOTP(user, req.TOTPCode); err != nil {
			utils.LogAuthAction("login 2fa", email, false)
			return nil, err
		}
	}

	utils.LogAuthAction("login", email, true)
	return s.authResponse(user)
}

func (s *UserService) authResponse(user *models.User) (*models.AuthResponse, error) {
	token, err := utils.GenerateAccessToken(user.ID, user.Email, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &models.AuthResponse{Token: token, User: *user}, nil
}

func (s *UserService) Profile(ctx context.Context, userID string) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.User, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, models.NewValidationError("name", "is required")
	}
	if err := s.users.UpdateProfile(ctx, userID, name, strings.TrimSpace(req.Avatar)); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, userID)
}

// UpdateFinancialProfile merges the fields present in req into the stored profile.
func (s *UserService) UpdateFinancialProfile(ctx context.Context, userID string, req models.UpdateFinancialProfileRequest) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	p := user.FinancialProfile
	if req.UserType != nil {
		p.UserType = *req.UserType
	}
	if req.CompanyName != nil {
		p.CompanyName = strings.TrimSpace(*req.CompanyName)
	}
	if req.SalaryDay != nil {
		if *req.SalaryDay < 1 || *req.SalaryDay > 31 {
			return nil, models.NewValidationError("salary_day", "must be between 1 and 31")
		}
		p.SalaryDay = *req.SalaryDay
	}
	if req.CollegeName != nil {
		p.CollegeName = strings.TrimSpace(*req.CollegeName)
	}
	if req.MonthlyIncome != nil {
		if req.MonthlyIncome.IsNegative() {
			return nil, models.NewValidationError("monthly_income", "must not be negative")
		}
		if err := models.ValidateMoney("monthly_income", *req.MonthlyIncome); err != nil {
			return nil, err
		}
		p.MonthlyIncome = *req.MonthlyIncome
	}

	// Fields that do not apply to the chosen type are cleared.
	switch p.UserType {
	case models.UserProfessional:
		p.CollegeName = ""
	case models.UserStudent:
		p.CompanyName = ""
		p.SalaryDay = 0
	}

	if err := s.users.UpdateFinancialProfile(ctx, userID, p); err != nil {
		return nil, err
	}
	user.FinancialProfile = p
	return user, nil
}

func (s *UserService) ChangePassword(ctx context.Context, userID string, req models.ChangePasswordRequest) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !utils.CheckPassword(req.CurrentPassword, user.PasswordHash) {
		return models.ErrInvalidCredentials
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}
	utils.LogAuthAction("password changed", user.Email, true)
	return nil
}

// ============================================================================
// TWO-FACTOR AUTHENTICATION
// ============================================================================

// SetupTOTP stores a fresh secret. 2FA stays disabled until VerifyTOTP succeeds.
func (s *UserService) SetupTOTP(ctx context.Context, userID string) (*models.TOTPSetupResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	secret, url, err := utils.GenerateTOTPSecret(user.Email)
	if err != nil {
		return nil, fmt.Errorf("generate totp secret: %w", err)
	}

	stored, err := s.sealSecret(secret)
	if err != nil {
		return nil, err
	}
	if err := s.users.SetTOTP(ctx, userID, stored, false); err != nil {
		return nil, err
	}
	return &models.TOTPSetupResponse{Secret: secret, QRCode: url}, nil
}

func (s *UserService) VerifyTOTP(ctx context.Context, userID, code string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.TOTPSecret == "" {
		return models.ErrTOTPNotSetUp
	}
	if err := s.checkTOTP(user, code); err != nil {
		return err
	}
	if err := s.users.SetTOTP(ctx, userID, user.TOTPSecret, true); err != nil {
		return err
	}
	utils.LogAuthAction("2fa enabled", user.Email, true)
	return nil
}

func (s *UserService) DisableTOTP(ctx context.Context, userID string, req models.DisableTOTPRequest) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !utils.CheckPassword(req.Password, user.PasswordHash) {
		return models.ErrInvalidCredentials
	}
	if user.TOTPEnabled {
		if err := s.checkTOTP(user, req.Code); err != nil {
			return err
		}
	}
	if err := s.users.SetTOTP(ctx, userID, "", false); err != nil {
		return err
	}
	utils.LogAuthAction("2fa disabled", user.Email, true)
	return nil
}

func (s *UserService) DeleteAccount(ctx context.Context, userID, password string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !utils.CheckPassword(password, user.PasswordHash) {
		return models.ErrInvalidCredentials
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	utils.LogAuthAction("account deleted", user.Email, true)
	return nil
}

func (s *UserService) checkTOTP(user *models.User, code string) error {
	secret, err := s.openSecret(user.TOTPSecret)
	if err != nil {
		return err
	}
	if !utils.VerifyTOTP(secret, code) {
		return models.ErrInvalidTOTP
	}
	return nil
}

func (s *UserService) sealSecret(secret string) (string, error) {
	if s.encryptionKey == "" {
		return secret, nil
	}
	sealed, err := utils.Encrypt(s.encryptionKey, []byte(secret))
	if err != nil {
		return "", fmt.Errorf("encrypt totp secret: %w", err)
	}
	return encryptedSecretPrefix + sealed, nil
}

func (s *UserService) openSecret(stored string) (string, error) {
	if !strings.HasPrefix(stored, encryptedSecretPrefix) {
		return stored, nil
	}
	if s.encryptionKey == "" {
		return "", fmt.Errorf("totp secret is encrypted but DATA_ENCRYPTION_KEY is not set")
	}
	plain, err := utils.Decrypt(s.encryptionKey, strings.TrimPrefix(stored, encryptedSecretPrefix))
	if err != nil {
		return "", fmt.Errorf("decrypt totp secret: %w", err)
	}
	return string(plain), nil
}
