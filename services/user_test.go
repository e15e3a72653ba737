package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/LovationAdmin/finance-tracker-api/models"
	"github.com/LovationAdmin/finance-tracker-api/utils"

	"github.com/pquerna/otp/totp"
)

const (
	testJWTSecret     = "0123456789abcdef0123456789abcdef"
	testEncryptionKey = "abcdefghijklmnopqrstuvwxyz012345"
)

func newUserService(t *testing.T) (*UserService, *testStores) {
	t.Helper()
	st := newTestStores()
	return NewUserService(st.users, testJWTSecret, time.Hour, testEncryptionKey), st
}

func signup(t *testing.T, svc *UserService) *models.AuthResponse {
	t.Helper()
	resp, err := svc.Signup(context.Background(), models.SignupRequest{
		Email:    "Ana@Example.com",
		Password: "s3cret!!",
		Name:     "Ana",
	})
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestSignupAndLogin(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	resp := signup(t, svc)
	if resp.User.Email != "ana@example.com" {
		t.Errorf("email = %q", resp.User.Email)
	}
	claims, err := utils.ParseAccessToken(resp.Token, testJWTSecret)
	if err != nil || claims.UserID != resp.User.ID {
		t.Fatalf("token claims = %+v, err = %v", claims, err)
	}

	if _, err := svc.Signup(ctx, models.SignupRequest{Email: "ana@example.com", Password: "another1"}); !errors.Is(err, models.ErrEmailTaken) {
		t.Errorf("duplicate signup err = %v", err)
	}

	if _, err := svc.Login(ctx, models.LoginRequest{Email: "ANA@example.com", Password: "s3cret!!"}); err != nil {
		t.Errorf("login failed: %v", err)
	}
	if _, err := svc.Login(ctx, models.LoginRequest{Email: "ana@example.com", Password: "wrong"}); !errors.Is(err, models.ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v", err)
	}
	if _, err := svc.Login(ctx, models.LoginRequest{Email: "nobody@example.com", Password: "x"}); !errors.Is(err, models.ErrInvalidCredentials) {
		t.Errorf("unknown email err = %v", err)
	}
}

func TestTOTPFlow(t *testing.T) {
	svc, st := newUserService(t)
	ctx := context.Background()
	user := signup(t, svc).User

	setup, err := svc.SetupTOTP(ctx, user.ID)
	if err != nil {
		t.Fatal(err)
	}
	stored, _ := st.users.GetByID(ctx, user.ID)
	if !strings.HasPrefix(stored.TOTPSecret, encryptedSecretPrefix) || strings.Contains(stored.TOTPSecret, setup.Secret) {
		t.Error("secret should be stored encrypted")
	}
	if stored.TOTPEnabled {
		t.Error("2FA should stay disabled until verified")
	}

	if err := svc.VerifyTOTP(ctx, user.ID, "abcdef"); !errors.Is(err, models.ErrInvalidTOTP) {
		t.Errorf("verify with bad code err = %v", err)
	}

	code, err := totp.GenerateCode(setup.Secret, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.VerifyTOTP(ctx, user.ID, code); err != nil {
		t.Fatalf("verify: %v", err)
	}

	login := models.LoginRequest{Email: user.Email, Password: "s3cret!!"}
	if _, err := svc.Login(ctx, login); !errors.Is(err, models.ErrTOTPRequired) {
		t.Errorf("login without code err = %v", err)
	}
	login.TOTPCode = code
	if _, err := svc.Login(ctx, login); err != nil {
		t.Errorf("login with code: %v", err)
	}

	if err := svc.DisableTOTP(ctx, user.ID, models.DisableTOTPRequest{Password: "s3cret!!", Code: code}); err != nil {
		t.Fatalf("disable: %v", err)
	}
	stored, _ = st.users.GetByID(ctx, user.ID)
	if stored.TOTPEnabled || stored.TOTPSecret != "" {
		t.Errorf("2FA should be cleared: %+v", stored)
	}
}

func TestUpdateFinancialProfile(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()
	user := signup(t, svc).User

	professional := models.UserProfessional
	company := " Acme "
	day := 25
	income := dec("5000")
	updated, err := svc.UpdateFinancialProfile(ctx, user.ID, models.UpdateFinancialProfileRequest{
		UserType:      &professional,
		CompanyName:   &company,
		SalaryDay:     &day,
		MonthlyIncome: &income,
	})
	if err != nil {
		t.Fatal(err)
	}
	p := updated.FinancialProfile
	if p.UserType != models.UserProfessional || p.CompanyName != "Acme" || p.SalaryDay != 25 || !p.MonthlyIncome.Equal(income) {
		t.Errorf("profile = %+v", p)
	}

	student := models.UserStudent
	updated, err = svc.UpdateFinancialProfile(ctx, user.ID, models.UpdateFinancialProfileRequest{UserType: &student})
	if err != nil {
		t.Fatal(err)
	}
	if updated.FinancialProfile.CompanyName != "" || updated.FinancialProfile.SalaryDay != 0 {
		t.Errorf("professional fields should be cleared: %+v", updated.FinancialProfile)
	}
	if !updated.FinancialProfile.MonthlyIncome.Equal(income) {
		t.Error("income should be kept when absent from the request")
	}

	negative := dec("-1")
	var verr *models.ValidationError
	if _, err := svc.UpdateFinancialProfile(ctx, user.ID, models.UpdateFinancialProfileRequest{MonthlyIncome: &negative}); !errors.As(err, &verr) {
		t.Errorf("negative income err = %v", err)
	}
}

func TestProfileIncomeFeedsSummary(t *testing.T) {
	svc, st := newUserService(t)
	ctx := context.Background()
	user := signup(t, svc).User

	income := dec("3000")
	if _, err := svc.UpdateFinancialProfile(ctx, user.ID, models.UpdateFinancialProfileRequest{MonthlyIncome: &income}); err != nil {
		t.Fatal(err)
	}

	summary, err := st.aggregation(IncomeTransactionsFirst).ComputeMonthlySummary(ctx, user.ID, march2025(t))
	if err != nil {
		t.Fatal(err)
	}
	assertDecimal(t, "totalIncome", summary.Summary.TotalIncome, "3000")
	if summary.Summary.IncomeSource != models.IncomeFromProfile {
		t.Errorf("incomeSource = %q", summary.Summary.IncomeSource)
	}
}

func TestChangePasswordAndDeleteAccount(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()
	user := signup(t, svc).User

	if err := svc.ChangePassword(ctx, user.ID, models.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "newpass1"}); !errors.Is(err, models.ErrInvalidCredentials) {
		t.Errorf("err = %v", err)
	}
	if err := svc.ChangePassword(ctx, user.ID, models.ChangePasswordRequest{CurrentPassword: "s3cret!!", NewPassword: "newpass1"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Login(ctx, models.LoginRequest{Email: user.Email, Password: "newpass1"}); err != nil {
		t.Errorf("login with new password: %v", err)
	}

	if err := svc.DeleteAccount(ctx, user.ID, "s3cret!!"); !errors.Is(err, models.ErrInvalidCredentials) {
		t.Errorf("delete with old password err = %v", err)
	}
	if err := svc.DeleteAccount(ctx, user.ID, "newpass1"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Profile(ctx, user.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("profile after delete err = %v", err)
	}
}
