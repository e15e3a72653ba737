package utils

import (
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const TOTPIssuer = "Finance Tracker"

// totpOptions match what authenticator apps assume when scanning the QR code.
var totpOptions = totp.ValidateOpts{
	Period:    30,
	Skew:      1,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// GenerateTOTPSecret returns the shared secret and the otpauth:// URL for QR codes.
func GenerateTOTPSecret(email string) (string, string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      TOTPIssuer,
		AccountName: email,
		Period:      totpOptions.Period,
		Digits:      totpOptions.Digits,
		Algorithm:   totpOptions.Algorithm,
	})
	if err != nil {
		return "", "", err
	}
	return key.Secret(), key.URL(), nil
}

// VerifyTOTP accepts codes typed with spaces ("123 456").
func VerifyTOTP(secret, code string) bool {
	return verifyTOTPAt(secret, code, time.Now())
}

func verifyTOTPAt(secret, code string, at time.Time) bool {
	code = strings.ReplaceAll(strings.TrimSpace(code), " ", "")
	if len(code) != int(totpOptions.Digits) {
		return false
	}
	ok, err := totp.ValidateCustom(code, secret, at.UTC(), totpOptions)
	return err == nil && ok
}
