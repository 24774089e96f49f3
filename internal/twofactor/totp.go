// Package twofactor wraps TOTP issuance and verification for the 2FA setup
// flow: SHA1, 6 digits, 30-second period, as authenticator apps expect.
package twofactor

import (
	"regexp"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const Issuer = "JRMSU Library"

var nonDigits = regexp.MustCompile(`\D`)

// GenerateSecret issues a fresh secret for the account and the otpauth URL
// the setup screen renders as a QR code.
func GenerateSecret(accountName string) (secret, url string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{Issuer: Issuer, AccountName: accountName})
	if err != nil {
		return "", "", err
	}
	return key.Secret(), key.URL(), nil
}

func normalizeSecret(secret string) string {
	return strings.ToUpper(strings.Join(strings.Fields(secret), ""))
}

// Verify checks a 6-digit code against the secret with a two-step clock skew
// allowance either way.
func Verify(secret, code string) bool {
	code = nonDigits.ReplaceAllString(code, "")
	if len(code) != 6 {
		return false
	}
	ok, err := totp.ValidateCustom(code, normalizeSecret(secret), time.Now(), totp.ValidateOpts{
		Period:    30,
		Skew:      2,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}

// Current returns the code valid right now, for test rigs and the kiosk's
// self-check screen.
func Current(secret string) (string, error) {
	return totp.GenerateCodeCustom(normalizeSecret(secret), time.Now(), totp.ValidateOpts{
		Period:    30,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
}
