package auth

import (
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// OTPEnrollment is a freshly generated TOTP secret.
type OTPEnrollment struct {
	Secret string
	URL    string
}

// OTPVerifier generates and validates TOTP codes for the second login factor.
type OTPVerifier struct {
	issuer string
	now    func() time.Time
}

// NewOTPVerifier returns a verifier labelling enrolments with issuer.
func NewOTPVerifier(issuer string) *OTPVerifier {
	if issuer == "" {
		issuer = "GoBlogAdmin"
	}

	return &OTPVerifier{issuer: issuer, now: time.Now}
}

func (v *OTPVerifier) opts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}
}

// Generate creates a new secret for account.
func (v *OTPVerifier) Generate(account string) (OTPEnrollment, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      v.issuer,
		AccountName: account,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return OTPEnrollment{}, err //nolint:wrapcheck
	}

	return OTPEnrollment{Secret: key.Secret(), URL: key.URL()}, nil
}

// Code returns the current code for secret.
func (v *OTPVerifier) Code(secret string) (string, error) {
	return totp.GenerateCodeCustom(secret, v.now(), v.opts()) //nolint:wrapcheck
}

// Validate checks code against secret. An empty code yields ErrOTPRequired.
func (v *OTPVerifier) Validate(secret, code string) error {
	if code == "" {
		return ErrOTPRequired
	}

	ok, err := totp.ValidateCustom(code, secret, v.now(), v.opts())
	if err != nil || !ok {
		return ErrInvalidOTP
	}

	return nil
}
