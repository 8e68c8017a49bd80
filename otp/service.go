// Package otp derives and verifies the time-based one-time codes used to
// confirm password resets. Codes are never stored; verification re-derives
// them from the shared secret within the configured step window.
package otp

import (
	"errors"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// ErrMissingSecret is returned when a Service is built without a shared secret.
var ErrMissingSecret = errors.New("missing otp secret")

// DefaultStep matches the password-reset delivery path: codes travel by
// email, so the window is much wider than an authenticator app's 30s.
const DefaultStep = 1800 * time.Second

// Service derives 6-digit TOTP codes from a base32 shared secret. The
// verifier tolerates one preceding step to absorb clock and delivery skew.
type Service struct {
	secret string
	step   time.Duration
}

// NewService builds a Service over the base32 shared secret. step <= 0
// falls back to DefaultStep.
func NewService(secret string, step time.Duration) (*Service, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if step <= 0 {
		step = DefaultStep
	}
	return &Service{secret: secret, step: step}, nil
}

func (s *Service) opts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    uint(s.step.Seconds()),
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}
}

// Generate derives the code for the step containing now.
func (s *Service) Generate(now time.Time) (string, error) {
	return totp.GenerateCodeCustom(s.secret, now, s.opts())
}

// Verify reports whether code is valid at now, accepting the current and
// the immediately adjacent steps. A wrong code is a false result, never an
// error; the caller decides the user-facing failure.
func (s *Service) Verify(code string, now time.Time) bool {
	ok, err := totp.ValidateCustom(strings.TrimSpace(code), s.secret, now, s.opts())
	return err == nil && ok
}
