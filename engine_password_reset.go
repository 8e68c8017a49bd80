package authkit

import (
	"context"
	"time"
)

// ResetPasswordDemand derives a one-time reset code for the user and queues
// the reset email. The code is never stored; confirmation re-derives it.
func (e *Engine) ResetPasswordDemand(ctx context.Context, userID string) error {
	user, err := e.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNoUserWithEmail
	}
	if user.Email == "" {
		return ErrUserHasNoEmail
	}

	code, err := e.otp.Generate(time.Now())
	if err != nil {
		return err
	}

	e.publishEmail(ctx, Event{
		Type: EventResetPassword,
		Data: map[string]string{
			"email": user.Email,
			"code":  code,
		},
	})

	return nil
}

// ResetPasswordConfirm verifies the one-time code and delegates the
// password update to the user store. A wrong or out-of-window code is
// ErrOTPInvalid; what "old password" means is the user store's business.
func (e *Engine) ResetPasswordConfirm(ctx context.Context, code, userID, newPassword, oldPassword string) error {
	if !e.otp.Verify(code, time.Now()) {
		return ErrOTPInvalid
	}
	return e.users.UpdatePassword(ctx, userID, newPassword, oldPassword)
}
