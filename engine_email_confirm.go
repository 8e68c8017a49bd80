package authkit

import "context"

// ConfirmRegister validates an email-confirmation token and publishes the
// confirmation event the user store worker consumes to flip the account to
// confirmed.
func (e *Engine) ConfirmRegister(ctx context.Context, token string) error {
	claims, err := e.codec.VerifyConfirm(token, EventConfirmEmail)
	if err != nil {
		return ErrConfirmTokenInvalid
	}

	e.publishEmail(ctx, Event{
		Type: EventConfirmEmail,
		Data: map[string]string{
			"userId": claims.Subject,
			"email":  claims.Email,
		},
	})

	return nil
}

// ResendConfirmationEmail re-queues the confirmation email for an account
// that has not confirmed yet.
func (e *Engine) ResendConfirmationEmail(ctx context.Context, userID string) error {
	user, err := e.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if user.IsConfirmed {
		return ErrAlreadyConfirmed
	}

	e.sendConfirmationEmail(ctx, user)
	return nil
}
