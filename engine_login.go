package authkit

import (
	"context"
	"fmt"

	"github.com/tellme/authkit/jwt"
)

// Register creates the account through the user store, queues the
// confirmation email, and issues a first token pair. The store says no →
// ErrRegistrationFailed; the caller should surface the returned message
// as-is.
func (e *Engine) Register(ctx context.Context, input NewUser) (*RegisterResult, error) {
	user, err := e.users.Create(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRegistrationFailed, err)
	}
	if user == nil {
		return nil, ErrRegistrationFailed
	}

	e.sendConfirmationEmail(ctx, user)

	pair, err := e.issuer.IssuePair(ctx, userPayload(user), 0)
	if err != nil {
		return nil, err
	}

	return &RegisterResult{
		Pair:    pair,
		Message: "Check your email to confirm your account.",
	}, nil
}

// Login validates credentials through the user store and issues a pair.
// An unconfirmed account gets a fresh confirmation email and
// ErrAccountNotConfirmed instead of tokens.
func (e *Engine) Login(ctx context.Context, usernameOrEmail, password string) (*LoginResult, error) {
	user, err := e.users.CheckLogin(ctx, usernameOrEmail, password)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsConfirmed {
		e.sendConfirmationEmail(ctx, user)
		return nil, ErrAccountNotConfirmed
	}

	pair, err := e.issuer.IssuePair(ctx, userPayload(user), 0)
	if err != nil {
		return nil, err
	}

	return &LoginResult{Pair: pair, User: user}, nil
}

func userPayload(user *UserRecord) jwt.UserPayload {
	return jwt.UserPayload{
		Subject: user.ID,
		Email:   user.Email,
		Roles:   user.Roles,
		Client:  jwt.ClientUser,
	}
}
