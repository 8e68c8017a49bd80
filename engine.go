package authkit

import (
	"context"
	"log/slog"

	"github.com/tellme/authkit/csrf"
	"github.com/tellme/authkit/jwt"
	"github.com/tellme/authkit/otp"
	"github.com/tellme/authkit/session"
)

// Engine is the top-level auth orchestrator: register, login, refresh,
// logout, bot login, and the password-reset flow, composed from the token
// codec, CSRF binder, session store, OTP service, and the external user and
// event collaborators. Engine methods are safe for concurrent use; there is
// no shared mutable state beyond the Redis keys each request touches.
type Engine struct {
	config Config

	codec       *jwt.Manager
	binder      *csrf.Binder
	store       *session.Store
	otp         *otp.Service
	issuer      *Issuer
	coordinator *Coordinator

	users  UserProvider
	bus    EventBus
	logger *slog.Logger
}

// Issuer exposes the engine's token issuer for callers that mint pairs
// outside the standard flows (e.g. a social-login handler).
func (e *Engine) Issuer() *Issuer {
	return e.issuer
}

// Ping reports session-store availability, for readiness checks.
func (e *Engine) Ping(ctx context.Context) error {
	_, err := e.store.Ping(ctx)
	return err
}

// publishEmail delivers an email event on the configured channel.
// Fire-and-forget: failures are logged and never fail the request.
func (e *Engine) publishEmail(ctx context.Context, event Event) {
	if err := e.bus.Publish(ctx, e.config.Email.Channel, event); err != nil {
		e.logger.Warn("email event publish failed",
			slog.String("type", event.Type),
			slog.String("error", err.Error()),
		)
	}
}

func (e *Engine) sendConfirmationEmail(ctx context.Context, user *UserRecord) {
	token, err := e.codec.SignConfirm(user.ID, user.Email, EventConfirmEmail, e.config.JWT.ConfirmTTL)
	if err != nil {
		e.logger.Warn("confirmation token signing failed", slog.String("error", err.Error()))
		return
	}

	e.publishEmail(ctx, Event{
		Type: EventConfirmEmail,
		Data: map[string]string{
			"token":      token,
			"confirmUrl": e.config.Email.FrontendURL + "/auth/confirm/" + token,
			"email":      user.Email,
			"username":   user.Username,
		},
	})
}
