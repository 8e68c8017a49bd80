package authkit

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tellme/authkit/jwt"
	"github.com/tellme/authkit/session"
)

// Refresh rotates a refresh token into a brand-new pair. The presented
// CSRF token must be the one bound to the refresh token's jti; an absent
// header is the same ErrCSRFMismatch as a wrong one.
func (e *Engine) Refresh(ctx context.Context, refreshToken, presentedCSRF string) (*Pair, error) {
	return e.coordinator.Rotate(ctx, refreshToken, presentedCSRF)
}

// Logout revokes the refresh session and optionally blacklists the current
// access token by jti. Logout is idempotent: an invalid, expired, or
// already-revoked refresh token is a silent no-op, so a double logout never
// errors and never reveals whether the token was still live. Store outages
// still propagate.
func (e *Engine) Logout(ctx context.Context, refreshToken, accessJTI string) error {
	claims, err := e.codec.VerifyRefresh(refreshToken)
	if err == nil {
		key := session.SessionKey(string(claims.Client), claims.Subject, claims.ID)
		if err := e.store.Delete(ctx, key); err != nil {
			return err
		}
	} else if !errors.Is(err, jwt.ErrTokenInvalid) && !errors.Is(err, jwt.ErrTokenTypeMismatch) {
		return err
	} else {
		e.logger.Debug("logout with unusable refresh token", slog.String("error", err.Error()))
	}

	if accessJTI != "" {
		if _, err := e.store.SetIfAbsent(ctx, session.BlacklistKey(accessJTI), "1", e.config.JWT.AccessTTL); err != nil {
			return err
		}
	}

	return nil
}

// GuardAccess verifies an access token for a CSRF-guarded mutating request:
// signature, type, blacklist, then the CSRF token bound to the access jti.
// Transport layers call this for state-changing routes; read-only routes
// can use ValidateAccess.
func (e *Engine) GuardAccess(ctx context.Context, accessToken, presentedCSRF string) (*jwt.AccessClaims, error) {
	claims, err := e.ValidateAccess(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	if presentedCSRF == "" || !e.binder.Validate(presentedCSRF, claims.ID) {
		return nil, ErrCSRFMismatch
	}
	return claims, nil
}

// IsAccessBlacklisted reports whether an access jti has been revoked by a
// logout. Transport layers that cache verified claims can probe just the
// blacklist instead of re-running ValidateAccess.
func (e *Engine) IsAccessBlacklisted(ctx context.Context, jti string) (bool, error) {
	_, revoked, err := e.store.Get(ctx, session.BlacklistKey(jti))
	if err != nil {
		return false, err
	}
	return revoked, nil
}

// ValidateAccess verifies an access token's signature and type and checks
// the revocation blacklist.
func (e *Engine) ValidateAccess(ctx context.Context, accessToken string) (*jwt.AccessClaims, error) {
	claims, err := e.codec.VerifyAccess(accessToken)
	if err != nil {
		return nil, err
	}

	_, revoked, err := e.store.Get(ctx, session.BlacklistKey(claims.ID))
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrAccessRevoked
	}

	return claims, nil
}
