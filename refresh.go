package authkit

import (
	"context"
	"fmt"

	"github.com/tellme/authkit/csrf"
	"github.com/tellme/authkit/jwt"
	"github.com/tellme/authkit/session"
)

// Coordinator runs the refresh-rotation protocol. Every step must pass
// before any state changes; any failure short-circuits to a typed error
// and leaves the old session exactly as it was, except for the atomic
// delete that commits a rotation.
type Coordinator struct {
	codec  *jwt.Manager
	store  *session.Store
	binder *csrf.Binder
	issuer *Issuer
}

// NewCoordinator wires a Coordinator.
func NewCoordinator(codec *jwt.Manager, store *session.Store, binder *csrf.Binder, issuer *Issuer) *Coordinator {
	return &Coordinator{codec: codec, store: store, binder: binder, issuer: issuer}
}

// Rotate exchanges a refresh token for a brand-new pair.
//
// The sequence is verify, session liveness, CSRF, then an atomic
// delete-and-reissue:
//
//  1. Signature/expiry/type failure yields ErrRefreshInvalid.
//  2. A missing session key yields ErrSessionRevoked, whatever the cause.
//  3. The CSRF check runs only against a live session, so a dead session
//     never leaks whether its CSRF token would have matched.
//  4. The old key is deleted with a compare-and-delete script; of two
//     concurrent rotations of the same token, exactly one observes the key
//     and issues, the other gets ErrSessionRevoked.
//
// Store outages surface as session.ErrStoreUnavailable at any step and are
// never folded into a revocation answer.
func (c *Coordinator) Rotate(ctx context.Context, refreshToken, presentedCSRF string) (*Pair, error) {
	claims, err := c.codec.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRefreshInvalid, err)
	}

	key := session.SessionKey(string(claims.Client), claims.Subject, claims.ID)
	_, alive, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !alive {
		return nil, ErrSessionRevoked
	}

	if presentedCSRF == "" || !c.binder.Validate(presentedCSRF, claims.ID) {
		return nil, ErrCSRFMismatch
	}

	existed, err := c.store.CompareAndDelete(ctx, key)
	if err != nil {
		return nil, err
	}
	if !existed {
		// lost the race against a concurrent rotation of the same token
		return nil, ErrSessionRevoked
	}

	return c.issuer.IssuePair(ctx, claims.UserPayload(), 0)
}
