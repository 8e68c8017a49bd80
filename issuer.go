package authkit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tellme/authkit/csrf"
	"github.com/tellme/authkit/jwt"
	"github.com/tellme/authkit/session"
)

// Issuer mints coherent access/refresh pairs: fresh jtis, both signatures,
// the refresh session record, and the CSRF token bound to each jti. Signing
// happens before the single session-store write, so a failed issuance never
// leaves a partial session behind.
type Issuer struct {
	codec  *jwt.Manager
	store  *session.Store
	binder *csrf.Binder

	accessTTL  time.Duration
	refreshTTL time.Duration
	botTTL     time.Duration
}

// NewIssuer wires an Issuer from its three leaves and the configured lifetimes.
func NewIssuer(codec *jwt.Manager, store *session.Store, binder *csrf.Binder, cfg JWTConfig) *Issuer {
	return &Issuer{
		codec:      codec,
		store:      store,
		binder:     binder,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		botTTL:     cfg.BotAccessTTL,
	}
}

// IssuePair issues a new access/refresh pair for user. accessTTL <= 0 uses
// the configured default; the refresh lifetime is always the configured one
// so the session key's TTL and the refresh token's exp coincide.
func (i *Issuer) IssuePair(ctx context.Context, user jwt.UserPayload, accessTTL time.Duration) (*Pair, error) {
	if accessTTL <= 0 {
		accessTTL = i.accessTTL
	}

	accessJTI := uuid.NewString()
	refreshJTI := uuid.NewString()

	accessToken, err := i.codec.SignAccess(user, accessJTI, accessTTL)
	if err != nil {
		return nil, err
	}
	refreshToken, err := i.codec.SignRefresh(user, refreshJTI, accessJTI, i.refreshTTL)
	if err != nil {
		return nil, err
	}

	if err := i.store.SaveSession(ctx, string(user.Client), user.Subject, refreshJTI, i.refreshTTL); err != nil {
		return nil, err
	}

	accessCSRF, err := i.binder.Generate(accessJTI)
	if err != nil {
		return nil, err
	}
	refreshCSRF, err := i.binder.Generate(refreshJTI)
	if err != nil {
		return nil, err
	}

	accessPayload := &jwt.AccessClaims{
		Email:  user.Email,
		Roles:  user.Roles,
		Client: user.Client,
		Type:   jwt.TypeAccess,
	}
	accessPayload.Subject = user.Subject
	accessPayload.ID = accessJTI

	refreshPayload := &jwt.RefreshClaims{
		Email:    user.Email,
		Roles:    user.Roles,
		Client:   user.Client,
		Type:     jwt.TypeRefresh,
		AccessID: accessJTI,
	}
	refreshPayload.Subject = user.Subject
	refreshPayload.ID = refreshJTI

	return &Pair{
		AccessToken:    accessToken,
		RefreshToken:   refreshToken,
		TokenType:      "Bearer",
		AccessPayload:  accessPayload,
		RefreshPayload: refreshPayload,
		AccessCSRF:     accessCSRF,
		RefreshCSRF:    refreshCSRF,
		AccessTTL:      accessTTL,
		RefreshTTL:     i.refreshTTL,
	}, nil
}

// IssueBotPair issues the bot's single access token and makes it the sole
// valid session by atomically replacing the bot's slot. Whatever jti the
// slot held before is invalid the moment this returns.
func (i *Issuer) IssueBotPair(ctx context.Context, botID string) (*BotGrant, error) {
	payload := jwt.UserPayload{Subject: botID, Client: jwt.ClientBot}
	jti := uuid.NewString()

	accessToken, err := i.codec.SignAccess(payload, jti, i.botTTL)
	if err != nil {
		return nil, err
	}

	if _, err := i.store.ReplaceSingleSlot(ctx, session.BotSlotKey(botID), jti, i.botTTL); err != nil {
		return nil, err
	}

	return &BotGrant{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   i.botTTL,
	}, nil
}

// CurrentBotSession returns the jti currently occupying the bot's slot, or
// "" when the bot has no live session.
func (i *Issuer) CurrentBotSession(ctx context.Context, botID string) (string, error) {
	jti, ok, err := i.store.Get(ctx, session.BotSlotKey(botID))
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}
	return jti, nil
}
