package authkit

import (
	"context"
	"time"

	"github.com/tellme/authkit/jwt"
)

// UserRecord is the user shape returned by the external user store. The
// engine never persists it; every token payload is rebuilt from a fresh
// lookup or from verified claims.
type UserRecord struct {
	ID          string
	Username    string
	Email       string
	Roles       []string
	IsConfirmed bool
	Lang        string
}

// BotRecord is the bot client shape returned by the external user store.
type BotRecord struct {
	ID    string
	Roles []string
}

// NewUser is the input for a registration.
type NewUser struct {
	Username string
	Email    string
	Password string
	Lang     string
}

// UserProvider is the lookup/credential collaborator the engine delegates
// all user-record concerns to. Lookup methods return (nil, nil) for "no
// such user"; an error means the backend itself failed.
type UserProvider interface {
	FindByID(ctx context.Context, id string) (*UserRecord, error)
	FindByEmail(ctx context.Context, email string) (*UserRecord, error)
	Create(ctx context.Context, input NewUser) (*UserRecord, error)
	CheckLogin(ctx context.Context, usernameOrEmail, password string) (*UserRecord, error)
	CheckBotLogin(ctx context.Context, id, token string) (*BotRecord, error)
	UpdatePassword(ctx context.Context, id, newPassword, oldPassword string) error
}

// Pair is a coherent access/refresh issuance: both signed tokens, their
// decoded payloads, the CSRF token bound to each jti, and the lifetimes the
// transport layer needs for cookie expiry.
type Pair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string

	AccessPayload  *jwt.AccessClaims
	RefreshPayload *jwt.RefreshClaims

	AccessCSRF  string
	RefreshCSRF string

	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// BotGrant is the single-slot access token issued to a bot. Bots get no
// refresh flow; they re-authenticate with credentials when the grant expires.
type BotGrant struct {
	AccessToken string
	TokenType   string
	ExpiresIn   time.Duration
}

// LoginResult carries the issued pair plus the authenticated user.
type LoginResult struct {
	Pair *Pair
	User *UserRecord
}

// RegisterResult carries the issued pair plus the caller-facing message.
type RegisterResult struct {
	Pair    *Pair
	Message string
}
