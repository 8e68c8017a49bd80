package jwt

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMissingPrivateKey is returned when a Manager is built without a signing key.
var ErrMissingPrivateKey = errors.New("missing rsa private key")

// ErrMissingPublicKey is returned when a Manager is built without a verify key.
var ErrMissingPublicKey = errors.New("missing rsa public key")

// ErrMissingConfirmSecret is returned when confirmation tokens are requested
// without an HS256 secret configured.
var ErrMissingConfirmSecret = errors.New("missing confirmation token secret")

// ErrTokenInvalid covers bad signatures, malformed structure, and expiry.
var ErrTokenInvalid = errors.New("invalid token")

// ErrTokenTypeMismatch is returned when a syntactically valid token carries
// the wrong type claim (access presented as refresh or vice versa).
var ErrTokenTypeMismatch = errors.New("token type mismatch")

// ClientType distinguishes the two principal classes tokens are issued for.
type ClientType string

const (
	ClientUser ClientType = "user"
	ClientBot  ClientType = "bot"
)

// TokenType is the type claim discriminating access from refresh tokens.
type TokenType string

const (
	TypeAccess  TokenType = "access"
	TypeRefresh TokenType = "refresh"
)

// UserPayload identifies the principal a token pair is issued for. It is
// built per request from persisted user state and never stored.
type UserPayload struct {
	Subject string
	Email   string
	Roles   []string
	Client  ClientType
}

// AccessClaims is the signed payload of a short-lived access token. The
// registered ID claim (jti) is fresh per issuance and scopes the access
// CSRF token and the revocation blacklist.
type AccessClaims struct {
	Email  string     `json:"email,omitempty"`
	Roles  []string   `json:"roles,omitempty"`
	Client ClientType `json:"client"`
	Type   TokenType  `json:"type"`
	jwt.RegisteredClaims
}

// RefreshClaims is the signed payload of a long-lived refresh token. Its
// jti is the session key; AccessID links back to the access token issued
// alongside it, for audit only.
type RefreshClaims struct {
	Email    string     `json:"email,omitempty"`
	Roles    []string   `json:"roles,omitempty"`
	Client   ClientType `json:"client"`
	Type     TokenType  `json:"type"`
	AccessID string     `json:"aid"`
	jwt.RegisteredClaims
}

// ConfirmClaims is the payload of an HS256 email-confirmation token.
type ConfirmClaims struct {
	Email  string `json:"email,omitempty"`
	Action string `json:"action"`
	jwt.RegisteredClaims
}

// UserPayload rebuilds the principal identity carried by access claims.
func (c *AccessClaims) UserPayload() UserPayload {
	return UserPayload{Subject: c.Subject, Email: c.Email, Roles: c.Roles, Client: c.Client}
}

// UserPayload rebuilds the principal identity carried by refresh claims.
func (c *RefreshClaims) UserPayload() UserPayload {
	return UserPayload{Subject: c.Subject, Email: c.Email, Roles: c.Roles, Client: c.Client}
}

// Config carries the key material for a Manager. PEM values are expected to
// be newline-normalized already (the config layer converts literal \n
// sequences coming from the environment).
type Config struct {
	PrivateKeyPEM []byte
	PublicKeyPEM  []byte

	// ConfirmSecret signs short-lived HS256 email-confirmation tokens.
	// Optional; SignConfirm fails without it.
	ConfirmSecret []byte
}

// Manager signs and verifies access/refresh tokens with a fixed RS256 key
// pair. Access and refresh tokens share the key pair and are distinguished
// by the type claim. A Manager is immutable after construction and safe for
// concurrent use.
type Manager struct {
	privateKey    *rsa.PrivateKey
	publicKey     *rsa.PublicKey
	confirmSecret []byte
}

// NewManager parses the configured key pair. Missing or malformed keys are
// a startup failure, not a per-request one.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.PrivateKeyPEM) == 0 {
		return nil, ErrMissingPrivateKey
	}
	if len(cfg.PublicKeyPEM) == 0 {
		return nil, ErrMissingPublicKey
	}

	priv, err := jwt.ParseRSAPrivateKeyFromPEM(cfg.PrivateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("parse rsa private key: %w", err)
	}
	pub, err := jwt.ParseRSAPublicKeyFromPEM(cfg.PublicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("parse rsa public key: %w", err)
	}

	return &Manager{
		privateKey:    priv,
		publicKey:     pub,
		confirmSecret: cfg.ConfirmSecret,
	}, nil
}

// SignAccess signs an access token for user with the given jti and TTL.
func (m *Manager) SignAccess(user UserPayload, jti string, ttl time.Duration) (string, error) {
	claims := AccessClaims{
		Email:            user.Email,
		Roles:            user.Roles,
		Client:           user.Client,
		Type:             TypeAccess,
		RegisteredClaims: registered(user.Subject, jti, ttl),
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(m.privateKey)
}

// SignRefresh signs a refresh token for user. accessID records the jti of
// the access token issued alongside it.
func (m *Manager) SignRefresh(user UserPayload, jti, accessID string, ttl time.Duration) (string, error) {
	claims := RefreshClaims{
		Email:            user.Email,
		Roles:            user.Roles,
		Client:           user.Client,
		Type:             TypeRefresh,
		AccessID:         accessID,
		RegisteredClaims: registered(user.Subject, jti, ttl),
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(m.privateKey)
}

// VerifyAccess verifies signature and expiry and requires the access type
// claim. A valid refresh token fails with ErrTokenTypeMismatch.
func (m *Manager) VerifyAccess(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := m.verify(token, claims); err != nil {
		return nil, err
	}
	if claims.Type != TypeAccess {
		return nil, ErrTokenTypeMismatch
	}
	return claims, nil
}

// VerifyRefresh verifies signature and expiry and requires the refresh type
// claim. A valid access token fails with ErrTokenTypeMismatch.
func (m *Manager) VerifyRefresh(token string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := m.verify(token, claims); err != nil {
		return nil, err
	}
	if claims.Type != TypeRefresh {
		return nil, ErrTokenTypeMismatch
	}
	return claims, nil
}

func (m *Manager) verify(token string, claims jwt.Claims) error {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return m.publicKey, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !parsed.Valid {
		return ErrTokenInvalid
	}
	return nil
}

// DecodeUnsafe decodes claims without verifying the signature. It exists so
// callers can read exp before full verification; the result must never feed
// an identity decision. Returns nil for tokens that do not even parse.
func (m *Manager) DecodeUnsafe(token string) jwt.MapClaims {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil
	}
	return claims
}

// SignConfirm signs an HS256 email-confirmation token carrying an action
// claim. Confirmation tokens never grant API access; they only prove the
// holder received the email.
func (m *Manager) SignConfirm(sub, email, action string, ttl time.Duration) (string, error) {
	if len(m.confirmSecret) == 0 {
		return "", ErrMissingConfirmSecret
	}
	claims := ConfirmClaims{
		Email:            email,
		Action:           action,
		RegisteredClaims: registered(sub, "", ttl),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.confirmSecret)
}

// VerifyConfirm verifies a confirmation token and requires its action claim
// to match.
func (m *Manager) VerifyConfirm(token, action string) (*ConfirmClaims, error) {
	if len(m.confirmSecret) == 0 {
		return nil, ErrMissingConfirmSecret
	}
	claims := &ConfirmClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return m.confirmSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !parsed.Valid || claims.Action != action {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func registered(sub, jti string, ttl time.Duration) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		Subject:   sub,
		ID:        jti,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}
