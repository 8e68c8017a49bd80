package authkit

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config carries every secret and tunable the engine needs. Zero TTLs are
// replaced with the defaults below at Build time; key material has no
// default and missing keys fail construction.
type Config struct {
	JWT   JWTConfig
	CSRF  CSRFConfig
	OTP   OTPConfig
	Email EmailConfig
}

// JWTConfig holds the RS256 key pair, the HS256 confirmation secret, and
// the token lifetimes.
type JWTConfig struct {
	PrivateKeyPEM []byte
	PublicKeyPEM  []byte
	ConfirmSecret []byte

	AccessTTL    time.Duration // default 15m
	RefreshTTL   time.Duration // default 30d
	BotAccessTTL time.Duration // default 24h
	ConfirmTTL   time.Duration // default 24h
}

// CSRFConfig holds the HMAC secret CSRF tokens are signed with.
type CSRFConfig struct {
	Secret []byte
}

// OTPConfig holds the base32 shared secret and step for password-reset codes.
type OTPConfig struct {
	Secret string
	Step   time.Duration // default 30m
}

// EmailConfig shapes the events published toward the email worker.
type EmailConfig struct {
	// Channel is the pub/sub channel email events are published on.
	Channel string
	// FrontendURL prefixes the confirmation link sent on registration.
	FrontendURL string
}

const (
	defaultAccessTTL    = 900 * time.Second
	defaultRefreshTTL   = 2592000 * time.Second
	defaultBotAccessTTL = 86400 * time.Second
	defaultConfirmTTL   = 24 * time.Hour
	defaultOTPStep      = 1800 * time.Second
)

func defaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:    defaultAccessTTL,
			RefreshTTL:   defaultRefreshTTL,
			BotAccessTTL: defaultBotAccessTTL,
			ConfirmTTL:   defaultConfirmTTL,
		},
		OTP: OTPConfig{
			Step: defaultOTPStep,
		},
		Email: EmailConfig{
			Channel: ChannelEmail,
		},
	}
}

func (c *Config) applyDefaults() {
	d := defaultConfig()
	if c.JWT.AccessTTL <= 0 {
		c.JWT.AccessTTL = d.JWT.AccessTTL
	}
	if c.JWT.RefreshTTL <= 0 {
		c.JWT.RefreshTTL = d.JWT.RefreshTTL
	}
	if c.JWT.BotAccessTTL <= 0 {
		c.JWT.BotAccessTTL = d.JWT.BotAccessTTL
	}
	if c.JWT.ConfirmTTL <= 0 {
		c.JWT.ConfirmTTL = d.JWT.ConfirmTTL
	}
	if c.OTP.Step <= 0 {
		c.OTP.Step = d.OTP.Step
	}
	if c.Email.Channel == "" {
		c.Email.Channel = d.Email.Channel
	}
}

type envConfig struct {
	JWTPrivateKey string `env:"JWT_PRIVATE_KEY,required"`
	JWTPublicKey  string `env:"JWT_PUBLIC_KEY,required"`
	JWTSecret     string `env:"JWT_SECRET"`
	CSRFSecret    string `env:"CSRF_SECRET,required"`
	OTPSecret     string `env:"OTP_SECRET_CODE,required"`
	OTPStep       int    `env:"OTP_STEP_TIME" envDefault:"1800"`
	AccessTTL     int    `env:"ACCESS_TOKEN_TTL" envDefault:"900"`
	RefreshTTL    int    `env:"REFRESH_TOKEN_TTL" envDefault:"2592000"`
	BotAccessTTL  int    `env:"BOT_ACCESS_TOKEN_TTL" envDefault:"86400"`
	FrontendURL   string `env:"FRONTEND_URL"`
}

// ConfigFromEnv reads configuration from the environment, loading a .env
// file first when one exists. PEM keys may use literal \n escapes, as is
// common for multi-line values in env files.
func ConfigFromEnv() (Config, error) {
	_ = godotenv.Load()

	var ec envConfig
	if err := env.Parse(&ec); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg := defaultConfig()
	cfg.JWT.PrivateKeyPEM = []byte(normalizeKeyFromEnv(ec.JWTPrivateKey))
	cfg.JWT.PublicKeyPEM = []byte(normalizeKeyFromEnv(ec.JWTPublicKey))
	cfg.JWT.ConfirmSecret = []byte(ec.JWTSecret)
	cfg.JWT.AccessTTL = time.Duration(ec.AccessTTL) * time.Second
	cfg.JWT.RefreshTTL = time.Duration(ec.RefreshTTL) * time.Second
	cfg.JWT.BotAccessTTL = time.Duration(ec.BotAccessTTL) * time.Second
	cfg.CSRF.Secret = []byte(ec.CSRFSecret)
	cfg.OTP.Secret = ec.OTPSecret
	cfg.OTP.Step = time.Duration(ec.OTPStep) * time.Second
	cfg.Email.FrontendURL = strings.TrimRight(ec.FrontendURL, "/")

	return cfg, nil
}

// normalizeKeyFromEnv converts escaped newlines to real ones so multi-line
// PEM blocks survive single-line env storage.
func normalizeKeyFromEnv(key string) string {
	return strings.ReplaceAll(key, `\n`, "\n")
}
