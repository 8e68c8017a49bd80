package authkit

import (
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/tellme/authkit/csrf"
	"github.com/tellme/authkit/jwt"
	"github.com/tellme/authkit/otp"
	"github.com/tellme/authkit/session"
)

// Builder assembles an Engine in dependency order: codec, binder, store,
// OTP, then issuer, coordinator, and finally the engine itself. It replaces
// any framework-level dependency injection: all wiring is explicit and
// happens once at process startup.
type Builder struct {
	config Config
	redis  redis.UniversalClient
	users  UserProvider
	bus    EventBus
	logger *slog.Logger
	built  bool
}

// New starts a Builder with default lifetimes. Key material must come from
// WithConfig.
func New() *Builder {
	return &Builder{config: defaultConfig()}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithRedis sets the Redis client backing the session store (and the
// default event bus, unless one is provided).
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithUserProvider sets the external user-record collaborator. Required.
func (b *Builder) WithUserProvider(users UserProvider) *Builder {
	b.users = users
	return b
}

// WithEventBus sets the event collaborator email events are published to.
// Defaults to a RedisBus on the session-store client.
func (b *Builder) WithEventBus(bus EventBus) *Builder {
	b.bus = bus
	return b
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// Build validates the configuration and wires the Engine. Missing or
// malformed key material fails here, at startup, never per request.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if b.redis == nil {
		return nil, errors.New("redis client is required")
	}
	if b.users == nil {
		return nil, errors.New("user provider is required")
	}

	cfg := b.config
	cfg.applyDefaults()

	codec, err := jwt.NewManager(jwt.Config{
		PrivateKeyPEM: cfg.JWT.PrivateKeyPEM,
		PublicKeyPEM:  cfg.JWT.PublicKeyPEM,
		ConfirmSecret: cfg.JWT.ConfirmSecret,
	})
	if err != nil {
		return nil, err
	}

	binder, err := csrf.NewBinder(cfg.CSRF.Secret)
	if err != nil {
		return nil, err
	}

	otpService, err := otp.NewService(cfg.OTP.Secret, cfg.OTP.Step)
	if err != nil {
		return nil, err
	}

	store := session.NewStore(b.redis)
	issuer := NewIssuer(codec, store, binder, cfg.JWT)
	coordinator := NewCoordinator(codec, store, binder, issuer)

	bus := b.bus
	if bus == nil {
		bus = NewRedisBus(b.redis)
	}
	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	b.built = true

	return &Engine{
		config:      cfg,
		codec:       codec,
		binder:      binder,
		store:       store,
		otp:         otpService,
		issuer:      issuer,
		coordinator: coordinator,
		users:       b.users,
		bus:         bus,
		logger:      logger,
	}, nil
}
