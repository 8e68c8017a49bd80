package authkit

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

var (
	testKeysOnce sync.Once
	testPrivPEM  []byte
	testPubPEM   []byte
)

// testKeys generates one throwaway RS256 key pair for the whole package.
func testKeys(t *testing.T) (privPEM, pubPEM []byte) {
	t.Helper()

	testKeysOnce.Do(func() {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic(err)
		}
		testPrivPEM = pem.EncodeToMemory(&pem.Block{
			Type:  "RSA PRIVATE KEY",
			Bytes: x509.MarshalPKCS1PrivateKey(key),
		})
		pub, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
		if err != nil {
			panic(err)
		}
		testPubPEM = pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pub})
	})
	return testPrivPEM, testPubPEM
}

// memoryUsers is an in-memory UserProvider for tests.
type memoryUsers struct {
	mu        sync.Mutex
	byID      map[string]*UserRecord
	passwords map[string]string
	botTokens map[string]string
	createErr error
	updates   []string
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{
		byID:      map[string]*UserRecord{},
		passwords: map[string]string{},
		botTokens: map[string]string{},
	}
}

func (m *memoryUsers) add(user UserRecord, password string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := user
	m.byID[u.ID] = &u
	m.passwords[u.ID] = password
}

func (m *memoryUsers) addBot(id, token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.botTokens[id] = token
}

func (m *memoryUsers) FindByID(_ context.Context, id string) (*UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	u := *user
	return &u, nil
}

func (m *memoryUsers) FindByEmail(_ context.Context, email string) (*UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.byID {
		if user.Email == email {
			u := *user
			return &u, nil
		}
	}
	return nil, nil
}

func (m *memoryUsers) Create(_ context.Context, input NewUser) (*UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	user := &UserRecord{
		ID:       fmt.Sprintf("user-%d", len(m.byID)+1),
		Username: input.Username,
		Email:    input.Email,
		Roles:    []string{"user"},
		Lang:     input.Lang,
	}
	m.byID[user.ID] = user
	m.passwords[user.ID] = input.Password
	u := *user
	return &u, nil
}

func (m *memoryUsers) CheckLogin(_ context.Context, usernameOrEmail, password string) (*UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.byID {
		if user.Username == usernameOrEmail || user.Email == usernameOrEmail {
			if m.passwords[user.ID] == password {
				u := *user
				return &u, nil
			}
			return nil, nil
		}
	}
	return nil, nil
}

func (m *memoryUsers) CheckBotLogin(_ context.Context, id, token string) (*BotRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.botTokens[id] != token {
		return nil, nil
	}
	return &BotRecord{ID: id, Roles: []string{"bot"}}, nil
}

func (m *memoryUsers) UpdatePassword(_ context.Context, id, newPassword, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return fmt.Errorf("unknown user %s", id)
	}
	m.passwords[id] = newPassword
	m.updates = append(m.updates, id)
	return nil
}

func (m *memoryUsers) password(id string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.passwords[id]
}

const testOTPSecret = "JBSWY3DPEHPK3PXP"

func testConfig(t *testing.T) Config {
	privPEM, pubPEM := testKeys(t)
	cfg := defaultConfig()
	cfg.JWT.PrivateKeyPEM = privPEM
	cfg.JWT.PublicKeyPEM = pubPEM
	cfg.JWT.ConfirmSecret = []byte("test-confirm-secret")
	cfg.CSRF.Secret = []byte("test-csrf-secret")
	cfg.OTP.Secret = testOTPSecret
	cfg.Email.FrontendURL = "https://app.example.com"
	return cfg
}

func newTestEngine(t *testing.T) (*Engine, *miniredis.Miniredis, *memoryUsers, *ChannelBus) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })

	users := newMemoryUsers()
	bus := NewChannelBus(8)

	engine, err := New().
		WithConfig(testConfig(t)).
		WithRedis(rdb).
		WithUserProvider(users).
		WithEventBus(bus).
		Build()
	if err != nil {
		t.Fatalf("engine build failed: %v", err)
	}

	return engine, mr, users, bus
}

func confirmedUser() UserRecord {
	return UserRecord{
		ID:          "user-1",
		Username:    "alice",
		Email:       "alice@example.com",
		Roles:       []string{"user"},
		IsConfirmed: true,
	}
}

func waitEvent(t *testing.T, bus *ChannelBus) PublishedEvent {
	t.Helper()
	select {
	case ev := <-bus.Events():
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event published within 1s")
		return PublishedEvent{}
	}
}

func requireNoEvent(t *testing.T, bus *ChannelBus) {
	t.Helper()
	select {
	case ev := <-bus.Events():
		t.Fatalf("unexpected event published: %+v", ev)
	default:
	}
}
