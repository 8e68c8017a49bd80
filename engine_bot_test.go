package authkit

import (
	"context"
	"errors"
	"testing"

	"github.com/tellme/authkit/jwt"
)

func TestBotLoginSingleSlot(t *testing.T) {
	ctx := context.Background()
	engine, _, users, _ := newTestEngine(t)
	users.addBot("bot-1", "bot-token")

	first, err := engine.BotLogin(ctx, "bot-1", "bot-token")
	if err != nil {
		t.Fatalf("first bot login failed: %v", err)
	}
	if first.TokenType != "Bearer" || first.ExpiresIn != defaultBotAccessTTL {
		t.Fatalf("grant = (%q, %v)", first.TokenType, first.ExpiresIn)
	}

	claims, err := engine.ValidateBotAccess(ctx, first.AccessToken)
	if err != nil {
		t.Fatalf("first grant invalid: %v", err)
	}
	if claims.Subject != "bot-1" || claims.Client != jwt.ClientBot {
		t.Fatalf("claims = (%q, %q)", claims.Subject, claims.Client)
	}

	second, err := engine.BotLogin(ctx, "bot-1", "bot-token")
	if err != nil {
		t.Fatalf("second bot login failed: %v", err)
	}

	// the new login evicts the old session even though its signature is fine
	if _, err := engine.ValidateBotAccess(ctx, first.AccessToken); !errors.Is(err, ErrSessionRevoked) {
		t.Fatalf("evicted grant error = %v, want ErrSessionRevoked", err)
	}
	if _, err := engine.ValidateBotAccess(ctx, second.AccessToken); err != nil {
		t.Fatalf("current grant invalid: %v", err)
	}
}

func TestBotLoginBadCredentials(t *testing.T) {
	ctx := context.Background()
	engine, _, users, _ := newTestEngine(t)
	users.addBot("bot-1", "bot-token")

	_, err := engine.BotLogin(ctx, "bot-1", "wrong")
	if !errors.Is(err, ErrBotCredentials) {
		t.Fatalf("wrong token error = %v, want ErrBotCredentials", err)
	}

	_, err = engine.BotLogin(ctx, "bot-2", "bot-token")
	if !errors.Is(err, ErrBotCredentials) {
		t.Fatalf("unknown bot error = %v, want ErrBotCredentials", err)
	}
}

func TestValidateBotAccessRejectsUserTokens(t *testing.T) {
	ctx := context.Background()
	engine, _, users, _ := newTestEngine(t)
	pair := login(t, engine, users)

	_, err := engine.ValidateBotAccess(ctx, pair.AccessToken)
	if !errors.Is(err, jwt.ErrTokenTypeMismatch) {
		t.Fatalf("user token error = %v, want jwt.ErrTokenTypeMismatch", err)
	}
}

func TestValidateBotAccessExpiredSlot(t *testing.T) {
	ctx := context.Background()
	engine, mr, users, _ := newTestEngine(t)
	users.addBot("bot-1", "bot-token")

	grant, err := engine.BotLogin(ctx, "bot-1", "bot-token")
	if err != nil {
		t.Fatalf("bot login failed: %v", err)
	}

	mr.FastForward(defaultBotAccessTTL)

	if _, err := engine.ValidateBotAccess(ctx, grant.AccessToken); !errors.Is(err, ErrSessionRevoked) {
		t.Fatalf("expired slot error = %v, want ErrSessionRevoked", err)
	}
}
