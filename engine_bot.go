package authkit

import (
	"context"

	"github.com/tellme/authkit/jwt"
)

// BotLogin validates bot credentials through the user store and issues the
// bot's single-slot access token. Issuing atomically evicts whatever
// session the bot held before; there is never more than one live bot
// session.
func (e *Engine) BotLogin(ctx context.Context, id, token string) (*BotGrant, error) {
	bot, err := e.users.CheckBotLogin(ctx, id, token)
	if err != nil {
		return nil, err
	}
	if bot == nil {
		return nil, ErrBotCredentials
	}

	return e.issuer.IssueBotPair(ctx, bot.ID)
}

// ValidateBotAccess verifies a bot access token and requires its jti to be
// the one currently occupying the bot's slot. A token evicted by a newer
// login fails with ErrSessionRevoked even though its signature still
// verifies.
func (e *Engine) ValidateBotAccess(ctx context.Context, accessToken string) (*jwt.AccessClaims, error) {
	claims, err := e.codec.VerifyAccess(accessToken)
	if err != nil {
		return nil, err
	}
	if claims.Client != jwt.ClientBot {
		return nil, jwt.ErrTokenTypeMismatch
	}

	current, err := e.issuer.CurrentBotSession(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if current == "" || current != claims.ID {
		return nil, ErrSessionRevoked
	}

	return claims, nil
}
