package csrf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBinder(t *testing.T) *Binder {
	t.Helper()

	b, err := NewBinder([]byte("csrf-test-secret"))
	require.NoError(t, err)
	return b
}

func TestNewBinderRequiresSecret(t *testing.T) {
	_, err := NewBinder(nil)
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestGenerateValidateRoundTrip(t *testing.T) {
	b := newTestBinder(t)

	token, err := b.Generate("jti-1")
	require.NoError(t, err)
	assert.True(t, b.Validate(token, "jti-1"))
}

func TestTokenBoundToScope(t *testing.T) {
	b := newTestBinder(t)

	token, err := b.Generate("jti-1")
	require.NoError(t, err)
	assert.False(t, b.Validate(token, "jti-2"))
}

func TestTamperedSignatureFails(t *testing.T) {
	b := newTestBinder(t)

	token, err := b.Generate("jti-1")
	require.NoError(t, err)

	// flip one character in the signature half
	dot := strings.Index(token, ".")
	require.Greater(t, dot, 0)
	sig := []byte(token[dot+1:])
	if sig[0] == 'a' {
		sig[0] = 'b'
	} else {
		sig[0] = 'a'
	}

	assert.False(t, b.Validate(token[:dot+1]+string(sig), "jti-1"))
}

func TestMalformedTokensReturnFalse(t *testing.T) {
	b := newTestBinder(t)

	assert.False(t, b.Validate("", "jti-1"))
	assert.False(t, b.Validate("no-dot-here", "jti-1"))
	assert.False(t, b.Validate(".", "jti-1"))
	assert.False(t, b.Validate("nonce.", "jti-1"))
	assert.False(t, b.Validate(".sig", "jti-1"))
}

func TestTokensAreUnique(t *testing.T) {
	b := newTestBinder(t)

	one, err := b.Generate("jti-1")
	require.NoError(t, err)
	two, err := b.Generate("jti-1")
	require.NoError(t, err)

	// fresh nonce every time; both still validate
	assert.NotEqual(t, one, two)
	assert.True(t, b.Validate(one, "jti-1"))
	assert.True(t, b.Validate(two, "jti-1"))
}

func TestDifferentSecretsDisagree(t *testing.T) {
	b := newTestBinder(t)
	other, err := NewBinder([]byte("another-secret"))
	require.NoError(t, err)

	token, err := b.Generate("jti-1")
	require.NoError(t, err)
	assert.False(t, other.Validate(token, "jti-1"))
}
