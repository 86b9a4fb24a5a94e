package exchange_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parley/internal/crypto"
	"parley/internal/crypto/cryptotest"
	"parley/internal/protocol/exchange"
)

func TestSealOpen_RoundTrip(t *testing.T) {
	bob := cryptotest.Identity(t, 1)

	enc, err := exchange.Seal("s3cr3t-123", bob.Encrypt)
	require.NoError(t, err)

	got, err := exchange.Open(enc, bob.Decrypt)
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t-123", got)
}

func TestSeal_IsRandomised(t *testing.T) {
	bob := cryptotest.Identity(t, 1)

	a, err := exchange.Seal("same", bob.Encrypt)
	require.NoError(t, err)
	b, err := exchange.Seal("same", bob.Encrypt)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestSeal_Empty(t *testing.T) {
	bob := cryptotest.Identity(t, 1)
	_, err := exchange.Seal("", bob.Encrypt)
	require.ErrorIs(t, err, exchange.ErrEmptySecret)
}

func TestOpen_WrongRecipient(t *testing.T) {
	bob := cryptotest.Identity(t, 1)
	eve := cryptotest.Identity(t, 2)

	enc, err := exchange.Seal("for bob", bob.Encrypt)
	require.NoError(t, err)
	_, err = exchange.Open(enc, eve.Decrypt)
	require.Error(t, err)
}

func TestOpen_BadBase64(t *testing.T) {
	bob := cryptotest.Identity(t, 1)
	_, err := exchange.Open("%%%", bob.Decrypt)
	require.ErrorIs(t, err, crypto.ErrDecodeFailure)
}

func TestGenerateSecret(t *testing.T) {
	a, err := exchange.GenerateSecret()
	require.NoError(t, err)
	b, err := exchange.GenerateSecret()
	require.NoError(t, err)

	assert.Len(t, a, 24)
	assert.NotEqual(t, a, b)
	assert.NotContains(t, a, "+")
	assert.NotContains(t, a, "/")
}
