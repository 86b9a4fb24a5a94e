package crypto_test

import (
	"crypto/rsa"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"parley/internal/crypto"
)

var (
	keysOnce sync.Once
	keyA     *rsa.PrivateKey
	keyB     *rsa.PrivateKey
	keysErr  error
)

// testKeys returns two RSA key pairs shared by the package tests.
func testKeys(t *testing.T) (*rsa.PrivateKey, *rsa.PrivateKey) {
	t.Helper()
	keysOnce.Do(func() {
		keyA, keysErr = crypto.GenerateKeyPair()
		if keysErr != nil {
			return
		}
		keyB, keysErr = crypto.GenerateKeyPair()
	})
	require.NoError(t, keysErr)
	return keyA, keyB
}

// importAll exports priv and imports it back into an Identity.
func importAll(t *testing.T, priv *rsa.PrivateKey) *crypto.Identity {
	t.Helper()
	spki, err := crypto.ExportPublic(&priv.PublicKey)
	require.NoError(t, err)
	pkcs8, err := crypto.ExportPrivate(priv)
	require.NoError(t, err)

	pub, err := crypto.ImportPublic(spki)
	require.NoError(t, err)
	dec, sig, err := crypto.ImportPrivate(pkcs8)
	require.NoError(t, err)
	return crypto.NewIdentity(pub, dec, sig, spki)
}
