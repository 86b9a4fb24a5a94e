// Package cryptotest provides RSA identities for tests in other packages.
package cryptotest

import (
	"crypto/rsa"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"parley/internal/crypto"
)

const poolSize = 3

var (
	poolOnce sync.Once
	pool     [poolSize]*rsa.PrivateKey
	poolErr  error
)

// Key returns the n-th of a small set of RSA keys generated once per test
// binary. Key generation is slow, so tests share these.
func Key(t testing.TB, n int) *rsa.PrivateKey {
	t.Helper()
	require.Less(t, n, poolSize, "cryptotest: only %d keys available", poolSize)
	poolOnce.Do(func() {
		for i := range pool {
			pool[i], poolErr = crypto.GenerateKeyPair()
			if poolErr != nil {
				return
			}
		}
	})
	require.NoError(t, poolErr)
	return pool[n]
}

// Identity returns a fresh Identity over the n-th shared key. Each call
// imports the key again, so wiping the result does not affect other tests.
func Identity(t testing.TB, n int) *crypto.Identity {
	t.Helper()
	priv := Key(t, n)
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

// PublicPEM returns the PEM public key of the n-th shared key.
func PublicPEM(t testing.TB, n int) string {
	t.Helper()
	spki, err := crypto.ExportPublic(&Key(t, n).PublicKey)
	require.NoError(t, err)
	return crypto.EncodePEM(crypto.PublicKeyLabel, spki)
}
