package crypto_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parley/internal/crypto"
)

func TestOAEP_RoundTrip(t *testing.T) {
	priv, _ := testKeys(t)
	id := importAll(t, priv)

	for _, msg := range []string{"__", "s3cr3t-123", ""} {
		ct, err := id.Encrypt.Encrypt([]byte(msg))
		require.NoError(t, err)
		pt, err := id.Decrypt.Decrypt(ct)
		require.NoError(t, err)
		assert.Equal(t, msg, string(pt))
	}
}

func TestOAEP_WrongKeyFails(t *testing.T) {
	a, b := testKeys(t)
	alice, bob := importAll(t, a), importAll(t, b)

	ct, err := alice.Encrypt.Encrypt([]byte("for alice"))
	require.NoError(t, err)
	_, err = bob.Decrypt.Decrypt(ct)
	require.Error(t, err)
}

func TestImportPrivate_RoundTripBehaviour(t *testing.T) {
	priv, _ := testKeys(t)
	pkcs8, err := crypto.ExportPrivate(priv)
	require.NoError(t, err)

	dec, sig, err := crypto.ImportPrivate(pkcs8)
	require.NoError(t, err)
	assert.False(t, dec.IsZero())
	assert.False(t, sig.IsZero())

	spki, err := crypto.ExportPublic(&priv.PublicKey)
	require.NoError(t, err)
	pub, err := crypto.ImportPublic(spki)
	require.NoError(t, err)

	ct, err := pub.Encrypt.Encrypt([]byte("marker"))
	require.NoError(t, err)
	pt, err := dec.Decrypt(ct)
	require.NoError(t, err)
	assert.Equal(t, "marker", string(pt))

	again, err := crypto.ExportEncryptionKey(pub.Encrypt)
	require.NoError(t, err)
	assert.Equal(t, spki, again)
}

func TestImport_RejectsNonRSA(t *testing.T) {
	ec, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	spki, err := x509.MarshalPKIXPublicKey(&ec.PublicKey)
	require.NoError(t, err)
	_, err = crypto.ImportPublic(spki)
	require.ErrorIs(t, err, crypto.ErrInvalidKey)

	pkcs8, err := x509.MarshalPKCS8PrivateKey(ec)
	require.NoError(t, err)
	_, _, err = crypto.ImportPrivate(pkcs8)
	require.ErrorIs(t, err, crypto.ErrInvalidKey)

	_, err = crypto.ImportPublic([]byte("garbage"))
	require.ErrorIs(t, err, crypto.ErrInvalidKey)
}

func TestPSS_SignVerify(t *testing.T) {
	a, b := testKeys(t)
	alice, bob := importAll(t, a), importAll(t, b)

	sig, err := alice.Sign.Sign([]byte("hello"))
	require.NoError(t, err)

	assert.True(t, alice.Verify.Verify([]byte("hello"), sig))
	assert.False(t, alice.Verify.Verify([]byte("hellO"), sig))
	assert.False(t, bob.Verify.Verify([]byte("hello"), sig))

	sig[0] ^= 0xff
	assert.False(t, alice.Verify.Verify([]byte("hello"), sig))
}

func TestIdentity_Wipe(t *testing.T) {
	_, b := testKeys(t)
	pkcs8, err := crypto.ExportPrivate(b)
	require.NoError(t, err)
	spki, err := crypto.ExportPublic(&b.PublicKey)
	require.NoError(t, err)
	pub, err := crypto.ImportPublic(spki)
	require.NoError(t, err)
	dec, sig, err := crypto.ImportPrivate(pkcs8)
	require.NoError(t, err)

	id := crypto.NewIdentity(pub, dec, sig, spki)
	pemText, err := id.PublicPEM()
	require.NoError(t, err)
	assert.Equal(t, crypto.Fingerprint(spki), crypto.FingerprintPEM(pemText))
	assert.Len(t, id.Fingerprint(), 20)

	id.Wipe()
	assert.True(t, id.Decrypt.IsZero())
	assert.True(t, id.Sign.IsZero())

	_, err = id.Sign.Sign([]byte("x"))
	require.ErrorIs(t, err, crypto.ErrEmptyHandle)
	_, err = id.Decrypt.Decrypt([]byte("x"))
	require.ErrorIs(t, err, crypto.ErrEmptyHandle)
	_, err = id.PublicPEM()
	require.ErrorIs(t, err, crypto.ErrEmptyHandle)

	// The shared test key b was only exported, never wiped.
	assert.NotZero(t, b.D.Sign())
}
