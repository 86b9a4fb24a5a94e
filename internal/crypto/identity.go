package crypto

import "fmt"

// Identity is the unlocked key collection of the local user: four handles
// over one RSA key pair, two for confidentiality and two for authenticity.
type Identity struct {
	Encrypt EncryptionKey
	Decrypt DecryptionKey
	Sign    SigningKey
	Verify  VerificationKey

	publicDER []byte
}

// NewIdentity assembles an Identity from imported handles and the SPKI bytes
// they were built from.
func NewIdentity(pub PublicKeys, dec DecryptionKey, sig SigningKey, spki []byte) *Identity {
	return &Identity{
		Encrypt:   pub.Encrypt,
		Decrypt:   dec,
		Sign:      sig,
		Verify:    pub.Verify,
		publicDER: append([]byte(nil), spki...),
	}
}

// PublicPEM returns the PEM-framed SPKI public key.
func (id *Identity) PublicPEM() (string, error) {
	if id == nil || len(id.publicDER) == 0 {
		return "", fmt.Errorf("identity has no public key: %w", ErrEmptyHandle)
	}
	return EncodePEM(PublicKeyLabel, id.publicDER), nil
}

// Fingerprint returns the short fingerprint of the public key.
func (id *Identity) Fingerprint() string {
	if id == nil {
		return ""
	}
	return Fingerprint(id.publicDER)
}

// Wipe destroys the private handles. The identity is unusable afterwards.
func (id *Identity) Wipe() {
	if id == nil {
		return
	}
	id.Decrypt.Wipe()
	id.Sign.Wipe()
	id.Encrypt = EncryptionKey{}
	id.Verify = VerificationKey{}
	id.publicDER = nil
}
