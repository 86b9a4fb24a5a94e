package crypto

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint returns a short hex fingerprint of DER public key bytes.
//
// It hashes with SHA-256 and truncates to 10 bytes (20 hex chars).
func Fingerprint(spki []byte) string {
	sum := sha256.Sum256(spki)
	return hex.EncodeToString(sum[:10])
}

// FingerprintPEM fingerprints a PEM-framed public key. It returns "" when
// the text does not decode.
func FingerprintPEM(pemText string) string {
	der, err := DecodePEM(pemText, PublicKeyLabel)
	if err != nil {
		return ""
	}
	return Fingerprint(der)
}
