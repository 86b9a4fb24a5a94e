package types

// KeyFile is the interchange form of an identity: the PEM-framed SPKI public
// key and the PEM-framed iv || AES-GCM(PKCS8) private key.
type KeyFile struct {
	PublicKeyPEM  string `json:"public_key_pem"`
	PrivateKeyPEM string `json:"private_key_pem"`
}

// IsZero reports whether either half is missing.
func (k KeyFile) IsZero() bool { return k.PublicKeyPEM == "" || k.PrivateKeyPEM == "" }
