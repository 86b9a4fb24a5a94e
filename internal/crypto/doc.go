// Package crypto exposes the primitives the parley protocol is built from.
//
// Contents
//
//   - Base64 and PEM-style framing of binary key material (B64, FromB64,
//     EncodePEM, DecodePEM)
//   - RSA-2048 key generation, SPKI/PKCS8 export and usage-bound import
//     (GenerateKeyPair, ExportPublic, ExportPrivate, ImportPublic,
//     ImportPrivate)
//   - Password and secret based key derivation with PBKDF2-HMAC-SHA256
//     (DeriveKey, DeriveKeyWith)
//   - AES-256-GCM sealing with a random 12-byte IV prefix (Seal, Open)
//   - RSA-OAEP encryption and RSA-PSS signatures on the typed key handles
//   - Short public-key fingerprints for display/logging (Fingerprint)
//
// # Notes
//
// Each RSA key is imported into one handle per algorithm role. An
// EncryptionKey and a VerificationKey built from the same SPKI bytes never
// share the underlying *rsa.PublicKey, and the same holds for DecryptionKey
// and SigningKey. Callers should Wipe private handles once they are done.
package crypto
