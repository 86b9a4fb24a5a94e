package crypto

import "errors"

var (
	// ErrDecodeFailure is returned when base64 or PEM framing is malformed,
	// or when a sealed blob is too short to hold an IV and a tag.
	ErrDecodeFailure = errors.New("decode failure")

	// ErrAuthenticationFailed is returned when an AES-GCM tag does not verify
	// (tampered data or wrong key).
	ErrAuthenticationFailed = errors.New("authentication failure")

	// ErrInvalidKey is returned when DER bytes do not hold an RSA key of the
	// expected kind or size.
	ErrInvalidKey = errors.New("invalid key material")

	// ErrEmptyHandle is returned when an operation is attempted on a zero or
	// wiped key handle.
	ErrEmptyHandle = errors.New("key handle is empty")
)
