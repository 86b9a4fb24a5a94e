package crypto

import (
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"regexp"
	"strings"
)

// PEM labels used by the key file interchange format.
const (
	PublicKeyLabel  = "PUBLIC KEY"
	PrivateKeyLabel = "PRIVATE KEY"
)

var pemFrame = regexp.MustCompile(`-----BEGIN ([A-Z0-9 ]+)-----([\s\S]*?)-----END ([A-Z0-9 ]+)-----`)

// EncodePEM frames der under label with the body wrapped at 64 characters.
func EncodePEM(label string, der []byte) string {
	return string(pem.EncodeToMemory(&pem.Block{Type: label, Bytes: der}))
}

// DecodePEM extracts the binary body of the first frame in text.
//
// Header, footer and any whitespace inside the body are ignored, so CRLF
// files and re-wrapped bodies decode. When label is non-empty the frame must
// carry it. Every malformed input is reported as ErrDecodeFailure.
func DecodePEM(text, label string) ([]byte, error) {
	m := pemFrame.FindStringSubmatch(text)
	if m == nil {
		return nil, fmt.Errorf("%w: no PEM frame found", ErrDecodeFailure)
	}
	begin, body, end := m[1], m[2], m[3]
	if begin != end {
		return nil, fmt.Errorf("%w: BEGIN %q does not match END %q", ErrDecodeFailure, begin, end)
	}
	if label != "" && begin != label {
		return nil, fmt.Errorf("%w: want %q frame, got %q", ErrDecodeFailure, label, begin)
	}
	body = strings.Join(strings.Fields(body), "")
	if body == "" {
		return nil, fmt.Errorf("%w: empty %q frame", ErrDecodeFailure, begin)
	}
	der, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %q body: %v", ErrDecodeFailure, begin, err)
	}
	return der, nil
}
