package memzero_test

import (
	"bytes"
	"testing"

	"parley/internal/util/memzero"
)

func TestZero(t *testing.T) {
	b := []byte("pkcs8 bytes")
	memzero.Zero(b)
	if !bytes.Equal(b, make([]byte, len(b))) {
		t.Fatalf("buffer not wiped: %x", b)
	}
	memzero.Zero(nil)
}
