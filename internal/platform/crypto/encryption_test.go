package crypto

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"
)

func testKey() string {
	return hex.EncodeToString(bytes.Repeat([]byte{0x42}, 32))
}

func TestRoundTripAccountNumber(t *testing.T) {
	svc, err := New(testKey())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	sealed, err := svc.EncryptString("001234567890")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if bytes.Contains(sealed, []byte("001234567890")) {
		t.Fatal("ciphertext must not contain the plaintext")
	}
	plain, err := svc.DecryptString(sealed)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if plain != "001234567890" {
		t.Fatalf("expected round trip, got %q", plain)
	}
}

func TestUnconfiguredPassesThrough(t *testing.T) {
	svc, err := New("")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if svc.Configured() {
		t.Fatal("empty key should leave service unconfigured")
	}
	out, err := svc.EncryptString("22000.00")
	if err != nil || string(out) != "22000.00" {
		t.Fatalf("expected passthrough, got %q err=%v", out, err)
	}
}

func TestRejectsShortKey(t *testing.T) {
	if _, err := New("short"); !errors.Is(err, ErrKeyLength) {
		t.Fatalf("expected ErrKeyLength, got %v", err)
	}
}
