package crypto

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"testing"
)

func TestXORInvolution(t *testing.T) {
	keys := [][]byte{nil, {0}, []byte("session"), bytes.Repeat([]byte{0xaa}, 32)}
	msgs := [][]byte{nil, []byte("a"), []byte("hello bob"), bytes.Repeat([]byte("0123456789"), 20)}
	for _, k := range keys {
		for _, m := range msgs {
			if got := XOR(k, XOR(k, m)); !bytes.Equal(got, m) {
				t.Fatalf("XOR(k, XOR(k, %q)) = %q", m, got)
			}
		}
	}
}

func TestKeystreamWraps(t *testing.T) {
	key := []byte("k")
	ks := sha256.Sum256(key)
	ct := XOR(key, make([]byte, 70))
	for i, b := range ct {
		if b != ks[i%32] {
			t.Fatalf("byte %d = %x, want %x", i, b, ks[i%32])
		}
	}
}

func TestStreamCipherReusesKeystream(t *testing.T) {
	c := NewStreamCipher([]byte("session key"))
	m1, m2 := []byte("attack at dawn"), []byte("retreat at six")
	c1, _ := c.Encrypt(m1)
	c2, _ := c.Encrypt(m2)

	// Two ciphertexts under one key cancel the keystream.
	for i := range c1 {
		if c1[i]^c2[i] != m1[i]^m2[i] {
			t.Fatalf("keystream not reused at byte %d", i)
		}
	}
	pt, _ := c.Decrypt(c1)
	if !bytes.Equal(pt, m1) {
		t.Fatalf("Decrypt = %q", pt)
	}
}

func TestAEADRoundTrip(t *testing.T) {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	aead, err := NewAEAD(key)
	if err != nil {
		t.Fatalf("NewAEAD: %v", err)
	}

	plaintext := []byte("hello alice")
	ad := []byte("additional data")

	ciphertext := aead.Seal(plaintext, ad)
	if len(ciphertext) != len(plaintext)+aead.Overhead() {
		t.Fatalf("unexpected ciphertext length")
	}

	decrypted, err := aead.Open(ciphertext, ad)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !bytes.Equal(decrypted, plaintext) {
		t.Fatalf("decrypted != plaintext")
	}

	ciphertext[len(ciphertext)-1] ^= 0xff
	if _, err := aead.Open(ciphertext, ad); !errors.Is(err, ErrDecryptionFailed) {
		t.Fatalf("expected decryption failure on tampered ciphertext, got %v", err)
	}
	if _, err := aead.Open(ciphertext[:5], ad); !errors.Is(err, ErrCiphertextTooShort) {
		t.Fatalf("expected ErrCiphertextTooShort, got %v", err)
	}
}

func TestAEADFreshNonce(t *testing.T) {
	aead, _ := NewAEAD(make([]byte, 32))
	a, _ := aead.Encrypt([]byte("same"))
	b, _ := aead.Encrypt([]byte("same"))
	if bytes.Equal(a, b) {
		t.Fatalf("identical ciphertexts for repeated message")
	}
}

func TestAEADAcrossInstances(t *testing.T) {
	key := bytes.Repeat([]byte{7}, 32)
	sender, _ := NewCipher(SuiteChaCha20Poly1305, key)
	receiver, _ := NewCipher(SuiteChaCha20Poly1305, key)
	ct, err := sender.Encrypt([]byte("hi"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	pt, err := receiver.Decrypt(ct)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if string(pt) != "hi" {
		t.Fatalf("Decrypt = %q", pt)
	}
}

func TestNewAEADKeySize(t *testing.T) {
	if _, err := NewAEAD(make([]byte, 16)); !errors.Is(err, ErrKeyLength) {
		t.Fatalf("want ErrKeyLength, got %v", err)
	}
}

func TestNewCipherSuites(t *testing.T) {
	key := make([]byte, 32)
	for _, s := range []Suite{SuiteXOR, SuiteChaCha20Poly1305} {
		c, err := NewCipher(s, key)
		if err != nil {
			t.Fatalf("NewCipher(%s): %v", s, err)
		}
		if c.Suite() != s {
			t.Fatalf("Suite() = %s, want %s", c.Suite(), s)
		}
	}
	if _, err := NewCipher("rot13", key); !errors.Is(err, ErrUnknownSuite) {
		t.Fatalf("want ErrUnknownSuite, got %v", err)
	}
}

func TestParseSuite(t *testing.T) {
	if s, err := ParseSuite(""); err != nil || s != SuiteXOR {
		t.Fatalf("ParseSuite(\"\") = %s, %v", s, err)
	}
	if s, err := ParseSuite("chacha20poly1305"); err != nil || s != SuiteChaCha20Poly1305 {
		t.Fatalf("ParseSuite(chacha) = %s, %v", s, err)
	}
	if _, err := ParseSuite("aes"); !errors.Is(err, ErrUnknownSuite) {
		t.Fatalf("want ErrUnknownSuite, got %v", err)
	}
}

func BenchmarkAEADSeal(b *testing.B) {
	aead, _ := NewAEAD(make([]byte, 32))
	plaintext := make([]byte, 64*1024)
	b.SetBytes(int64(len(plaintext)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = aead.Seal(plaintext, nil)
	}
}
