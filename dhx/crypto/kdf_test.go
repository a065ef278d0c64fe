package crypto

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex %q: %v", s, err)
	}
	return b
}

func TestRFC5869Vectors(t *testing.T) {
	ikm := bytes.Repeat([]byte{0x0b}, 22)
	cases := []struct {
		name string
		salt string
		info string
		prk  string
		okm  string
	}{
		{
			name: "case1",
			salt: "000102030405060708090a0b0c",
			info: "f0f1f2f3f4f5f6f7f8f9",
			prk:  "077709362c2e32df0ddc3f0dc47bba6390b6c73bb50f9c3122ec844ad7c2b3e5",
			okm:  "3cb25f25faacd57a90434f64d0362f2a2d2d0a90cf1a5a4c5db02d56ecc4c5bf34007208d5b887185865",
		},
		{
			name: "case3-empty-salt",
			prk:  "19ef24a32c717b167f33a91d6f648bdf96596776afdb6377ac434c1c293ccb04",
			okm:  "8da4e775a563c18f715f802a063c5a31b8a11f5c5ee1879ec3454e5f3c738d2d9d201395faa4b61a96c8",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			salt := mustHex(t, tc.salt)
			info := mustHex(t, tc.info)

			prk := Extract(salt, ikm)
			if !bytes.Equal(prk, mustHex(t, tc.prk)) {
				t.Fatalf("prk = %x", prk)
			}
			okm, err := Expand(prk, info, 42)
			if err != nil {
				t.Fatalf("Expand: %v", err)
			}
			if !bytes.Equal(okm, mustHex(t, tc.okm)) {
				t.Fatalf("okm = %x", okm)
			}
			derived, err := DeriveKey(ikm, salt, info, 42)
			if err != nil {
				t.Fatalf("DeriveKey: %v", err)
			}
			if !bytes.Equal(derived, okm) {
				t.Fatalf("DeriveKey differs from Extract+Expand")
			}
		})
	}
}

func TestExpandMatchesHMACChain(t *testing.T) {
	prk := Extract(nil, []byte("shared"))
	info := []byte(SessionInfo)

	var want, prev []byte
	for i := byte(1); len(want) < 80; i++ {
		m := hmac.New(sha256.New, prk)
		m.Write(prev)
		m.Write(info)
		m.Write([]byte{i})
		prev = m.Sum(nil)
		want = append(want, prev...)
	}

	got, err := Expand(prk, info, 80)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if !bytes.Equal(got, want[:80]) {
		t.Fatalf("Expand = %x, want %x", got, want[:80])
	}
}

func TestExtractEmptySaltIsZeroBlock(t *testing.T) {
	ikm := []byte{0x01, 0x9a}
	if !bytes.Equal(Extract(nil, ikm), Extract(make([]byte, sha256.Size), ikm)) {
		t.Fatalf("nil salt should equal 32 zero bytes")
	}
	if !bytes.Equal(Extract([]byte{}, ikm), Extract(nil, ikm)) {
		t.Fatalf("empty salt should equal nil salt")
	}
}

func TestExpandLengthBounds(t *testing.T) {
	prk := Extract(nil, []byte("x"))
	for _, n := range []int{-1, 255*32 + 1} {
		if _, err := Expand(prk, nil, n); !errors.Is(err, ErrKeyLength) {
			t.Fatalf("Expand(%d): want ErrKeyLength, got %v", n, err)
		}
	}
	empty, err := Expand(prk, nil, 0)
	if err != nil {
		t.Fatalf("Expand(0): %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("Expand(0) = %v, want empty slice", empty)
	}
	out, err := Expand(prk, nil, 255*32)
	if err != nil {
		t.Fatalf("Expand(max): %v", err)
	}
	if len(out) != 255*32 {
		t.Fatalf("len = %d", len(out))
	}
}

func TestDeriveSessionKey(t *testing.T) {
	secret := []byte{0x01, 0x5c}
	k1, err := DeriveSessionKey(secret)
	if err != nil {
		t.Fatalf("DeriveSessionKey: %v", err)
	}
	k2, _ := DeriveSessionKey(secret)
	if len(k1) != SessionKeySize {
		t.Fatalf("len = %d", len(k1))
	}
	if !bytes.Equal(k1, k2) {
		t.Fatalf("derivation is not deterministic")
	}

	other, _ := DeriveKey(secret, nil, []byte("dh-session-other"), SessionKeySize)
	if bytes.Equal(k1, other) {
		t.Fatalf("different info produced the same key")
	}
	for n := 1; n <= 100; n += 33 {
		k, _ := DeriveKey(secret, nil, []byte(SessionInfo), n)
		if len(k) != n {
			t.Fatalf("DeriveKey length %d, want %d", len(k), n)
		}
	}
}
