package party

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheusHen/DHX/dhx/crypto"
	"github.com/TheusHen/DHX/dhx/dhke"
)

func newDH(t *testing.T) *dhke.DH {
	t.Helper()
	params, err := dhke.DefaultParams()
	require.NoError(t, err)
	d, err := dhke.New(params)
	require.NoError(t, err)
	return d
}

func fixed(t *testing.T, name string, d *dhke.DH, x int64) *Party {
	t.Helper()
	sk, err := dhke.NewPrivateKey(d.Params(), big.NewInt(x))
	require.NoError(t, err)
	p, err := NewWithPrivateKey(name, d, sk)
	require.NoError(t, err)
	return p
}

func TestPartiesAgree(t *testing.T) {
	d := newDH(t)
	alice := fixed(t, "alice", d, 2*17)
	bob := fixed(t, "bob", d, 2*200)

	assert.Equal(t, AwaitingPeerPublic, alice.State())
	_, ok := alice.SessionKey()
	assert.False(t, ok)

	ka, err := alice.ComputeSharedKey(bob.PublicKey())
	require.NoError(t, err)
	kb, err := bob.ComputeSharedKey(alice.PublicKey())
	require.NoError(t, err)

	assert.Len(t, ka, 32)
	assert.Equal(t, ka, kb)
	assert.Equal(t, KeyEstablished, alice.State())

	stored, ok := alice.SessionKey()
	require.True(t, ok)
	assert.Equal(t, ka, stored)

	stored[0] ^= 0xff
	again, _ := alice.SessionKey()
	assert.Equal(t, ka, again, "SessionKey must return a copy")
}

func TestRandomPartiesAgree(t *testing.T) {
	d := newDH(t)
	for i := 0; i < 50; i++ {
		a, err := New("a", d, nil)
		require.NoError(t, err)
		b, err := New("b", d, nil)
		require.NoError(t, err)
		ka, err := a.ComputeSharedKey(b.PublicKey())
		require.NoError(t, err)
		kb, err := b.ComputeSharedKey(a.PublicKey())
		require.NoError(t, err)
		require.Equal(t, ka, kb)
	}
}

func TestZeroPrivateKeyRejected(t *testing.T) {
	p, err := NewWithPrivateKey("nobody", newDH(t), dhke.PrivateKey{})
	assert.Nil(t, p)
	assert.True(t, errors.Is(err, dhke.ErrInvalidPrivateKey))
}

func TestInvalidPeerKeyFails(t *testing.T) {
	d := newDH(t)
	alice := fixed(t, "alice", d, 10)

	_, err := alice.ComputeSharedKey(dhke.NewPublicKey(big.NewInt(2)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, dhke.ErrInvalidKey))
	assert.Contains(t, err.Error(), "alice")
	assert.Equal(t, Failed, alice.State())

	bob := fixed(t, "bob", d, 20)
	_, err = alice.ComputeSharedKey(bob.PublicKey())
	assert.True(t, errors.Is(err, ErrHandshakeFailed))
	_, ok := alice.SessionKey()
	assert.False(t, ok)
}

func TestRekeyOverwrites(t *testing.T) {
	d := newDH(t)
	alice := fixed(t, "alice", d, 2*5)
	bob := fixed(t, "bob", d, 2*6)
	carol := fixed(t, "carol", d, 2*7)

	k1, err := alice.ComputeSharedKey(bob.PublicKey())
	require.NoError(t, err)
	k2, err := alice.ComputeSharedKey(carol.PublicKey())
	require.NoError(t, err)
	assert.NotEqual(t, k1, k2)

	stored, _ := alice.SessionKey()
	assert.Equal(t, k2, stored)
}

func TestCipher(t *testing.T) {
	d := newDH(t)
	alice := fixed(t, "alice", d, 2*3)
	bob := fixed(t, "bob", d, 2*4)

	_, err := alice.Cipher(crypto.SuiteXOR)
	assert.True(t, errors.Is(err, ErrNoSessionKey))

	_, err = alice.ComputeSharedKey(bob.PublicKey())
	require.NoError(t, err)
	_, err = bob.ComputeSharedKey(alice.PublicKey())
	require.NoError(t, err)

	ca, err := alice.Cipher(crypto.SuiteXOR)
	require.NoError(t, err)
	cb, err := bob.Cipher(crypto.SuiteXOR)
	require.NoError(t, err)

	ct, _ := ca.Encrypt([]byte("hi bob"))
	pt, err := cb.Decrypt(ct)
	require.NoError(t, err)
	assert.Equal(t, "hi bob", string(pt))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "awaiting-peer-public", AwaitingPeerPublic.String())
	assert.Equal(t, "key-established", KeyEstablished.String())
	assert.Equal(t, "failed", Failed.String())
}
