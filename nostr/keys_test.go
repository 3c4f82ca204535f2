package nostr

import (
	"context"
	"testing"

	gonostr "github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip19"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrivateKeyHex(t *testing.T) {
	sk := gonostr.GeneratePrivateKey()
	parsed, err := ParsePrivateKey(sk)
	require.NoError(t, err)
	assert.Equal(t, sk, parsed)
}

func TestParsePrivateKeyNsec(t *testing.T) {
	sk := gonostr.GeneratePrivateKey()
	nsec, err := nip19.EncodePrivateKey(sk)
	require.NoError(t, err)

	parsed, err := ParsePrivateKey(nsec)
	require.NoError(t, err)
	assert.Equal(t, sk, parsed)
}

func TestParsePrivateKeyInvalid(t *testing.T) {
	for _, key := range []string{"", "not-hex", "nsec1garbage", "abcd"} {
		_, err := ParsePrivateKey(key)
		assert.Error(t, err, key)
	}
}

func TestNormalizePublicKeyHex(t *testing.T) {
	sk := gonostr.GeneratePrivateKey()
	pk, err := gonostr.GetPublicKey(sk)
	require.NoError(t, err)

	normalized, err := NormalizePublicKey(context.Background(), pk)
	require.NoError(t, err)
	assert.Equal(t, pk, normalized)
}

func TestNormalizePublicKeyNpub(t *testing.T) {
	sk := gonostr.GeneratePrivateKey()
	pk, err := gonostr.GetPublicKey(sk)
	require.NoError(t, err)
	npub, err := nip19.EncodePublicKey(pk)
	require.NoError(t, err)

	normalized, err := NormalizePublicKey(context.Background(), npub)
	require.NoError(t, err)
	assert.Equal(t, pk, normalized)
}

func TestNormalizePublicKeyInvalid(t *testing.T) {
	for _, key := range []string{"", "npub1garbage", "zz", "not a key at all"} {
		_, err := NormalizePublicKey(context.Background(), key)
		assert.Error(t, err, key)
	}
}
