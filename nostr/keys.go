package nostr

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	gonostr "github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip05"
	"github.com/nbd-wtf/go-nostr/nip19"
)

// ParsePrivateKey accepts a hex or bech32 (nsec) private key and returns the
// hex form used for signing.
func ParsePrivateKey(key string) (string, error) {
	if strings.HasPrefix(key, "nsec") {
		prefix, value, err := nip19.Decode(key)
		if err != nil || prefix != "nsec" {
			return "", fmt.Errorf("invalid nsec key")
		}
		return value.(string), nil
	}
	raw, err := hex.DecodeString(key)
	if err != nil || len(raw) != 32 {
		return "", fmt.Errorf("private key is not valid hex")
	}
	return key, nil
}

// NormalizePublicKey resolves an npub, a nip05 identifier (bob@example.com)
// or a raw hex key to the hex public key DMs are addressed to.
func NormalizePublicKey(ctx context.Context, pubkey string) (string, error) {
	if strings.HasPrefix(pubkey, "npub1") {
		prefix, value, err := nip19.Decode(pubkey)
		if err != nil || prefix != "npub" {
			return "", fmt.Errorf("public key is not valid npub")
		}
		return value.(string), nil
	}

	if strings.Contains(pubkey, "@") {
		pointer, err := nip05.QueryIdentifier(ctx, pubkey)
		if err != nil || pointer == nil {
			return "", fmt.Errorf("public key not found for %s", pubkey)
		}
		return pointer.PublicKey, nil
	}

	if len(pubkey) != 64 || !gonostr.IsValid32ByteHex(pubkey) {
		return "", fmt.Errorf("public key is not valid hex")
	}
	return pubkey, nil
}
