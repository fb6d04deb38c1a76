package srs

import (
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"

	"golang.org/x/crypto/blake2b"
)

// Digest names the keyed-hash algorithm a Forwarder/Receiver pair uses.
// The zero value selects the calibrated default, SHA-512.
type Digest string

const (
	SHA512     Digest = "sha512"
	SHA256     Digest = "sha256"
	BLAKE2b512 Digest = "blake2b512"
)

func (d Digest) newHash() (func() hash.Hash, error) {
	switch d {
	case "", SHA512:
		return sha512.New, nil
	case SHA256:
		return sha256.New, nil
	case BLAKE2b512:
		return func() hash.Hash {
			// BLAKE2b-512 with no key; the HMAC construction itself
			// supplies the key, same as it does for the stdlib digests.
			h, _ := blake2b.New512(nil)
			return h
		}, nil
	default:
		return nil, fmt.Errorf("srs: unknown digest %q", string(d))
	}
}
