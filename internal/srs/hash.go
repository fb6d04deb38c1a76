package srs

import (
	"crypto/hmac"
	"fmt"
	"hash"

	"github.com/oxrelay/srsd/internal/codec"
	"github.com/oxrelay/srsd/internal/srsaddr"
)

// HashVerificationError reports that an address's hash field did not match
// the expected HMAC. Expected carries the correct hash so an operator can
// diagnose key drift; whether to surface it externally is a decision for
// the caller (see cmd/srsd, which gates this behind verbose_errors).
type HashVerificationError struct {
	Expected string
}

func (e *HashVerificationError) Error() string {
	return fmt.Sprintf("srs: hash verification failed (expected %s)", e.Expected)
}

// HashingError wraps an infrastructure failure from the underlying hash
// implementation. crypto/hmac over a stdlib or blake2b hash.Hash cannot
// actually fail, but the type is kept so the API mirrors a digest backend
// that can (e.g. a hardware HSM), matching the original's signature.
type HashingError struct {
	Err error
}

func (e *HashingError) Error() string { return fmt.Sprintf("srs: hashing failed: %v", e.Err) }
func (e *HashingError) Unwrap() error { return e.Err }

// computeHash returns the base64-email-safe encoding of the first three
// bytes of HMAC(secret, digest, fields(a)), where fields(SRS0) =
// tt ∥ hostname ∥ local and fields(SRS1) = hostname ∥ opaque_local.
func computeHash(secret []byte, newHash func() hash.Hash, a srsaddr.Address) (string, error) {
	mac := hmac.New(newHash, secret)

	switch v := a.(type) {
	case srsaddr.SRS0:
		mac.Write([]byte(v.TT))
		mac.Write([]byte(v.Hostname))
		mac.Write([]byte(v.Local))
	case srsaddr.SRS1:
		mac.Write([]byte(v.Hostname))
		mac.Write([]byte(v.OpaqueLocal))
	default:
		panic("srs: unreachable address variant")
	}

	sum := mac.Sum(nil)
	return codec.EncodeBase64(sum[:3])
}

// asciiEqualFold compares two strings byte-wise, case-insensitively over
// ASCII only. The hash alphabet is strictly ASCII base64, so general
// Unicode case-folding (strings.EqualFold) would be the wrong tool even
// though it happens to agree with this function on ASCII input.
func asciiEqualFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
