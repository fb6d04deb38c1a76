// Package srs implements the Receiver and Forwarder state machines: the
// HMAC-authenticated SRS0/SRS1 transforms that sit on top of internal/srsaddr
// and internal/srstime.
package srs

import (
	"hash"

	"github.com/oxrelay/srsd/internal/srsaddr"
	"github.com/oxrelay/srsd/internal/srstime"
)

// ReceiverConfig configures a Receiver. Hostname must be ASCII-compatible
// and contain no SRS separator; Digest selects the keyed-hash algorithm
// (the zero value is SHA-512).
type ReceiverConfig struct {
	Secret      []byte
	Hostname    string
	Digest      Digest
	Timestamper srstime.Timestamper
}

// Receiver peels one layer of SRS rewriting: it verifies the address's hash
// and, for SRS0, its timestamp, then reconstructs the predecessor address.
type Receiver struct {
	secret      []byte
	hostname    string
	newHash     func() hash.Hash
	timestamper srstime.Timestamper
}

// NewReceiver validates cfg and builds a Receiver. It fails with
// *HostnameError if the hostname contains a separator or is not
// ASCII-compatible.
func NewReceiver(cfg ReceiverConfig) (*Receiver, error) {
	if err := validateHostname(cfg.Hostname); err != nil {
		return nil, err
	}
	newHash, err := cfg.Digest.newHash()
	if err != nil {
		return nil, err
	}
	return &Receiver{
		secret:      cfg.Secret,
		hostname:    cfg.Hostname,
		newHash:     newHash,
		timestamper: cfg.Timestamper,
	}, nil
}

// Receive verifies addr's hash (and, for SRS0, its timestamp) and returns
// the peeled address as its serialized form:
//
//   - SRS0 peels to "local@hostname" — the original sender.
//   - SRS1 peels to "SRS0" + opaque_local + "@" + hostname; opaque_local
//     already begins with the embedded hop's separator, so the result is a
//     well-formed SRS0 string in that hop's own separator.
//
// It returns *HashVerificationError on a hash mismatch and
// *srstime.TimestampError if an SRS0's tt falls outside the validity
// window. Neither error is fatal; callers recover at the request boundary.
func (r *Receiver) Receive(addr srsaddr.Address) (string, error) {
	expected, err := computeHash(r.secret, r.newHash, addr)
	if err != nil {
		return "", &HashingError{Err: err}
	}

	if !asciiEqualFold(expected, addr.Hash()) {
		return "", &HashVerificationError{Expected: expected}
	}

	switch v := addr.(type) {
	case srsaddr.SRS0:
		if err := r.timestamper.VerifyTimestamp(v.TT); err != nil {
			return "", err
		}
		return v.Local + "@" + v.Hostname, nil
	case srsaddr.SRS1:
		return "SRS0" + v.OpaqueLocal + "@" + v.Hostname, nil
	default:
		panic("srs: unreachable address variant")
	}
}
