package srs

import (
	"fmt"
	"hash"

	"github.com/oxrelay/srsd/internal/srsaddr"
	"github.com/oxrelay/srsd/internal/srstime"
)

// InvalidSeparatorError reports a configured separator outside {=, +, -}.
type InvalidSeparatorError struct {
	Separator byte
}

func (e *InvalidSeparatorError) Error() string {
	return fmt.Sprintf("srs: invalid SRS separator %q", e.Separator)
}

// ForwarderConfig configures a Forwarder. Separator is this hop's chosen
// SRS field separator, applied to every address it mints.
type ForwarderConfig struct {
	Secret      []byte
	Hostname    string
	Digest      Digest
	Separator   byte
	Timestamper srstime.Timestamper
}

// Forwarder rewrites an outbound envelope sender, or an already-SRS
// address inherited from an earlier hop, into this hop's SRS address.
type Forwarder struct {
	secret      []byte
	hostname    string
	newHash     func() hash.Hash
	separator   byte
	timestamper srstime.Timestamper
}

// NewForwarder validates cfg and builds a Forwarder. It fails with
// *HostnameError on a bad hostname or *InvalidSeparatorError if Separator
// is not one of '=', '+', '-'.
func NewForwarder(cfg ForwarderConfig) (*Forwarder, error) {
	if err := validateHostname(cfg.Hostname); err != nil {
		return nil, err
	}
	if !srsaddr.IsSeparator(cfg.Separator) {
		return nil, &InvalidSeparatorError{Separator: cfg.Separator}
	}
	newHash, err := cfg.Digest.newHash()
	if err != nil {
		return nil, err
	}
	return &Forwarder{
		secret:      cfg.Secret,
		hostname:    cfg.Hostname,
		newHash:     newHash,
		separator:   cfg.Separator,
		timestamper: cfg.Timestamper,
	}, nil
}

// Forward rewrites addr for this hop. The output type is determined by the
// input: Plain becomes SRS0, SRS(SRS0) is promoted to SRS1 (the
// chain-shortening step), and SRS(SRS1) is re-addressed in place without
// stacking a further layer — there is no SRS2.
func (f *Forwarder) Forward(addr srsaddr.Forwardable) (srsaddr.Address, error) {
	switch v := addr.(type) {
	case srsaddr.Plain:
		return f.forwardPlain(v)
	case srsaddr.SRS:
		switch inner := v.Address.(type) {
		case srsaddr.SRS0:
			return f.forwardSRS0(inner)
		case srsaddr.SRS1:
			return f.forwardSRS1(inner)
		default:
			panic("srs: unreachable address variant")
		}
	default:
		panic("srs: unreachable forwardable variant")
	}
}

func (f *Forwarder) forwardPlain(p srsaddr.Plain) (srsaddr.Address, error) {
	out := srsaddr.SRS0{
		Sep:      f.separator,
		TT:       f.timestamper.NowAsTimestamp(),
		Hostname: p.Domain,
		Local:    p.Local,
		Domain:   f.hostname,
	}
	h, err := computeHash(f.secret, f.newHash, out)
	if err != nil {
		return nil, &HashingError{Err: err}
	}
	out.SRSHash = h
	return out, nil
}

func (f *Forwarder) forwardSRS0(a srsaddr.SRS0) (srsaddr.Address, error) {
	sep := string(a.Sep)
	opaqueLocal := sep + a.SRSHash + sep + a.TT + sep + a.Hostname + sep + a.Local

	out := srsaddr.SRS1{
		Sep:         f.separator,
		Hostname:    a.Domain,
		OpaqueLocal: opaqueLocal,
		Domain:      f.hostname,
	}
	h, err := computeHash(f.secret, f.newHash, out)
	if err != nil {
		return nil, &HashingError{Err: err}
	}
	out.SRSHash = h
	return out, nil
}

// forwardSRS1 does not stack a further layer: it readdresses the existing
// SRS1 for this hop without recomputing its hash, which only the hop named
// in a.Hostname can verify.
func (f *Forwarder) forwardSRS1(a srsaddr.SRS1) (srsaddr.Address, error) {
	out := a
	out.Domain = f.hostname
	return out, nil
}
