// Package srstime implements the SRS timestamp: a ten-bit day counter,
// base32-encoded, that bounds how long a rewritten SRS0 address stays
// valid for replay.
package srstime

import (
	"fmt"
	"math"
	"time"

	"github.com/oxrelay/srsd/internal/codec"
)

const secondsPerDay = 60 * 60 * 24

// Timestamper mints and verifies SRS timestamps. Forwarder and Receiver
// depend on it as an injected capability so production code can use the
// system clock while tests substitute a scripted double.
type Timestamper interface {
	// NowAsTimestamp returns the current day counter, base32-encoded.
	NowAsTimestamp() string
	// VerifyTimestamp decodes ts and checks it against the validity
	// window. It returns nil on success, or a *TimestampError.
	VerifyTimestamp(ts string) error
}

// TimestampError reports a timestamp outside the configured validity
// window, or one that failed to decode (Delta is math.MaxInt32 in that
// case, per spec).
type TimestampError struct {
	Delta int32
}

func (e *TimestampError) Error() string {
	return fmt.Sprintf("srstime: timestamp delta %d days exceeds validity window", e.Delta)
}

// SystemTimestamper is the production Timestamper: it reads the system
// clock and enforces MaxValidDelta days of drift in either direction.
//
// The day counter wraps modulo 1024 (about every 2.8 years); this is an
// accepted spec-level trade-off, not a bug.
type SystemTimestamper struct {
	MaxValidDelta int32

	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

func (s *SystemTimestamper) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func dayCounter(t time.Time) uint16 {
	days := t.Unix() / secondsPerDay
	return uint16(((days % 1024) + 1024) % 1024)
}

func (s *SystemTimestamper) NowAsTimestamp() string {
	return codec.EncodeTimestamp(dayCounter(s.now()))
}

func (s *SystemTimestamper) VerifyTimestamp(ts string) error {
	v, err := codec.DecodeTimestamp(ts)
	if err != nil {
		return &TimestampError{Delta: math.MaxInt32}
	}

	today := int32(dayCounter(s.now()))
	delta := today - int32(v)
	if delta < 0 {
		delta = -delta
	}
	if delta > s.MaxValidDelta {
		return &TimestampError{Delta: delta}
	}
	return nil
}

// ScriptedTimestamper is a test double that returns canned results,
// matching spec's requirement that tests be able to substitute a mock
// Timestamper.
type ScriptedTimestamper struct {
	Timestamp string
	VerifyErr error
}

func (s ScriptedTimestamper) NowAsTimestamp() string { return s.Timestamp }

func (s ScriptedTimestamper) VerifyTimestamp(string) error { return s.VerifyErr }
