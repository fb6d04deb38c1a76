package srs

import (
	"errors"
	"testing"

	"github.com/oxrelay/srsd/internal/srsaddr"
	"github.com/oxrelay/srsd/internal/srstime"
)

// acceptAll stubs the Timestamper to accept any tt, per spec scenario 4.
type acceptAll struct{}

func (acceptAll) NowAsTimestamp() string       { return "aa" }
func (acceptAll) VerifyTimestamp(string) error { return nil }

func mustParse(t *testing.T, s string) srsaddr.Address {
	t.Helper()
	a, err := srsaddr.Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", s, err)
	}
	return a
}

func TestReceiverPeelsSRS0(t *testing.T) {
	r, err := NewReceiver(ReceiverConfig{
		Secret:      []byte("bsecret"),
		Hostname:    "b",
		Timestamper: acceptAll{},
	})
	if err != nil {
		t.Fatalf("NewReceiver: %v", err)
	}

	got, err := r.Receive(mustParse(t, "SRS0=M59m=TT=a=user@b"))
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if got != "user@a" {
		t.Errorf("Receive() = %q, want %q", got, "user@a")
	}
}

func TestReceiverPeelsSRS1(t *testing.T) {
	r, err := NewReceiver(ReceiverConfig{
		Secret:      []byte("csecret"),
		Hostname:    "c",
		Timestamper: acceptAll{},
	})
	if err != nil {
		t.Fatalf("NewReceiver: %v", err)
	}

	got, err := r.Receive(mustParse(t, "SRS1=nAM6=b==M59m=TT=a=user@c"))
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	want := "SRS0=M59m=TT=a=user@b"
	if got != want {
		t.Errorf("Receive() = %q, want %q", got, want)
	}
}

func TestReceiverWrongKeyReportsExpectedHash(t *testing.T) {
	r, err := NewReceiver(ReceiverConfig{
		Secret:      []byte("asecret"),
		Hostname:    "b",
		Timestamper: acceptAll{},
	})
	if err != nil {
		t.Fatalf("NewReceiver: %v", err)
	}

	_, err = r.Receive(mustParse(t, "SRS0=HHHH=TT=a=user@b"))
	var hashErr *HashVerificationError
	if !errors.As(err, &hashErr) {
		t.Fatalf("Receive() err = %v, want *HashVerificationError", err)
	}
	if hashErr.Expected != "uNjN" {
		t.Errorf("Expected = %q, want %q", hashErr.Expected, "uNjN")
	}
}

func TestReceiverCaseInsensitiveHash(t *testing.T) {
	r, err := NewReceiver(ReceiverConfig{
		Secret:      []byte("bsecret"),
		Hostname:    "b",
		Timestamper: acceptAll{},
	})
	if err != nil {
		t.Fatalf("NewReceiver: %v", err)
	}

	got, err := r.Receive(mustParse(t, "SRS0=m59m=TT=a=user@b"))
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if got != "user@a" {
		t.Errorf("Receive() = %q, want %q", got, "user@a")
	}
}

func TestReceiverTimestampOutOfWindow(t *testing.T) {
	want := &srstime.TimestampError{Delta: 6}
	r, err := NewReceiver(ReceiverConfig{
		Secret:      []byte("bsecret"),
		Hostname:    "b",
		Timestamper: srstime.ScriptedTimestamper{Timestamp: "aa", VerifyErr: want},
	})
	if err != nil {
		t.Fatalf("NewReceiver: %v", err)
	}

	_, err = r.Receive(mustParse(t, "SRS0=M59m=TT=a=user@b"))
	if !errors.Is(err, error(want)) {
		t.Errorf("Receive() err = %v, want %v", err, want)
	}
}

func TestNewReceiverRejectsBadHostname(t *testing.T) {
	_, err := NewReceiver(ReceiverConfig{Secret: []byte("k"), Hostname: "a=b"})
	var hostErr *HostnameError
	if !errors.As(err, &hostErr) {
		t.Fatalf("NewReceiver err = %v, want *HostnameError", err)
	}
}
