package srs

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/oxrelay/srsd/internal/srsaddr"
	"github.com/oxrelay/srsd/internal/srstime"
)

func TestForwarderPlainProducesSRS0(t *testing.T) {
	f, err := NewForwarder(ForwarderConfig{
		Secret:      []byte("bsecret"),
		Hostname:    "b",
		Separator:   '=',
		Timestamper: srstime.ScriptedTimestamper{Timestamp: "TT"},
	})
	if err != nil {
		t.Fatalf("NewForwarder: %v", err)
	}

	got, err := f.Forward(srsaddr.Plain{Local: "user", Domain: "a"})
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	want := srsaddr.SRS0{
		Sep: '=', SRSHash: "M59m", TT: "TT", Hostname: "a", Local: "user", Domain: "b",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Forward() mismatch (-want +got):\n%s", diff)
	}
}

func TestForwarderSRS0PromotesToSRS1(t *testing.T) {
	f, err := NewForwarder(ForwarderConfig{
		Secret:      []byte("csecret"),
		Hostname:    "c",
		Separator:   '=',
		Timestamper: srstime.ScriptedTimestamper{},
	})
	if err != nil {
		t.Fatalf("NewForwarder: %v", err)
	}

	a, err := srsaddr.Parse("SRS0=M59m=TT=a=user@b")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	got, err := f.Forward(srsaddr.SRS{Address: a})
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	want := srsaddr.SRS1{
		Sep: '=', SRSHash: "nAM6", Hostname: "b", OpaqueLocal: "=M59m=TT=a=user", Domain: "c",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Forward() mismatch (-want +got):\n%s", diff)
	}

	peeled := srsaddr.Serialize(got)
	if peeled != "SRS1=nAM6=b==M59m=TT=a=user@c" {
		t.Errorf("Serialize(Forward()) = %q, want %q", peeled, "SRS1=nAM6=b==M59m=TT=a=user@c")
	}
}

func TestForwarderSRS1DoesNotStack(t *testing.T) {
	f, err := NewForwarder(ForwarderConfig{
		Secret:      []byte("dsecret"),
		Hostname:    "d",
		Separator:   '+',
		Timestamper: srstime.ScriptedTimestamper{},
	})
	if err != nil {
		t.Fatalf("NewForwarder: %v", err)
	}

	a, err := srsaddr.Parse("SRS1=nAM6=b==M59m=TT=a=user@c")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	got, err := f.Forward(srsaddr.SRS{Address: a})
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	want := srsaddr.SRS1{
		Sep: '=', SRSHash: "nAM6", Hostname: "b", OpaqueLocal: "=M59m=TT=a=user", Domain: "d",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Forward() mismatch (-want +got):\n%s", diff)
	}
}

func TestForwardReceiveRoundTrip(t *testing.T) {
	f, err := NewForwarder(ForwarderConfig{
		Secret:      []byte("shared"),
		Hostname:    "b",
		Separator:   '=',
		Timestamper: &srstime.SystemTimestamper{MaxValidDelta: 3},
	})
	if err != nil {
		t.Fatalf("NewForwarder: %v", err)
	}
	r, err := NewReceiver(ReceiverConfig{
		Secret:      []byte("shared"),
		Hostname:    "b",
		Timestamper: &srstime.SystemTimestamper{MaxValidDelta: 3},
	})
	if err != nil {
		t.Fatalf("NewReceiver: %v", err)
	}

	srs0, err := f.Forward(srsaddr.Plain{Local: "user", Domain: "a"})
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}

	got, err := r.Receive(srs0)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if got != "user@a" {
		t.Errorf("Receive(Forward(Plain)) = %q, want %q", got, "user@a")
	}
}

func TestForwardChainShortcutsToFirstHop(t *testing.T) {
	// a -> b -> c: the bounce path from c peels directly to the SRS0 that
	// hop a emitted, never re-exposing hop b's own address.
	fa, err := NewForwarder(ForwarderConfig{Secret: []byte("ka"), Hostname: "a", Separator: '=', Timestamper: srstime.ScriptedTimestamper{Timestamp: "TT"}})
	if err != nil {
		t.Fatalf("NewForwarder a: %v", err)
	}
	fb, err := NewForwarder(ForwarderConfig{Secret: []byte("kb"), Hostname: "b", Separator: '=', Timestamper: srstime.ScriptedTimestamper{}})
	if err != nil {
		t.Fatalf("NewForwarder b: %v", err)
	}
	fc, err := NewForwarder(ForwarderConfig{Secret: []byte("kc"), Hostname: "c", Separator: '=', Timestamper: srstime.ScriptedTimestamper{}})
	if err != nil {
		t.Fatalf("NewForwarder c: %v", err)
	}

	step1, err := fa.Forward(srsaddr.Plain{Local: "user", Domain: "origin"})
	if err != nil {
		t.Fatalf("fa.Forward: %v", err)
	}
	step2, err := fb.Forward(srsaddr.SRS{Address: step1})
	if err != nil {
		t.Fatalf("fb.Forward: %v", err)
	}
	step3, err := fc.Forward(srsaddr.SRS{Address: step2})
	if err != nil {
		t.Fatalf("fc.Forward: %v", err)
	}

	rb, err := NewReceiver(ReceiverConfig{Secret: []byte("kb"), Hostname: "b", Timestamper: srstime.ScriptedTimestamper{}})
	if err != nil {
		t.Fatalf("NewReceiver b: %v", err)
	}

	got, err := rb.Receive(step3)
	if err != nil {
		t.Fatalf("rb.Receive: %v", err)
	}
	if got != srsaddr.Serialize(step1) {
		t.Errorf("chain peel = %q, want %q", got, srsaddr.Serialize(step1))
	}
}

func TestNewForwarderRejectsBadSeparator(t *testing.T) {
	_, err := NewForwarder(ForwarderConfig{Secret: []byte("k"), Hostname: "a", Separator: '!'})
	var sepErr *InvalidSeparatorError
	if !errors.As(err, &sepErr) {
		t.Fatalf("NewForwarder err = %v, want *InvalidSeparatorError", err)
	}
}
