package srs

import (
	"strings"

	"golang.org/x/net/idna"

	"github.com/oxrelay/srsd/internal/srsaddr"
)

// HostnameError reports that a configured hostname is not usable as an
// SRS hop identifier: it must be ASCII-compatible (full RFC 5321/5322
// local-part/hostname compliance checking remains a TODO, as in the
// original) and must not contain any SRS separator character, since a
// receiver cannot know in advance which separator an inbound address used.
type HostnameError struct {
	Hostname string
	Err      error
}

func (e *HostnameError) Error() string {
	if e.Err != nil {
		return "srs: hostname " + e.Hostname + " is not usable: " + e.Err.Error()
	}
	return "srs: hostname " + e.Hostname + " contains invalid characters"
}

func (e *HostnameError) Unwrap() error { return e.Err }

func validateHostname(hostname string) error {
	if hostname == "" {
		return &HostnameError{Hostname: hostname}
	}
	for i := 0; i < len(hostname); i++ {
		if srsaddr.IsSeparator(hostname[i]) {
			return &HostnameError{Hostname: hostname}
		}
	}
	if _, err := idna.ToASCII(strings.ToLower(hostname)); err != nil {
		return &HostnameError{Hostname: hostname, Err: err}
	}
	return nil
}
