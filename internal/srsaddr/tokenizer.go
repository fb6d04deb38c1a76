package srsaddr

import "strings"

// tokenKind identifies the kind of a tokenizer token.
type tokenKind int

const (
	tokSRSSeparator tokenKind = iota
	tokLocalDomainSeparator
	tokText
)

// token is a single lexeme from the tokenizer: either one of the two
// structural separators, or a run of plain text between separators. The
// distinguished SRS0/SRS1 prefix is recognized by Parse directly via a
// fixed-offset string slice, before the tokenizer ever sees the input, so
// the tokenizer itself has no notion of it — a would-be prefix run inside
// local/opaque_local/domain is just another text token.
type token struct {
	kind tokenKind
	text string
}

// literal reconstructs the verbatim substring a token was lexed from, given
// the separator character in effect.
func (t token) literal(sep byte) string {
	switch t.kind {
	case tokSRSSeparator:
		return string(sep)
	case tokLocalDomainSeparator:
		return "@"
	default:
		return t.text
	}
}

// tokenizer lexes an SRS address body (the part at and after the
// separator that follows the SRS0/SRS1 prefix) into a stream of tokens,
// splitting on the given separator and on '@'.
type tokenizer struct {
	input string
	sep   byte
	idx   int
}

func newTokenizer(input string, sep byte) *tokenizer {
	return &tokenizer{input: input, sep: sep}
}

// next returns the next token, or ok=false at end of input.
func (t *tokenizer) next() (token, bool) {
	if t.idx >= len(t.input) {
		return token{}, false
	}

	c := t.input[t.idx]
	if c == t.sep {
		t.idx++
		return token{kind: tokSRSSeparator}, true
	}
	if c == '@' {
		t.idx++
		return token{kind: tokLocalDomainSeparator}, true
	}

	rest := t.input[t.idx:]
	end := len(rest)
	if i := strings.IndexByte(rest, t.sep); i >= 0 && i < end {
		end = i
	}
	if i := strings.IndexByte(rest, '@'); i >= 0 && i < end {
		end = i
	}

	text := rest[:end]
	t.idx += end

	return token{kind: tokText, text: text}, true
}
