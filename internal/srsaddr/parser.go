package srsaddr

import "strings"

// Parse parses a single SRS-formatted address (no surrounding whitespace;
// trimming is the transport layer's job). It accepts any of '=', '+', '-'
// as the SRS separator, discovered from the byte at position 4.
func Parse(input string) (Address, error) {
	if len(input) < 5 {
		return nil, &ParseError{Kind: SRSPrefixError}
	}

	var version int
	switch input[:4] {
	case "SRS0":
		version = 0
	case "SRS1":
		version = 1
	default:
		return nil, &ParseError{Kind: SRSPrefixError}
	}

	sep := input[4]
	if !IsSeparator(sep) {
		return nil, &ParseError{Kind: SRSPrefixError}
	}

	p := &parser{t: newTokenizer(input[4:], sep), sep: sep}
	if version == 0 {
		return p.parseSRS0()
	}
	return p.parseSRS1()
}

type parser struct {
	t   *tokenizer
	sep byte
}

func (p *parser) expectSeparator(want tokenKind) error {
	tok, ok := p.t.next()
	if !ok || tok.kind != want {
		if want == tokSRSSeparator {
			return &ParseError{Kind: ExpectedSRSSeparator}
		}
		return &ParseError{Kind: NoDomainInAddress}
	}
	return nil
}

func (p *parser) expectNonemptyText() (string, error) {
	tok, ok := p.t.next()
	if !ok || tok.kind != tokText || tok.text == "" {
		return "", &ParseError{Kind: ExpectedNonemptyToken}
	}
	return tok.text, nil
}

// accumulateUntilAt collects the verbatim text of every token up to (but
// not including) the next LocalDomainSeparator token, reconstituting any
// embedded separators. It reports NoDomainInAddress if the input is
// exhausted before an '@' is found.
func (p *parser) accumulateUntilAt() (string, error) {
	var b strings.Builder
	for {
		tok, ok := p.t.next()
		if !ok {
			return "", &ParseError{Kind: NoDomainInAddress}
		}
		if tok.kind == tokLocalDomainSeparator {
			return b.String(), nil
		}
		b.WriteString(tok.literal(p.sep))
	}
}

// accumulateRest collects the verbatim text of every remaining token,
// reconstituting any embedded separators or further '@' signs. Used for
// the domain-remainder, which MTAs may have appended tags to.
func (p *parser) accumulateRest() string {
	var b strings.Builder
	for {
		tok, ok := p.t.next()
		if !ok {
			return b.String()
		}
		b.WriteString(tok.literal(p.sep))
	}
}

func (p *parser) parseSRS0() (Address, error) {
	if err := p.expectSeparator(tokSRSSeparator); err != nil {
		return nil, err
	}
	hash, err := p.expectNonemptyText()
	if err != nil {
		return nil, err
	}
	if err := p.expectSeparator(tokSRSSeparator); err != nil {
		return nil, err
	}
	tt, err := p.expectNonemptyText()
	if err != nil {
		return nil, err
	}
	if err := p.expectSeparator(tokSRSSeparator); err != nil {
		return nil, err
	}
	hostname, err := p.expectNonemptyText()
	if err != nil {
		return nil, err
	}
	if err := p.expectSeparator(tokSRSSeparator); err != nil {
		return nil, err
	}
	local, err := p.accumulateUntilAt()
	if err != nil {
		return nil, err
	}
	domain := p.accumulateRest()

	return SRS0{
		Sep:      p.sep,
		SRSHash:  hash,
		TT:       tt,
		Hostname: hostname,
		Local:    local,
		Domain:   domain,
	}, nil
}

func (p *parser) parseSRS1() (Address, error) {
	if err := p.expectSeparator(tokSRSSeparator); err != nil {
		return nil, err
	}
	hash, err := p.expectNonemptyText()
	if err != nil {
		return nil, err
	}
	if err := p.expectSeparator(tokSRSSeparator); err != nil {
		return nil, err
	}
	hostname, err := p.expectNonemptyText()
	if err != nil {
		return nil, err
	}
	if err := p.expectSeparator(tokSRSSeparator); err != nil {
		return nil, err
	}
	opaqueLocal, err := p.accumulateUntilAt()
	if err != nil {
		return nil, err
	}
	if opaqueLocal == "" {
		return nil, &ParseError{Kind: ExpectedNonemptyLocalPart}
	}
	domain := p.accumulateRest()

	return SRS1{
		Sep:         p.sep,
		SRSHash:     hash,
		Hostname:    hostname,
		OpaqueLocal: opaqueLocal,
		Domain:      domain,
	}, nil
}
