// Package codec implements the two email-safe binary encodings SRS relies
// on: a base64 variant with a filesystem/URL-safe alphabet and no padding,
// and a compact ten-bit base32 encoding used for the SRS timestamp.
package codec

import "fmt"

const base64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// PaddingError reports that an input's length was not a multiple of the
// given number of bytes.
type PaddingError int

func (e PaddingError) Error() string {
	return fmt.Sprintf("codec: input length must be a multiple of %d bytes", int(e))
}

// DecodingError reports a byte outside the base64 alphabet.
type DecodingError struct {
	Byte byte
}

func (e DecodingError) Error() string {
	return fmt.Sprintf("codec: invalid base64 byte %q", e.Byte)
}

var base64Reverse = func() [256]int8 {
	var t [256]int8
	for i := range t {
		t[i] = -1
	}
	for i := 0; i < len(base64Alphabet); i++ {
		t[base64Alphabet[i]] = int8(i)
	}
	return t
}()

// EncodeBase64 encodes b using the email-safe alphabet. len(b) must be a
// multiple of 3; EncodeBase64 never emits padding.
func EncodeBase64(b []byte) (string, error) {
	if len(b) == 0 {
		return "", nil
	}
	if len(b)%3 != 0 {
		return "", PaddingError(3)
	}

	out := make([]byte, 0, (len(b)/3)*4)
	for i := 0; i < len(b); i += 3 {
		b0, b1, b2 := b[i], b[i+1], b[i+2]
		out = append(out,
			base64Alphabet[b0>>2],
			base64Alphabet[(b0&0x3)<<4|(b1>>4)],
			base64Alphabet[(b1&0x0f)<<2|(b2>>6)],
			base64Alphabet[b2&0x3f],
		)
	}
	return string(out), nil
}

// DecodeBase64 decodes s from the email-safe alphabet. len(s) must be a
// multiple of 4.
func DecodeBase64(s string) ([]byte, error) {
	if len(s) == 0 {
		return nil, nil
	}
	if len(s)%4 != 0 {
		return nil, PaddingError(4)
	}

	out := make([]byte, 0, (len(s)/4)*3)
	for i := 0; i < len(s); i += 4 {
		var v [4]int8
		for j := 0; j < 4; j++ {
			c := s[i+j]
			v[j] = base64Reverse[c]
			if v[j] < 0 {
				return nil, DecodingError{Byte: c}
			}
		}
		out = append(out,
			byte(v[0])<<2|byte(v[1])>>4,
			byte(v[1])<<4|byte(v[2])>>2,
			byte(v[2])<<6|byte(v[3]),
		)
	}
	return out, nil
}
