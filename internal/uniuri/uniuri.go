// Package uniuri generates random URL safe strings for one time tokens.
package uniuri

import (
	"crypto/rand"
	"errors"
	"fmt"
)

// StateLen gives about 256 bits with the standard alphabet.
const StateLen = 43

// StdChars is the alphabet of generated strings. Every character is URL safe.
var StdChars = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_")

// ErrCharset is returned for an alphabet with fewer than 2 or more than 256 characters.
var ErrCharset = errors.New("uniuri: alphabet must have 2 to 256 characters")

// New returns a random string of StateLen standard characters.
func New() (string, error) {
	return NewLenChars(StateLen, StdChars)
}

// NewLenChars returns a random string of length characters taken from chars.
// Bytes above the largest multiple of len(chars) are skipped to avoid modulo bias.
func NewLenChars(length int, chars []byte) (string, error) {
	n := len(chars)
	if n < 2 || n > 256 {
		return "", ErrCharset
	}

	if length <= 0 {
		return "", nil
	}

	limit := 256 - (256 % n)
	out := make([]byte, 0, length)
	buf := make([]byte, length+length/2)

	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("uniuri: failed to read random bytes: %w", err)
		}

		for _, b := range buf {
			if int(b) >= limit {
				continue
			}

			out = append(out, chars[int(b)%n])
			if len(out) == length {
				break
			}
		}
	}

	return string(out), nil
}
