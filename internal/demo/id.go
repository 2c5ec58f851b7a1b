package demo

import (
	"crypto/rand"
	"io"
)

const (
	idLength   = 8
	idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

	// Largest multiple of len(idAlphabet) that fits in a byte. Bytes at or
	// above it are redrawn so every character is equally likely.
	idByteLimit = 256 - 256%len(idAlphabet)
)

// NewID returns an 8-character lowercase alphanumeric page id.
func NewID() string {
	id, err := newIDFrom(rand.Reader)
	if err != nil {
		panic("demo: crypto/rand failed: " + err.Error())
	}
	return id
}

func newIDFrom(r io.Reader) (string, error) {
	b := make([]byte, 0, idLength)
	buf := make([]byte, idLength)
	for len(b) < idLength {
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", err
		}
		for _, c := range buf {
			if int(c) >= idByteLimit {
				continue
			}
			b = append(b, idAlphabet[int(c)%len(idAlphabet)])
			if len(b) == idLength {
				break
			}
		}
	}
	return string(b), nil
}
