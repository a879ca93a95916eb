package utils

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"math/big"
)

const slugAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

var ErrSlugExhausted = errors.New("could not generate unique slug")

func GenerateSlug(length int) (string, error) {
	return randomFrom(slugAlphabet, length)
}

// GenerateUniqueSlug draws slugs until exists reports a free one.
func GenerateUniqueSlug(length, maxAttempts int, exists func(string) (bool, error)) (string, error) {
	for i := 0; i < maxAttempts; i++ {
		slug, err := GenerateSlug(length)
		if err != nil {
			return "", err
		}
		taken, err := exists(slug)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
	}
	return "", ErrSlugExhausted
}

// RandomHex returns 2*n hex characters.
func RandomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func randomFrom(alphabet string, length int) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = alphabet[n.Int64()]
	}
	return string(out), nil
}
