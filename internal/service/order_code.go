package service

import (
	"crypto/rand"
	"fmt"
)

// orderCodeAlphabet is Crockford base32: no I, L, O or U.
const orderCodeAlphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

const (
	orderCodePrefix = "ORD-"
	orderCodeLength = 10
)

// newOrderCode returns a random customer-facing order code such as ORD-7K3M9QX2PA.
func newOrderCode() (string, error) {
	buf := make([]byte, orderCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate order code: %w", err)
	}

	code := make([]byte, orderCodeLength)
	for i, b := range buf {
		// 256 is a multiple of 32, so the low five bits are uniform.
		code[i] = orderCodeAlphabet[b&31]
	}
	return orderCodePrefix + string(code), nil
}
