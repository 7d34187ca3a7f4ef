package shopping

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"
)

// PickupCodeLength is the fixed length of a pickup code
const PickupCodeLength = 6

const pickupCodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// PickupCodeGenerator issues candidate pickup codes. Uniqueness is checked
// by the caller against the order book.
type PickupCodeGenerator interface {
	Generate() (string, error)
}

// PickupCodeRegistry reserves codes outside the process so that several
// instances never hand out the same code while it is in use.
type PickupCodeRegistry interface {
	// Reserve returns false when the code is already held
	Reserve(ctx context.Context, code string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, code string) error
}

// RandomPickupCodeGenerator draws codes from crypto/rand
type RandomPickupCodeGenerator struct{}

// Generate returns a random uppercase base36 code
func (RandomPickupCodeGenerator) Generate() (string, error) {
	max := big.NewInt(int64(len(pickupCodeAlphabet)))
	code := make([]byte, PickupCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = pickupCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}

// ValidPickupCode checks length and alphabet
func ValidPickupCode(code string) bool {
	if len(code) != PickupCodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if (c < '0' || c > '9') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}
