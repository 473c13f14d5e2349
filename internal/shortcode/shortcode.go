// Package shortcode generates the six letter codes that identify short URLs.
package shortcode

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

// Alphabet is the set of symbols a code is drawn from: A-Z then a-z.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// Length is the fixed length of every generated code.
const Length = 6

// DefaultMaxAttempts bounds how many fresh candidates Generate draws before giving up.
const DefaultMaxAttempts = 10

// ErrExhausted is returned when every candidate drawn already existed.
var ErrExhausted = errors.New("no unused short code found")

// ExistsFunc reports whether code is already persisted.
type ExistsFunc func(ctx context.Context, code string) (bool, error)

// Generator draws random codes and rejects ones that already exist.
type Generator struct {
	exists      ExistsFunc
	maxAttempts int
	random      func() (string, error)

	// OnCollision, when set, is called for every candidate that already existed.
	OnCollision func()
}

// NewGenerator returns a Generator that checks candidates with exists.
func NewGenerator(exists ExistsFunc) *Generator {
	return &Generator{
		exists:      exists,
		maxAttempts: DefaultMaxAttempts,
		random:      Random,
	}
}

// Generate returns a code that exists reported as unused. Each attempt draws a
// brand new Length-character code; a colliding candidate is discarded whole.
func (g *Generator) Generate(ctx context.Context) (string, error) {
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		code, err := g.random()
		if err != nil {
			return "", err
		}

		taken, err := g.exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check short code: %w", err)
		}
		if !taken {
			return code, nil
		}
		if g.OnCollision != nil {
			g.OnCollision()
		}
	}
	return "", ErrExhausted
}

var alphabetSize = big.NewInt(int64(len(Alphabet)))

// Random returns Length characters drawn uniformly from Alphabet.
func Random() (string, error) {
	buf := make([]byte, Length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("failed to read random source: %w", err)
		}
		buf[i] = Alphabet[n.Int64()]
	}
	return string(buf), nil
}

// Valid reports whether s has the shape of a generated code.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'A' || c > 'Z') && (c < 'a' || c > 'z') {
			return false
		}
	}
	return true
}
