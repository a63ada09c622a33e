package otp

import "github.com/xlzd/gotp"

// Generator produces opaque random codes.
type Generator interface {
	RandomSecret(length int) string
}

type GOTPGenerator struct{}

func NewGOTPGenerator() *GOTPGenerator {
	return &GOTPGenerator{}
}

// RandomSecret returns a random base32 string of the given length.
func (g *GOTPGenerator) RandomSecret(length int) string {
	return gotp.RandomSecret(length)
}
