package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateOTPCode returns a uniformly random 6-digit code in
// [OTPMin, OTPMax]. Codes never start with zero so the client can treat
// them as plain integers.
func GenerateOTPCode() string {
	span := big.NewInt(int64(OTPMax - OTPMin + 1))
	n, _ := rand.Int(rand.Reader, span)
	return fmt.Sprintf("%d", OTPMin+int(n.Int64()))
}
