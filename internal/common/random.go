package common

import (
	"crypto/rand"
	"math/big"
)

// RandomDigits returns n decimal digits drawn independently from crypto/rand.
// Every string in the 10^n space is equally likely, leading zeros included.
func RandomDigits(n int) (string, error) {
	buf := make([]byte, n)
	ten := big.NewInt(10)
	for i := range buf {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		buf[i] = byte('0' + d.Int64())
	}
	return string(buf), nil
}
