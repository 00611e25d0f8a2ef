package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// SHA256Hex хэширует части, разделяя их нулевым байтом, чтобы ("ab","c") != ("a","bc").
func SHA256Hex(parts ...string) string {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}
