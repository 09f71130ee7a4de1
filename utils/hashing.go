package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

func Sha256hex(b []byte) (sha256_hash string) {
	digest := sha256.Sum256(b)
	sha256_hash = hex.EncodeToString(digest[:])
	return
}
