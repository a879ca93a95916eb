package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// HashFingerprint derives the stored visitor key from a client-reported
// browser fingerprint.
func HashFingerprint(salt, fingerprint string) string {
	mac := hmac.New(sha256.New, []byte(salt))
	mac.Write([]byte(fingerprint))
	return hex.EncodeToString(mac.Sum(nil))
}
