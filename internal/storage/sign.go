package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// Sign produces the signature for a stored path valid until expiry.
func Sign(secret, storedPath string, expiry time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%s\n%d", storedPath, expiry.Unix())
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a signature produced by Sign and that it has not expired.
func Verify(secret, storedPath, expStr, sig string, now time.Time) bool {
	exp, err := strconv.ParseInt(expStr, 10, 64)
	if err != nil {
		return false
	}
	if now.Unix() > exp {
		return false
	}
	want := Sign(secret, storedPath, time.Unix(exp, 0))
	return hmac.Equal([]byte(want), []byte(sig))
}
