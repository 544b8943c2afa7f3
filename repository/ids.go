package repository

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"
)

// newID returns a 20-hex-char random identifier.
func newID() string {
	b := make([]byte, 10)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// newOrderNumber derives a human-readable order number from the current
// timestamp plus a random suffix to disambiguate same-second orders.
func newOrderNumber(now time.Time) string {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	suffix := int64(0)
	if err == nil {
		suffix = n.Int64()
	}
	return fmt.Sprintf("ORD-%d-%04d", now.Unix(), suffix)
}
