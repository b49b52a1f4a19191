package service

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"time"
)

const (
	orderIDPrefix    = "ORD"
	orderIDSuffixLen = 9
	orderIDAlphabet  = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// NewOrderID returns "ORD" + unix millis + 9 random base36 characters, e.g. ORD1760000000000K3J9QX2ZA.
// Uniqueness is finally enforced by the orders.order_id unique index.
func NewOrderID() string {
	var b strings.Builder
	b.Grow(len(orderIDPrefix) + 13 + orderIDSuffixLen)
	b.WriteString(orderIDPrefix)
	b.WriteString(strconv.FormatInt(time.Now().UnixMilli(), 10))

	base := big.NewInt(int64(len(orderIDAlphabet)))
	for i := 0; i < orderIDSuffixLen; i++ {
		n, err := rand.Int(rand.Reader, base)
		if err != nil {
			// crypto/rand does not fail on supported platforms; fall back to the clock.
			n = big.NewInt(time.Now().UnixNano() % int64(len(orderIDAlphabet)))
		}
		b.WriteByte(orderIDAlphabet[n.Int64()])
	}
	return b.String()
}
