package transaction

import (
	"fmt"
	"time"
)

const orderIDPrefix = "WO"

// NewOrderID mints the gateway correlation key: a fixed prefix, the first
// eight characters of the payment id, and a millisecond timestamp. The time
// component keeps retries for the same payment unique.
func NewOrderID(paymentID string, at time.Time) string {
	frag := paymentID
	if len(frag) > 8 {
		frag = frag[:8]
	}
	return fmt.Sprintf("%s-%s-%d", orderIDPrefix, frag, at.UnixMilli())
}
