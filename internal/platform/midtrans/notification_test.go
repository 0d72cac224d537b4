package midtrans

import (
	"crypto/sha512"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVerifySignature(t *testing.T) {
	const serverKey = "SB-Mid-server-test"
	n := Notification{
		OrderID:     "WO-abcd1234-1700000000000",
		StatusCode:  "200",
		GrossAmount: "5000000.00",
	}

	sum := sha512.Sum512([]byte(n.OrderID + n.StatusCode + n.GrossAmount + serverKey))
	n.SignatureKey = hex.EncodeToString(sum[:])
	require.True(t, n.VerifySignature(serverKey))

	// Any field changing invalidates the signature.
	tampered := n
	tampered.GrossAmount = "1.00"
	require.False(t, tampered.VerifySignature(serverKey))

	// Comparison is case-sensitive over the hex string.
	upper := n
	upper.SignatureKey = strings.ToUpper(n.SignatureKey)
	require.False(t, upper.VerifySignature(serverKey))

	require.False(t, n.VerifySignature("wrong-key"))
}
