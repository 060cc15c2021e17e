package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

const pnrAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GeneratePNR creates a human-readable booking reference, e.g. BUS7KQ2M9XT.
func GeneratePNR() string {
	code := make([]byte, 8)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(pnrAlphabet))))
		if err != nil {
			// Fall back to a timestamp-based reference if the random
			// source is unavailable.
			return fmt.Sprintf("BUS%d", time.Now().UnixNano())
		}
		code[i] = pnrAlphabet[n.Int64()]
	}
	return "BUS" + string(code)
}

// GenerateLockerID creates an opaque session token for callers that do
// not supply their own.
func GenerateLockerID() string {
	return "lkr_" + uuid.NewString()
}
