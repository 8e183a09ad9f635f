package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateRedemptionCode returns a code in the form ECO-<unix ms>-<RAND6>.
// The millisecond timestamp plus a random suffix keeps codes unique without a
// database round-trip; the unique index on redemption_code is the backstop.
func GenerateRedemptionCode() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:6]
	return fmt.Sprintf("ECO-%d-%s", time.Now().UnixMilli(), suffix)
}
