package http

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// formatEuros renders an amount of cents as a euro string like "€1250,00".
func formatEuros(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}

	euros := cents / 100
	rem := cents % 100

	out := strconv.FormatInt(euros, 10) + "," + fmt.Sprintf("%02d", rem)
	if neg {
		return "-€" + out
	}
	return "€" + out
}

// formatAmountInput renders cents as a plain decimal suitable for the value
// attribute of a number input, e.g. 180000 -> "1800.00".
func formatAmountInput(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

// sanitizeInput trims whitespace and strips control characters except tab,
// newline and carriage return.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// generateRequestID returns a short random ID used to correlate log lines
// belonging to the same request.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
