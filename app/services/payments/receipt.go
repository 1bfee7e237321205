package payments

import (
	"fmt"
	"time"
)

// ReceiptNumber renders a receipt number as a month letter (A for
// January through L for December) followed by a zero-padded sequence
// that resets each calendar year, e.g. "C00042".
func ReceiptNumber(t time.Time, seq int) string {
	letter := rune('A' + int(t.Month()) - 1)
	return fmt.Sprintf("%c%05d", letter, seq)
}

// ToSubunits converts a major-unit amount to the smallest currency unit
// the gateway expects (e.g. rupees to paise).
func ToSubunits(amount float64) int64 {
	return int64(amount*100 + 0.5)
}
