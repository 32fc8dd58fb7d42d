// Package core defines the domain records and result types shared by the
// insight engines and the service layer.
//
// This file contains display formatting for amounts in Vietnamese dong.
package core

import (
	"math"
	"strconv"
	"strings"
)

// FormatVND renders an amount as a whole-dong figure with vi-VN digit
// grouping: FormatVND(1500000) -> "1.500.000". Amounts are rounded half
// away from zero to the nearest dong.
func FormatVND(amount float64) string {
	n := int64(math.Round(math.Abs(amount)))
	digits := strconv.FormatInt(n, 10)

	var b strings.Builder
	if amount < 0 && n != 0 {
		b.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
		if len(digits) > lead {
			b.WriteByte('.')
		}
	}
	for i := lead; i < len(digits); i += 3 {
		b.WriteString(digits[i : i+3])
		if i+3 < len(digits) {
			b.WriteByte('.')
		}
	}
	return b.String()
}
