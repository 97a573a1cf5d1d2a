package order

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// DiscountPercent is the whole-number percentage taken off realPrice,
// rounded half up. It is 0 unless 0 < discounted < real.
func DiscountPercent(realPrice, discountedPrice int64) int {
	if realPrice <= 0 || discountedPrice <= 0 || discountedPrice >= realPrice {
		return 0
	}
	off := decimal.NewFromInt(realPrice - discountedPrice)
	return int(off.Div(decimal.NewFromInt(realPrice)).Mul(hundred).Round(0).IntPart())
}

// GroupIndian formats n with Indian digit grouping: the last three digits,
// then pairs (12,34,567).
func GroupIndian(n int64) string {
	neg := n < 0
	digits := strconv.FormatInt(n, 10)
	if neg {
		digits = digits[1:]
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	if len(digits) <= 3 {
		b.WriteString(digits)
		return b.String()
	}

	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	if len(head)%2 == 1 {
		b.WriteString(head[:1])
		b.WriteByte(',')
		head = head[1:]
	}
	for i := 0; i < len(head); i += 2 {
		b.WriteString(head[i : i+2])
		b.WriteByte(',')
	}
	b.WriteString(tail)
	return b.String()
}
