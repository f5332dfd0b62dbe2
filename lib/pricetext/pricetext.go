// Package pricetext normalizes the free-form price and amount strings
// found on discount listings into comparable numbers.
package pricetext

import (
	"regexp"
	"strconv"
	"strings"
)

var numberRegex = regexp.MustCompile(`\d+(?:\.\d+)?`)

// ParseAmount pulls the first decimal numeral out of an amount string,
// so "160 g" becomes 160. ok is false when the text carries no numeral
// at all, which is distinct from an amount that genuinely reads zero.
func ParseAmount(s string) (float64, bool) {
	match := numberRegex.FindString(s)
	if match == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// ParsePrice converts a price string like "29,90 Kč" to 29.90. The
// source site writes comma decimal separators and suffixes the currency.
func ParsePrice(s string) (float64, bool) {
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.ReplaceAll(s, "Kč", "")
	s = strings.TrimSpace(s)
	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// PricePerUnit compares differently sized packages. A non-positive
// amount yields 0 rather than an infinity from the division.
func PricePerUnit(price, amount float64) float64 {
	if amount > 0 {
		return price / amount
	}
	return 0
}
