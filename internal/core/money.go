// Package core holds the ledger's domain types and validation rules.
//
// This file contains parsing of user-supplied amounts. Amounts are whole
// rupees: no decimal separator, no sign, strictly positive.
package core

import (
	"strconv"
	"unicode"
)

// ParseAmount converts a form field into a positive whole-rupee amount.
//
// Leading/trailing whitespace is tolerated. Anything that is not a plain
// run of digits, or that parses to zero, is rejected with ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("50")  -> Money{50}, nil
//	ParseAmount(" 7 ") -> Money{7}, nil
//	ParseAmount("-5")  -> Money{}, ErrInvalidAmount
//	ParseAmount("1.5") -> Money{}, ErrInvalidAmount
func ParseAmount(s string) (Money, error) {
	start, end := 0, len(s)
	for start < end && unicode.IsSpace(rune(s[start])) {
		start++
	}
	for end > start && unicode.IsSpace(rune(s[end-1])) {
		end--
	}
	s = s[start:end]
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return Money{}, ErrInvalidAmount
		}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// Digits only, so this is an overflow.
		return Money{}, ErrInvalidAmount
	}
	if v <= 0 {
		return Money{}, ErrInvalidAmount
	}
	return Money{Rupees: v}, nil
}
