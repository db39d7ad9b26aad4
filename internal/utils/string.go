package utils

import (
	"strings"
	"unicode"
)

// IndexIgnoreCase returns the byte index of the first case-insensitive
// occurrence of substr in s, or -1
func IndexIgnoreCase(s, substr string) int {
	return strings.Index(strings.ToLower(s), strings.ToLower(substr))
}

// CountSpaces counts plain space characters in a string
func CountSpaces(s string) int {
	return strings.Count(s, " ")
}

// ContainsAny checks if a string contains any rune from the blacklist
func ContainsAny(s, blacklist string) bool {
	return strings.ContainsAny(s, blacklist)
}

// IsLettersAndDigits reports whether s is non-empty and made only of
// letters and digits
func IsLettersAndDigits(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// FirstLineOf returns s up to (not including) the first newline
func FirstLineOf(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// UpperFirst capitalizes the first rune of s, the way wiki titles are
// case-normalized on their first character
func UpperFirst(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// FormatWithCommas renders an int with thousands separators for display
func FormatWithCommas(n int) string {
	if n < 0 {
		return "-" + FormatWithCommas(-n)
	}
	if n < 1000 {
		return itoa(n)
	}
	return FormatWithCommas(n/1000) + "," + pad3(n%1000)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

func pad3(n int) string {
	s := itoa(n)
	for len(s) < 3 {
		s = "0" + s
	}
	return s
}
