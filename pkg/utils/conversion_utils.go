package utils

import "strconv"

// StrToInt64 converts a string to an int64.
func StrToInt64(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

// StrToInt converts a string to an int, returning the fallback when the
// string is empty or malformed. Handy for optional query parameters.
func StrToInt(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	num, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return num
}
