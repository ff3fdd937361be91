package domain

import "strings"

// TestCase is one input/expected-output pair owned by the caller.
type TestCase struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// OutputsMatch compares actual and expected output after trimming leading and
// trailing whitespace. Internal whitespace is significant.
func OutputsMatch(actual, expected string) bool {
	return strings.TrimSpace(actual) == strings.TrimSpace(expected)
}
