//go:build go1.20

package h11

import "unsafe"

// b2s converts a byte slice to a string without copying. The result
// must not outlive the backing array, and the backing array must not
// be mutated afterwards.
func b2s(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(&b[0], len(b))
}

// s2b converts a string to a byte slice without copying. Callers must
// not mutate the result.
func s2b(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}
