// Package convert provides safe integer conversion utilities.
package convert

import "fmt"

// IntToUintSafe converts an int to uint, panicking if negative. Use only for
// values guaranteed non-negative by the caller.
func IntToUintSafe(v int) uint {
	if v < 0 {
		panic(fmt.Sprintf("cannot convert negative int to uint: %d", v))
	}
	return uint(v)
}
