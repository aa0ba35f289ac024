package region

import "fmt"

// Precondition violations are programming errors, not recoverable
// conditions: they panic rather than return an error.

func panicNilRegion() {
	panic("region: operation on nil region")
}

func panicNotPowerOfTwo(a uintptr) {
	panic(fmt.Sprintf("region: alignment %d is not a power of two", a))
}

func panicParentIndex(i, n int) {
	panic(fmt.Sprintf("region: parent index %d out of range [0,%d)", i, n))
}

func isPowerOfTwo(a uintptr) bool {
	return a != 0 && a&(a-1) == 0
}
