package util

import (
	"math"
	"math/bits"
)

func RoundFloat(val float64, precision uint) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}

func ReverseG[T any](arr []T) []T {
	copyArr := make([]T, len(arr)) // should do on the copy )
	copy(copyArr, arr)
	for i, j := 0, len(copyArr)-1; i < j; i, j = i+1, j-1 {
		copyArr[i], copyArr[j] = copyArr[j], copyArr[i]
	}
	return copyArr
}

// BitsNeeded returns the minimum field width able to hold v. Zero still takes one bit.
func BitsNeeded(v uint64) uint8 {
	n := bits.Len64(v)
	if n == 0 {
		return 1
	}
	return uint8(n)
}

// EscapableNumberBits returns the encoded size of v as an escapable number.
func EscapableNumberBits(v uint32, escapeBits uint8) uint64 {
	if v < ESCAPE_MARKER {
		return ESCAPE_PREFIX_BITS
	}
	return ESCAPE_PREFIX_BITS + uint64(escapeBits)
}
