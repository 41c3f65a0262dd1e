// Package conv formats integers into caller-owned buffers without fmt,
// for println-based diagnostics on the MCU.
package conv

const hexDigits = "0123456789ABCDEF"

// Hex writes n as exactly digits uppercase hex digits (no 0x) at the end of
// buf and returns the written tail. Higher digits of n are dropped.
func Hex(buf []byte, n uint64, digits int) []byte {
	if digits <= 0 || len(buf) < digits {
		return buf[:0]
	}
	i := len(buf)
	for j := 0; j < digits; j++ {
		i--
		buf[i] = hexDigits[n&0xF]
		n >>= 4
	}
	return buf[i:]
}

// U8Hex is Hex with two digits.
func U8Hex(buf []byte, n uint8) []byte { return Hex(buf, uint64(n), 2) }

// U16Hex is Hex with four digits.
func U16Hex(buf []byte, n uint16) []byte { return Hex(buf, uint64(n), 4) }

// Utoa writes n in base 10 at the end of buf and returns the written tail.
// 20 bytes hold any uint64.
func Utoa(buf []byte, n uint64) []byte {
	if len(buf) == 0 {
		return buf[:0]
	}
	i := len(buf)
	if n == 0 {
		i--
		buf[i] = '0'
		return buf[i:]
	}
	for n > 0 && i > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return buf[i:]
}
