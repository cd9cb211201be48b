// Package bcd converts between binary values and packed binary-coded decimal,
// the encoding most RTC chips use for their time and date registers.
package bcd

// Encode converts a value in 0..99 to packed BCD: the tens digit in the high
// nibble and the ones digit in the low nibble. Values above 99 are not
// representable and produce garbage.
func Encode(v uint8) uint8 {
	return (v/10)<<4 | v%10
}

// Decode converts a packed BCD byte back to binary. Nibbles are not checked,
// so a nibble of 0xA-0xF decodes to a digit of 10-15.
func Decode(b uint8) uint8 {
	return (b>>4)*10 + b&0x0F
}

// Valid reports whether both nibbles of b are decimal digits.
func Valid(b uint8) bool {
	return b&0x0F <= 9 && b>>4 <= 9
}
