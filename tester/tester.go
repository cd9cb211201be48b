// Package tester contains mock hardware to make it easier to test SPI devices
// without a board attached.
//
// SPIDevice8 models the common "command byte, then payload" register
// protocol: the first byte of every transfer selects a register and a
// direction, and the device's internal pointer auto-increments for every
// following byte.
package tester // import "github.com/ajanata/tinygo-drivers/tester"

// Failer is used by the mock devices to abort when they are used in
// unexpected ways, such as a transfer while chip enable is inactive.
type Failer interface {
	// Fatalf prints the Printf-formatted message and exits the current
	// goroutine.
	Fatalf(f string, a ...interface{})
}
