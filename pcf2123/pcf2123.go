// Package pcf2123 implements a driver for the NXP PCF2123 SPI Real-Time Clock
// (RTC) and calendar.
//
// Every register access is one SPI transfer framed by the active-high chip
// enable (CE) line: a command byte holding the direction, the sub-address bit
// and the start register, followed by the payload. The chip auto-increments its
// register pointer, so the whole date and time is read or written in a single
// transfer.
//
// The driver keeps no copy of the registers. Every call reads what it needs
// from the chip. It is not safe for concurrent use, and callers sharing the SPI
// bus with other devices must serialize access themselves.
//
// Datasheet: https://www.nxp.com/docs/en/data-sheet/PCF2123.pdf
package pcf2123 // import "github.com/ajanata/tinygo-drivers/pcf2123"

import (
	"fmt"
	"time"

	"tinygo.org/x/drivers"
)

// DefaultTimeout is the timeout handed to the transfer function when Config
// does not set one.
const DefaultTimeout = 500 * time.Millisecond

// TransferFunc performs one blocking full-duplex exchange of len(w) bytes.
// The bytes clocked in are stored in r, which has the same length as w.
type TransferFunc func(w, r []byte, timeout time.Duration) error

// ChipEnableFunc drives the CE line; true selects the chip. machine.Pin.Set
// has this signature.
type ChipEnableFunc func(enable bool)

// Logger receives the driver's notes about chip events. *log.Logger
// satisfies it.
type Logger interface {
	Printf(format string, v ...interface{})
}

// Config holds the optional driver settings.
type Config struct {
	// Timeout for each transfer. Zero selects DefaultTimeout.
	Timeout time.Duration
	// Logger, if set, is told about oscillator stops, resets and alarm
	// re-arming.
	Logger Logger
	// OnAssertion is called with the *ContractError before the driver
	// panics on a broken precondition.
	OnAssertion func(error)
}

// Device wraps the SPI transfer and chip enable capabilities of a PCF2123.
type Device struct {
	xfer        TransferFunc
	ce          ChipEnableFunc
	timeout     time.Duration
	log         Logger
	onAssertion func(error)

	wbuf [registerCount + 1]byte
	rbuf [registerCount + 1]byte
}

// New creates a driver from the two capabilities and leaves CE de-asserted.
func New(xfer TransferFunc, ce ChipEnableFunc) (*Device, error) {
	if xfer == nil {
		return nil, ErrNoTransfer
	}
	if ce == nil {
		return nil, ErrNoChipEnable
	}
	d := &Device{
		xfer:    xfer,
		ce:      ce,
		timeout: DefaultTimeout,
	}
	d.ce(false)
	return d, nil
}

// NewSPI creates a driver on an already configured SPI bus (mode 0) and a CE
// pin setter, usually machine.Pin.Set of a pin configured as output.
//
// drivers.SPI transfers cannot time out, so Config.Timeout has no effect on a
// device made this way.
func NewSPI(bus drivers.SPI, ce func(high bool)) (*Device, error) {
	if bus == nil {
		return nil, ErrNoTransfer
	}
	return New(func(w, r []byte, _ time.Duration) error {
		return bus.Tx(w, r)
	}, ce)
}

// Configure applies c. Zero fields select the defaults.
func (d *Device) Configure(c Config) {
	d.require(d != nil, "Configure", "nil device")
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	d.timeout = c.Timeout
	d.log = c.Logger
	d.onAssertion = c.OnAssertion
}

// ReadRegisters reads len(data) consecutive registers starting at reg.
func (d *Device) ReadRegisters(reg Register, data []byte) error {
	d.require(d != nil, "ReadRegisters", "nil device")
	d.require(len(data) > 0, "ReadRegisters", "empty buffer")
	d.require(reg < registerCount, "ReadRegisters", "no such register")

	w, r := d.buffers(len(data) + 1)
	w[0] = cmdRead | cmdSubaddress | uint8(reg)
	for i := 1; i < len(w); i++ {
		w[i] = 0
	}
	if err := d.transfer(w, r); err != nil {
		return fmt.Errorf("pcf2123: read %v: %w", reg, err)
	}
	// r[0] was clocked in while the command went out
	copy(data, r[1:])
	return nil
}

// WriteRegisters writes data to consecutive registers starting at reg.
func (d *Device) WriteRegisters(reg Register, data []byte) error {
	d.require(d != nil, "WriteRegisters", "nil device")
	d.require(len(data) > 0, "WriteRegisters", "empty buffer")
	d.require(reg < registerCount, "WriteRegisters", "no such register")

	w, r := d.buffers(len(data) + 1)
	w[0] = cmdWrite | cmdSubaddress | uint8(reg)
	copy(w[1:], data)
	if err := d.transfer(w, r); err != nil {
		return fmt.Errorf("pcf2123: write %v: %w", reg, err)
	}
	return nil
}

// ReadRegister reads a single register.
func (d *Device) ReadRegister(reg Register) (uint8, error) {
	var buf [1]byte
	err := d.ReadRegisters(reg, buf[:])
	return buf[0], err
}

// WriteRegister writes a single register.
func (d *Device) WriteRegister(reg Register, v uint8) error {
	buf := [1]byte{v}
	return d.WriteRegisters(reg, buf[:])
}

// Reset issues a software reset. The chip needs time to settle afterwards;
// give the oscillator a couple of seconds before trusting the clock.
func (d *Device) Reset() error {
	err := d.WriteRegister(Control1, resetMagic)
	if err != nil {
		return err
	}
	d.logf("pcf2123: software reset")
	return nil
}

// transfer frames one exchange with CE. CE goes inactive again even when the
// transfer fails or panics.
func (d *Device) transfer(w, r []byte) error {
	d.ce(true)
	defer d.ce(false)
	return d.xfer(w, r, d.timeout)
}

func (d *Device) buffers(n int) (w, r []byte) {
	if n <= len(d.wbuf) {
		return d.wbuf[:n], d.rbuf[:n]
	}
	return make([]byte, n), make([]byte, n)
}

func (d *Device) require(ok bool, op, msg string) {
	if ok {
		return
	}
	err := &ContractError{Op: op, Msg: msg}
	if d != nil && d.onAssertion != nil {
		d.onAssertion(err)
	}
	panic(err)
}

func (d *Device) logf(format string, v ...interface{}) {
	if d.log != nil {
		d.log.Printf(format, v...)
	}
}
