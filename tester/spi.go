package tester

// SPIRegisters is the size of the register file of an SPIDevice8. Register
// addresses wrap around after the last one.
const SPIRegisters = 16

const (
	spiRead       = 0x80
	spiSubaddress = 0x10
	spiAddrMask   = 0x0F
)

// SPIEventKind tells what happened on the mock bus.
type SPIEventKind uint8

const (
	// EventSelect is chip enable going active.
	EventSelect SPIEventKind = iota
	// EventDeselect is chip enable going inactive.
	EventDeselect
	// EventTx is one framed transfer.
	EventTx
)

func (k SPIEventKind) String() string {
	switch k {
	case EventSelect:
		return "select"
	case EventDeselect:
		return "deselect"
	case EventTx:
		return "tx"
	}
	return "unknown"
}

// SPIEvent is one entry of the bus log.
type SPIEvent struct {
	Kind SPIEventKind
	// W is a copy of the bytes sent for an EventTx.
	W []byte
}

// IsRead reports whether the transfer was a register read.
func (e SPIEvent) IsRead() bool {
	return e.Kind == EventTx && len(e.W) > 0 && e.W[0]&spiRead != 0
}

// IsWrite reports whether the transfer was a register write.
func (e SPIEvent) IsWrite() bool {
	return e.Kind == EventTx && len(e.W) > 0 && e.W[0]&spiRead == 0
}

// Register returns the start register of the transfer.
func (e SPIEvent) Register() uint8 {
	if len(e.W) == 0 {
		return 0
	}
	return e.W[0] & spiAddrMask
}

// Payload returns the bytes following the command byte.
func (e SPIEvent) Payload() []byte {
	if len(e.W) < 2 {
		return nil
	}
	return e.W[1:]
}

// SPIDevice8 is a mock SPI peripheral with 8-bit auto-incrementing registers
// and an active-high chip enable.
type SPIDevice8 struct {
	c Failer
	// Registers holds the device registers. It can be inspected
	// or changed as desired for testing.
	Registers [SPIRegisters]uint8
	// WriteMask marks flag bits that a write can only clear: for a masked
	// bit the new value is old AND written.
	WriteMask [SPIRegisters]uint8
	// If Err is non-nil, it is returned from every transfer and the
	// registers are left alone.
	Err error
	// Events is the log of chip enable changes and transfers.
	Events []SPIEvent

	selected bool
}

// NewSPIDevice8 returns a new mock SPI device with all registers zero and
// chip enable inactive.
func NewSPIDevice8(c Failer) *SPIDevice8 {
	return &SPIDevice8{c: c}
}

// SetCE drives the chip enable line. It has the signature of machine.Pin.Set.
func (d *SPIDevice8) SetCE(high bool) {
	d.selected = high
	if high {
		d.Events = append(d.Events, SPIEvent{Kind: EventSelect})
	} else {
		d.Events = append(d.Events, SPIEvent{Kind: EventDeselect})
	}
}

// Selected reports the current chip enable level.
func (d *SPIDevice8) Selected() bool {
	return d.selected
}

// Tx implements drivers.SPI.Tx.
func (d *SPIDevice8) Tx(w, r []byte) error {
	if !d.selected {
		d.c.Fatalf("spi mock: transfer while chip enable is inactive")
		return nil
	}
	if len(w) == 0 {
		d.c.Fatalf("spi mock: need a command byte")
		return nil
	}
	if r != nil && len(r) != len(w) {
		d.c.Fatalf("spi mock: unequal buffer lengths in Tx(%d, %d)", len(w), len(r))
		return nil
	}
	d.Events = append(d.Events, SPIEvent{Kind: EventTx, W: append([]byte(nil), w...)})
	if d.Err != nil {
		return d.Err
	}

	cmd := w[0]
	if cmd&spiSubaddress == 0 {
		d.c.Fatalf("spi mock: command %#02x has no sub-address bit", cmd)
		return nil
	}
	addr := int(cmd & spiAddrMask)
	if cmd&spiRead != 0 {
		if r == nil {
			return nil
		}
		r[0] = cmd
		for i := 1; i < len(r); i++ {
			r[i] = d.Registers[(addr+i-1)%SPIRegisters]
		}
		return nil
	}
	for i, b := range w[1:] {
		reg := (addr + i) % SPIRegisters
		m := d.WriteMask[reg]
		d.Registers[reg] = b&^m | b&d.Registers[reg]&m
	}
	if r != nil {
		r[0] = cmd
	}
	return nil
}

// Transfer implements drivers.SPI.Transfer. A single byte cannot carry a
// register access, so the mock rejects it.
func (d *SPIDevice8) Transfer(b byte) (byte, error) {
	d.c.Fatalf("spi mock: single byte transfer %#02x not supported", b)
	return 0, nil
}

// Transfers returns only the transfer events of the log.
func (d *SPIDevice8) Transfers() []SPIEvent {
	var tx []SPIEvent
	for _, e := range d.Events {
		if e.Kind == EventTx {
			tx = append(tx, e)
		}
	}
	return tx
}

// Writes returns only the register writes of the log.
func (d *SPIDevice8) Writes() []SPIEvent {
	var wr []SPIEvent
	for _, e := range d.Events {
		if e.IsWrite() {
			wr = append(wr, e)
		}
	}
	return wr
}

// ResetLog clears the event log.
func (d *SPIDevice8) ResetLog() {
	d.Events = nil
}
