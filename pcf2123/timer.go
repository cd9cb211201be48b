package pcf2123

// TimerSource is the clock the countdown timer counts down with.
type TimerSource uint8

const (
	TimerSource4096Hz TimerSource = iota
	TimerSource64Hz
	TimerSource1Hz
	TimerSourceMinute // 1/60 Hz
)

func (s TimerSource) String() string {
	switch s {
	case TimerSource4096Hz:
		return "4096Hz"
	case TimerSource64Hz:
		return "64Hz"
	case TimerSource1Hz:
		return "1Hz"
	case TimerSourceMinute:
		return "1/60Hz"
	}
	return "invalid"
}

// ClockOutput is the frequency on the CLKOUT pin.
type ClockOutput uint8

const (
	ClockOutput32768Hz ClockOutput = iota
	ClockOutput16384Hz
	ClockOutput8192Hz
	ClockOutput4096Hz
	ClockOutput1024Hz
	ClockOutput32Hz
	ClockOutput1Hz
	ClockOutputOff // high impedance
)

// OffsetMode selects how often the offset correction is applied.
type OffsetMode uint8

const (
	OffsetNormal OffsetMode = iota // once every two hours
	OffsetCoarse                   // every four minutes
)

// SetTimer loads the countdown timer with ticks periods of src, starts it and
// enables the timer interrupt. A pending timer flag is cleared.
func (d *Device) SetTimer(src TimerSource, ticks uint8) error {
	d.require(src <= TimerSourceMinute, "SetTimer", "no such timer source")

	tc, err := d.ReadRegister(TimerClkout)
	if err != nil {
		return err
	}
	tc = tc&^(timerTE|timerCTDMask) | uint8(src)
	// stop the timer while the value is loaded
	buf := [2]byte{tc, ticks}
	err = d.WriteRegisters(TimerClkout, buf[:])
	if err != nil {
		return err
	}
	err = d.WriteRegister(TimerClkout, tc|timerTE)
	if err != nil {
		return err
	}
	_, err = d.updateControl2(control2TF, control2TIE)
	return err
}

// StopTimer stops the countdown timer, disables its interrupt and clears the
// timer flag.
func (d *Device) StopTimer() error {
	tc, err := d.ReadRegister(TimerClkout)
	if err != nil {
		return err
	}
	if tc&timerTE != 0 {
		err = d.WriteRegister(TimerClkout, tc&^timerTE)
		if err != nil {
			return err
		}
	}
	_, err = d.updateControl2(control2TF|control2TIE, 0)
	return err
}

// SetClockOutput selects the CLKOUT frequency. The timer bits are kept.
func (d *Device) SetClockOutput(out ClockOutput) error {
	d.require(out <= ClockOutputOff, "SetClockOutput", "no such clock output")

	tc, err := d.ReadRegister(TimerClkout)
	if err != nil {
		return err
	}
	return d.WriteRegister(TimerClkout, tc&^timerCOFMask|uint8(out)<<timerCOFShift)
}

// SetOffset programs the oscillator offset correction in the range -64..63.
// Each step is about 2.17 ppm in normal mode and 4.34 ppm in coarse mode.
func (d *Device) SetOffset(mode OffsetMode, offset int8) error {
	d.require(mode <= OffsetCoarse, "SetOffset", "no such offset mode")
	d.require(offset >= -64 && offset <= 63, "SetOffset", "offset out of range")

	v := uint8(offset) & offsetValue
	if mode == OffsetCoarse {
		v |= offsetMode
	}
	return d.WriteRegister(Offset, v)
}

// ClockOffset reads back the offset correction.
func (d *Device) ClockOffset() (OffsetMode, int8, error) {
	v, err := d.ReadRegister(Offset)
	if err != nil {
		return OffsetNormal, 0, err
	}
	mode := OffsetNormal
	if v&offsetMode != 0 {
		mode = OffsetCoarse
	}
	off := v & offsetValue
	if off&0x40 != 0 {
		// sign extend the 7-bit value
		off |= 0x80
	}
	return mode, int8(off), nil
}

// Stop freezes the time circuits. The prescaler is held in reset, so the
// clock restarts on a whole second when Start is called.
func (d *Device) Stop() error {
	return d.updateControl1(control1Stop, true)
}

// Start lets the time circuits run again after Stop.
func (d *Device) Start() error {
	return d.updateControl1(control1Stop, false)
}

// SetMinuteSecondInterrupt enables the once-a-minute and once-a-second
// interrupts.
func (d *Device) SetMinuteSecondInterrupt(minute, second bool) error {
	var set, clear uint8
	if minute {
		set |= control2MI
	} else {
		clear |= control2MI
	}
	if second {
		set |= control2SI
	} else {
		clear |= control2SI
	}
	_, err := d.updateControl2(clear, set)
	return err
}

// SetPulsedInterrupt makes the INT pin emit pulses instead of following the
// timer and minute/second flags.
func (d *Device) SetPulsedInterrupt(pulsed bool) error {
	if pulsed {
		_, err := d.updateControl2(0, control2TITP)
		return err
	}
	_, err := d.updateControl2(control2TITP, 0)
	return err
}

func (d *Device) updateControl1(bit uint8, set bool) error {
	c1, err := d.ReadRegister(Control1)
	if err != nil {
		return err
	}
	next := c1 &^ bit
	if set {
		next |= bit
	}
	if next == c1 {
		return nil
	}
	return d.WriteRegister(Control1, next)
}
