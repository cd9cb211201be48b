package pcf2123

import (
	"github.com/ajanata/tinygo-drivers/internal/bcd"
)

// AlarmEnable selects which alarm fields take part in the match. The alarm
// fires when every enabled field equals the current time.
type AlarmEnable uint8

const (
	AlarmMinute AlarmEnable = 1 << iota
	AlarmHour
	AlarmDay
	AlarmWeekday
)

// AlarmConfig is the content of the four alarm registers. Fields whose enable
// bit is clear are ignored.
type AlarmConfig struct {
	Enable  AlarmEnable
	Minute  uint8
	Hour    uint8
	Day     uint8
	Weekday Weekday
}

func (c AlarmConfig) valid() bool {
	switch {
	case c.Enable&AlarmMinute != 0 && c.Minute > 59:
		return false
	case c.Enable&AlarmHour != 0 && c.Hour > 23:
		return false
	case c.Enable&AlarmDay != 0 && (c.Day < 1 || c.Day > 31):
		return false
	case c.Enable&AlarmWeekday != 0 && !c.Weekday.Valid():
		return false
	}
	return true
}

// registers encodes c for MinuteAlarm through WeekdayAlarm. A disabled field
// is sent with only its AE bit set.
func (c AlarmConfig) registers() [4]uint8 {
	field := func(en AlarmEnable, v uint8) uint8 {
		if c.Enable&en != 0 {
			return bcd.Encode(v)
		}
		return alarmDisable
	}
	return [4]uint8{
		field(AlarmMinute, c.Minute),
		field(AlarmHour, c.Hour),
		field(AlarmDay, c.Day),
		field(AlarmWeekday, uint8(c.Weekday)),
	}
}

// Flags is the raw content of Control_2: the interrupt flags and the
// interrupt enables.
type Flags uint8

// AlarmFired reports the AF flag.
func (f Flags) AlarmFired() bool { return f&control2AF != 0 }

// TimerFired reports the TF flag.
func (f Flags) TimerFired() bool { return f&control2TF != 0 }

// MinuteSecondFired reports the MSF flag.
func (f Flags) MinuteSecondFired() bool { return f&control2MSF != 0 }

func (f Flags) AlarmInterruptEnabled() bool { return f&control2AIE != 0 }

func (f Flags) TimerInterruptEnabled() bool { return f&control2TIE != 0 }

// SetAlarm programs the alarm and enables the alarm interrupt. A pending
// alarm flag is cleared first so the INT pin is released.
func (d *Device) SetAlarm(c AlarmConfig) error {
	d.require(c.valid(), "SetAlarm", "alarm field out of range")

	regs := c.registers()
	_, err := d.updateControl2(control2AF, control2AIE)
	if err != nil {
		return err
	}
	// MinuteAlarm..WeekdayAlarm are contiguous
	err = d.WriteRegisters(MinuteAlarm, regs[:])
	if err != nil {
		return err
	}
	d.logf("pcf2123: alarm set, enable %04b", uint8(c.Enable))
	return nil
}

// Alarm reads back the alarm registers.
func (d *Device) Alarm() (AlarmConfig, error) {
	var buf [4]byte
	err := d.ReadRegisters(MinuteAlarm, buf[:])
	if err != nil {
		return AlarmConfig{}, err
	}
	var c AlarmConfig
	if buf[0]&alarmDisable == 0 {
		c.Enable |= AlarmMinute
		c.Minute = bcd.Decode(buf[0] & maskMinutes)
	}
	if buf[1]&alarmDisable == 0 {
		c.Enable |= AlarmHour
		c.Hour = bcd.Decode(buf[1] & maskHours)
	}
	if buf[2]&alarmDisable == 0 {
		c.Enable |= AlarmDay
		c.Day = bcd.Decode(buf[2] & maskDays)
	}
	if buf[3]&alarmDisable == 0 {
		c.Enable |= AlarmWeekday
		c.Weekday = decodeWeekday(buf[3])
	}
	return c, nil
}

// DisableAlarm disables every alarm field, turns the alarm interrupt off and
// clears the alarm flag.
func (d *Device) DisableAlarm() error {
	_, err := d.updateControl2(control2AF|control2AIE, 0)
	if err != nil {
		return err
	}
	regs := AlarmConfig{}.registers()
	return d.WriteRegisters(MinuteAlarm, regs[:])
}

// InterruptFlags reads Control_2.
func (d *Device) InterruptFlags() (Flags, error) {
	v, err := d.ReadRegister(Control2)
	return Flags(v), err
}

// AlarmFired reports whether the alarm flag is set.
func (d *Device) AlarmFired() (bool, error) {
	f, err := d.InterruptFlags()
	return f.AlarmFired(), err
}

// TimerFired reports whether the countdown timer flag is set.
func (d *Device) TimerFired() (bool, error) {
	f, err := d.InterruptFlags()
	return f.TimerFired(), err
}

// ClearAlarmFlag clears AF. The other flags and the enable bits are kept.
func (d *Device) ClearAlarmFlag() error {
	_, err := d.updateControl2(control2AF, 0)
	return err
}

// ClearTimerFlag clears TF. The other flags and the enable bits are kept.
func (d *Device) ClearTimerFlag() error {
	_, err := d.updateControl2(control2TF, 0)
	return err
}

// ClearAllFlags clears AF, TF and MSF with a single write.
func (d *Device) ClearAllFlags() error {
	_, err := d.updateControl2(control2Flags, 0)
	return err
}

// updateControl2 is a read-modify-write of Control_2 that clears and sets
// the given bits. The chip ANDs the flag bits on write, so flags that are not
// being cleared are written as 1; a flag raised between the read and the
// write survives. The write is skipped when it would change nothing. The
// value read is returned.
func (d *Device) updateControl2(clear, set uint8) (Flags, error) {
	old, err := d.ReadRegister(Control2)
	if err != nil {
		return 0, err
	}
	next := (old|control2Flags)&^clear | set
	if old&clear&control2Flags == 0 && next&^control2Flags == old&^control2Flags {
		return Flags(old), nil
	}
	return Flags(old), d.WriteRegister(Control2, next)
}
