package pcf2123

import (
	"fmt"
	"time"

	"github.com/ajanata/tinygo-drivers/internal/bcd"
)

// Time is the time of day as kept by the chip, in 24-hour mode.
type Time struct {
	Second uint8 // 0-59
	Minute uint8 // 0-59
	Hour   uint8 // 0-23
}

func (t Time) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

func (t Time) valid() bool {
	return t.Second <= 59 && t.Minute <= 59 && t.Hour <= 23
}

// Date is the calendar date as kept by the chip. The chip does not derive the
// weekday from the date; it stores whatever was written.
type Date struct {
	Day     uint8 // 1-31
	Weekday Weekday
	Month   Month
	Year    uint8 // 0-99
}

func (d Date) String() string {
	return fmt.Sprintf("%02d-%02d-%02d %v", d.Year, int(d.Month), d.Day, d.Weekday)
}

func (d Date) valid() bool {
	return d.Day >= 1 && d.Day <= 31 && d.Weekday.Valid() && d.Month.Valid() && d.Year <= 99
}

// Weekday is the day of the week register, Sunday being 0.
type Weekday int8

const (
	WeekdayInvalid Weekday = -1
	Sunday         Weekday = iota - 1
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

// Valid reports whether w is Sunday through Saturday.
func (w Weekday) Valid() bool {
	return w >= Sunday && w <= Saturday
}

func (w Weekday) String() string {
	if !w.Valid() {
		return "Invalid"
	}
	return time.Weekday(w).String()
}

// Month is the month register, January being 1.
type Month int8

const (
	MonthInvalid Month = -1
	January      Month = iota
	February
	March
	April
	May
	June
	July
	August
	September
	October
	November
	December
)

// Valid reports whether m is January through December.
func (m Month) Valid() bool {
	return m >= January && m <= December
}

func (m Month) String() string {
	if !m.Valid() {
		return "Invalid"
	}
	return time.Month(m).String()
}

func decodeWeekday(b uint8) Weekday {
	w := Weekday(bcd.Decode(b & maskWeekdays))
	if !w.Valid() {
		return WeekdayInvalid
	}
	return w
}

func decodeMonth(b uint8) Month {
	m := Month(bcd.Decode(b & maskMonths))
	if !m.Valid() {
		return MonthInvalid
	}
	return m
}

// SetDateTime writes the time and date in one transfer starting at the
// seconds register. Writing the seconds register also clears the OS flag.
func (d *Device) SetDateTime(t Time, date Date) error {
	d.require(t.valid(), "SetDateTime", "time out of range")
	d.require(date.valid(), "SetDateTime", "date out of range")

	buf := [7]byte{
		bcd.Encode(t.Second),
		bcd.Encode(t.Minute),
		bcd.Encode(t.Hour),
		bcd.Encode(date.Day),
		bcd.Encode(uint8(date.Weekday)),
		bcd.Encode(uint8(date.Month)),
		bcd.Encode(date.Year),
	}
	return d.WriteRegisters(Seconds, buf[:])
}

// DateTime reads the time and date.
//
// If the oscillator stop flag is set it is cleared first, so a stop is
// reported through the logger once rather than on every read. Use
// OscillatorStopped to look at the flag without clearing it.
func (d *Device) DateTime() (Time, Date, error) {
	sec, err := d.ReadRegister(Seconds)
	if err != nil {
		return Time{}, Date{}, err
	}
	if sec&secondsOS != 0 {
		err = d.WriteRegister(Seconds, sec&^secondsOS)
		if err != nil {
			return Time{}, Date{}, err
		}
		d.logf("pcf2123: oscillator was stopped, clock integrity not guaranteed")
	}

	var buf [7]byte
	err = d.ReadRegisters(Seconds, buf[:])
	if err != nil {
		return Time{}, Date{}, err
	}

	t := Time{
		Second: bcd.Decode(buf[0] & maskSeconds),
		Minute: bcd.Decode(buf[1] & maskMinutes),
		Hour:   bcd.Decode(buf[2] & maskHours),
	}
	date := Date{
		Day:     bcd.Decode(buf[3] & maskDays),
		Weekday: decodeWeekday(buf[4]),
		Month:   decodeMonth(buf[5]),
		Year:    bcd.Decode(buf[6]),
	}
	return t, date, nil
}

// OscillatorStopped reports whether the OS flag is set, meaning the clock
// stopped at some point (usually power loss) and the time cannot be trusted.
// The flag is left as it is.
func (d *Device) OscillatorStopped() (bool, error) {
	sec, err := d.ReadRegister(Seconds)
	if err != nil {
		return false, err
	}
	return sec&secondsOS != 0, nil
}

// SetTime sets the clock to t, which must fall in 2000-2099. Only the wall
// clock fields of t are used; convert it to the desired zone first.
func (d *Device) SetTime(t time.Time) error {
	if t.Year() < 2000 || t.Year() > 2099 {
		return ErrYearRange
	}
	return d.SetDateTime(Time{
		Second: uint8(t.Second()),
		Minute: uint8(t.Minute()),
		Hour:   uint8(t.Hour()),
	}, Date{
		Day:     uint8(t.Day()),
		Weekday: Weekday(t.Weekday()),
		Month:   Month(t.Month()),
		Year:    uint8(t.Year() - 2000),
	})
}

// Now reads the clock as a UTC time.Time in 2000-2099.
func (d *Device) Now() (time.Time, error) {
	t, date, err := d.DateTime()
	if err != nil {
		return time.Time{}, err
	}
	if !t.valid() || !date.valid() {
		return time.Time{}, fmt.Errorf("%w: %v %v", ErrInvalidDate, date, t)
	}
	return time.Date(2000+int(date.Year), time.Month(date.Month), int(date.Day),
		int(t.Hour), int(t.Minute), int(t.Second), 0, time.UTC), nil
}
