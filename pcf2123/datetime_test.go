package pcf2123

import (
	"encoding/hex"
	"errors"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/ajanata/tinygo-drivers/tester"
)

var (
	demoTime = Time{Second: 56, Minute: 10, Hour: 0}
	demoDate = Date{Day: 17, Weekday: Sunday, Month: October, Year: 20}
)

func TestSetDateTime(t *testing.T) {
	c := qt.New(t)
	dev, fake := newTestDevice(c)

	err := dev.SetDateTime(demoTime, demoDate)
	c.Assert(err, qt.IsNil)

	// one transfer, auto-incrementing from the seconds register
	wr := fake.Writes()
	c.Assert(wr, qt.HasLen, 1)
	c.Assert(wr[0].Register(), qt.Equals, uint8(Seconds))
	c.Assert(hex.EncodeToString(fake.Registers[Seconds:MinuteAlarm]), qt.Equals, "56100017001020")
	assertFramed(c, fake.Events)
}

func TestDateTimeRoundTrip(t *testing.T) {
	c := qt.New(t)
	dev, _ := newTestDevice(c)

	err := dev.SetDateTime(demoTime, demoDate)
	c.Assert(err, qt.IsNil)

	tm, date, err := dev.DateTime()
	c.Assert(err, qt.IsNil)
	c.Assert(tm, qt.Equals, demoTime)
	c.Assert(date, qt.Equals, demoDate)
}

func TestDateTimeClearsOscillatorFlag(t *testing.T) {
	c := qt.New(t)
	dev, fake := newTestDevice(c)
	log := &logRecorder{}
	dev.Configure(Config{Logger: log})
	copy(fake.Registers[Seconds:], []byte{0x80 | 0x42, 0x55, 0x17, 0x12, 0x02, 0x09, 0x23})

	tm, date, err := dev.DateTime()
	c.Assert(err, qt.IsNil)
	c.Assert(tm, qt.Equals, Time{Second: 42, Minute: 55, Hour: 17})
	c.Assert(date, qt.Equals, Date{Day: 12, Weekday: Tuesday, Month: September, Year: 23})

	tx := fake.Transfers()
	c.Assert(tx, qt.HasLen, 3)
	c.Assert(tx[0].IsRead(), qt.Equals, true)
	c.Assert(tx[0].W, qt.HasLen, 2)
	c.Assert(tx[1].IsWrite(), qt.Equals, true)
	c.Assert(tx[1].Register(), qt.Equals, uint8(Seconds))
	c.Assert(tx[1].Payload(), qt.DeepEquals, []byte{0x42})
	c.Assert(tx[2].IsRead(), qt.Equals, true)
	c.Assert(tx[2].W, qt.HasLen, 8)
	c.Assert(fake.Registers[Seconds], qt.Equals, uint8(0x42))
	c.Assert(log.lines, qt.HasLen, 1)
	assertFramed(c, fake.Events)
}

func TestDateTimeWithoutOscillatorFlag(t *testing.T) {
	c := qt.New(t)
	dev, fake := newTestDevice(c)
	copy(fake.Registers[Seconds:], []byte{0x42, 0x55, 0x17, 0x12, 0x02, 0x09, 0x23})

	_, _, err := dev.DateTime()
	c.Assert(err, qt.IsNil)
	c.Assert(fake.Writes(), qt.HasLen, 0)
	c.Assert(fake.Transfers(), qt.HasLen, 2)
}

func TestDateTimeMasksUnusedBits(t *testing.T) {
	c := qt.New(t)
	dev, fake := newTestDevice(c)
	// the unused top bits of minutes, hours, days, weekdays and months read
	// back as garbage on some parts
	copy(fake.Registers[Seconds:], []byte{0x05, 0x80 | 0x59, 0xC0 | 0x23, 0xC0 | 0x31, 0xF8 | 0x06, 0xE0 | 0x12, 0x99})

	tm, date, err := dev.DateTime()
	c.Assert(err, qt.IsNil)
	c.Assert(tm, qt.Equals, Time{Second: 5, Minute: 59, Hour: 23})
	c.Assert(date, qt.Equals, Date{Day: 31, Weekday: Saturday, Month: December, Year: 99})
}

func TestDateTimeInvalidCalendarFields(t *testing.T) {
	c := qt.New(t)
	dev, fake := newTestDevice(c)
	copy(fake.Registers[Seconds:], []byte{0x00, 0x00, 0x00, 0x01, 0x07, 0x13, 0x00})

	_, date, err := dev.DateTime()
	c.Assert(err, qt.IsNil)
	c.Assert(date.Weekday, qt.Equals, WeekdayInvalid)
	c.Assert(date.Month, qt.Equals, MonthInvalid)

	_, err = dev.Now()
	c.Assert(errors.Is(err, ErrInvalidDate), qt.Equals, true)
}

func TestDateTimeTimeoutLeavesFlag(t *testing.T) {
	c := qt.New(t)
	fake := tester.NewSPIDevice8(c)
	fake.Registers[Seconds] = 0x80
	calls := 0
	dev, err := New(func(w, r []byte, _ time.Duration) error {
		calls++
		if calls == 2 {
			return ErrTimeout
		}
		return fake.Tx(w, r)
	}, fake.SetCE)
	c.Assert(err, qt.IsNil)

	_, _, err = dev.DateTime()
	c.Assert(errors.Is(err, ErrTimeout), qt.Equals, true)
	c.Assert(calls, qt.Equals, 2)
	c.Assert(fake.Registers[Seconds], qt.Equals, uint8(0x80))
	c.Assert(fake.Selected(), qt.Equals, false)
}

func TestOscillatorStopped(t *testing.T) {
	c := qt.New(t)
	dev, fake := newTestDevice(c)

	stopped, err := dev.OscillatorStopped()
	c.Assert(err, qt.IsNil)
	c.Assert(stopped, qt.Equals, false)

	fake.Registers[Seconds] = 0x80 | 0x30
	stopped, err = dev.OscillatorStopped()
	c.Assert(err, qt.IsNil)
	c.Assert(stopped, qt.Equals, true)
	// reading it does not acknowledge it
	c.Assert(fake.Registers[Seconds], qt.Equals, uint8(0xB0))
	c.Assert(fake.Writes(), qt.HasLen, 0)
}

func TestSetTimeAndNow(t *testing.T) {
	c := qt.New(t)
	dev, fake := newTestDevice(c)

	pointInTime := time.Date(2020, 10, 17, 0, 10, 56, 0, time.UTC)
	err := dev.SetTime(pointInTime)
	c.Assert(err, qt.IsNil)
	// 2020-10-17 is a Saturday
	c.Assert(hex.EncodeToString(fake.Registers[Seconds:MinuteAlarm]), qt.Equals, "56100017061020")

	now, err := dev.Now()
	c.Assert(err, qt.IsNil)
	c.Assert(now, qt.Equals, pointInTime)
}

func TestSetTimeYearRange(t *testing.T) {
	c := qt.New(t)
	dev, fake := newTestDevice(c)

	err := dev.SetTime(time.Date(1999, 12, 31, 23, 59, 59, 0, time.UTC))
	c.Assert(err, qt.Equals, ErrYearRange)
	err = dev.SetTime(time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC))
	c.Assert(err, qt.Equals, ErrYearRange)
	c.Assert(fake.Events, qt.HasLen, 0)
}

func TestSetDateTimeOutOfRange(t *testing.T) {
	c := qt.New(t)
	dev, fake := newTestDevice(c)

	c.Assert(func() { dev.SetDateTime(Time{Second: 60}, demoDate) }, qt.PanicMatches,
		"pcf2123: SetDateTime: time out of range")
	c.Assert(func() { dev.SetDateTime(demoTime, Date{Day: 1, Weekday: WeekdayInvalid, Month: May}) }, qt.PanicMatches,
		"pcf2123: SetDateTime: date out of range")
	c.Assert(func() { dev.SetDateTime(demoTime, Date{Day: 0, Month: May}) }, qt.PanicMatches,
		"pcf2123: SetDateTime: date out of range")
	c.Assert(fake.Events, qt.HasLen, 0)
}

func TestWeekdayMonthString(t *testing.T) {
	c := qt.New(t)
	c.Assert(Sunday.String(), qt.Equals, "Sunday")
	c.Assert(Saturday.String(), qt.Equals, "Saturday")
	c.Assert(WeekdayInvalid.String(), qt.Equals, "Invalid")
	c.Assert(January.String(), qt.Equals, "January")
	c.Assert(December.String(), qt.Equals, "December")
	c.Assert(MonthInvalid.String(), qt.Equals, "Invalid")
	c.Assert(Month(13).String(), qt.Equals, "Invalid")
	c.Assert(demoDate.String(), qt.Equals, "20-10-17 Sunday")
	c.Assert(demoTime.String(), qt.Equals, "00:10:56")
}
