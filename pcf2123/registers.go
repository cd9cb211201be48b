package pcf2123

// Register is the address of one of the 16 PCF2123 registers. The address
// pointer auto-increments during a transfer and wraps from CountdownTimer back
// to Control1.
type Register uint8

const (
	Control1       Register = 0x00 // Control and status register 1
	Control2       Register = 0x01 // Control and status register 2, interrupt flags
	Seconds        Register = 0x02 // Seconds, also holds the OS flag
	Minutes        Register = 0x03
	Hours          Register = 0x04
	Days           Register = 0x05
	Weekdays       Register = 0x06
	Months         Register = 0x07
	Years          Register = 0x08
	MinuteAlarm    Register = 0x09
	HourAlarm      Register = 0x0A
	DayAlarm       Register = 0x0B
	WeekdayAlarm   Register = 0x0C
	Offset         Register = 0x0D // Clock offset calibration
	TimerClkout    Register = 0x0E // Timer and CLKOUT control
	CountdownTimer Register = 0x0F // Countdown timer value

	registerCount = 16
)

var registerNames = [registerCount]string{
	"Control_1", "Control_2", "Seconds", "Minutes", "Hours", "Days",
	"Weekdays", "Months", "Years", "Minute_alarm", "Hour_alarm",
	"Day_alarm", "Weekday_alarm", "Offset", "Timer_clkout",
	"Countdown_timer",
}

func (r Register) String() string {
	if int(r) < len(registerNames) {
		return registerNames[r]
	}
	return "invalid"
}

// command byte
const (
	cmdWrite      = 0x00
	cmdRead       = 0x80
	cmdSubaddress = 0x10

	resetMagic = 0x58
)

// Control_1
const (
	control1ExtTest = 1 << 7
	control1Stop    = 1 << 5
	control1SR      = 1 << 4
	control1Mode12  = 1 << 2
	control1CIE     = 1 << 1
)

// Control_2
const (
	control2MI   = 1 << 7 // minute interrupt enable
	control2SI   = 1 << 6 // second interrupt enable
	control2MSF  = 1 << 5 // minute/second interrupt flag
	control2TITP = 1 << 4 // INT pin pulses instead of following the flags
	control2AF   = 1 << 3 // alarm flag
	control2TF   = 1 << 2 // timer flag
	control2AIE  = 1 << 1 // alarm interrupt enable
	control2TIE  = 1 << 0 // timer interrupt enable

	// writing 0 clears these, writing 1 leaves them alone
	control2Flags = control2MSF | control2AF | control2TF
)

// time and alarm registers
const (
	secondsOS    = 1 << 7 // oscillator stopped, clock integrity not guaranteed
	alarmDisable = 1 << 7

	maskSeconds  = 0x7F
	maskMinutes  = 0x7F
	maskHours    = 0x3F
	maskDays     = 0x3F
	maskWeekdays = 0x07
	maskMonths   = 0x1F
)

// Timer_clkout and Offset
const (
	timerCOFShift = 4
	timerCOFMask  = 0b0111_0000
	timerTE       = 1 << 3
	timerCTDMask  = 0b0000_0011

	offsetMode  = 1 << 7
	offsetValue = 0x7F
)
