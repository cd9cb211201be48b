// Package console is a small line-oriented shell for poking at a PCF2123 over
// a serial port: read and set the clock, arm the alarm, look at and clear the
// interrupt flags, run the countdown timer and dump the registers.
//
// Lines are split like a POSIX shell would, so arguments can be quoted.
package console // import "github.com/ajanata/tinygo-drivers/pcf2123/console"

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/google/shlex"

	"github.com/ajanata/tinygo-drivers/pcf2123"
)

// ErrUnknownCommand is returned by Exec for a command it does not know.
var ErrUnknownCommand = errors.New("unknown command")

type command struct {
	usage string
	run   func(c *Console, args []string) error
}

var commands map[string]command

func init() {
	// assigned here because help refers back to the table
	commands = map[string]command{
		"help":   {"help", (*Console).help},
		"date":   {"date", (*Console).date},
		"set":    {"set <yy-mm-dd> <hh:mm:ss> <weekday>", (*Console).set},
		"alarm":  {"alarm [off | min=N hour=N day=N wday=NAME]", (*Console).alarm},
		"flags":  {"flags", (*Console).flags},
		"clear":  {"clear af|tf|all", (*Console).clear},
		"reset":  {"reset", (*Console).reset},
		"dump":   {"dump", (*Console).dump},
		"timer":  {"timer off | timer 4096hz|64hz|1hz|1/60hz <ticks>", (*Console).timer},
		"clkout": {"clkout 32768|16384|8192|4096|1024|32|1|off", (*Console).clkout},
		"offset": {"offset [normal|coarse <-64..63>]", (*Console).offset},
		"stop":   {"stop", (*Console).stop},
		"start":  {"start", (*Console).start},
	}
}

// Console runs commands against one device and writes the results to w.
type Console struct {
	dev *pcf2123.Device
	w   io.Writer
}

// New creates a console for dev that prints to w.
func New(dev *pcf2123.Device, w io.Writer) *Console {
	return &Console{dev: dev, w: w}
}

// Exec runs a single command line. Empty lines do nothing.
func (c *Console) Exec(line string) error {
	fields, err := shlex.Split(line)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}
	cmd, ok := commands[fields[0]]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, fields[0])
	}
	return cmd.run(c, fields[1:])
}

// Run reads commands from r until it is exhausted, printing a prompt before
// each one and any error after it. Bus errors do not stop the loop.
func (c *Console) Run(r io.Reader) error {
	s := bufio.NewScanner(r)
	fmt.Fprint(c.w, "> ")
	for s.Scan() {
		if err := c.Exec(s.Text()); err != nil {
			fmt.Fprintf(c.w, "error: %v\r\n", err)
		}
		fmt.Fprint(c.w, "> ")
	}
	return s.Err()
}

func usage(name string) error {
	return fmt.Errorf("usage: %s", commands[name].usage)
}

func (c *Console) help(args []string) error {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(c.w, "  %s\r\n", commands[name].usage)
	}
	return nil
}

func (c *Console) date(args []string) error {
	t, d, err := c.dev.DateTime()
	if err != nil {
		return err
	}
	fmt.Fprintf(c.w, "%v %v\r\n", d, t)
	return nil
}

func (c *Console) set(args []string) error {
	if len(args) != 3 {
		return usage("set")
	}
	var d pcf2123.Date
	var t pcf2123.Time
	var year, month, day, hour, min, sec int
	if _, err := fmt.Sscanf(args[0], "%d-%d-%d", &year, &month, &day); err != nil {
		return fmt.Errorf("bad date %q", args[0])
	}
	if _, err := fmt.Sscanf(args[1], "%d:%d:%d", &hour, &min, &sec); err != nil {
		return fmt.Errorf("bad time %q", args[1])
	}
	wd, err := parseWeekday(args[2])
	if err != nil {
		return err
	}
	if year < 0 || year > 99 || month < 1 || month > 12 || day < 1 || day > 31 {
		return fmt.Errorf("date %q out of range", args[0])
	}
	if hour < 0 || hour > 23 || min < 0 || min > 59 || sec < 0 || sec > 59 {
		return fmt.Errorf("time %q out of range", args[1])
	}
	d = pcf2123.Date{Day: uint8(day), Weekday: wd, Month: pcf2123.Month(month), Year: uint8(year)}
	t = pcf2123.Time{Second: uint8(sec), Minute: uint8(min), Hour: uint8(hour)}
	return c.dev.SetDateTime(t, d)
}

func (c *Console) alarm(args []string) error {
	if len(args) == 0 {
		a, err := c.dev.Alarm()
		if err != nil {
			return err
		}
		fmt.Fprintf(c.w, "alarm %s\r\n", formatAlarm(a))
		return nil
	}
	if len(args) == 1 && args[0] == "off" {
		return c.dev.DisableAlarm()
	}

	var a pcf2123.AlarmConfig
	for _, arg := range args {
		key, val, ok := strings.Cut(arg, "=")
		if !ok {
			return usage("alarm")
		}
		var err error
		switch key {
		case "min":
			a.Minute, err = parseUint8(val, 0, 59)
			a.Enable |= pcf2123.AlarmMinute
		case "hour":
			a.Hour, err = parseUint8(val, 0, 23)
			a.Enable |= pcf2123.AlarmHour
		case "day":
			a.Day, err = parseUint8(val, 1, 31)
			a.Enable |= pcf2123.AlarmDay
		case "wday":
			a.Weekday, err = parseWeekday(val)
			a.Enable |= pcf2123.AlarmWeekday
		default:
			return usage("alarm")
		}
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return c.dev.SetAlarm(a)
}

func formatAlarm(a pcf2123.AlarmConfig) string {
	if a.Enable == 0 {
		return "off"
	}
	var parts []string
	if a.Enable&pcf2123.AlarmMinute != 0 {
		parts = append(parts, fmt.Sprintf("min=%d", a.Minute))
	}
	if a.Enable&pcf2123.AlarmHour != 0 {
		parts = append(parts, fmt.Sprintf("hour=%d", a.Hour))
	}
	if a.Enable&pcf2123.AlarmDay != 0 {
		parts = append(parts, fmt.Sprintf("day=%d", a.Day))
	}
	if a.Enable&pcf2123.AlarmWeekday != 0 {
		parts = append(parts, fmt.Sprintf("wday=%v", a.Weekday))
	}
	return strings.Join(parts, " ")
}

func (c *Console) flags(args []string) error {
	f, err := c.dev.InterruptFlags()
	if err != nil {
		return err
	}
	fmt.Fprintf(c.w, "control_2 0x%02x AF=%d TF=%d MSF=%d AIE=%d TIE=%d\r\n", uint8(f),
		bit(f.AlarmFired()), bit(f.TimerFired()), bit(f.MinuteSecondFired()),
		bit(f.AlarmInterruptEnabled()), bit(f.TimerInterruptEnabled()))
	return nil
}

func (c *Console) clear(args []string) error {
	if len(args) != 1 {
		return usage("clear")
	}
	switch args[0] {
	case "af":
		return c.dev.ClearAlarmFlag()
	case "tf":
		return c.dev.ClearTimerFlag()
	case "all":
		return c.dev.ClearAllFlags()
	}
	return usage("clear")
}

func (c *Console) reset(args []string) error {
	err := c.dev.Reset()
	if err != nil {
		return err
	}
	fmt.Fprint(c.w, "reset, wait for the oscillator to settle\r\n")
	return nil
}

func (c *Console) dump(args []string) error {
	// one read, the register pointer wraps around after Countdown_timer
	var regs [16]byte
	err := c.dev.ReadRegisters(pcf2123.Control1, regs[:])
	if err != nil {
		return err
	}
	_, err = io.WriteString(c.w, hex.Dump(regs[:]))
	return err
}

var timerSources = map[string]pcf2123.TimerSource{
	"4096hz": pcf2123.TimerSource4096Hz,
	"64hz":   pcf2123.TimerSource64Hz,
	"1hz":    pcf2123.TimerSource1Hz,
	"1/60hz": pcf2123.TimerSourceMinute,
}

func (c *Console) timer(args []string) error {
	if len(args) == 1 && args[0] == "off" {
		return c.dev.StopTimer()
	}
	if len(args) != 2 {
		return usage("timer")
	}
	src, ok := timerSources[strings.ToLower(args[0])]
	if !ok {
		return usage("timer")
	}
	ticks, err := parseUint8(args[1], 0, 255)
	if err != nil {
		return fmt.Errorf("ticks: %w", err)
	}
	return c.dev.SetTimer(src, ticks)
}

var clockOutputs = map[string]pcf2123.ClockOutput{
	"32768": pcf2123.ClockOutput32768Hz,
	"16384": pcf2123.ClockOutput16384Hz,
	"8192":  pcf2123.ClockOutput8192Hz,
	"4096":  pcf2123.ClockOutput4096Hz,
	"1024":  pcf2123.ClockOutput1024Hz,
	"32":    pcf2123.ClockOutput32Hz,
	"1":     pcf2123.ClockOutput1Hz,
	"off":   pcf2123.ClockOutputOff,
}

func (c *Console) clkout(args []string) error {
	if len(args) != 1 {
		return usage("clkout")
	}
	out, ok := clockOutputs[strings.TrimSuffix(strings.ToLower(args[0]), "hz")]
	if !ok {
		return usage("clkout")
	}
	return c.dev.SetClockOutput(out)
}

func (c *Console) offset(args []string) error {
	if len(args) == 0 {
		mode, off, err := c.dev.ClockOffset()
		if err != nil {
			return err
		}
		name := "normal"
		if mode == pcf2123.OffsetCoarse {
			name = "coarse"
		}
		fmt.Fprintf(c.w, "offset %s %d\r\n", name, off)
		return nil
	}
	if len(args) != 2 {
		return usage("offset")
	}
	var mode pcf2123.OffsetMode
	switch args[0] {
	case "normal":
		mode = pcf2123.OffsetNormal
	case "coarse":
		mode = pcf2123.OffsetCoarse
	default:
		return usage("offset")
	}
	n, err := strconv.Atoi(args[1])
	if err != nil || n < -64 || n > 63 {
		return fmt.Errorf("offset %q out of range -64..63", args[1])
	}
	return c.dev.SetOffset(mode, int8(n))
}

func (c *Console) stop(args []string) error {
	return c.dev.Stop()
}

func (c *Console) start(args []string) error {
	return c.dev.Start()
}

func parseUint8(s string, min, max int) (uint8, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < min || n > max {
		return 0, fmt.Errorf("%d out of range %d..%d", n, min, max)
	}
	return uint8(n), nil
}

func parseWeekday(s string) (pcf2123.Weekday, error) {
	s = strings.ToLower(s)
	if len(s) >= 3 {
		for wd := pcf2123.Sunday; wd <= pcf2123.Saturday; wd++ {
			if strings.HasPrefix(strings.ToLower(wd.String()), s) {
				return wd, nil
			}
		}
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n <= 6 {
		return pcf2123.Weekday(n), nil
	}
	return pcf2123.WeekdayInvalid, fmt.Errorf("bad weekday %q", s)
}

func bit(b bool) int {
	if b {
		return 1
	}
	return 0
}
