package pcf2123

import "errors"

var (
	// ErrTimeout is what a transfer function should return when the bus
	// did not complete in time. The driver passes it up unchanged (wrapped)
	// and never retries.
	ErrTimeout = errors.New("pcf2123: transfer timed out")

	ErrNoTransfer   = errors.New("pcf2123: no transfer function")
	ErrNoChipEnable = errors.New("pcf2123: no chip enable function")

	ErrYearRange   = errors.New("pcf2123: year out of range 2000-2099")
	ErrInvalidDate = errors.New("pcf2123: clock holds an invalid date")
)

// ContractError is the panic value for calls that break the driver's
// preconditions: a nil Device, an empty buffer, a register outside the map or
// a field value the chip cannot hold. It is a programming error, not a bus
// condition.
type ContractError struct {
	Op  string
	Msg string
}

func (e *ContractError) Error() string {
	return "pcf2123: " + e.Op + ": " + e.Msg
}
