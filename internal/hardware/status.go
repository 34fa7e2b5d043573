package hardware

import "fmt"

// Status is a driver result code. Every non-success Status is also an error
// and can be matched with errors.Is against a wrapped DriverError.
type Status int

const (
	StatusSuccess             Status = 0
	StatusGeneric             Status = -1
	StatusOutOfMemory         Status = -2
	StatusHardwareFault       Status = -3
	StatusGPIOInit            Status = -4
	StatusIllegalGPIO         Status = -5
	StatusInvalidStringLength Status = -6
	StatusDMA                 Status = -7
	StatusPWMSetup            Status = -8
	StatusInterruptSetup      Status = -9
)

// Sentinels for errors.Is.
var (
	ErrGeneric             error = StatusGeneric
	ErrOutOfMemory         error = StatusOutOfMemory
	ErrHardwareFault       error = StatusHardwareFault
	ErrGPIOInit            error = StatusGPIOInit
	ErrIllegalGPIO         error = StatusIllegalGPIO
	ErrInvalidStringLength error = StatusInvalidStringLength
	ErrDMA                 error = StatusDMA
	ErrPWMSetup            error = StatusPWMSetup
	ErrInterruptSetup      error = StatusInterruptSetup
)

var statusText = map[Status]string{
	StatusSuccess:             "success",
	StatusGeneric:             "generic failure",
	StatusOutOfMemory:         "out of memory",
	StatusHardwareFault:       "hardware fault",
	StatusGPIOInit:            "gpio init failed",
	StatusIllegalGPIO:         "selected gpio not possible",
	StatusInvalidStringLength: "invalid led string length",
	StatusDMA:                 "dma setup failed",
	StatusPWMSetup:            "pwm setup failed",
	StatusInterruptSetup:      "interrupt setup failed",
}

func (s Status) String() string {
	if t, ok := statusText[s]; ok {
		return t
	}
	return fmt.Sprintf("status(%d)", int(s))
}

func (s Status) Error() string { return "ws281x: " + s.String() }

// Err converts a raw status into an error; StatusSuccess yields nil.
func (s Status) Err() error {
	if s == StatusSuccess {
		return nil
	}
	return s
}

// DriverError is returned by drivers when an operation fails.
type DriverError struct {
	Op     string // "init", "render", "wait", "build", ...
	Status Status
	Err    error // underlying cause, may be nil
}

func (e *DriverError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Status)
}

func (e *DriverError) Unwrap() error { return e.Err }

// Is reports whether target is the Status carried by e.
func (e *DriverError) Is(target error) bool {
	s, ok := target.(Status)
	return ok && s == e.Status
}

// ErrDriver creates a DriverError for op.
func ErrDriver(op string, s Status, cause error) error {
	return &DriverError{Op: op, Status: s, Err: cause}
}
