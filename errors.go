package fins

import (
	"errors"
	"fmt"
	"time"
)

// Local precondition failures. Detected before any I/O is attempted.
var (
	// ErrNoAddress is returned when an operation that needs a PLC address
	// was given an empty one.
	ErrNoAddress = errors.New("fins: no address given")

	// ErrNoData is returned when an operation that needs payload data was
	// given none.
	ErrNoData = errors.New("fins: no data given")
)

// ClientClosedError is returned by operations on a closed client.
type ClientClosedError struct{}

func (ClientClosedError) Error() string {
	return "fins: client is closed"
}

// NotConnectedError is returned when a transaction is attempted while the
// session is not in the Connected state. No I/O has been performed.
type NotConnectedError struct {
	State SessionState
}

func (e NotConnectedError) Error() string {
	return fmt.Sprintf("fins: not connected (session state %s)", e.State)
}

// InvalidAddressError is returned when an address string cannot be parsed
// or lies outside its area's bounds.
type InvalidAddressError struct {
	Text      string
	Direction AreaAccess
}

func (e InvalidAddressError) Error() string {
	return fmt.Sprintf("fins: invalid %s address %q", e.Direction, e.Text)
}

// InvalidAreaError is returned when an address names an area that is
// unknown or not permitted for the requested direction.
type InvalidAreaError struct {
	Token     string
	Direction AreaAccess
}

func (e InvalidAreaError) Error() string {
	return fmt.Sprintf("fins: area %q not valid for %s", e.Token, e.Direction)
}

// ResponseTimeoutError is returned when no correlated response arrived
// within the session timeout, after the configured number of resends.
type ResponseTimeoutError struct {
	Timeout time.Duration
	Resends int
}

func (e ResponseTimeoutError) Error() string {
	if e.Resends > 0 {
		return fmt.Sprintf("fins: response timeout after %s and %d resends", e.Timeout, e.Resends)
	}
	return fmt.Sprintf("fins: response timeout after %s", e.Timeout)
}

// BodyTooShortError is returned when a structurally valid response carries
// fewer payload bytes than the command requires. Sizes are in bytes and
// include the 2 byte end code.
type BodyTooShortError struct {
	Expected int
	Got      int
}

func (e BodyTooShortError) Error() string {
	return fmt.Sprintf("fins: response body too short: got %d bytes, want %d", e.Got, e.Expected)
}

// BCDRangeError is returned when a value cannot be represented in the
// requested BCD format. This is a caller precondition violation; nothing
// has been transmitted.
type BCDRangeError struct {
	Value  int64
	Format BCDFormat
}

func (e BCDRangeError) Error() string {
	return fmt.Sprintf("fins: value %d not representable as %s", e.Value, e.Format)
}

// EndCodeError is a structurally valid response whose end code reports a
// remote failure. Category groups the raw code so callers can discriminate
// without matching individual codes.
type EndCodeError struct {
	EndCode uint16
}

func (e EndCodeError) Error() string {
	return fmt.Sprintf("fins: remote end code 0x%04X (%s)", e.EndCode, e.Category())
}

// Category classifies the end code by its main response code byte.
func (e EndCodeError) Category() EndCodeCategory {
	return classifyEndCode(e.EndCode)
}
