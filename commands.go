package fins

import (
	"context"
	"fmt"
	"time"
)

// unitNameLimit is the fixed capacity of the unit name field; longer names
// are truncated silently.
const unitNameLimit = 8

// CPUUnitStatus is the decoded answer to a CPU unit status read.
type CPUUnitStatus struct {
	Running       bool
	Standby       bool
	Mode          byte // 0x00 program, 0x02 monitor, 0x04 run
	FatalError    uint16
	NonFatalError uint16
}

// executeSimple runs one fixed layout command from the command table and
// validates the response length against the table entry.
func (c *Client) executeSimple(ctx context.Context, op OperationType, body []byte) (*response, error) {
	spec, ok := simpleCommands[op]
	if !ok {
		return nil, fmt.Errorf("fins: no command mapping for %s", op)
	}
	r, err := checkResponse(c.execute(ctx, buildCommand(spec.code, body), true))
	if err != nil {
		return nil, err
	}
	if len(r.data) < spec.minResp || (spec.exactResp && len(r.data) != spec.minResp) {
		return nil, BodyTooShortError{Expected: endCodeSize + spec.minResp, Got: endCodeSize + len(r.data)}
	}
	return r, nil
}

// ReadClock reads the PLC clock.
func (c *Client) ReadClock(ctx context.Context) (*time.Time, error) {
	info := &InterceptorInfo{Operation: OpReadClock}
	res, err := c.invoke(ctx, info, func(ctx context.Context) (interface{}, error) {
		r, err := c.executeSimple(ctx, OpReadClock, nil)
		if err != nil {
			return nil, err
		}
		fields := make([]int, 6)
		for i := range fields {
			v, ok := byteBCD(r.data[i])
			if !ok {
				return nil, fmt.Errorf("fins: clock field %d is not BCD: 0x%02X", i, r.data[i])
			}
			fields[i] = v
		}
		year := fields[0]
		if year < 50 {
			year += 2000
		} else {
			year += 1900
		}
		t := time.Date(year, time.Month(fields[1]), fields[2], fields[3], fields[4], fields[5], 0, time.Local)
		return &t, nil
	})
	t, _ := res.(*time.Time)
	return t, err
}

// WriteClock sets the PLC clock.
func (c *Client) WriteClock(ctx context.Context, t time.Time) error {
	info := &InterceptorInfo{Operation: OpWriteClock, Data: t}
	_, err := c.invoke(ctx, info, func(ctx context.Context) (interface{}, error) {
		body := []byte{
			bcdByte(t.Year() % 100),
			bcdByte(int(t.Month())),
			bcdByte(t.Day()),
			bcdByte(t.Hour()),
			bcdByte(t.Minute()),
			bcdByte(t.Second()),
			bcdByte(int(t.Weekday())),
		}
		_, err := c.executeSimple(ctx, OpWriteClock, body)
		return nil, err
	})
	return err
}

// ReadCPUUnitStatus reads the run/stop state and error words of the CPU
// unit.
func (c *Client) ReadCPUUnitStatus(ctx context.Context) (*CPUUnitStatus, error) {
	info := &InterceptorInfo{Operation: OpReadStatus}
	res, err := c.invoke(ctx, info, func(ctx context.Context) (interface{}, error) {
		r, err := c.executeSimple(ctx, OpReadStatus, nil)
		if err != nil {
			return nil, err
		}
		rd := newBodyReader(r.data)
		status, _ := rd.readByte()
		mode, _ := rd.readByte()
		fatal, _ := rd.readUint16()
		st := &CPUUnitStatus{
			Running:    status&0x01 != 0,
			Standby:    status&0x80 != 0,
			Mode:       mode,
			FatalError: fatal,
		}
		if nonFatal, ok := rd.readUint16(); ok {
			st.NonFatalError = nonFatal
		}
		return st, nil
	})
	st, _ := res.(*CPUUnitStatus)
	return st, err
}

// SetUnitName sets the name of the link unit. Names longer than 8 bytes
// are truncated to the first 8; an empty name is a distinct failure, not
// an empty write.
func (c *Client) SetUnitName(ctx context.Context, name string) error {
	info := &InterceptorInfo{Operation: OpSetName, Data: name}
	_, err := c.invoke(ctx, info, func(ctx context.Context) (interface{}, error) {
		if name == "" {
			return nil, ErrNoData
		}
		if len(name) > unitNameLimit {
			name = name[:unitNameLimit]
		}
		_, err := c.executeSimple(ctx, OpSetName, []byte(name))
		return nil, err
	})
	return err
}

// Run switches the CPU unit to run mode.
func (c *Client) Run(ctx context.Context) error {
	info := &InterceptorInfo{Operation: OpRun}
	_, err := c.invoke(ctx, info, func(ctx context.Context) (interface{}, error) {
		// 0xFFFF selects all program areas.
		_, err := c.executeSimple(ctx, OpRun, []byte{0xFF, 0xFF})
		return nil, err
	})
	return err
}

// Stop switches the CPU unit to program mode.
func (c *Client) Stop(ctx context.Context) error {
	info := &InterceptorInfo{Operation: OpStop}
	_, err := c.invoke(ctx, info, func(ctx context.Context) (interface{}, error) {
		_, err := c.executeSimple(ctx, OpStop, nil)
		return nil, err
	})
	return err
}
