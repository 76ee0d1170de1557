package fins

import (
	"encoding/binary"
	"fmt"
)

// FINS command codes.
const (
	CommandCodeMemoryAreaRead  uint16 = 0x0101
	CommandCodeMemoryAreaWrite uint16 = 0x0102
	CommandCodeRun             uint16 = 0x0401
	CommandCodeStop            uint16 = 0x0402
	CommandCodeCPUUnitStatus   uint16 = 0x0601
	CommandCodeClockRead       uint16 = 0x0701
	CommandCodeClockWrite      uint16 = 0x0702
	CommandCodeUnitNameSet     uint16 = 0x2601
)

// Frame layout constants.
const (
	headerSize      = 10 // FINS header is always 10 bytes
	commandCodeSize = 2
	endCodeSize     = 2
	minResponseSize = headerSize + commandCodeSize + endCodeSize

	// maxCommandBody bounds the body of one command frame. The classic
	// FINS frame limit is 2012 bytes including header and command code.
	maxCommandBody = 2000
)

// Header byte offsets.
const (
	icfIndex          = 0
	gatewayCountIndex = 2
	dstNetworkIndex   = 3
	dstNodeIndex      = 4
	dstUnitIndex      = 5
	srcNetworkIndex   = 6
	srcNodeIndex      = 7
	srcUnitIndex      = 8
	serviceIDIndex    = 9
)

const (
	icfBridgesBit          byte = 7
	icfMessageTypeBit      byte = 6
	icfResponseRequiredBit byte = 0
)

// request is a decoded FINS command frame.
type request struct {
	header      Header
	commandCode uint16
	data        []byte
}

// response is a decoded FINS response frame.
type response struct {
	header      Header
	commandCode uint16
	endCode     uint16
	data        []byte
}

func encodeHeader(h Header) []byte {
	icf := byte(1) << icfBridgesBit
	if !h.responseRequired {
		icf |= 1 << icfResponseRequiredBit
	}
	if h.messageType == MessageTypeResponse {
		icf |= 1 << icfMessageTypeBit
	}
	return []byte{
		icf, 0x00, h.gatewayCount,
		h.dst.Network, h.dst.Node, h.dst.Unit,
		h.src.Network, h.src.Node, h.src.Unit,
		h.serviceID,
	}
}

func decodeHeader(b []byte) Header {
	h := Header{}
	icf := b[icfIndex]
	if icf&(1<<icfResponseRequiredBit) == 0 {
		h.responseRequired = true
	}
	if icf&(1<<icfMessageTypeBit) == 0 {
		h.messageType = MessageTypeCommand
	} else {
		h.messageType = MessageTypeResponse
	}
	h.gatewayCount = b[gatewayCountIndex]
	h.dst = FinsAddress{b[dstNetworkIndex], b[dstNodeIndex], b[dstUnitIndex]}
	h.src = FinsAddress{b[srcNetworkIndex], b[srcNodeIndex], b[srcUnitIndex]}
	h.serviceID = b[serviceIDIndex]
	return h
}

func decodeRequest(b []byte) (request, error) {
	if len(b) < headerSize+commandCodeSize {
		return request{}, BodyTooShortError{Expected: headerSize + commandCodeSize, Got: len(b)}
	}
	return request{
		header:      decodeHeader(b[:headerSize]),
		commandCode: binary.BigEndian.Uint16(b[headerSize : headerSize+commandCodeSize]),
		data:        b[headerSize+commandCodeSize:],
	}, nil
}

func decodeResponse(b []byte) (response, error) {
	if len(b) < minResponseSize {
		return response{}, BodyTooShortError{Expected: minResponseSize, Got: len(b)}
	}
	return response{
		header:      decodeHeader(b[:headerSize]),
		commandCode: binary.BigEndian.Uint16(b[headerSize : headerSize+commandCodeSize]),
		endCode:     binary.BigEndian.Uint16(b[headerSize+commandCodeSize : minResponseSize]),
		data:        b[minResponseSize:],
	}, nil
}

func encodeResponse(r response) []byte {
	b := encodeHeader(r.header)
	b = binary.BigEndian.AppendUint16(b, r.commandCode)
	b = binary.BigEndian.AppendUint16(b, r.endCode)
	return append(b, r.data...)
}

// bodyWriter builds a command body inside the frame bound with explicit
// checks instead of raw offset arithmetic. The first write that would
// exceed the bound latches an error; bytes() reports it.
type bodyWriter struct {
	buf []byte
	max int
	err error
}

func newBodyWriter() *bodyWriter {
	return &bodyWriter{buf: make([]byte, 0, 16), max: maxCommandBody}
}

func (w *bodyWriter) room(n int) bool {
	if w.err != nil {
		return false
	}
	if len(w.buf)+n > w.max {
		w.err = fmt.Errorf("fins: command body exceeds %d bytes", w.max)
		return false
	}
	return true
}

func (w *bodyWriter) writeByte(b byte) {
	if w.room(1) {
		w.buf = append(w.buf, b)
	}
}

func (w *bodyWriter) writeUint16(v uint16) {
	if w.room(2) {
		w.buf = binary.BigEndian.AppendUint16(w.buf, v)
	}
}

func (w *bodyWriter) writeBytes(p []byte) {
	if w.room(len(p)) {
		w.buf = append(w.buf, p...)
	}
}

// writeWireAddress appends the fixed 4 byte address field: area code, word
// address high then low byte, bit index.
func (w *bodyWriter) writeWireAddress(area *MemoryArea, origin uint32, bit byte) {
	w.writeByte(area.Code)
	w.writeByte(byte(origin >> 8))
	w.writeByte(byte(origin))
	w.writeByte(bit)
}

func (w *bodyWriter) bytes() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	return w.buf, nil
}

// bodyReader walks a response body with bounds checks.
type bodyReader struct {
	buf []byte
	off int
}

func newBodyReader(b []byte) *bodyReader {
	return &bodyReader{buf: b}
}

func (r *bodyReader) remaining() int {
	return len(r.buf) - r.off
}

func (r *bodyReader) readByte() (byte, bool) {
	if r.remaining() < 1 {
		return 0, false
	}
	b := r.buf[r.off]
	r.off++
	return b, true
}

func (r *bodyReader) readUint16() (uint16, bool) {
	if r.remaining() < 2 {
		return 0, false
	}
	v := binary.BigEndian.Uint16(r.buf[r.off : r.off+2])
	r.off += 2
	return v, true
}

func (r *bodyReader) readBytes(n int) ([]byte, bool) {
	if r.remaining() < n {
		return nil, false
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, true
}

// buildCommand prepends the command code to a body.
func buildCommand(code uint16, body []byte) []byte {
	cmd := make([]byte, commandCodeSize, commandCodeSize+len(body))
	binary.BigEndian.PutUint16(cmd, code)
	return append(cmd, body...)
}

// readCommand builds a memory area read for count elements at the wire
// origin.
func readCommand(addr memoryAddress, origin uint32, count int) ([]byte, error) {
	w := newBodyWriter()
	w.writeWireAddress(addr.area, origin, addr.bit)
	w.writeUint16(uint16(count))
	body, err := w.bytes()
	if err != nil {
		return nil, err
	}
	return buildCommand(CommandCodeMemoryAreaRead, body), nil
}

// writeCommand builds a memory area write for count elements at the wire
// origin, followed by the element payload.
func writeCommand(addr memoryAddress, origin uint32, count int, payload []byte) ([]byte, error) {
	w := newBodyWriter()
	w.writeWireAddress(addr.area, origin, addr.bit)
	w.writeUint16(uint16(count))
	w.writeBytes(payload)
	body, err := w.bytes()
	if err != nil {
		return nil, err
	}
	return buildCommand(CommandCodeMemoryAreaWrite, body), nil
}

// commandSpec describes one simple (single frame, fixed layout) command.
// The per-command wrappers all flow through this table and one generic
// execution path rather than one hand-rolled function per opcode.
type commandSpec struct {
	code      uint16
	minResp   int  // minimum payload length past the end code
	exactResp bool // payload must be exactly minResp bytes
}

var simpleCommands = map[OperationType]commandSpec{
	OpRun:        {code: CommandCodeRun},
	OpStop:       {code: CommandCodeStop},
	OpReadStatus: {code: CommandCodeCPUUnitStatus, minResp: 4},
	OpReadClock:  {code: CommandCodeClockRead, minResp: 6},
	OpWriteClock: {code: CommandCodeClockWrite},
	OpSetName:    {code: CommandCodeUnitNameSet, exactResp: true},
}
