package fins

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"
	"time"
)

const serverBufferSize = 4096

type serverConfig struct {
	transport transportKind
}

// ServerOption configures the PLC simulator.
type ServerOption func(*serverConfig)

// WithTCPTransport switches the simulator to FINS/TCP instead of UDP.
func WithTCPTransport() ServerOption {
	return func(cfg *serverConfig) {
		cfg.transport = transportTCP
	}
}

// Server is a PLC simulator. It backs every memory area of the area table
// with real storage and answers the commands the client can issue, which
// makes it usable both for tests and as a standalone mock device.
type Server struct {
	addr      Address
	conn      *net.UDPConn
	ln        *net.TCPListener
	transport transportKind

	memMu    sync.RWMutex
	words    map[byte][]uint16
	bits     map[byte][]byte
	unitName string
	running  bool
	mode     byte
	clock    *time.Time

	closed     bool
	closeMutex sync.RWMutex
	errChan    chan error
	done       chan struct{}
}

// NewPLCSimulator creates a simulator listening on the given address.
func NewPLCSimulator(plcAddr Address, opts ...ServerOption) (*Server, error) {
	cfg := serverConfig{transport: transportUDP}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Server{
		addr:      plcAddr,
		transport: cfg.transport,
		words:     make(map[byte][]uint16),
		bits:      make(map[byte][]byte),
		running:   true,
		mode:      0x04,
		errChan:   make(chan error, errorChannelBuffer),
		done:      make(chan struct{}),
	}
	for i := range areaTable {
		a := &areaTable[i]
		size := int(a.High) + 1
		if a.Bit {
			if len(s.bits[a.Code]) < size*16 {
				s.bits[a.Code] = make([]byte, size*16)
			}
		} else {
			if len(s.words[a.Code]) < size {
				s.words[a.Code] = make([]uint16, size)
			}
		}
	}

	switch cfg.transport {
	case transportUDP:
		conn, err := net.ListenUDP("udp", plcAddr.UdpAddress)
		if err != nil {
			return nil, err
		}
		s.conn = conn
		go s.udpLoop()
	case transportTCP:
		if plcAddr.TcpAddress == nil {
			return nil, fmt.Errorf("fins: TCP address is required for TCP simulator")
		}
		ln, err := net.ListenTCP("tcp", plcAddr.TcpAddress)
		if err != nil {
			return nil, err
		}
		s.ln = ln
		go s.tcpAcceptLoop()
	default:
		return nil, fmt.Errorf("fins: unsupported simulator transport")
	}

	return s, nil
}

// IsClosed reports whether the server has been closed.
func (s *Server) IsClosed() bool {
	s.closeMutex.RLock()
	defer s.closeMutex.RUnlock()
	return s.closed
}

// Err returns the channel carrying server loop errors.
func (s *Server) Err() <-chan error {
	return s.errChan
}

// Close shuts the simulator down.
func (s *Server) Close() error {
	s.closeMutex.Lock()
	if s.closed {
		s.closeMutex.Unlock()
		return nil
	}
	s.closed = true
	s.closeMutex.Unlock()

	close(s.done)
	switch s.transport {
	case transportUDP:
		if s.conn != nil {
			return s.conn.Close()
		}
	case transportTCP:
		if s.ln != nil {
			return s.ln.Close()
		}
	}
	return nil
}

// UnitName returns the name last set through the unit name command.
func (s *Server) UnitName() string {
	s.memMu.RLock()
	defer s.memMu.RUnlock()
	return s.unitName
}

// Running reports the simulated CPU run state.
func (s *Server) Running() bool {
	s.memMu.RLock()
	defer s.memMu.RUnlock()
	return s.running
}

// InlineClient returns an in-process client for the simulator's memory.
// Useful in tests where sending real frames is unnecessary.
func (s *Server) InlineClient() *InlineClient {
	return &InlineClient{srv: s, byteOrder: binary.BigEndian}
}

// readAreaWords copies count words from a word area, starting at the wire
// address.
func (s *Server) readAreaWords(code byte, origin uint32, count int) ([]byte, uint16) {
	arr, ok := s.words[code]
	if !ok {
		return nil, EndCodeAreaClassificationMiss
	}
	start := int(origin)
	if start+count > len(arr) {
		return nil, EndCodeAddressRangeExceeded
	}
	data := make([]byte, 2*count)
	s.memMu.RLock()
	for i := 0; i < count; i++ {
		binary.BigEndian.PutUint16(data[2*i:2*i+2], arr[start+i])
	}
	s.memMu.RUnlock()
	return data, EndCodeNormalCompletion
}

// writeAreaWords stores count words into a word area.
func (s *Server) writeAreaWords(code byte, origin uint32, count int, payload []byte) uint16 {
	arr, ok := s.words[code]
	if !ok {
		return EndCodeAreaClassificationMiss
	}
	start := int(origin)
	if start+count > len(arr) {
		return EndCodeAddressRangeExceeded
	}
	if len(payload) < 2*count {
		return EndCodeCommandTooLong
	}
	s.memMu.Lock()
	for i := 0; i < count; i++ {
		arr[start+i] = binary.BigEndian.Uint16(payload[2*i : 2*i+2])
	}
	s.memMu.Unlock()
	return EndCodeNormalCompletion
}

// readAreaBits copies count bits starting at word.bit of a bit area.
func (s *Server) readAreaBits(code byte, origin uint32, bit byte, count int) ([]byte, uint16) {
	arr, ok := s.bits[code]
	if !ok {
		return nil, EndCodeAreaClassificationMiss
	}
	start := int(origin)*16 + int(bit)
	if start+count > len(arr) {
		return nil, EndCodeAddressRangeExceeded
	}
	data := make([]byte, count)
	s.memMu.RLock()
	copy(data, arr[start:start+count])
	s.memMu.RUnlock()
	return data, EndCodeNormalCompletion
}

// writeAreaBits stores count bits starting at word.bit of a bit area.
func (s *Server) writeAreaBits(code byte, origin uint32, bit byte, count int, payload []byte) uint16 {
	arr, ok := s.bits[code]
	if !ok {
		return EndCodeAreaClassificationMiss
	}
	start := int(origin)*16 + int(bit)
	if start+count > len(arr) {
		return EndCodeAddressRangeExceeded
	}
	if len(payload) < count {
		return EndCodeCommandTooLong
	}
	s.memMu.Lock()
	for i := 0; i < count; i++ {
		arr[start+i] = payload[i] & 0x01
	}
	s.memMu.Unlock()
	return EndCodeNormalCompletion
}

func (s *Server) handler(r request) response {
	var endCode uint16
	var data []byte

	switch r.commandCode {
	case CommandCodeMemoryAreaRead, CommandCodeMemoryAreaWrite:
		rd := newBodyReader(r.data)
		code, _ := rd.readByte()
		hi, _ := rd.readByte()
		lo, _ := rd.readByte()
		bit, _ := rd.readByte()
		count16, ok := rd.readUint16()
		if !ok {
			endCode = EndCodeCommandTooLong
			break
		}
		origin := uint32(hi)<<8 | uint32(lo)
		count := int(count16)

		if _, isBit := s.bits[code]; isBit {
			if r.commandCode == CommandCodeMemoryAreaRead {
				data, endCode = s.readAreaBits(code, origin, bit, count)
			} else {
				payload, _ := rd.readBytes(rd.remaining())
				endCode = s.writeAreaBits(code, origin, bit, count, payload)
			}
		} else {
			if r.commandCode == CommandCodeMemoryAreaRead {
				data, endCode = s.readAreaWords(code, origin, count)
			} else {
				payload, _ := rd.readBytes(rd.remaining())
				endCode = s.writeAreaWords(code, origin, count, payload)
			}
		}

	case CommandCodeRun:
		s.memMu.Lock()
		s.running = true
		s.mode = 0x04
		s.memMu.Unlock()
		endCode = EndCodeNormalCompletion

	case CommandCodeStop:
		s.memMu.Lock()
		s.running = false
		s.mode = 0x00
		s.memMu.Unlock()
		endCode = EndCodeNormalCompletion

	case CommandCodeCPUUnitStatus:
		s.memMu.RLock()
		var status byte
		if s.running {
			status = 0x01
		}
		data = []byte{status, s.mode, 0x00, 0x00, 0x00, 0x00}
		s.memMu.RUnlock()
		endCode = EndCodeNormalCompletion

	case CommandCodeClockRead:
		s.memMu.RLock()
		now := time.Now()
		if s.clock != nil {
			now = *s.clock
		}
		s.memMu.RUnlock()
		data = encodeClock(now)
		endCode = EndCodeNormalCompletion

	case CommandCodeClockWrite:
		t, ok := decodeClock(r.data)
		if !ok {
			endCode = EndCodeCommandTooLong
			break
		}
		s.memMu.Lock()
		s.clock = &t
		s.memMu.Unlock()
		endCode = EndCodeNormalCompletion

	case CommandCodeUnitNameSet:
		if len(r.data) > unitNameLimit {
			endCode = EndCodeCommandTooLong
			break
		}
		s.memMu.Lock()
		s.unitName = string(r.data)
		s.memMu.Unlock()
		endCode = EndCodeNormalCompletion

	default:
		endCode = EndCodeServiceUnsupported
	}

	if data == nil {
		data = []byte{}
	}
	return response{responseHeader(r.header), r.commandCode, endCode, data}
}

// encodeClock returns BCD clock fields in the order year, month, day,
// hour, minute, second, day of week. Year carries two digits.
func encodeClock(t time.Time) []byte {
	return []byte{
		bcdByte(t.Year() % 100),
		bcdByte(int(t.Month())),
		bcdByte(t.Day()),
		bcdByte(t.Hour()),
		bcdByte(t.Minute()),
		bcdByte(t.Second()),
		bcdByte(int(t.Weekday())),
	}
}

func decodeClock(b []byte) (time.Time, bool) {
	if len(b) < 6 {
		return time.Time{}, false
	}
	fields := make([]int, 6)
	for i := range fields {
		v, ok := byteBCD(b[i])
		if !ok {
			return time.Time{}, false
		}
		fields[i] = v
	}
	year := fields[0]
	if year < 50 {
		year += 2000
	} else {
		year += 1900
	}
	return time.Date(year, time.Month(fields[1]), fields[2], fields[3], fields[4], fields[5], 0, time.Local), true
}

func (s *Server) udpLoop() {
	defer close(s.errChan)

	var buf [serverBufferSize]byte
	for {
		select {
		case <-s.done:
			return
		default:
		}

		rlen, remote, err := s.conn.ReadFromUDP(buf[:])
		if err != nil {
			if s.IsClosed() {
				return
			}
			s.errChan <- fmt.Errorf("fins: server read error: %w", err)
			return
		}

		if rlen == 0 {
			continue
		}
		req, derr := decodeRequest(buf[:rlen])
		if derr != nil {
			continue
		}
		resp := s.handler(req)

		if _, err := s.conn.WriteToUDP(encodeResponse(resp), &net.UDPAddr{IP: remote.IP, Port: remote.Port}); err != nil {
			if s.IsClosed() {
				return
			}
			s.errChan <- fmt.Errorf("fins: server write error: %w", err)
			return
		}
	}
}

func (s *Server) tcpAcceptLoop() {
	defer close(s.errChan)

	for {
		conn, err := s.ln.AcceptTCP()
		if err != nil {
			if s.IsClosed() {
				return
			}
			s.errChan <- fmt.Errorf("fins: accept error: %w", err)
			return
		}
		go s.handleTCPConn(conn)
	}
}

func (s *Server) handleTCPConn(conn *net.TCPConn) {
	defer conn.Close()
	reader := bufio.NewReader(conn)

	// Handshake first.
	msg, err := readTCPMessage(reader)
	if err != nil {
		if !s.IsClosed() {
			s.errChan <- fmt.Errorf("fins: handshake read error: %w", err)
		}
		return
	}
	if msg.command != finsTCPHandshakeCommand {
		return
	}
	if _, err := conn.Write(finsTCPFrame(finsTCPHandshakeCommand, nil)); err != nil {
		if !s.IsClosed() {
			s.errChan <- fmt.Errorf("fins: handshake write error: %w", err)
		}
		return
	}

	for {
		msg, err := readTCPMessage(reader)
		if err != nil {
			if !s.IsClosed() && err != io.EOF {
				s.errChan <- fmt.Errorf("fins: read error: %w", err)
			}
			return
		}
		if msg.command != finsTCPDataCommand {
			continue
		}
		req, derr := decodeRequest(msg.body)
		if derr != nil {
			continue
		}
		resp := s.handler(req)
		frame := finsTCPFrame(finsTCPDataCommand, encodeResponse(resp))
		if _, err := conn.Write(frame); err != nil {
			if !s.IsClosed() {
				s.errChan <- fmt.Errorf("fins: write error: %w", err)
			}
			return
		}
	}
}

func readTCPMessage(reader *bufio.Reader) (*finsTCPMessage, error) {
	header := make([]byte, 8)
	if _, err := io.ReadFull(reader, header); err != nil {
		return nil, err
	}
	if string(header[:4]) != finsTCPSignature {
		return nil, fmt.Errorf("fins: invalid FINS/TCP signature %q", header[:4])
	}
	length := binary.BigEndian.Uint32(header[4:8])
	if length < 8 {
		return nil, fmt.Errorf("fins: invalid FINS/TCP length %d", length)
	}
	body := make([]byte, length)
	if _, err := io.ReadFull(reader, body); err != nil {
		return nil, err
	}
	return &finsTCPMessage{
		command:   binary.BigEndian.Uint32(body[0:4]),
		errorCode: binary.BigEndian.Uint32(body[4:8]),
		body:      body[8:],
	}, nil
}
