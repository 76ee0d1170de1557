package fins

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

const (
	DefaultResponseTimeout = 2 * time.Second
	DefaultResendLimit     = 0

	readBufferSize        = 4096
	maxServiceIDCount     = 256 // service ids are one byte
	errorChannelBuffer    = 1
	responseChannelBuffer = 1
	closeTimeout          = 1 * time.Second

	defaultMaxReconnect   = 5
	defaultReconnectDelay = 1 * time.Second
	maxReconnectDelay     = 30 * time.Second
)

// Client is a FINS client for one remote PLC. It owns the session: the
// connection, the service id counter and the life-cycle state.
//
// One transaction is outstanding per client at a time; concurrent callers
// must serialize externally or use one client each. Configuration setters
// are not safe to call concurrently with operations.
type Client struct {
	tr   transport
	kind transportKind

	dst FinsAddress
	src FinsAddress

	// Remembered for reconnection.
	localUDP  *net.UDPAddr
	remoteUDP *net.UDPAddr
	localTCP  *net.TCPAddr
	remoteTCP *net.TCPAddr

	state atomic.Int32

	resp      []chan response
	respMutex sync.RWMutex // protects resp slice access
	sidMutex  sync.Mutex   // protects sid incrementation
	sid       byte

	responseTimeout time.Duration
	resendLimit     int
	byteOrder       binary.ByteOrder

	hookMutex   sync.RWMutex
	interceptor Interceptor
	plugins     pluginManager

	closed     bool
	closeMutex sync.RWMutex
	listenErr  chan error
	done       chan struct{}

	autoReconnect  bool
	maxReconnect   int
	reconnectDelay time.Duration
	reconnecting   bool
	reconnectMutex sync.RWMutex
}

func newClient(localAddr, plcAddr Address, kind transportKind) *Client {
	c := &Client{
		kind:            kind,
		dst:             plcAddr.FinAddress,
		src:             localAddr.FinAddress,
		localUDP:        localAddr.UdpAddress,
		remoteUDP:       plcAddr.UdpAddress,
		localTCP:        localAddr.TcpAddress,
		remoteTCP:       plcAddr.TcpAddress,
		responseTimeout: DefaultResponseTimeout,
		resendLimit:     DefaultResendLimit,
		byteOrder:       binary.BigEndian,
		listenErr:       make(chan error, errorChannelBuffer),
		done:            make(chan struct{}),
		maxReconnect:    defaultMaxReconnect,
		reconnectDelay:  defaultReconnectDelay,
	}
	c.resp = make([]chan response, maxServiceIDCount)
	return c
}

// NewUDPClient connects to the PLC over the datagram transport.
func NewUDPClient(localAddr, plcAddr Address) (*Client, error) {
	c := newClient(localAddr, plcAddr, transportUDP)
	c.setState(StateConnecting)
	tr, err := newUDPTransport(c.localUDP, c.remoteUDP)
	if err != nil {
		c.setState(StateDisconnected)
		return nil, err
	}
	c.tr = tr
	c.setState(StateConnected)
	go c.listenLoop(tr)
	return c, nil
}

// NewTCPClient connects to the PLC over FINS/TCP, performing the initial
// handshake before the client becomes usable.
func NewTCPClient(ctx context.Context, localAddr, plcAddr Address) (*Client, error) {
	c := newClient(localAddr, plcAddr, transportTCP)
	c.setState(StateConnecting)
	tr, err := newTCPTransport(ctx, c.localTCP, c.remoteTCP)
	if err != nil {
		c.setState(StateDisconnected)
		return nil, err
	}
	c.tr = tr
	c.setState(StateConnected)
	go c.listenLoop(tr)
	return c, nil
}

// State returns the current session state.
func (c *Client) State() SessionState {
	return SessionState(c.state.Load())
}

func (c *Client) setState(s SessionState) {
	c.state.Store(int32(s))
}

// SetByteOrder sets the byte order used to assemble data words.
// Default: binary.BigEndian, the FINS wire order.
func (c *Client) SetByteOrder(o binary.ByteOrder) {
	if o != nil {
		c.byteOrder = o
	}
}

// SetTimeout sets the per-transaction response timeout.
// A timeout of zero blocks until the context expires.
func (c *Client) SetTimeout(d time.Duration) {
	c.responseTimeout = d
}

// SetResendLimit sets how many times a request is retransmitted after a
// response timeout before the transaction fails.
func (c *Client) SetResendLimit(n int) {
	if n >= 0 {
		c.resendLimit = n
	}
}

// SetInterceptor installs an operation interceptor. Use ChainInterceptors
// to install more than one.
func (c *Client) SetInterceptor(i Interceptor) {
	c.hookMutex.Lock()
	c.interceptor = i
	c.hookMutex.Unlock()
}

// Use registers plugins with the client.
func (c *Client) Use(plugins ...Plugin) error {
	return c.plugins.use(c, plugins...)
}

// EnableAutoReconnect enables automatic reconnection on connection
// failures. maxRetries 0 retries forever; delay grows exponentially up to
// a cap.
func (c *Client) EnableAutoReconnect(maxRetries int, initialDelay time.Duration) {
	c.reconnectMutex.Lock()
	defer c.reconnectMutex.Unlock()
	c.autoReconnect = true
	c.maxReconnect = maxRetries
	c.reconnectDelay = initialDelay
}

// DisableAutoReconnect disables automatic reconnection.
func (c *Client) DisableAutoReconnect() {
	c.reconnectMutex.Lock()
	defer c.reconnectMutex.Unlock()
	c.autoReconnect = false
}

// IsReconnecting reports whether a reconnection attempt is in progress.
func (c *Client) IsReconnecting() bool {
	c.reconnectMutex.RLock()
	defer c.reconnectMutex.RUnlock()
	return c.reconnecting
}

// IsClosed reports whether the client has been closed.
func (c *Client) IsClosed() bool {
	c.closeMutex.RLock()
	defer c.closeMutex.RUnlock()
	return c.closed
}

// Err returns the channel carrying terminal listen loop errors.
func (c *Client) Err() <-chan error {
	return c.listenErr
}

// Close closes the connection and ends the session.
func (c *Client) Close() error {
	c.closeMutex.Lock()
	if c.closed {
		c.closeMutex.Unlock()
		return nil
	}
	c.closed = true
	c.closeMutex.Unlock()

	c.setState(StateClosing)
	close(c.done)
	var err error
	if c.tr != nil {
		err = c.tr.Close()
	}

	// Give the listen loop a moment to notice.
	select {
	case <-c.listenErr:
	case <-time.After(closeTimeout):
	}

	c.setState(StateDisconnected)
	return err
}

// Shutdown stops any reconnection attempts and closes the client.
func (c *Client) Shutdown() error {
	c.DisableAutoReconnect()
	return c.Close()
}

// reconnect redials the transport with exponential backoff.
func (c *Client) reconnect() error {
	c.reconnectMutex.Lock()
	if c.reconnecting {
		c.reconnectMutex.Unlock()
		return fmt.Errorf("fins: already reconnecting")
	}
	c.reconnecting = true
	maxRetries := c.maxReconnect
	delay := c.reconnectDelay
	c.reconnectMutex.Unlock()

	defer func() {
		c.reconnectMutex.Lock()
		c.reconnecting = false
		c.reconnectMutex.Unlock()
	}()

	var lastErr error
	attempts := 0

	for {
		if c.IsClosed() {
			return fmt.Errorf("fins: client closed during reconnection")
		}

		c.reconnectMutex.RLock()
		enabled := c.autoReconnect
		c.reconnectMutex.RUnlock()
		if !enabled {
			return fmt.Errorf("fins: auto-reconnect disabled")
		}

		if maxRetries > 0 && attempts >= maxRetries {
			return fmt.Errorf("fins: max reconnection attempts (%d) reached: %w", maxRetries, lastErr)
		}
		attempts++

		if attempts > 1 {
			time.Sleep(delay)
			delay *= 2
			if delay > maxReconnectDelay {
				delay = maxReconnectDelay
			}
		}

		c.setState(StateConnecting)
		var (
			tr  transport
			err error
		)
		switch c.kind {
		case transportUDP:
			tr, err = newUDPTransport(c.localUDP, c.remoteUDP)
		case transportTCP:
			tr, err = newTCPTransport(context.Background(), c.localTCP, c.remoteTCP)
		}
		if err != nil {
			c.setState(StateDisconnected)
			lastErr = err
			continue
		}

		if c.tr != nil {
			_ = c.tr.Close()
		}
		c.tr = tr
		c.setState(StateConnected)
		c.plugins.notifyConnected(c)

		go c.listenLoop(tr)
		return nil
	}
}

func (c *Client) nextHeader() Header {
	sid := c.incrementSid()
	return commandHeader(c.src, c.dst, sid)
}

func (c *Client) incrementSid() byte {
	c.sidMutex.Lock()
	defer c.sidMutex.Unlock()
	c.sid++ // wraps at 255
	sid := c.sid

	c.respMutex.Lock()
	c.resp[sid] = make(chan response, responseChannelBuffer)
	c.respMutex.Unlock()

	return sid
}

// execute serializes a command onto the session and, when a response is
// expected, blocks until the response carrying the same service id arrives
// or the session timeout elapses, retransmitting up to the resend limit.
func (c *Client) execute(ctx context.Context, command []byte, expectResponse bool) (*response, error) {
	if c.IsClosed() {
		return nil, ClientClosedError{}
	}
	if st := c.State(); st != StateConnected {
		return nil, NotConnectedError{State: st}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	header := c.nextHeader()
	frame := append(encodeHeader(header), command...)

	c.respMutex.RLock()
	respChan := c.resp[header.serviceID]
	c.respMutex.RUnlock()

	attempts := c.resendLimit + 1
	for attempt := 0; attempt < attempts; attempt++ {
		if err := c.tr.Send(ctx, frame); err != nil {
			return nil, err
		}
		if !expectResponse {
			return nil, nil
		}

		if c.responseTimeout <= 0 {
			select {
			case resp := <-respChan:
				return &resp, nil
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-c.done:
				return nil, ClientClosedError{}
			}
		}

		select {
		case resp := <-respChan:
			return &resp, nil
		case <-time.After(c.responseTimeout):
			// Fall through to the next resend attempt.
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-c.done:
			return nil, ClientClosedError{}
		}
	}
	return nil, ResponseTimeoutError{Timeout: c.responseTimeout, Resends: c.resendLimit}
}

func checkResponse(r *response, err error) (*response, error) {
	if err != nil {
		return nil, err
	}
	if r.endCode != EndCodeNormalCompletion {
		return nil, EndCodeError{EndCode: r.endCode}
	}
	return r, nil
}

func (c *Client) listenLoop(tr transport) {
	for {
		payload, err := tr.Recv(context.Background())
		if err != nil {
			select {
			case <-c.done:
				return
			default:
			}

			c.setState(StateDisconnected)
			c.plugins.notifyDisconnected(c, err)

			c.reconnectMutex.RLock()
			shouldReconnect := c.autoReconnect
			c.reconnectMutex.RUnlock()

			if shouldReconnect && !c.IsClosed() {
				if rerr := c.reconnect(); rerr != nil {
					c.listenErr <- fmt.Errorf("fins: reconnection failed: %w (read error: %v)", rerr, err)
				}
				// Either way this loop is done; a successful
				// reconnect started a new one.
				return
			}

			if !c.IsClosed() {
				c.listenErr <- fmt.Errorf("fins: listen loop error: %w", err)
			}
			return
		}

		ans, derr := decodeResponse(payload)
		if derr != nil || ans.header.messageType != MessageTypeResponse {
			// Runt or stray frame; not a response of ours.
			continue
		}

		c.respMutex.RLock()
		if ch := c.resp[ans.header.serviceID]; ch != nil {
			select {
			case ch <- ans:
			default:
				// No waiter anymore (timed out), drop.
			}
		}
		c.respMutex.RUnlock()
	}
}

func (c *Client) invoke(ctx context.Context, info *InterceptorInfo, fn Invoker) (interface{}, error) {
	c.hookMutex.RLock()
	i := c.interceptor
	c.hookMutex.RUnlock()
	if i != nil {
		return i(ctx, info, fn)
	}
	return fn(ctx)
}

// checkBulkPreconditions runs the pre-I/O checks shared by every chunked
// operation, in detection order: trivial success, missing input, session
// state, address resolution.
func (c *Client) checkBulkPreconditions(address string, count int, bitWidth int, direction AreaAccess) (memoryAddress, error) {
	if address == "" {
		return memoryAddress{}, ErrNoAddress
	}
	if count < 0 {
		return memoryAddress{}, fmt.Errorf("fins: negative element count %d", count)
	}
	if c.IsClosed() {
		return memoryAddress{}, ClientClosedError{}
	}
	if st := c.State(); st != StateConnected {
		return memoryAddress{}, NotConnectedError{State: st}
	}
	return resolveAddress(address, bitWidth, direction)
}

// readWordChunks performs a chunked memory area read of count words and
// hands each word to store together with its element index. Chunks run
// strictly in order; a failure at chunk k leaves elements [0, k·max)
// already stored.
func (c *Client) readWordChunks(ctx context.Context, address string, count int, store func(index int, w uint16)) error {
	if count == 0 {
		return nil
	}
	addr, err := c.checkBulkPreconditions(address, count, 16, AccessRead)
	if err != nil {
		return err
	}

	plan := newChunkPlan(addr.wireOrigin(), count, c.tr.MaxReadWords())
	for ck, ok := plan.next(); ok; ck, ok = plan.next() {
		if !addr.area.containsWire(ck.origin, ck.length) {
			return InvalidAddressError{Text: address, Direction: AccessRead}
		}
		cmd, err := readCommand(addr, ck.origin, ck.length)
		if err != nil {
			return err
		}
		r, err := checkResponse(c.execute(ctx, cmd, true))
		if err != nil {
			return err
		}
		if len(r.data) < 2*ck.length {
			return BodyTooShortError{Expected: endCodeSize + 2*ck.length, Got: endCodeSize + len(r.data)}
		}
		for i := 0; i < ck.length; i++ {
			store(ck.offset+i, c.byteOrder.Uint16(r.data[2*i:2*i+2]))
		}
	}
	return nil
}

// writeWordChunks performs a chunked memory area write of count words,
// pulling each word from load by element index.
func (c *Client) writeWordChunks(ctx context.Context, address string, count int, load func(index int) uint16) error {
	if count == 0 {
		return nil
	}
	addr, err := c.checkBulkPreconditions(address, count, 16, AccessWrite)
	if err != nil {
		return err
	}

	plan := newChunkPlan(addr.wireOrigin(), count, c.tr.MaxWriteWords())
	for ck, ok := plan.next(); ok; ck, ok = plan.next() {
		if !addr.area.containsWire(ck.origin, ck.length) {
			return InvalidAddressError{Text: address, Direction: AccessWrite}
		}
		payload := make([]byte, 2*ck.length)
		for i := 0; i < ck.length; i++ {
			c.byteOrder.PutUint16(payload[2*i:2*i+2], load(ck.offset+i))
		}
		cmd, err := writeCommand(addr, ck.origin, ck.length, payload)
		if err != nil {
			return err
		}
		if _, err := checkResponse(c.execute(ctx, cmd, true)); err != nil {
			return err
		}
	}
	return nil
}

// bitChunks walks a chunked bit transfer. Bit elements advance through bit
// addresses, so the wire word and bit index are recomputed as the offset
// moves instead of adding chunk lengths to the word origin.
func (c *Client) bitChunks(ctx context.Context, address string, count int, direction AreaAccess,
	run func(addr memoryAddress, origin uint32, bit byte, offset, length int) error) error {
	if count == 0 {
		return nil
	}
	addr, err := c.checkBulkPreconditions(address, count, 1, direction)
	if err != nil {
		return err
	}

	max := c.tr.MaxReadWords()
	if direction == AccessWrite {
		max = c.tr.MaxWriteWords()
	}

	plan := newChunkPlan(0, count, max)
	for ck, ok := plan.next(); ok; ck, ok = plan.next() {
		firstBit := int(addr.bit) + ck.offset
		origin := addr.wireOrigin() + uint32(firstBit/16)
		lastWord := addr.wireOrigin() + uint32((firstBit+ck.length-1)/16)
		if !addr.area.containsWire(origin, int(lastWord-origin)+1) {
			return InvalidAddressError{Text: address, Direction: direction}
		}
		if err := run(addr, origin, byte(firstBit%16), ck.offset, ck.length); err != nil {
			return err
		}
	}
	return nil
}

// ReadWords reads count words starting at a textual address, e.g. "DM100".
func (c *Client) ReadWords(ctx context.Context, address string, count int) ([]uint16, error) {
	info := &InterceptorInfo{Operation: OpReadWords, Address: address, Count: count}
	res, err := c.invoke(ctx, info, func(ctx context.Context) (interface{}, error) {
		out := make([]uint16, count)
		err := c.readWordChunks(ctx, address, count, func(i int, w uint16) { out[i] = w })
		return out, err
	})
	out, _ := res.([]uint16)
	return out, err
}

// ReadBCD16 reads count unsigned BCD words. Words that do not decode as
// BCD appear as InvalidBCDValue in the result; the read itself still
// succeeds.
func (c *Client) ReadBCD16(ctx context.Context, address string, count int) ([]uint16, error) {
	info := &InterceptorInfo{Operation: OpReadBCD16, Address: address, Count: count}
	res, err := c.invoke(ctx, info, func(ctx context.Context) (interface{}, error) {
		out := make([]uint16, count)
		err := c.readWordChunks(ctx, address, count, func(i int, w uint16) {
			out[i] = DecodeBCD16(w)
		})
		return out, err
	})
	out, _ := res.([]uint16)
	return out, err
}

// ReadSignedBCD16 reads count signed BCD words under the given format.
// Undecodable words appear as InvalidBCDValue.
func (c *Client) ReadSignedBCD16(ctx context.Context, address string, count int, format BCDFormat) ([]int16, error) {
	info := &InterceptorInfo{Operation: OpReadSignedBCD16, Address: address, Count: count, Format: format}
	res, err := c.invoke(ctx, info, func(ctx context.Context) (interface{}, error) {
		out := make([]int16, count)
		err := c.readWordChunks(ctx, address, count, func(i int, w uint16) {
			out[i] = DecodeSignedBCD16(w, format)
		})
		return out, err
	})
	out, _ := res.([]int16)
	return out, err
}

// ReadBytes reads wordCount words and returns their raw wire bytes.
func (c *Client) ReadBytes(ctx context.Context, address string, wordCount int) ([]byte, error) {
	info := &InterceptorInfo{Operation: OpReadBytes, Address: address, Count: wordCount}
	res, err := c.invoke(ctx, info, func(ctx context.Context) (interface{}, error) {
		out := make([]byte, 2*wordCount)
		err := c.readWordChunks(ctx, address, wordCount, func(i int, w uint16) {
			c.byteOrder.PutUint16(out[2*i:2*i+2], w)
		})
		return out, err
	})
	out, _ := res.([]byte)
	return out, err
}

// ReadString reads wordCount words and returns their bytes up to the first
// NUL terminator.
func (c *Client) ReadString(ctx context.Context, address string, wordCount int) (string, error) {
	info := &InterceptorInfo{Operation: OpReadString, Address: address, Count: wordCount}
	res, err := c.invoke(ctx, info, func(ctx context.Context) (interface{}, error) {
		out := make([]byte, 2*wordCount)
		err := c.readWordChunks(ctx, address, wordCount, func(i int, w uint16) {
			c.byteOrder.PutUint16(out[2*i:2*i+2], w)
		})
		if err != nil {
			return "", err
		}
		if n := bytes.IndexByte(out, 0); n >= 0 {
			out = out[:n]
		}
		return string(out), nil
	})
	s, _ := res.(string)
	return s, err
}

// ReadBits reads count bits starting at a bit address, e.g. "CIO20.07".
func (c *Client) ReadBits(ctx context.Context, address string, count int) ([]bool, error) {
	info := &InterceptorInfo{Operation: OpReadBits, Address: address, Count: count}
	res, err := c.invoke(ctx, info, func(ctx context.Context) (interface{}, error) {
		out := make([]bool, count)
		err := c.bitChunks(ctx, address, count, AccessRead,
			func(addr memoryAddress, origin uint32, bit byte, offset, length int) error {
				chunkAddr := memoryAddress{area: addr.area, bit: bit, hasBit: true}
				cmd, err := readCommand(chunkAddr, origin, length)
				if err != nil {
					return err
				}
				r, err := checkResponse(c.execute(ctx, cmd, true))
				if err != nil {
					return err
				}
				if len(r.data) < length {
					return BodyTooShortError{Expected: endCodeSize + length, Got: endCodeSize + len(r.data)}
				}
				for i := 0; i < length; i++ {
					out[offset+i] = r.data[i]&0x01 != 0
				}
				return nil
			})
		return out, err
	})
	out, _ := res.([]bool)
	return out, err
}

// WriteWords writes data starting at a textual address.
func (c *Client) WriteWords(ctx context.Context, address string, data []uint16) error {
	info := &InterceptorInfo{Operation: OpWriteWords, Address: address, Count: len(data), Data: data}
	_, err := c.invoke(ctx, info, func(ctx context.Context) (interface{}, error) {
		return nil, c.writeWordChunks(ctx, address, len(data), func(i int) uint16 { return data[i] })
	})
	return err
}

// WriteBCD16 writes values as unsigned BCD words. Values outside 0..9999
// fail with BCDRangeError before anything is transmitted.
func (c *Client) WriteBCD16(ctx context.Context, address string, values []uint16) error {
	info := &InterceptorInfo{Operation: OpWriteBCD16, Address: address, Count: len(values), Data: values}
	_, err := c.invoke(ctx, info, func(ctx context.Context) (interface{}, error) {
		words := make([]uint16, len(values))
		for i, v := range values {
			w, err := EncodeBCD16(v)
			if err != nil {
				return nil, err
			}
			words[i] = w
		}
		return nil, c.writeWordChunks(ctx, address, len(words), func(i int) uint16 { return words[i] })
	})
	return err
}

// WriteSignedBCD16 writes values as signed BCD words under the given
// format. Out-of-range values fail with BCDRangeError before anything is
// transmitted.
func (c *Client) WriteSignedBCD16(ctx context.Context, address string, values []int16, format BCDFormat) error {
	info := &InterceptorInfo{Operation: OpWriteSignedBCD16, Address: address, Count: len(values), Format: format, Data: values}
	_, err := c.invoke(ctx, info, func(ctx context.Context) (interface{}, error) {
		words := make([]uint16, len(values))
		for i, v := range values {
			w, err := EncodeSignedBCD16(v, format)
			if err != nil {
				return nil, err
			}
			words[i] = w
		}
		return nil, c.writeWordChunks(ctx, address, len(words), func(i int) uint16 { return words[i] })
	})
	return err
}

// WriteBytes writes raw bytes starting at a textual address. The length
// must be a whole number of words.
func (c *Client) WriteBytes(ctx context.Context, address string, b []byte) error {
	info := &InterceptorInfo{Operation: OpWriteBytes, Address: address, Count: len(b) / 2, Data: b}
	_, err := c.invoke(ctx, info, func(ctx context.Context) (interface{}, error) {
		if len(b)%2 != 0 {
			return nil, fmt.Errorf("fins: byte count %d is not word aligned", len(b))
		}
		return nil, c.writeWordChunks(ctx, address, len(b)/2, func(i int) uint16 {
			return c.byteOrder.Uint16(b[2*i : 2*i+2])
		})
	})
	return err
}

// WriteString writes s starting at a textual address, padded with a NUL
// byte to a whole word.
func (c *Client) WriteString(ctx context.Context, address string, s string) error {
	info := &InterceptorInfo{Operation: OpWriteString, Address: address, Count: (len(s) + 1) / 2, Data: s}
	_, err := c.invoke(ctx, info, func(ctx context.Context) (interface{}, error) {
		b := make([]byte, 2*((len(s)+1)/2))
		copy(b, s)
		return nil, c.writeWordChunks(ctx, address, len(b)/2, func(i int) uint16 {
			return c.byteOrder.Uint16(b[2*i : 2*i+2])
		})
	})
	return err
}

// WriteBits writes data starting at a bit address.
func (c *Client) WriteBits(ctx context.Context, address string, data []bool) error {
	info := &InterceptorInfo{Operation: OpWriteBits, Address: address, Count: len(data), Data: data}
	_, err := c.invoke(ctx, info, func(ctx context.Context) (interface{}, error) {
		return nil, c.bitChunks(ctx, address, len(data), AccessWrite,
			func(addr memoryAddress, origin uint32, bit byte, offset, length int) error {
				payload := make([]byte, length)
				for i := 0; i < length; i++ {
					if data[offset+i] {
						payload[i] = 0x01
					}
				}
				chunkAddr := memoryAddress{area: addr.area, bit: bit, hasBit: true}
				cmd, err := writeCommand(chunkAddr, origin, length, payload)
				if err != nil {
					return err
				}
				_, err = checkResponse(c.execute(ctx, cmd, true))
				return err
			})
	})
	return err
}

// SetBit turns on the bit at a bit address.
func (c *Client) SetBit(ctx context.Context, address string) error {
	return c.bitTwiddle(ctx, OpSetBit, address, 0x01)
}

// ResetBit turns off the bit at a bit address.
func (c *Client) ResetBit(ctx context.Context, address string) error {
	return c.bitTwiddle(ctx, OpResetBit, address, 0x00)
}

// ToggleBit inverts the bit at a bit address.
func (c *Client) ToggleBit(ctx context.Context, address string) error {
	info := &InterceptorInfo{Operation: OpToggleBit, Address: address, Count: 1}
	_, err := c.invoke(ctx, info, func(ctx context.Context) (interface{}, error) {
		out := make([]bool, 1)
		err := c.bitChunks(ctx, address, 1, AccessRead,
			func(addr memoryAddress, origin uint32, bit byte, offset, length int) error {
				chunkAddr := memoryAddress{area: addr.area, bit: bit, hasBit: true}
				cmd, err := readCommand(chunkAddr, origin, 1)
				if err != nil {
					return err
				}
				r, err := checkResponse(c.execute(ctx, cmd, true))
				if err != nil {
					return err
				}
				if len(r.data) < 1 {
					return BodyTooShortError{Expected: endCodeSize + 1, Got: endCodeSize + len(r.data)}
				}
				out[0] = r.data[0]&0x01 != 0
				return nil
			})
		if err != nil {
			return nil, err
		}
		value := byte(0x01)
		if out[0] {
			value = 0x00
		}
		return nil, c.writeBitValue(ctx, address, value)
	})
	return err
}

func (c *Client) bitTwiddle(ctx context.Context, op OperationType, address string, value byte) error {
	info := &InterceptorInfo{Operation: op, Address: address, Count: 1}
	_, err := c.invoke(ctx, info, func(ctx context.Context) (interface{}, error) {
		return nil, c.writeBitValue(ctx, address, value)
	})
	return err
}

func (c *Client) writeBitValue(ctx context.Context, address string, value byte) error {
	return c.bitChunks(ctx, address, 1, AccessWrite,
		func(addr memoryAddress, origin uint32, bit byte, offset, length int) error {
			chunkAddr := memoryAddress{area: addr.area, bit: bit, hasBit: true}
			cmd, err := writeCommand(chunkAddr, origin, 1, []byte{value})
			if err != nil {
				return err
			}
			_, err = checkResponse(c.execute(ctx, cmd, true))
			return err
		})
}
