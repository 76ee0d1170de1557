package fins

import (
	"context"
	"encoding/binary"
)

// InlineClient reads and writes a Server's memory in process, without
// frames or a socket. It accepts the same textual addresses as Client and
// returns the same error types, which makes it a drop-in for tests that
// only need memory semantics.
type InlineClient struct {
	srv       *Server
	byteOrder binary.ByteOrder
}

// SetByteOrder sets the byte order used to assemble data words.
func (ic *InlineClient) SetByteOrder(o binary.ByteOrder) {
	if o != nil {
		ic.byteOrder = o
	}
}

func (ic *InlineClient) check(ctx context.Context) error {
	if ic.srv.IsClosed() {
		return ClientClosedError{}
	}
	return ctx.Err()
}

func endCodeToError(code uint16) error {
	if code == EndCodeNormalCompletion {
		return nil
	}
	return EndCodeError{EndCode: code}
}

// ReadWords reads count words starting at a textual word address.
func (ic *InlineClient) ReadWords(ctx context.Context, address string, count int) ([]uint16, error) {
	if count == 0 {
		return []uint16{}, nil
	}
	if err := ic.check(ctx); err != nil {
		return nil, err
	}
	if address == "" {
		return nil, ErrNoAddress
	}
	addr, err := resolveWordAddress(address, AccessRead)
	if err != nil {
		return nil, err
	}
	data, code := ic.srv.readAreaWords(addr.area.Code, addr.wireOrigin(), count)
	if err := endCodeToError(code); err != nil {
		return nil, err
	}
	out := make([]uint16, count)
	for i := range out {
		out[i] = ic.byteOrder.Uint16(data[2*i : 2*i+2])
	}
	return out, nil
}

// WriteWords writes data starting at a textual word address.
func (ic *InlineClient) WriteWords(ctx context.Context, address string, data []uint16) error {
	if len(data) == 0 {
		return nil
	}
	if err := ic.check(ctx); err != nil {
		return err
	}
	if address == "" {
		return ErrNoAddress
	}
	addr, err := resolveWordAddress(address, AccessWrite)
	if err != nil {
		return err
	}
	payload := make([]byte, 2*len(data))
	for i, w := range data {
		ic.byteOrder.PutUint16(payload[2*i:2*i+2], w)
	}
	return endCodeToError(ic.srv.writeAreaWords(addr.area.Code, addr.wireOrigin(), len(data), payload))
}

// ReadBCD16 reads count unsigned BCD words. Undecodable words appear as
// InvalidBCDValue.
func (ic *InlineClient) ReadBCD16(ctx context.Context, address string, count int) ([]uint16, error) {
	words, err := ic.ReadWords(ctx, address, count)
	if err != nil {
		return nil, err
	}
	for i, w := range words {
		words[i] = DecodeBCD16(w)
	}
	return words, nil
}

// WriteBCD16 writes values as unsigned BCD words.
func (ic *InlineClient) WriteBCD16(ctx context.Context, address string, values []uint16) error {
	words := make([]uint16, len(values))
	for i, v := range values {
		w, err := EncodeBCD16(v)
		if err != nil {
			return err
		}
		words[i] = w
	}
	return ic.WriteWords(ctx, address, words)
}

// ReadBits reads count bits starting at a textual bit address.
func (ic *InlineClient) ReadBits(ctx context.Context, address string, count int) ([]bool, error) {
	if count == 0 {
		return []bool{}, nil
	}
	if err := ic.check(ctx); err != nil {
		return nil, err
	}
	if address == "" {
		return nil, ErrNoAddress
	}
	addr, err := resolveBitAddress(address, AccessRead)
	if err != nil {
		return nil, err
	}
	data, code := ic.srv.readAreaBits(addr.area.Code, addr.wireOrigin(), addr.bit, count)
	if err := endCodeToError(code); err != nil {
		return nil, err
	}
	out := make([]bool, count)
	for i := range out {
		out[i] = data[i]&0x01 != 0
	}
	return out, nil
}

// WriteBits writes data starting at a textual bit address.
func (ic *InlineClient) WriteBits(ctx context.Context, address string, data []bool) error {
	if len(data) == 0 {
		return nil
	}
	if err := ic.check(ctx); err != nil {
		return err
	}
	if address == "" {
		return ErrNoAddress
	}
	addr, err := resolveBitAddress(address, AccessWrite)
	if err != nil {
		return err
	}
	payload := make([]byte, len(data))
	for i, b := range data {
		if b {
			payload[i] = 0x01
		}
	}
	return endCodeToError(ic.srv.writeAreaBits(addr.area.Code, addr.wireOrigin(), addr.bit, len(data), payload))
}
