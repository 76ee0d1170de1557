package fins

import (
	"strconv"
	"strings"
)

// memoryAddress is a resolved reference into one memory area: the area plus
// a logical word offset and, for bit addressing, a bit index.
type memoryAddress struct {
	area   *MemoryArea
	word   uint32
	bit    byte
	hasBit bool
}

// wireOrigin returns the wire word address of the first element.
func (m memoryAddress) wireOrigin() uint32 {
	return m.area.wireAddress(m.word)
}

// splitTextAddress breaks an address like "DM100" or "CIO20.07" into its
// area token, word offset and optional bit index. It knows nothing about
// the area table; validity of the token is the resolver's concern.
func splitTextAddress(text string) (token string, word uint32, bit byte, hasBit bool, ok bool) {
	i := 0
	for i < len(text) && !isDigit(text[i]) {
		i++
	}
	if i == 0 || i == len(text) {
		return "", 0, 0, false, false
	}
	token = text[:i]
	rest := text[i:]

	if dot := strings.IndexByte(rest, '.'); dot >= 0 {
		b, err := strconv.ParseUint(rest[dot+1:], 10, 8)
		if err != nil || b > 15 {
			return "", 0, 0, false, false
		}
		bit = byte(b)
		hasBit = true
		rest = rest[:dot]
	}

	w, err := strconv.ParseUint(rest, 10, 32)
	if err != nil {
		return "", 0, 0, false, false
	}
	return token, uint32(w), bit, hasBit, true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// resolveAddress parses a textual PLC address and looks up its memory area
// for the requested bit width and direction. Pure, no I/O.
func resolveAddress(text string, bitWidth int, direction AreaAccess) (memoryAddress, error) {
	token, word, bit, hasBit, ok := splitTextAddress(text)
	if !ok {
		return memoryAddress{}, InvalidAddressError{Text: text, Direction: direction}
	}
	if hasBit && bitWidth != 1 {
		// A bit index makes no sense on a word transfer.
		return memoryAddress{}, InvalidAddressError{Text: text, Direction: direction}
	}

	area, found := lookupArea(token, bitWidth, direction)
	if !found {
		return memoryAddress{}, InvalidAreaError{Token: token, Direction: direction}
	}

	addr := memoryAddress{area: area, word: word, bit: bit, hasBit: hasBit}
	if !area.containsWire(addr.wireOrigin(), 1) {
		return memoryAddress{}, InvalidAddressError{Text: text, Direction: direction}
	}
	return addr, nil
}

// resolveWordAddress resolves an address for 16 bit word transfers.
func resolveWordAddress(text string, direction AreaAccess) (memoryAddress, error) {
	return resolveAddress(text, 16, direction)
}

// resolveBitAddress resolves an address for single bit transfers. A missing
// bit index addresses bit 0 of the word.
func resolveBitAddress(text string, direction AreaAccess) (memoryAddress, error) {
	return resolveAddress(text, 1, direction)
}
