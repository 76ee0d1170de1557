package fins

import "math"

// InvalidBCDValue is the sentinel stored in a result slice when a wire word
// could not be decoded under the selected BCD format. Decoding never fails
// an operation; corrupt words surface as this value instead.
const InvalidBCDValue = math.MaxInt16

// BCDFormat selects how a 16 bit wire word maps to a decimal value. The
// signed variants mirror the SBCD16 type numbers of classic FINS libraries;
// their exact nibble layouts are conventions, not protocol law, so new ones
// extend this enum rather than changing an existing mapping.
type BCDFormat int

const (
	// BCDUnsigned16 is plain four digit BCD, 0 to 9999.
	BCDUnsigned16 BCDFormat = iota

	// BCDSigned16Type0 keeps a sign nibble in the leftmost position:
	// 0x0 positive, 0xF negative, over a three digit magnitude.
	// Range -999 to 999.
	BCDSigned16Type0

	// BCDSigned16Type1 uses the top bit of the leftmost nibble as the sign
	// and its remaining three bits as a thousands digit 0 to 7.
	// Range -7999 to 7999.
	BCDSigned16Type1

	// BCDSigned16Type2 reads a decimal leftmost nibble as an unsigned four
	// digit value and 0xA as a minus flag over three digits.
	// Range -999 to 9999.
	BCDSigned16Type2

	// BCDSigned16Type3 is Type2 with 0xB as the minus flag.
	// Range -999 to 9999.
	BCDSigned16Type3
)

func (f BCDFormat) String() string {
	switch f {
	case BCDUnsigned16:
		return "BCD16"
	case BCDSigned16Type0:
		return "SBCD16 type 0"
	case BCDSigned16Type1:
		return "SBCD16 type 1"
	case BCDSigned16Type2:
		return "SBCD16 type 2"
	case BCDSigned16Type3:
		return "SBCD16 type 3"
	}
	return "unknown BCD format"
}

// decodedWord is the tagged result of decoding one wire word. Keeping the
// valid flag explicit inside the package stops intermediate logic from
// mistaking the sentinel for data; the sentinel is applied only at the API
// boundary.
type decodedWord struct {
	value int16
	ok    bool
}

// bcdNibbles decodes n low nibbles of w as decimal digits, most significant
// first. ok is false as soon as any nibble exceeds 9.
func bcdNibbles(w uint16, n int) (uint16, bool) {
	var v uint16
	for i := n - 1; i >= 0; i-- {
		d := (w >> (4 * i)) & 0x0F
		if d > 9 {
			return 0, false
		}
		v = v*10 + d
	}
	return v, true
}

// decodeWord decodes one wire word under the given format.
func decodeWord(w uint16, format BCDFormat) decodedWord {
	switch format {
	case BCDUnsigned16:
		v, ok := bcdNibbles(w, 4)
		return decodedWord{value: int16(v), ok: ok}

	case BCDSigned16Type0:
		mag, ok := bcdNibbles(w, 3)
		if !ok {
			return decodedWord{}
		}
		switch w >> 12 {
		case 0x0:
			return decodedWord{value: int16(mag), ok: true}
		case 0xF:
			return decodedWord{value: -int16(mag), ok: true}
		}
		return decodedWord{}

	case BCDSigned16Type1:
		mag, ok := bcdNibbles(w, 3)
		if !ok {
			return decodedWord{}
		}
		// Thousands digit sits in bits 12..14 and cannot exceed 7.
		v := int16((w>>12)&0x7)*1000 + int16(mag)
		if w&0x8000 != 0 {
			v = -v
		}
		return decodedWord{value: v, ok: true}

	case BCDSigned16Type2, BCDSigned16Type3:
		minus := uint16(0xA)
		if format == BCDSigned16Type3 {
			minus = 0xB
		}
		if w>>12 == minus {
			mag, ok := bcdNibbles(w, 3)
			if !ok {
				return decodedWord{}
			}
			return decodedWord{value: -int16(mag), ok: true}
		}
		v, ok := bcdNibbles(w, 4)
		return decodedWord{value: int16(v), ok: ok}
	}
	return decodedWord{}
}

// encodeWord encodes a decimal value into a wire word under the given
// format, the exact inverse of decodeWord for every in-domain value.
func encodeWord(v int16, format BCDFormat) (uint16, error) {
	switch format {
	case BCDUnsigned16:
		if v < 0 || v > 9999 {
			return 0, BCDRangeError{Value: int64(v), Format: format}
		}
		return packBCDNibbles(uint16(v), 4), nil

	case BCDSigned16Type0:
		if v < -999 || v > 999 {
			return 0, BCDRangeError{Value: int64(v), Format: format}
		}
		if v < 0 {
			return 0xF000 | packBCDNibbles(uint16(-v), 3), nil
		}
		return packBCDNibbles(uint16(v), 3), nil

	case BCDSigned16Type1:
		if v < -7999 || v > 7999 {
			return 0, BCDRangeError{Value: int64(v), Format: format}
		}
		var sign uint16
		if v < 0 {
			sign = 0x8000
			v = -v
		}
		return sign | uint16(v/1000)<<12 | packBCDNibbles(uint16(v%1000), 3), nil

	case BCDSigned16Type2, BCDSigned16Type3:
		minus := uint16(0xA)
		if format == BCDSigned16Type3 {
			minus = 0xB
		}
		if v < -999 || v > 9999 {
			return 0, BCDRangeError{Value: int64(v), Format: format}
		}
		if v < 0 {
			return minus<<12 | packBCDNibbles(uint16(-v), 3), nil
		}
		return packBCDNibbles(uint16(v), 4), nil
	}
	return 0, BCDRangeError{Value: int64(v), Format: format}
}

func packBCDNibbles(v uint16, n int) uint16 {
	var w uint16
	for i := 0; i < n; i++ {
		w |= (v % 10) << (4 * i)
		v /= 10
	}
	return w
}

// DecodeBCD16 decodes an unsigned BCD word. A word with any nibble above 9
// yields InvalidBCDValue.
func DecodeBCD16(w uint16) uint16 {
	d := decodeWord(w, BCDUnsigned16)
	if !d.ok {
		return InvalidBCDValue
	}
	return uint16(d.value)
}

// EncodeBCD16 encodes a value 0 to 9999 as unsigned BCD.
func EncodeBCD16(v uint16) (uint16, error) {
	if v > 9999 {
		return 0, BCDRangeError{Value: int64(v), Format: BCDUnsigned16}
	}
	return encodeWord(int16(v), BCDUnsigned16)
}

// DecodeSignedBCD16 decodes a signed BCD word under the given format. An
// undecodable word yields InvalidBCDValue.
func DecodeSignedBCD16(w uint16, format BCDFormat) int16 {
	d := decodeWord(w, format)
	if !d.ok {
		return InvalidBCDValue
	}
	return d.value
}

// EncodeSignedBCD16 encodes a signed value under the given format.
func EncodeSignedBCD16(v int16, format BCDFormat) (uint16, error) {
	return encodeWord(v, format)
}

// bcdByte packs v mod 100 as two BCD digits. Clock fields use this.
func bcdByte(v int) byte {
	v %= 100
	return byte((v/10)<<4 | (v % 10))
}

// byteBCD unpacks a two digit BCD byte. ok is false for non-decimal nibbles.
func byteBCD(b byte) (int, bool) {
	hi, lo := int(b>>4), int(b&0x0F)
	if hi > 9 || lo > 9 {
		return 0, false
	}
	return hi*10 + lo, true
}
