package fins

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupAreaByNameAndAlias(t *testing.T) {
	a, ok := lookupArea("DM", 16, AccessRead)
	assert.True(t, ok)
	assert.Equal(t, MemoryAreaDMWord, a.Code)

	// Short alias, case insensitive
	a, ok = lookupArea("d", 16, AccessWrite)
	assert.True(t, ok)
	assert.Equal(t, MemoryAreaDMWord, a.Code)

	a, ok = lookupArea("cio", 16, AccessReadWrite)
	assert.True(t, ok)
	assert.Equal(t, MemoryAreaCIOWord, a.Code)

	_, ok = lookupArea("XYZ", 16, AccessRead)
	assert.False(t, ok)
}

func TestLookupAreaBitWidth(t *testing.T) {
	a, ok := lookupArea("DM", 1, AccessRead)
	assert.True(t, ok)
	assert.Equal(t, MemoryAreaDMBit, a.Code)
	assert.True(t, a.Bit)

	a, ok = lookupArea("W", 1, AccessWrite)
	assert.True(t, ok)
	assert.Equal(t, MemoryAreaWRBit, a.Code)

	// Timers have no bit access mode
	_, ok = lookupArea("TIM", 1, AccessRead)
	assert.False(t, ok)
}

func TestLookupAreaDirection(t *testing.T) {
	// The auxiliary area is read-only
	a, ok := lookupArea("AR", 16, AccessRead)
	assert.True(t, ok)
	assert.Equal(t, MemoryAreaARWord, a.Code)

	_, ok = lookupArea("AR", 16, AccessWrite)
	assert.False(t, ok)

	_, ok = lookupArea("A", 1, AccessWrite)
	assert.False(t, ok)
}

func TestLookupAreaByCode(t *testing.T) {
	a, ok := lookupAreaByCode(MemoryAreaDMWord)
	assert.True(t, ok)
	assert.Equal(t, "DM", a.Name)

	a, ok = lookupAreaByCode(MemoryAreaCIOBit)
	assert.True(t, ok)
	assert.Equal(t, "CIO", a.Name)
	assert.True(t, a.Bit)

	_, ok = lookupAreaByCode(0xFF)
	assert.False(t, ok)
}

func TestWireAddressTranslation(t *testing.T) {
	dm, _ := lookupArea("DM", 16, AccessRead)
	assert.Equal(t, uint32(100), dm.wireAddress(100))

	// Counters share area code 0x89 with timers and start at wire 0x8000
	cnt, ok := lookupArea("CNT", 16, AccessRead)
	assert.True(t, ok)
	assert.Equal(t, MemoryAreaTCWord, cnt.Code)
	assert.Equal(t, uint32(0x8000), cnt.wireAddress(0))
	assert.Equal(t, uint32(0x8005), cnt.wireAddress(5))

	tim, ok := lookupArea("T", 16, AccessRead)
	assert.True(t, ok)
	assert.Equal(t, uint32(5), tim.wireAddress(5))
}

func TestContainsWire(t *testing.T) {
	wr, _ := lookupArea("WR", 16, AccessRead)

	assert.True(t, wr.containsWire(0, 1))
	assert.True(t, wr.containsWire(511, 1))
	assert.True(t, wr.containsWire(0, 512))
	assert.False(t, wr.containsWire(511, 2))
	assert.False(t, wr.containsWire(512, 1))

	cnt, _ := lookupArea("CNT", 16, AccessRead)
	assert.True(t, cnt.containsWire(0x8000, 1))
	assert.True(t, cnt.containsWire(0x8FFF, 1))
	assert.False(t, cnt.containsWire(0x7FFF, 1))
	assert.False(t, cnt.containsWire(0x8FFF, 2))
}

func TestAreaAccessString(t *testing.T) {
	assert.Equal(t, "read", AccessRead.String())
	assert.Equal(t, "write", AccessWrite.String())
	assert.Equal(t, "read/write", AccessReadWrite.String())
}
