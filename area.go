package fins

import "strings"

// AreaAccess is the permitted transfer direction for a memory area.
type AreaAccess uint8

const (
	AccessRead AreaAccess = 1 << iota
	AccessWrite

	AccessReadWrite = AccessRead | AccessWrite
)

func (a AreaAccess) String() string {
	switch a {
	case AccessRead:
		return "read"
	case AccessWrite:
		return "write"
	case AccessReadWrite:
		return "read/write"
	}
	return "none"
}

// FINS memory area codes (CS/CJ mode addressing).
const (
	MemoryAreaDMBit   byte = 0x02
	MemoryAreaCIOBit  byte = 0x30
	MemoryAreaWRBit   byte = 0x31
	MemoryAreaHRBit   byte = 0x32
	MemoryAreaARBit   byte = 0x33
	MemoryAreaDMWord  byte = 0x82
	MemoryAreaTCWord  byte = 0x89
	MemoryAreaCIOWord byte = 0xB0
	MemoryAreaWRWord  byte = 0xB1
	MemoryAreaHRWord  byte = 0xB2
	MemoryAreaARWord  byte = 0xB3
)

// MemoryArea describes one addressable area of the remote PLC.
//
// Low and High bound the wire word addresses the area occupies inside its
// area code. LowID is the logical address of the first word, so the wire
// address of a logical word w is w + Low - LowID. Counters share area code
// 0x89 with timers and start at wire address 0x8000, which is where the id
// offset translation actually matters.
type MemoryArea struct {
	Name   string
	Alias  string
	Code   byte
	Low    uint32
	High   uint32
	LowID  uint32
	Access AreaAccess
	Bit    bool
}

// wireAddress translates a logical word offset into the wire word address.
func (a *MemoryArea) wireAddress(logical uint32) uint32 {
	return logical + a.Low - a.LowID
}

// containsWire reports whether count words starting at the wire address
// origin lie entirely inside the area. count must be at least 1.
func (a *MemoryArea) containsWire(origin uint32, count int) bool {
	return origin >= a.Low && origin-a.Low+uint32(count)-1 <= a.High-a.Low
}

// areaTable is the static catalog of known memory areas. Built once,
// read-only thereafter.
var areaTable = []MemoryArea{
	{Name: "CIO", Code: MemoryAreaCIOWord, High: 6143, Access: AccessReadWrite},
	{Name: "CIO", Code: MemoryAreaCIOBit, High: 6143, Access: AccessReadWrite, Bit: true},
	{Name: "WR", Alias: "W", Code: MemoryAreaWRWord, High: 511, Access: AccessReadWrite},
	{Name: "WR", Alias: "W", Code: MemoryAreaWRBit, High: 511, Access: AccessReadWrite, Bit: true},
	{Name: "HR", Alias: "H", Code: MemoryAreaHRWord, High: 511, Access: AccessReadWrite},
	{Name: "HR", Alias: "H", Code: MemoryAreaHRBit, High: 511, Access: AccessReadWrite, Bit: true},
	{Name: "AR", Alias: "A", Code: MemoryAreaARWord, High: 959, Access: AccessRead},
	{Name: "AR", Alias: "A", Code: MemoryAreaARBit, High: 959, Access: AccessRead, Bit: true},
	{Name: "DM", Alias: "D", Code: MemoryAreaDMWord, High: 32767, Access: AccessReadWrite},
	{Name: "DM", Alias: "D", Code: MemoryAreaDMBit, High: 32767, Access: AccessReadWrite, Bit: true},
	{Name: "TIM", Alias: "T", Code: MemoryAreaTCWord, High: 4095, Access: AccessReadWrite},
	{Name: "CNT", Alias: "C", Code: MemoryAreaTCWord, Low: 0x8000, High: 0x8FFF, Access: AccessReadWrite},
}

// lookupArea finds the memory area matching an address token for the given
// bit width (1 or 16) and transfer direction. Area tokens are matched case
// insensitively against the area name and its short alias.
func lookupArea(token string, bitWidth int, direction AreaAccess) (*MemoryArea, bool) {
	wantBit := bitWidth == 1
	for i := range areaTable {
		a := &areaTable[i]
		if a.Bit != wantBit {
			continue
		}
		if !strings.EqualFold(token, a.Name) && !(a.Alias != "" && strings.EqualFold(token, a.Alias)) {
			continue
		}
		if a.Access&direction != direction {
			return nil, false
		}
		return a, true
	}
	return nil, false
}

// lookupAreaByCode finds an area by its wire code. Used on the receiving
// side, where only the code is available.
func lookupAreaByCode(code byte) (*MemoryArea, bool) {
	for i := range areaTable {
		if areaTable[i].Code == code {
			return &areaTable[i], true
		}
	}
	return nil, false
}
