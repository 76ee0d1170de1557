package fins

// Response end codes. The high byte is the main response code (MRES), the
// low byte the sub code (SRES). Only the codes the library itself produces
// or the simulator answers with are named; classification works on any code.
const (
	EndCodeNormalCompletion       uint16 = 0x0000
	EndCodeServiceUnsupported     uint16 = 0x0401
	EndCodeAreaClassificationMiss uint16 = 0x1101
	EndCodeAddressRangeExceeded   uint16 = 0x1103
	EndCodeCommandTooLong         uint16 = 0x1004
	EndCodeNotExecutableRunMode   uint16 = 0x2201
	EndCodeNoSuchUnit             uint16 = 0x2301
	EndCodeAccessRightHeld        uint16 = 0x3001
)

// EndCodeCategory groups remote end codes into the failure classes callers
// usually branch on.
type EndCodeCategory int

const (
	CategoryUnknown EndCodeCategory = iota
	CategoryLocalNode
	CategoryDestinationNode
	CategoryController
	CategoryServiceUnsupported
	CategoryRouting
	CategoryCommandFormat
	CategoryParameter
	CategoryReadNotPossible
	CategoryWriteNotPossible
	CategoryBusy
	CategoryNoSuchUnit
	CategoryCannotStartStop
	CategoryUnitError
	CategoryCommandError
	CategoryAccessRight
)

var endCodeCategoryNames = map[EndCodeCategory]string{
	CategoryUnknown:            "unknown",
	CategoryLocalNode:          "local node error",
	CategoryDestinationNode:    "destination node error",
	CategoryController:         "communications controller error",
	CategoryServiceUnsupported: "service unsupported",
	CategoryRouting:            "routing table error",
	CategoryCommandFormat:      "command format error",
	CategoryParameter:          "parameter error",
	CategoryReadNotPossible:    "read not possible",
	CategoryWriteNotPossible:   "write not possible",
	CategoryBusy:               "not executable in current mode",
	CategoryNoSuchUnit:         "no such unit",
	CategoryCannotStartStop:    "cannot start/stop",
	CategoryUnitError:          "unit error",
	CategoryCommandError:       "command error",
	CategoryAccessRight:        "access right error",
}

func (c EndCodeCategory) String() string {
	if s, ok := endCodeCategoryNames[c]; ok {
		return s
	}
	return "unknown"
}

func classifyEndCode(code uint16) EndCodeCategory {
	switch byte(code >> 8) {
	case 0x01:
		return CategoryLocalNode
	case 0x02:
		return CategoryDestinationNode
	case 0x03:
		return CategoryController
	case 0x04:
		return CategoryServiceUnsupported
	case 0x05:
		return CategoryRouting
	case 0x10:
		return CategoryCommandFormat
	case 0x11:
		return CategoryParameter
	case 0x20:
		return CategoryReadNotPossible
	case 0x21:
		return CategoryWriteNotPossible
	case 0x22:
		return CategoryBusy
	case 0x23:
		return CategoryNoSuchUnit
	case 0x24:
		return CategoryCannotStartStop
	case 0x25:
		return CategoryUnitError
	case 0x26:
		return CategoryCommandError
	case 0x30:
		return CategoryAccessRight
	}
	return CategoryUnknown
}
