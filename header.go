package fins

// Header identifies the two endpoints of a FINS frame and carries the
// service id used to correlate a response with its request.
type Header struct {
	messageType      uint8
	responseRequired bool
	src              FinsAddress
	dst              FinsAddress
	serviceID        byte
	gatewayCount     uint8
}

const (
	// MessageTypeCommand marks a request frame.
	MessageTypeCommand uint8 = iota

	// MessageTypeResponse marks a response frame.
	MessageTypeResponse
)

func newHeader(messageType uint8, responseRequired bool, src, dst FinsAddress, serviceID byte) Header {
	return Header{
		messageType:      messageType,
		responseRequired: responseRequired,
		gatewayCount:     2,
		src:              src,
		dst:              dst,
		serviceID:        serviceID,
	}
}

func commandHeader(src, dst FinsAddress, serviceID byte) Header {
	return newHeader(MessageTypeCommand, true, src, dst, serviceID)
}

// responseHeader derives the header of the answer to a command: endpoints
// swapped, same service id.
func responseHeader(cmd Header) Header {
	return newHeader(MessageTypeResponse, false, cmd.dst, cmd.src, cmd.serviceID)
}
