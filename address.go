package fins

import "net"

// FinsAddress is the (network, node, unit) triple identifying a FINS
// endpoint.
type FinsAddress struct {
	Network byte
	Node    byte
	Unit    byte
}

// Address is a full device address: the FINS triple plus the IP endpoints
// for whichever transport the session uses.
type Address struct {
	FinAddress FinsAddress
	UdpAddress *net.UDPAddr
	TcpAddress *net.TCPAddr
}

// NewAddress builds a device address usable with both transports.
func NewAddress(ip string, port int, network, node, unit byte) Address {
	parsed := net.ParseIP(ip)
	return Address{
		FinAddress: FinsAddress{
			Network: network,
			Node:    node,
			Unit:    unit,
		},
		UdpAddress: &net.UDPAddr{IP: parsed, Port: port},
		TcpAddress: &net.TCPAddr{IP: parsed, Port: port},
	}
}

// NewLocalAddress builds a device address without IP endpoints; the
// operating system picks the local port.
func NewLocalAddress(network, node, unit byte) Address {
	return Address{
		FinAddress: FinsAddress{
			Network: network,
			Node:    node,
			Unit:    unit,
		},
	}
}
