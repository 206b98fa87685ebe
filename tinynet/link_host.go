//go:build !tinygo

package tinynet

import (
	"errors"
	"net"
)

var errNoRoute = errors.New("no interface with a routable IPv4 address")

// hostLink is the link of a machine whose OS owns the network.  NetConnect
// has nothing to do; the link is up once some interface has an address.
type hostLink struct {
	interfaces func() ([]net.Interface, error)
	addrs      func(net.Interface) ([]net.Addr, error)
}

// NewLink returns the link for this build target
func NewLink() Link {
	return &hostLink{
		interfaces: net.Interfaces,
		addrs:      func(i net.Interface) ([]net.Addr, error) { return i.Addrs() },
	}
}

func (l *hostLink) NetConnect(Params) error {
	return nil
}

func (l *hostLink) Connected() bool {
	_, _, err := l.primary()
	return err == nil
}

func (l *hostLink) IPAddr() (net.IP, error) {
	_, ip, err := l.primary()
	return ip, err
}

func (l *hostLink) HardwareAddr() (net.HardwareAddr, error) {
	iface, _, err := l.primary()
	if err != nil {
		return nil, err
	}
	return iface.HardwareAddr, nil
}

// primary returns the first up, non-loopback interface with a global
// unicast IPv4 address
func (l *hostLink) primary() (net.Interface, net.IP, error) {
	ifaces, err := l.interfaces()
	if err != nil {
		return net.Interface{}, nil, err
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := l.addrs(iface)
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			if ip := ipnet.IP.To4(); ip != nil && ip.IsGlobalUnicast() {
				return iface, ip, nil
			}
		}
	}
	return net.Interface{}, nil, errNoRoute
}
