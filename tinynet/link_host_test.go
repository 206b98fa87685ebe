//go:build !tinygo

package tinynet

import (
	"net"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestHostLink(t *testing.T) {
	c := qt.New(t)
	mac := net.HardwareAddr{0x28, 0xcd, 0xc1, 0x00, 0x00, 0x01}
	lo := net.Interface{Index: 1, Name: "lo", Flags: net.FlagUp | net.FlagLoopback}
	down := net.Interface{Index: 2, Name: "eth0", Flags: 0}
	wlan := net.Interface{Index: 3, Name: "wlan0", Flags: net.FlagUp, HardwareAddr: mac}

	addrs := map[string][]net.Addr{
		"lo":   {&net.IPNet{IP: net.IPv4(127, 0, 0, 1), Mask: net.CIDRMask(8, 32)}},
		"eth0": {&net.IPNet{IP: net.IPv4(10, 0, 0, 2), Mask: net.CIDRMask(24, 32)}},
		"wlan0": {
			&net.IPNet{IP: net.ParseIP("fe80::1"), Mask: net.CIDRMask(64, 128)},
			&net.IPNet{IP: net.IPv4(192, 168, 1, 7), Mask: net.CIDRMask(24, 32)},
		},
	}
	link := &hostLink{
		interfaces: func() ([]net.Interface, error) { return []net.Interface{lo, down, wlan}, nil },
		addrs:      func(i net.Interface) ([]net.Addr, error) { return addrs[i.Name], nil },
	}

	c.Assert(link.NetConnect(Params{SSID: "ignored"}), qt.IsNil)
	c.Assert(link.Connected(), qt.IsTrue)
	ip, err := link.IPAddr()
	c.Assert(err, qt.IsNil)
	c.Assert(ip.String(), qt.Equals, "192.168.1.7")
	hw, err := link.HardwareAddr()
	c.Assert(err, qt.IsNil)
	c.Assert(hw.String(), qt.Equals, mac.String())
}

func TestHostLinkDown(t *testing.T) {
	c := qt.New(t)
	link := &hostLink{
		interfaces: func() ([]net.Interface, error) {
			return []net.Interface{{Name: "lo", Flags: net.FlagUp | net.FlagLoopback}}, nil
		},
		addrs: func(net.Interface) ([]net.Addr, error) {
			return []net.Addr{&net.IPNet{IP: net.IPv4(127, 0, 0, 1), Mask: net.CIDRMask(8, 32)}}, nil
		},
	}
	c.Assert(link.Connected(), qt.IsFalse)
	_, err := link.IPAddr()
	c.Assert(err, qt.Equals, errNoRoute)
}
