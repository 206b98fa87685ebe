//go:build tinygo && !pico

package tinynet

import (
	"net"
	"sync/atomic"

	"tinygo.org/x/drivers/netdev"
	"tinygo.org/x/drivers/netlink"
	"tinygo.org/x/drivers/netlink/probe"
)

// netLink is a board radio found by the tinygo drivers probe (wifinina,
// rtl8720dn, espat)
type netLink struct {
	link netlink.Netlinker
	dev  netdev.Netdever
	up   atomic.Bool
}

// NewLink returns the link for this build target
func NewLink() Link {
	l := &netLink{}
	l.link, l.dev = probe.Probe()
	l.link.NetNotify(func(e netlink.Event) {
		l.up.Store(e == netlink.EventNetUp)
	})
	return l
}

func (l *netLink) NetConnect(p Params) error {
	err := l.link.NetConnect(&netlink.ConnectParams{
		Ssid:       p.SSID,
		Passphrase: p.Passphrase,
	})
	if err == nil {
		l.up.Store(true)
	}
	return err
}

func (l *netLink) Connected() bool {
	return l.up.Load()
}

func (l *netLink) IPAddr() (net.IP, error) {
	addr, err := l.dev.Addr()
	if err != nil {
		return nil, err
	}
	return net.IP(addr.AsSlice()), nil
}

func (l *netLink) HardwareAddr() (net.HardwareAddr, error) {
	return l.link.GetHardwareAddr()
}
