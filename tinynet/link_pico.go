//go:build tinygo && pico

package tinynet

import (
	"net"

	"github.com/soypat/cyw43439"
)

// picoLink is the Pico W's CYW43439 radio
type picoLink struct {
	dev         *cyw43439.Device
	initialized bool
	joined      bool
}

// NewLink returns the link for this build target
func NewLink() Link {
	spi, cs, wlreg, irq := cyw43439.PicoWSpi(0)
	return &picoLink{dev: cyw43439.NewDevice(spi, cs, wlreg, irq, irq)}
}

func (l *picoLink) NetConnect(p Params) error {
	if !l.initialized {
		if err := l.dev.Init(cyw43439.DefaultConfig(false)); err != nil {
			return err
		}
		l.initialized = true
	}
	if err := l.dev.JoinWPA2(p.SSID, p.Passphrase); err != nil {
		return err
	}
	l.joined = true
	return nil
}

func (l *picoLink) Connected() bool {
	return l.joined
}

// IPAddr is not known to the radio; DHCP runs above it
func (l *picoLink) IPAddr() (net.IP, error) {
	return nil, ErrNoAddr
}

func (l *picoLink) HardwareAddr() (net.HardwareAddr, error) {
	return l.dev.GetHardwareAddr()
}
