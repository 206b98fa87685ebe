// Package tinynet brings a device onto the network before anything else
// runs.  A Link is the board's network interface; Wait drives it until the
// link is up.
package tinynet

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/merliot/marvin"
)

// DefaultInterval between connection polls
const DefaultInterval = 2 * time.Second

// ErrNoAddr is returned by links that cannot report an address
var ErrNoAddr = errors.New("address not available")

// Params are the network credentials and identity of the device
type Params struct {
	SSID       string `yaml:"ssid"`
	Passphrase string `yaml:"passphrase"`
	// Hostname identifies the device to the log API, where it is the
	// default sender.  No link sets it on the network: the host OS owns
	// its own name and the TinyGo radio drivers take no DHCP hostname.
	Hostname string `yaml:"hostname"`
}

// Link is a network interface that can be brought up
type Link interface {
	// NetConnect starts association with the network in p
	NetConnect(p Params) error
	// Connected reports whether the link is up with an address
	Connected() bool
	IPAddr() (net.IP, error)
	HardwareAddr() (net.HardwareAddr, error)
}

// Wait blocks until link is connected, polling every interval.  NetConnect
// is issued first and re-issued each interval while it fails.  There is no
// retry limit: Wait only gives up if ctx is done.
func Wait(ctx context.Context, link Link, p Params, interval time.Duration, logger marvin.Logger) error {
	if interval <= 0 {
		interval = DefaultInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	associated := false
	for {
		if !associated {
			if err := link.NetConnect(p); err != nil {
				logger.Error("Connect failed", "ssid", p.SSID, "err", err)
			} else {
				associated = true
			}
		}

		if associated && link.Connected() {
			logConnected(link, p, logger)
			return nil
		}

		logger.Info("Waiting for connection...")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Connect brings up the board's default link, blocking until it is up.
func Connect(ctx context.Context, p Params, logger marvin.Logger) (Link, error) {
	link := NewLink()
	return link, Wait(ctx, link, p, DefaultInterval, logger)
}

func logConnected(link Link, p Params, logger marvin.Logger) {
	keyvals := []interface{}{"ssid", p.SSID, "hostname", p.Hostname}
	if ip, err := link.IPAddr(); err == nil {
		keyvals = append(keyvals, "ip", ip.String())
	}
	if mac, err := link.HardwareAddr(); err == nil {
		keyvals = append(keyvals, "mac", mac.String())
	}
	logger.Info("Connected", keyvals...)
}
