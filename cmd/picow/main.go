//go:build tinygo

// picow joins WiFi then sends one log entry.  Credentials are set at build
// time:
//
//	tinygo flash -target pico -tags pico -ldflags "-X main.ssid=YourSSID -X main.pass=YourWiFiPassword -X main.logURL=http://192.168.1.10:4200/api/Log/" ./cmd/picow
package main

import (
	"context"
	"time"

	"github.com/merliot/marvin"
	"github.com/merliot/marvin/logapi"
	"github.com/merliot/marvin/tinynet"
)

var (
	ssid     string
	pass     string
	logURL   string
	hostname = "PythonMachine1"
)

func main() {
	logger := marvin.Console{}

	// give the serial console time to attach
	time.Sleep(2 * time.Second)

	ctx := context.Background()
	params := tinynet.Params{SSID: ssid, Passphrase: pass, Hostname: hostname}
	if _, err := tinynet.Connect(ctx, params, logger); err != nil {
		logger.Error("Network", "err", err)
		return
	}

	client := logapi.New(logapi.Config{
		URL:     logURL,
		Sender:  hostname,
		Timeout: logapi.DefaultTimeout,
	}, logapi.WithLogger(logger))
	client.SendLog(ctx, marvin.NewEntry("A Logmessage from mr Pico W", "", ""))

	select {}
}
