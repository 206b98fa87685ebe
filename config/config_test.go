package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

const sample = `
network:
  ssid: YourSSID
  passphrase: YourWiFiPassword
  hostname: PythonMachine1
log:
  url: http://192.168.1.10:4200/api/Log/
  timeout: 4s
  plain_message: true
server:
  addr: ":8080"
  time_zone: Europe/Stockholm
  apps:
    ExampleApp: Magical App
  mqtt:
    broker: tcp://localhost:1883
log_level: debug
`

func writeConfig(c *qt.C, body string) string {
	path := filepath.Join(c.TempDir(), "marvin.yaml")
	c.Assert(os.WriteFile(path, []byte(body), 0600), qt.IsNil)
	return path
}

func TestDefaults(t *testing.T) {
	c := qt.New(t)
	cfg, err := Load("")
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Log.URL, qt.Equals, "http://localhost:4200/api/Log/")
	c.Assert(cfg.Log.Timeout, qt.Equals, 2*time.Second)
	c.Assert(cfg.Server.Addr, qt.Equals, ":4200")
	c.Assert(cfg.Server.Capacity, qt.Equals, 1000)
	c.Assert(cfg.LogLevel, qt.Equals, "info")
}

func TestLoadFile(t *testing.T) {
	c := qt.New(t)
	cfg, err := Load(writeConfig(c, sample))
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Network.SSID, qt.Equals, "YourSSID")
	c.Assert(cfg.Log.URL, qt.Equals, "http://192.168.1.10:4200/api/Log/")
	c.Assert(cfg.Log.Timeout, qt.Equals, 4*time.Second)
	c.Assert(cfg.Log.PlainMessage, qt.IsTrue)
	// sender falls back to the hostname
	c.Assert(cfg.Log.Sender, qt.Equals, "PythonMachine1")
	c.Assert(cfg.Server.Addr, qt.Equals, ":8080")
	c.Assert(cfg.Server.Capacity, qt.Equals, 1000)
	c.Assert(cfg.Server.Apps, qt.DeepEquals, map[string]string{"ExampleApp": "Magical App"})
	c.Assert(cfg.Server.MQTT.Broker, qt.Equals, "tcp://localhost:1883")
	c.Assert(cfg.LogLevel, qt.Equals, "debug")
}

func TestEnvWins(t *testing.T) {
	c := qt.New(t)
	c.Setenv("MARVIN_LOGURL", "http://10.0.0.2:4200/api/Log/")
	c.Setenv("MARVIN_TIMEOUT", "500ms")
	c.Setenv("MARVIN_SENDER", "greenhouse")
	c.Setenv("MARVIN_CAPACITY", "50")

	cfg, err := Load(writeConfig(c, sample))
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Log.URL, qt.Equals, "http://10.0.0.2:4200/api/Log/")
	c.Assert(cfg.Log.Timeout, qt.Equals, 500*time.Millisecond)
	c.Assert(cfg.Log.Sender, qt.Equals, "greenhouse")
	c.Assert(cfg.Server.Capacity, qt.Equals, 50)
}

func TestLoadErrors(t *testing.T) {
	c := qt.New(t)
	_, err := Load(filepath.Join(c.TempDir(), "missing.yaml"))
	c.Assert(err, qt.ErrorMatches, "config: .*no such file or directory")

	_, err = Load(writeConfig(c, "log: [unclosed"))
	c.Assert(err, qt.ErrorMatches, "config .*marvin.yaml: .*")
}
