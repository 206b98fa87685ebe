// Package config loads marvin configuration from an optional YAML file and
// MARVIN_* environment variables.  Environment variables win over the file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/merliot/marvin"
	"github.com/merliot/marvin/logapi"
	"github.com/merliot/marvin/server"
	"github.com/merliot/marvin/tinynet"
)

// Config holds all marvin configuration
type Config struct {
	Network  tinynet.Params `yaml:"network"`
	Log      logapi.Config  `yaml:"log"`
	Server   server.Config  `yaml:"server"`
	LogLevel string         `yaml:"log_level"`
}

// Default returns the configuration used when nothing is set
func Default() Config {
	return Config{
		Log: logapi.Config{
			URL:     "http://localhost:4200/api/Log/",
			Timeout: logapi.DefaultTimeout,
		},
		Server: server.Config{
			Addr:     server.DefaultAddr,
			Capacity: server.DefaultCapacity,
		},
		LogLevel: "info",
	}
}

// Load reads path, if not empty, over the defaults, then applies the
// environment
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Network.SSID = marvin.GetEnv("MARVIN_SSID", cfg.Network.SSID)
	cfg.Network.Passphrase = marvin.GetEnv("MARVIN_PASS", cfg.Network.Passphrase)
	cfg.Network.Hostname = marvin.GetEnv("MARVIN_HOSTNAME", cfg.Network.Hostname)

	cfg.Log.URL = marvin.GetEnv("MARVIN_LOGURL", cfg.Log.URL)
	cfg.Log.Sender = marvin.GetEnv("MARVIN_SENDER", cfg.Log.Sender)
	cfg.Log.Timeout = marvin.GetEnvDuration("MARVIN_TIMEOUT", cfg.Log.Timeout)
	cfg.Log.APIKey = marvin.GetEnv("MARVIN_APIKEY", cfg.Log.APIKey)
	if cfg.Log.Sender == "" {
		// the device hostname is the default sender
		cfg.Log.Sender = cfg.Network.Hostname
	}

	cfg.Server.Addr = marvin.GetEnv("MARVIN_ADDR", cfg.Server.Addr)
	cfg.Server.APIKey = marvin.GetEnv("MARVIN_APIKEY", cfg.Server.APIKey)
	cfg.Server.User = marvin.GetEnv("MARVIN_USER", cfg.Server.User)
	cfg.Server.Passwd = marvin.GetEnv("MARVIN_PASSWD", cfg.Server.Passwd)
	cfg.Server.TimeZone = marvin.GetEnv("MARVIN_TZ", cfg.Server.TimeZone)
	cfg.Server.Capacity = marvin.GetEnvInt("MARVIN_CAPACITY", cfg.Server.Capacity)
	cfg.Server.MQTT.Broker = marvin.GetEnv("MARVIN_MQTT_BROKER", cfg.Server.MQTT.Broker)
	cfg.Server.MQTT.Topic = marvin.GetEnv("MARVIN_MQTT_TOPIC", cfg.Server.MQTT.Topic)

	cfg.LogLevel = marvin.GetEnv("MARVIN_LOG_LEVEL", cfg.LogLevel)
}
