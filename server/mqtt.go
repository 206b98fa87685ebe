package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/merliot/marvin"
)

// MQTTConfig configures forwarding of stored entries to an MQTT broker
type MQTTConfig struct {
	// Broker URL, e.g. "tcp://localhost:1883".  Empty disables forwarding.
	Broker   string `yaml:"broker"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	QoS      byte   `yaml:"qos"`
}

const (
	defaultTopic       = "marvin/log"
	mqttConnectTimeout = 5 * time.Second
	mqttPublishTimeout = 2 * time.Second
)

var errMQTTTimeout = errors.New("mqtt: timed out")

// MQTTForwarder publishes each stored entry as JSON.  Entries from a
// sender with a valid name go to "<topic>/<sender>", others to "<topic>".
type MQTTForwarder struct {
	client mqtt.Client
	topic  string
	qos    byte
}

// NewMQTTForwarder connects to cfg.Broker
func NewMQTTForwarder(cfg MQTTConfig) (*MQTTForwarder, error) {
	clientID := cfg.ClientID
	if clientID == "" {
		host, _ := os.Hostname()
		clientID = fmt.Sprintf("marvind-%s-%d", host, os.Getpid())
	}
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(clientID).
		SetConnectTimeout(mqttConnectTimeout).
		SetAutoReconnect(true)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	if err := wait(client.Connect(), mqttConnectTimeout); err != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", cfg.Broker, err)
	}
	return newMQTTForwarder(client, cfg), nil
}

func newMQTTForwarder(client mqtt.Client, cfg MQTTConfig) *MQTTForwarder {
	topic := cfg.Topic
	if topic == "" {
		topic = defaultTopic
	}
	return &MQTTForwarder{client: client, topic: topic, qos: cfg.QoS}
}

// Notify publishes e
func (f *MQTTForwarder) Notify(e marvin.Entry) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}
	topic := f.topic
	if marvin.ValidSender(e.Sender) {
		topic += "/" + e.Sender
	}
	if err := wait(f.client.Publish(topic, f.qos, false, payload), mqttPublishTimeout); err != nil {
		return fmt.Errorf("mqtt publish %s: %w", topic, err)
	}
	return nil
}

// Close disconnects from the broker
func (f *MQTTForwarder) Close() {
	f.client.Disconnect(250)
}

func wait(token mqtt.Token, timeout time.Duration) error {
	if !token.WaitTimeout(timeout) {
		return errMQTTTimeout
	}
	return token.Error()
}
