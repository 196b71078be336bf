package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"

	"github.com/ayusman/mudra/internal/stabilizer"
)

const (
	mqttConnectTimeout = 5 * time.Second
	mqttPublishTimeout = 2 * time.Second
)

// MQTTConfig configures the MQTT publisher.
type MQTTConfig struct {
	// Broker is host:port of the broker. Empty disables MQTT.
	Broker string `json:"broker" yaml:"broker" mapstructure:"broker"`
	// TopicPrefix is prepended to the event name: <prefix>/gesture.
	TopicPrefix string `json:"topic_prefix" yaml:"topic_prefix" mapstructure:"topic_prefix"`
	ClientID    string `json:"client_id" yaml:"client_id" mapstructure:"client_id"`
	QoS         byte   `json:"qos" yaml:"qos" mapstructure:"qos"`
}

// MQTT publishes events to a broker, one topic per event kind.
type MQTT struct {
	cfg    MQTTConfig
	client mqtt.Client
	log    *logrus.Entry

	mu        sync.RWMutex
	connected bool
	published map[string]uint64
	errors    uint64
}

// MQTTStats are publisher counters.
type MQTTStats struct {
	Connected bool              `json:"connected"`
	Published map[string]uint64 `json:"published"`
	Errors    uint64            `json:"errors"`
}

// NewMQTT creates a publisher. Call Connect before sending.
func NewMQTT(cfg MQTTConfig, log *logrus.Entry) *MQTT {
	m := &MQTT{
		cfg:       cfg,
		log:       log.WithField("broker", cfg.Broker),
		published: make(map[string]uint64),
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", cfg.Broker))
	opts.SetClientID(cfg.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.OnConnect = func(mqtt.Client) {
		m.setConnected(true)
		m.log.WithField("client_id", cfg.ClientID).Info("MQTT connection established")
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		m.setConnected(false)
		m.log.WithError(err).Warn("MQTT connection lost, will auto-reconnect")
	}

	m.client = mqtt.NewClient(opts)
	return m
}

// Connect dials the broker. The client keeps reconnecting in the background
// after a lost connection.
func (m *MQTT) Connect(ctx context.Context) error {
	m.log.Info("Connecting to MQTT broker")

	token := m.client.Connect()
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(mqttConnectTimeout):
		return fmt.Errorf("mqtt connection timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connection failed: %w", err)
	}

	m.setConnected(true)
	return nil
}

// Topic returns the topic an event is published on.
func (m *MQTT) Topic(ev stabilizer.Event) string {
	return fmt.Sprintf("%s/%s", m.cfg.TopicPrefix, ev.EventName())
}

// Connected reports the broker connection state.
func (m *MQTT) Connected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// Send publishes the event payload (without envelope) on its topic.
func (m *MQTT) Send(ev stabilizer.Event) error {
	if !m.Connected() {
		m.countError()
		return ErrNotConnected
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		m.countError()
		return fmt.Errorf("marshal %s event: %w", ev.EventName(), err)
	}

	topic := m.Topic(ev)
	token := m.client.Publish(topic, m.cfg.QoS, false, payload)
	if !token.WaitTimeout(mqttPublishTimeout) {
		m.countError()
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		m.countError()
		return fmt.Errorf("publish failed: %w", err)
	}

	m.mu.Lock()
	m.published[topic]++
	m.mu.Unlock()

	m.log.WithFields(logrus.Fields{"topic": topic, "size": len(payload)}).Debug("Event published")
	return nil
}

// Disconnect closes the broker connection.
func (m *MQTT) Disconnect() {
	if m.client.IsConnected() {
		m.client.Disconnect(250)
		m.log.Info("MQTT disconnected")
	}
	m.setConnected(false)
}

// Stats returns publisher counters.
func (m *MQTT) Stats() MQTTStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	published := make(map[string]uint64, len(m.published))
	for k, v := range m.published {
		published[k] = v
	}
	return MQTTStats{Connected: m.connected, Published: published, Errors: m.errors}
}

func (m *MQTT) setConnected(v bool) {
	m.mu.Lock()
	m.connected = v
	m.mu.Unlock()
}

func (m *MQTT) countError() {
	m.mu.Lock()
	m.errors++
	m.mu.Unlock()
}
