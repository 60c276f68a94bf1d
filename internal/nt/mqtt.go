package nt

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

const (
	defaultMQTTPrefix = "nt"
	defaultMQTTPort   = "1883"
)

// MQTTBackend mirrors retained messages under Prefix. The topic
// "<prefix>/SmartDashboard/Field/estimator_pose" carries the entry
// "/SmartDashboard/Field/estimator_pose"; an empty retained payload deletes it.
type MQTTBackend struct {
	Prefix   string
	ClientID string
	Timeout  time.Duration
	Logger   Logger

	mu     sync.Mutex
	client mqtt.Client
}

func (b *MQTTBackend) prefix() string {
	if b.Prefix == "" {
		return defaultMQTTPrefix
	}
	return strings.Trim(b.Prefix, "/")
}

func (b *MQTTBackend) clientID() string {
	if b.ClientID == "" {
		return "driverstation-" + uuid.NewString()[:8]
	}
	return b.ClientID
}

func (b *MQTTBackend) timeout() time.Duration {
	if b.Timeout <= 0 {
		return 2 * time.Second
	}
	return b.Timeout
}

func (b *MQTTBackend) topic(path string) string {
	return b.prefix() + JoinPath(path)
}

func (b *MQTTBackend) pathFromTopic(topic string) string {
	return JoinPath(strings.TrimPrefix(topic, b.prefix()))
}

func (b *MQTTBackend) Start(address string, cache *Cache) error {
	logger := loggerOrNoop(b.Logger)
	broker := withDefaultPort(address, "tcp", defaultMQTTPort)
	filter := b.prefix() + "/#"

	onMessage := func(_ mqtt.Client, msg mqtt.Message) {
		path := b.pathFromTopic(msg.Topic())
		if len(msg.Payload()) == 0 {
			cache.Delete(path)
			return
		}
		v, err := DecodeValue(msg.Payload())
		if err != nil {
			logger.Errorf("mqtt", "skip %s: %v", path, err)
			return
		}
		cache.Set(path, v)
	}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(b.clientID()).
		SetConnectTimeout(b.timeout()).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(time.Second).
		SetOnConnectHandler(func(c mqtt.Client) {
			logger.Infof("mqtt", "connected to %s, subscribing %s", broker, filter)
			c.Subscribe(filter, 1, onMessage)
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			logger.Errorf("mqtt", "connection lost: %v", err)
		})

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.client != nil {
		return fmt.Errorf("mqtt backend already started")
	}
	b.client = mqtt.NewClient(opts)
	// With ConnectRetry the token completes only once connected; do not wait.
	b.client.Connect()
	return nil
}

func (b *MQTTBackend) Connected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.client != nil && b.client.IsConnectionOpen()
}

func (b *MQTTBackend) publish(ctx context.Context, path string, payload []byte) error {
	b.mu.Lock()
	client := b.client
	b.mu.Unlock()
	if client == nil || !client.IsConnectionOpen() {
		return ErrNotConnected
	}
	token := client.Publish(b.topic(path), 1, true, payload)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-token.Done():
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish %s: %w", path, err)
	}
	return nil
}

func (b *MQTTBackend) Put(ctx context.Context, path string, v Value) error {
	data, err := EncodeValue(v)
	if err != nil {
		return err
	}
	return b.publish(ctx, path, data)
}

func (b *MQTTBackend) Delete(ctx context.Context, path string) error {
	return b.publish(ctx, path, nil)
}

func (b *MQTTBackend) Close() error {
	b.mu.Lock()
	client := b.client
	b.client = nil
	b.mu.Unlock()
	if client != nil {
		client.Disconnect(250)
	}
	return nil
}
