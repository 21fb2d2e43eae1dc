package bridge

import (
	"errors"
	"fmt"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/muurk/wemo/internal/config"
	"github.com/muurk/wemo/internal/logging"
)

const (
	defaultConnectTimeout = 10 * time.Second
	defaultPublishTimeout = 5 * time.Second
	defaultKeepAlive      = 60 * time.Second

	// milliseconds
	defaultDisconnectQuiesce = 1000

	// qos is used for every subscription and publish
	qos byte = 1
)

var (
	// ErrNotConnected is returned when publishing without a broker connection
	ErrNotConnected = errors.New("mqtt: not connected")

	// ErrTimeout is returned when the broker does not acknowledge in time
	ErrTimeout = errors.New("mqtt: timed out waiting for broker")
)

// MessageHandler receives messages for a subscription. Handlers are called
// in arrival order on the client's router goroutine and must not block.
type MessageHandler func(topic string, payload []byte)

// Client wraps a paho MQTT client. Subscriptions are restored after every
// reconnect and a retained status topic reports whether the bridge is online.
type Client struct {
	client      pahomqtt.Client
	statusTopic string

	subscriptions map[string]MessageHandler
	subMu         sync.RWMutex

	logger *zap.Logger
}

// Connect dials the broker and waits for the first connection.
func Connect(cfg config.MQTT) (*Client, error) {
	c := &Client{
		statusTopic:   StatusTopic(cfg.TopicPrefix),
		subscriptions: make(map[string]MessageHandler),
		logger:        logging.GetLogger(),
	}

	opts := buildClientOptions(cfg)
	opts.SetOnConnectHandler(func(_ pahomqtt.Client) {
		c.handleConnect()
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		c.logger.Warn("MQTT connection lost", zap.Error(err))
	})

	c.client = pahomqtt.NewClient(opts)
	token := c.client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Broker, ErrTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Broker, err)
	}

	logging.Info("Connected to MQTT broker", zap.String("broker", cfg.Broker))
	return c, nil
}

// buildClientOptions converts the bridge config into paho options.
// The last will marks the bridge offline if it drops without Close.
func buildClientOptions(cfg config.MQTT) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(defaultKeepAlive)
	opts.SetOrderMatters(true)
	opts.SetWill(StatusTopic(cfg.TopicPrefix), StatusOffline, qos, true)

	return opts
}

func (c *Client) handleConnect() {
	c.subMu.RLock()
	defer c.subMu.RUnlock()

	for topic, handler := range c.subscriptions {
		c.client.Subscribe(topic, qos, c.wrapHandler(handler))
	}
	c.client.Publish(c.statusTopic, qos, true, StatusOnline)
}

// wrapHandler adapts a MessageHandler to paho and recovers from panics
func (c *Client) wrapHandler(handler MessageHandler) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		defer func() {
			if r := recover(); r != nil {
				c.logger.Error("MQTT handler panic recovered",
					zap.String("topic", msg.Topic()),
					zap.Any("panic", r),
				)
			}
		}()
		handler(msg.Topic(), msg.Payload())
	}
}

// Subscribe registers handler for topic, which may contain wildcards
func (c *Client) Subscribe(topic string, handler MessageHandler) error {
	if topic == "" {
		return fmt.Errorf("mqtt: empty topic")
	}
	if handler == nil {
		return fmt.Errorf("mqtt: nil handler")
	}

	c.subMu.Lock()
	c.subscriptions[topic] = handler
	c.subMu.Unlock()

	token := c.client.Subscribe(topic, qos, c.wrapHandler(handler))
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("subscribe %s: %w", topic, ErrTimeout)
	}
	return token.Error()
}

// Publish sends payload to topic and waits for the broker to acknowledge
func (c *Client) Publish(topic string, payload []byte, retained bool) error {
	if !c.client.IsConnected() {
		return ErrNotConnected
	}
	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("publish %s: %w", topic, ErrTimeout)
	}
	return token.Error()
}

// Close marks the bridge offline and disconnects
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	if c.client.IsConnected() {
		token := c.client.Publish(c.statusTopic, qos, true, StatusOffline)
		token.WaitTimeout(defaultPublishTimeout)
	}
	c.client.Disconnect(defaultDisconnectQuiesce)
	return nil
}
