package bridge

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/muurk/wemo/internal/logging"
	"github.com/muurk/wemo/internal/wemo"
)

// SwitchFinder resolves a friendly name to a switch.
// *wemo.Registry implements it.
type SwitchFinder interface {
	FindSwitch(ctx context.Context, name string) (*wemo.Switch, error)
}

// Publisher sends MQTT messages. *Client implements it.
type Publisher interface {
	Publish(topic string, payload []byte, retained bool) error
}

// Subscriber registers MQTT subscriptions. *Client implements it.
type Subscriber interface {
	Subscribe(topic string, handler MessageHandler) error
}

// Bridge turns MQTT messages on <prefix>/<device>/set into switch commands
// and reports the outcome on <prefix>/<device>/state or /error.
//
// Commands are executed one at a time, in arrival order. The retained
// state of a command is published before the next command is sent.
type Bridge struct {
	finder SwitchFinder
	pub    Publisher
	prefix string

	// mu covers lookup, control and the result publish of one command
	mu     sync.Mutex
	logger *zap.Logger
}

// queueSize bounds the commands waiting behind a slow device
const queueSize = 64

type command struct {
	topic   string
	payload []byte
}

// New creates a bridge publishing results through pub
func New(finder SwitchFinder, pub Publisher, prefix string) *Bridge {
	return &Bridge{
		finder: finder,
		pub:    pub,
		prefix: prefix,
		logger: logging.GetLogger(),
	}
}

// Start subscribes to the command filter. Messages are queued by the
// subscription handler and executed by a single worker until ctx is
// cancelled. The handler never blocks; a full queue drops the message.
func (b *Bridge) Start(ctx context.Context, sub Subscriber) error {
	queue := make(chan command, queueSize)

	filter := CommandFilter(b.prefix)
	err := sub.Subscribe(filter, func(topic string, payload []byte) {
		if ctx.Err() != nil {
			return
		}
		select {
		case queue <- command{topic: topic, payload: append([]byte(nil), payload...)}:
		default:
			b.logger.Warn("MQTT command queue full, dropping message",
				zap.String("topic", topic),
			)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", filter, err)
	}

	go b.run(ctx, queue)

	logging.Info("Bridge listening", zap.String("filter", filter))
	return nil
}

func (b *Bridge) run(ctx context.Context, queue <-chan command) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-queue:
			if err := b.Handle(ctx, cmd.topic, cmd.payload); err != nil {
				b.logger.Warn("MQTT command failed",
					zap.String("topic", cmd.topic),
					zap.Error(err),
				)
			}
		}
	}
}

// Handle executes a single command message and publishes its result.
// Concurrent calls are serialized.
func (b *Bridge) Handle(ctx context.Context, topic string, payload []byte) error {
	logging.LogMQTTMessage(topic, payload)

	name, ok := parseCommandTopic(b.prefix, topic)
	if !ok {
		return fmt.Errorf("unexpected topic %q", topic)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	state, err := wemo.ParseState(string(payload))
	if err != nil {
		b.publishError(name, err)
		return err
	}

	if err := b.dispatch(ctx, name, state); err != nil {
		b.publishError(name, err)
		return err
	}

	b.publish(StateTopic(b.prefix, name), []byte(statePayload(state)), true)
	return nil
}

func (b *Bridge) dispatch(ctx context.Context, name string, state wemo.State) error {
	sw, err := b.finder.FindSwitch(ctx, name)
	if err != nil {
		return err
	}
	if sw == nil {
		return fmt.Errorf("device %q not found", name)
	}
	return sw.SetState(ctx, state)
}

func (b *Bridge) publishError(name string, err error) {
	b.publish(ErrorTopic(b.prefix, name), []byte(err.Error()), false)
}

func (b *Bridge) publish(topic string, payload []byte, retained bool) {
	if err := b.pub.Publish(topic, payload, retained); err != nil {
		b.logger.Error("Failed to publish",
			zap.String("topic", topic),
			zap.Error(err),
		)
	}
}

func statePayload(state wemo.State) string {
	if state == wemo.StateOn {
		return PayloadOn
	}
	return PayloadOff
}
