package bridge

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/wemo/internal/config"
	"github.com/muurk/wemo/internal/wemo"
)

type message struct {
	topic    string
	payload  string
	retained bool
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []message
	err      error
}

func (p *fakePublisher) Publish(topic string, payload []byte, retained bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, message{topic, string(payload), retained})
	return p.err
}

func (p *fakePublisher) published() []message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]message(nil), p.messages...)
}

// gatedPublisher holds the first publish until release is closed
type gatedPublisher struct {
	fakePublisher
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newGatedPublisher() *gatedPublisher {
	return &gatedPublisher{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (p *gatedPublisher) Publish(topic string, payload []byte, retained bool) error {
	first := false
	p.once.Do(func() { first = true })
	if first {
		close(p.entered)
		<-p.release
	}
	return p.fakePublisher.Publish(topic, payload, retained)
}

type fakeSubscriber struct {
	topic   string
	handler MessageHandler
	err     error
}

func (s *fakeSubscriber) Subscribe(topic string, handler MessageHandler) error {
	s.topic = topic
	s.handler = handler
	return s.err
}

// recorder collects the command bodies received by a fake switch
type recorder struct {
	mu     sync.Mutex
	bodies []string
}

func (r *recorder) received() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.bodies...)
}

// newNetwork starts a fake switch and returns a registry that discovers
// it as "Desk Lamp" alongside a sensor called "Hallway".
func newNetwork(t *testing.T) (*wemo.Registry, *recorder) {
	t.Helper()

	rec := &recorder{}
	device := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.bodies = append(rec.bodies, string(body))
		rec.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(device.Close)

	finder := wemo.FinderFunc(func(ctx context.Context, deviceType string, depth int) ([]*wemo.Descriptor, error) {
		return []*wemo.Descriptor{
			{Type: "urn:Belkin:device:controllee:1", FriendlyName: "Desk Lamp", PresentationURL: device.URL + "/pluginpres.html"},
			{Type: "urn:Belkin:device:sensor:1", FriendlyName: "Hallway", PresentationURL: device.URL + "/"},
		}, nil
	})

	return wemo.NewRegistry(finder), rec
}

func TestHandle_On(t *testing.T) {
	reg, rec := newNetwork(t)
	pub := &fakePublisher{}
	b := New(reg, pub, "wemo")

	err := b.Handle(context.Background(), "wemo/Desk Lamp/set", []byte("on"))
	require.NoError(t, err)

	require.Len(t, rec.received(), 1)
	assert.Contains(t, rec.received()[0], "<BinaryState>1</BinaryState>")
	assert.Equal(t, []message{{"wemo/Desk Lamp/state", "ON", true}}, pub.published())
}

func TestHandle_Off(t *testing.T) {
	reg, rec := newNetwork(t)
	pub := &fakePublisher{}
	b := New(reg, pub, "home/wemo")

	err := b.Handle(context.Background(), "home/wemo/Desk Lamp/set", []byte(" OFF\n"))
	require.NoError(t, err)

	require.Len(t, rec.received(), 1)
	assert.Contains(t, rec.received()[0], "<BinaryState>0</BinaryState>")
	assert.Equal(t, []message{{"home/wemo/Desk Lamp/state", "OFF", true}}, pub.published())
}

func TestHandle_InvalidPayload(t *testing.T) {
	reg, rec := newNetwork(t)
	pub := &fakePublisher{}
	b := New(reg, pub, "wemo")

	err := b.Handle(context.Background(), "wemo/Desk Lamp/set", []byte("toggle"))
	require.Error(t, err)
	assert.Empty(t, rec.received())

	msgs := pub.published()
	require.Len(t, msgs, 1)
	assert.Equal(t, "wemo/Desk Lamp/error", msgs[0].topic)
	assert.False(t, msgs[0].retained)
}

func TestHandle_UnknownDevice(t *testing.T) {
	reg, rec := newNetwork(t)
	pub := &fakePublisher{}
	b := New(reg, pub, "wemo")

	err := b.Handle(context.Background(), "wemo/Garage/set", []byte("on"))
	require.Error(t, err)
	assert.Empty(t, rec.received())

	msgs := pub.published()
	require.Len(t, msgs, 1)
	assert.Equal(t, "wemo/Garage/error", msgs[0].topic)
	assert.Contains(t, msgs[0].payload, "not found")
}

func TestHandle_Sensor(t *testing.T) {
	reg, rec := newNetwork(t)
	pub := &fakePublisher{}
	b := New(reg, pub, "wemo")

	err := b.Handle(context.Background(), "wemo/Hallway/set", []byte("on"))
	require.Error(t, err)
	assert.True(t, wemo.IsNotSwitchError(err))
	assert.Empty(t, rec.received())
	assert.Equal(t, "wemo/Hallway/error", pub.published()[0].topic)
}

func TestHandle_DiscoveryFailure(t *testing.T) {
	finder := wemo.FinderFunc(func(ctx context.Context, deviceType string, depth int) ([]*wemo.Descriptor, error) {
		return nil, errors.New("multicast unavailable")
	})
	pub := &fakePublisher{}
	b := New(wemo.NewRegistry(finder), pub, "wemo")

	err := b.Handle(context.Background(), "wemo/Desk Lamp/set", []byte("on"))
	require.Error(t, err)
	assert.True(t, wemo.IsDiscoveryError(err))
	assert.Equal(t, "wemo/Desk Lamp/error", pub.published()[0].topic)
}

func TestHandle_UnexpectedTopic(t *testing.T) {
	reg, _ := newNetwork(t)
	pub := &fakePublisher{}
	b := New(reg, pub, "wemo")

	for _, topic := range []string{"other/Desk Lamp/set", "wemo/Desk Lamp/state", "wemo//set", "wemo/a/b/set"} {
		assert.Error(t, b.Handle(context.Background(), topic, []byte("on")), topic)
	}
	assert.Empty(t, pub.published())
}

func TestHandle_PublishFailureIsNotCommandFailure(t *testing.T) {
	reg, rec := newNetwork(t)
	pub := &fakePublisher{err: ErrNotConnected}
	b := New(reg, pub, "wemo")

	assert.NoError(t, b.Handle(context.Background(), "wemo/Desk Lamp/set", []byte("on")))
	assert.Len(t, rec.received(), 1)
}

func TestStart(t *testing.T) {
	reg, rec := newNetwork(t)
	pub := &fakePublisher{}
	sub := &fakeSubscriber{}
	b := New(reg, pub, "wemo")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, b.Start(ctx, sub))
	assert.Equal(t, "wemo/+/set", sub.topic)
	require.NotNil(t, sub.handler)

	sub.handler("wemo/Desk Lamp/set", []byte("1"))
	require.Eventually(t, func() bool {
		return len(pub.published()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Len(t, rec.received(), 1)

	cancel()
	sub.handler("wemo/Desk Lamp/set", []byte("0"))
	assert.Never(t, func() bool {
		return len(rec.received()) > 1
	}, 100*time.Millisecond, 10*time.Millisecond, "messages after cancellation are ignored")
}

func TestStart_ArrivalOrder(t *testing.T) {
	reg, rec := newNetwork(t)
	pub := &fakePublisher{}
	sub := &fakeSubscriber{}
	b := New(reg, pub, "wemo")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, b.Start(ctx, sub))

	payloads := []string{"on", "off", "on", "off"}
	for _, p := range payloads {
		sub.handler("wemo/Desk Lamp/set", []byte(p))
	}

	require.Eventually(t, func() bool {
		return len(pub.published()) == len(payloads)
	}, 2*time.Second, 10*time.Millisecond)

	bodies := rec.received()
	require.Len(t, bodies, len(payloads))
	for i, want := range []string{"1", "0", "1", "0"} {
		assert.Contains(t, bodies[i], "<BinaryState>"+want+"</BinaryState>", "command %d", i)
	}
	assert.Equal(t, []message{
		{"wemo/Desk Lamp/state", "ON", true},
		{"wemo/Desk Lamp/state", "OFF", true},
		{"wemo/Desk Lamp/state", "ON", true},
		{"wemo/Desk Lamp/state", "OFF", true},
	}, pub.published())
}

func TestHandle_StatePublishedBeforeNextCommand(t *testing.T) {
	reg, rec := newNetwork(t)
	pub := newGatedPublisher()
	b := New(reg, pub, "wemo")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = b.Handle(context.Background(), "wemo/Desk Lamp/set", []byte("on"))
	}()
	<-pub.entered

	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = b.Handle(context.Background(), "wemo/Desk Lamp/set", []byte("off"))
	}()

	// OFF waits until ON has been published
	assert.Never(t, func() bool {
		return len(rec.received()) > 1
	}, 100*time.Millisecond, 10*time.Millisecond)

	close(pub.release)
	wg.Wait()

	bodies := rec.received()
	require.Len(t, bodies, 2)
	assert.Contains(t, bodies[1], "<BinaryState>0</BinaryState>")
	assert.Equal(t, []message{
		{"wemo/Desk Lamp/state", "ON", true},
		{"wemo/Desk Lamp/state", "OFF", true},
	}, pub.published(), "last retained state matches the last command sent")
}

func TestStart_SubscribeError(t *testing.T) {
	reg, _ := newNetwork(t)
	b := New(reg, &fakePublisher{}, "wemo")

	err := b.Start(context.Background(), &fakeSubscriber{err: ErrTimeout})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestHandle_Serialized(t *testing.T) {
	reg, rec := newNetwork(t)
	pub := &fakePublisher{}
	b := New(reg, pub, "wemo")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(on bool) {
			defer wg.Done()
			payload := "off"
			if on {
				payload = "on"
			}
			_ = b.Handle(context.Background(), "wemo/Desk Lamp/set", []byte(payload))
		}(i%2 == 0)
	}
	wg.Wait()

	assert.Len(t, rec.received(), 8)
	assert.Len(t, pub.published(), 8)
}

func TestTopics(t *testing.T) {
	assert.Equal(t, "wemo/+/set", CommandFilter("wemo"))
	assert.Equal(t, "wemo/Desk Lamp/state", StateTopic("wemo", "Desk Lamp"))
	assert.Equal(t, "wemo/Desk Lamp/error", ErrorTopic("wemo", "Desk Lamp"))
	assert.Equal(t, "wemo/status", StatusTopic("wemo"))

	name, ok := parseCommandTopic("wemo", "wemo/Desk Lamp/set")
	assert.True(t, ok)
	assert.Equal(t, "Desk Lamp", name)

	_, ok = parseCommandTopic("wemo", "wemo/status")
	assert.False(t, ok)
}

func TestBuildClientOptions(t *testing.T) {
	cfg := config.Default().MQTT
	cfg.Username = "bridge"
	cfg.Password = "secret"

	opts := buildClientOptions(cfg)

	require.Len(t, opts.Servers, 1)
	assert.Equal(t, "tcp://localhost:1883", opts.Servers[0].String())
	assert.Equal(t, "wemo-bridge", opts.ClientID)
	assert.Equal(t, "bridge", opts.Username)
	assert.Equal(t, "secret", opts.Password)
	assert.True(t, opts.CleanSession)
	assert.True(t, opts.AutoReconnect)
	assert.True(t, opts.Order)

	assert.True(t, opts.WillEnabled)
	assert.Equal(t, "wemo/status", opts.WillTopic)
	assert.Equal(t, StatusOffline, string(opts.WillPayload))
	assert.True(t, opts.WillRetained)
}

func TestBuildClientOptions_NoAuth(t *testing.T) {
	opts := buildClientOptions(config.Default().MQTT)
	assert.Empty(t, opts.Username)
	assert.Empty(t, opts.Password)
	assert.True(t, strings.HasPrefix(opts.Servers[0].Scheme, "tcp"))
}
