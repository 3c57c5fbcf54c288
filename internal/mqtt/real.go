package mqtt

import (
	"errors"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sweeney/sleepwake/internal/logic"
)

// BacklogCapacity is the number of messages held while disconnected.
const BacklogCapacity = 100

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
)

// Config configures a RealPublisher.
type Config struct {
	Broker   string
	ClientID string // generated when empty
	Logger   zerolog.Logger
}

// RealPublisher publishes to an actual MQTT broker. Messages published
// while the connection is down are held and replayed on reconnect.
type RealPublisher struct {
	client paho.Client
	log    zerolog.Logger

	mu      sync.Mutex
	pending *backlog
}

// NewRealPublisher creates a publisher connected to cfg.Broker. The broker
// publishes a retained OFFLINE system event if the connection drops.
func NewRealPublisher(cfg Config) (*RealPublisher, error) {
	if cfg.Broker == "" {
		return nil, errors.New("mqtt: broker required")
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "sleepwake-" + uuid.NewString()[:8]
	}

	will, err := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: "OFFLINE"})
	if err != nil {
		return nil, fmt.Errorf("format will payload: %w", err)
	}

	p := &RealPublisher{
		log:     cfg.Logger.With().Str("component", "mqtt").Logger(),
		pending: newBacklog(BacklogCapacity),
	}

	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetWill(TopicSystem, string(will), 1, true).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(paho.Client) { p.flush() }).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			p.log.Warn().Err(err).Msg("connection lost")
		})

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("connect to %s: timeout", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.Broker, err)
	}
	p.log.Info().Str("broker", cfg.Broker).Str("client_id", cfg.ClientID).Msg("connected")

	return p, nil
}

// Publish sends a power event at QoS 0.
func (p *RealPublisher) Publish(event logic.Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	return p.send(pendingMsg{topic: Topic, payload: payload})
}

// PublishSystem sends a system lifecycle event at QoS 1.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return p.send(pendingMsg{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained})
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000)
	return nil
}

func (p *RealPublisher) send(msg pendingMsg) error {
	if !p.client.IsConnectionOpen() {
		p.hold(msg)
		return nil
	}
	return p.publish(msg)
}

func (p *RealPublisher) publish(msg pendingMsg) error {
	token := p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish %s: timeout", msg.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", msg.topic, err)
	}
	return nil
}

func (p *RealPublisher) hold(msg pendingMsg) {
	p.mu.Lock()
	lost := p.pending.push(msg)
	p.mu.Unlock()
	if lost {
		p.log.Warn().Int("capacity", BacklogCapacity).Msg("backlog full, dropping oldest messages")
	}
}

// flush replays held messages. Runs from the paho connect handler.
func (p *RealPublisher) flush() {
	p.mu.Lock()
	msgs := p.pending.drain()
	p.mu.Unlock()
	if len(msgs) == 0 {
		return
	}
	p.log.Info().Int("count", len(msgs)).Msg("replaying held messages")
	for _, m := range msgs {
		if err := p.publish(m); err != nil {
			p.log.Warn().Err(err).Msg("replay failed")
		}
	}
}
