package stream

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/matt-g-everett/ledbelt/belt"
	"github.com/rs/zerolog/log"
)

// ErrPublishTimeout is returned when the broker does not acknowledge a frame in time.
var ErrPublishTimeout = errors.New("publish timed out")

// Publisher delivers encoded frames to a topic.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// MQTTPublisher publishes over an MQTT client.
type MQTTPublisher struct {
	client  mqtt.Client
	qos     byte
	timeout time.Duration
}

// NewMQTTPublisher creates an MQTTPublisher.
func NewMQTTPublisher(client mqtt.Client, qos byte, timeout time.Duration) *MQTTPublisher {
	return &MQTTPublisher{client: client, qos: qos, timeout: timeout}
}

// Publish sends payload and waits for the broker.
func (p *MQTTPublisher) Publish(topic string, payload []byte) error {
	token := p.client.Publish(topic, p.qos, false, payload)
	if !token.WaitTimeout(p.timeout) {
		return ErrPublishTimeout
	}
	return token.Error()
}

// Streamer renders a frame for every progress update of a Belt and streams
// it to an ledrx device.
type Streamer struct {
	topic     string
	publisher Publisher
	animation Animation
	belt      *belt.Belt

	mu         sync.Mutex
	sub        belt.Subscription
	subscribed bool

	sent   atomic.Uint64
	failed atomic.Uint64
}

// NewStreamer creates an instance of a Streamer.
func NewStreamer(topic string, publisher Publisher, b *belt.Belt, animation Animation) *Streamer {
	s := new(Streamer)
	s.topic = topic
	s.publisher = publisher
	s.belt = b
	s.animation = animation
	return s
}

// Start subscribes to the belt's updates.
func (s *Streamer) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subscribed {
		return
	}
	s.sub = s.belt.On(belt.EventUpdate, s.handleUpdate)
	s.subscribed = true
}

// Stop unsubscribes from the belt.
func (s *Streamer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.subscribed {
		return
	}
	s.belt.Off(belt.EventUpdate, s.sub)
	s.subscribed = false
}

func (s *Streamer) handleUpdate(progress float64) {
	if err := s.SendFrame(progress); err != nil {
		log.Error().Str("context", "streamer").Err(err).Msg("send_frame_failed")
	}
}

// SendFrame renders the frame for progress and publishes it.
func (s *Streamer) SendFrame(progress float64) error {
	f := s.animation.CalculateFrame(progress)
	b, err := f.MarshalBinary()
	if err != nil {
		s.failed.Add(1)
		return err
	}
	if err := s.publisher.Publish(s.topic, b); err != nil {
		s.failed.Add(1)
		return err
	}
	s.sent.Add(1)
	return nil
}

// Stats returns the number of frames sent and failed.
func (s *Streamer) Stats() (sent, failed uint64) {
	return s.sent.Load(), s.failed.Load()
}
