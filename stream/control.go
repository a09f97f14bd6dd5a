package stream

import (
	"bytes"
	"errors"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/matt-g-everett/ledbelt/belt"
	"github.com/rs/zerolog/log"
)

// Control message types.
const (
	ControlRun     = "run"
	ControlOptions = "options"
	ControlCycle   = "cycle"
)

// ErrUnknownControl is returned for messages with an unrecognised type.
var ErrUnknownControl = errors.New("unknown control message")

// ControlMessage is received on the control topic.
type ControlMessage struct {
	Type    string        `json:"type"`
	Options belt.Settings `json:"options"`
}

// Control applies remote control messages to a Belt.
type Control struct {
	client     mqtt.Client
	topic      string
	qos        byte
	belt       *belt.Belt
	controller *Controller
}

// NewControl creates an instance of a Control. controller may be nil.
func NewControl(client mqtt.Client, topic string, qos byte, b *belt.Belt, controller *Controller) *Control {
	c := new(Control)
	c.client = client
	c.topic = topic
	c.qos = qos
	c.belt = b
	c.controller = controller
	return c
}

// Subscribe listens on the control topic.
func (c *Control) Subscribe() error {
	if token := c.client.Subscribe(c.topic, c.qos, c.handleClientMessages); token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", c.topic, token.Error())
	}
	log.Info().Str("context", "control").Str("topic", c.topic).Msg("subscribed")
	return nil
}

func (c *Control) handleClientMessages(client mqtt.Client, msg mqtt.Message) {
	log.Debug().Str("context", "control").Uint16("id", msg.MessageID()).Str("topic", msg.Topic()).
		Bytes("payload", msg.Payload()).Msg("received")
	if err := c.Apply(msg.Payload()); err != nil {
		log.Error().Str("context", "control").Err(err).Msg("control_message_ignored")
	}
}

// Apply decodes and executes a control message.
func (c *Control) Apply(payload []byte) error {
	var message ControlMessage
	if err := belt.DecodeStrict(bytes.NewReader(payload), &message); err != nil {
		return fmt.Errorf("decode control message: %w", err)
	}

	switch message.Type {
	case ControlRun:
		c.belt.Run()
	case ControlOptions:
		p, err := message.Options.Partial()
		if err != nil {
			return err
		}
		c.belt.SetAll(p)
	case ControlCycle:
		if c.controller != nil {
			c.controller.Advance()
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownControl, message.Type)
	}
	return nil
}
