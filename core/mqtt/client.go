// Package mqtt defines how schedule results leave the process over MQTT.
package mqtt

import "errors"

// ErrNotConnected is returned when publishing without a broker connection.
var ErrNotConnected = errors.New("mqtt client not connected")

// Publisher sends JSON documents below a configured topic prefix.
type Publisher interface {
	// Publish encodes v as JSON and sends it to <prefix>/<subtopic>.
	Publish(subtopic string, v any) error
}

// Handler receives the raw payload of a message on a subscribed topic.
type Handler func(topic string, payload []byte)

// Subscriber is implemented by publishers that can also receive messages.
type Subscriber interface {
	Subscribe(subtopic string, h Handler) error
}
