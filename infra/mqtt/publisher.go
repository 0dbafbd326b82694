package mqtt

import (
	"encoding/json"
	"fmt"
	"sync"

	coremqtt "github.com/kilianp07/workplan/core/mqtt"
)

// Publisher mirrors the core mqtt.Publisher interface.
type Publisher = coremqtt.Publisher

// Message is a publication captured by MockPublisher.
type Message struct {
	Subtopic string
	Payload  []byte
}

// MockPublisher is a simple publisher used in tests.
type MockPublisher struct {
	Messages []Message
	// Fail lists subtopics whose publication returns an error.
	Fail     map[string]bool
	handlers map[string]coremqtt.Handler
	mu       sync.Mutex
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{Fail: make(map[string]bool), handlers: make(map[string]coremqtt.Handler)}
}

// Publish records the encoded message or returns an error if configured to fail.
func (m *MockPublisher) Publish(subtopic string, v any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail[subtopic] {
		return fmt.Errorf("publish failed")
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.Messages = append(m.Messages, Message{Subtopic: subtopic, Payload: b})
	return nil
}

// Subscribe stores the handler; Deliver invokes it.
func (m *MockPublisher) Subscribe(subtopic string, h coremqtt.Handler) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[subtopic] = h
	return nil
}

// Deliver simulates an incoming message on subtopic.
func (m *MockPublisher) Deliver(subtopic string, payload []byte) bool {
	m.mu.Lock()
	h, ok := m.handlers[subtopic]
	m.mu.Unlock()
	if ok {
		h(subtopic, payload)
	}
	return ok
}

// Subtopics lists the subtopics published so far, in order.
func (m *MockPublisher) Subtopics() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Messages))
	for i, msg := range m.Messages {
		out[i] = msg.Subtopic
	}
	return out
}
