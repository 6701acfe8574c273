package mqtt

import (
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

type subscription struct {
	topic string
	qos   byte
}

type published struct {
	topic   string
	qos     byte
	payload []byte
}

// mockClient records subscriptions and publishes instead of talking to a
// broker. publishErrs are returned by successive Publish calls.
type mockClient struct {
	mu          sync.Mutex
	opts        *paho.ClientOptions
	handler     paho.MessageHandler
	subscribed  []subscription
	published   []published
	publishErrs []error
}

func (m *mockClient) Connect() paho.Token {
	if m.opts != nil && m.opts.OnConnect != nil {
		m.opts.OnConnect(m)
	}
	return doneToken{}
}

func (m *mockClient) Publish(topic string, qos byte, _ bool, payload interface{}) paho.Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, _ := payload.([]byte)
	m.published = append(m.published, published{topic: topic, qos: qos, payload: b})
	if len(m.publishErrs) == 0 {
		return doneToken{}
	}
	err := m.publishErrs[0]
	m.publishErrs = m.publishErrs[1:]
	return doneToken{err: err}
}

func (m *mockClient) Subscribe(topic string, qos byte, h paho.MessageHandler) paho.Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = h
	m.subscribed = append(m.subscribed, subscription{topic: topic, qos: qos})
	return doneToken{}
}

func (m *mockClient) messages() []published {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]published(nil), m.published...)
}

func (m *mockClient) IsConnected() bool      { return true }
func (m *mockClient) IsConnectionOpen() bool { return true }
func (m *mockClient) Disconnect(uint)        {}
func (m *mockClient) SubscribeMultiple(map[string]byte, paho.MessageHandler) paho.Token {
	return doneToken{}
}
func (m *mockClient) Unsubscribe(...string) paho.Token        { return doneToken{} }
func (m *mockClient) AddRoute(string, paho.MessageHandler)    {}
func (m *mockClient) OptionsReader() paho.ClientOptionsReader { return paho.ClientOptionsReader{} }

// doneToken is an already completed token.
type doneToken struct{ err error }

func (t doneToken) Wait() bool                     { return true }
func (t doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Error() error                   { return t.err }
func (t doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// mockMessage is a route request delivered on the default request topic.
type mockMessage struct{ p []byte }

func (m mockMessage) Topic() string     { return DefaultRequestTopic }
func (m mockMessage) Payload() []byte   { return m.p }
func (m mockMessage) Duplicate() bool   { return false }
func (m mockMessage) Qos() byte         { return 0 }
func (m mockMessage) Retained() bool    { return false }
func (m mockMessage) MessageID() uint16 { return 0 }
func (m mockMessage) Ack()              {}
