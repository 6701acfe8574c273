package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	paho "github.com/eclipse/paho.mqtt.golang"

	coremqtt "github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/mqtt"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/model"
)

func withMockClient(t *testing.T, mc *mockClient) {
	t.Helper()
	newMQTTClient = func(o *paho.ClientOptions) pahoClient { mc.opts = o; return mc }
	t.Cleanup(func() { newMQTTClient = func(opts *paho.ClientOptions) pahoClient { return paho.NewClient(opts) } })
}

func echoHandler(_ context.Context, req model.RouteRequest) (any, error) {
	return map[string]any{"request_id": req.RequestID, "to": req.To}, nil
}

func TestSubscribesToRequestTopic(t *testing.T) {
	mc := &mockClient{}
	withMockClient(t, mc)
	cfg := Config{Broker: "tcp://localhost:1883", ClientID: "id", QoS: map[string]byte{"request": 1}}
	cli, err := NewPahoClient(context.Background(), cfg, echoHandler)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	defer cli.Disconnect()
	if len(mc.subscribed) != 1 || mc.subscribed[0].topic != DefaultRequestTopic || mc.subscribed[0].qos != 1 {
		t.Fatalf("unexpected subscriptions: %+v", mc.subscribed)
	}
}

func TestRequestIsAnsweredOnResponseTopic(t *testing.T) {
	mc := &mockClient{}
	withMockClient(t, mc)
	cfg := Config{Broker: "tcp://localhost:1883", ClientID: "id", ResponsePrefix: "routes/", QoS: map[string]byte{"response": 2}}
	cli, err := NewPahoClient(context.Background(), cfg, echoHandler)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	mc.handler(mc, mockMessage{[]byte(`{"request_id":"r1","from":{"latitude":48,"longitude":2},"to":{"latitude":49,"longitude":3}}`)})
	cli.Wait()

	msgs := mc.messages()
	if len(msgs) != 1 {
		t.Fatalf("expected one publish, got %d", len(msgs))
	}
	if msgs[0].topic != "routes/r1" || msgs[0].qos != 2 {
		t.Fatalf("unexpected publish %s qos %d", msgs[0].topic, msgs[0].qos)
	}
	var got struct {
		RequestID string         `json:"request_id"`
		To        model.GeoPoint `json:"to"`
	}
	if err := json.Unmarshal(msgs[0].payload, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.RequestID != "r1" || got.To.Latitude != 49 {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestRequestWithoutIDGetsOne(t *testing.T) {
	mc := &mockClient{}
	withMockClient(t, mc)
	cli, err := NewPahoClient(context.Background(), Config{Broker: "tcp://localhost:1883"}, echoHandler)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	mc.handler(mc, mockMessage{[]byte(`{"from":{"latitude":48,"longitude":2},"to":{"latitude":49,"longitude":3}}`)})
	cli.Wait()

	msgs := mc.messages()
	if len(msgs) != 1 {
		t.Fatalf("expected one publish, got %d", len(msgs))
	}
	if len(msgs[0].topic) <= len(DefaultResponsePrefix)+1 {
		t.Fatalf("missing generated id in %s", msgs[0].topic)
	}
}

func TestHandlerErrorIsPublished(t *testing.T) {
	mc := &mockClient{}
	withMockClient(t, mc)
	failing := func(context.Context, model.RouteRequest) (any, error) {
		return nil, fmt.Errorf("%w: from", model.ErrInvalidRequest)
	}
	cli, err := NewPahoClient(context.Background(), Config{Broker: "tcp://localhost:1883"}, failing)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	mc.handler(mc, mockMessage{[]byte(`{"request_id":"bad"}`)})
	cli.Wait()

	msgs := mc.messages()
	if len(msgs) != 1 {
		t.Fatalf("expected one publish, got %d", len(msgs))
	}
	var resp coremqtt.ErrorResponse
	if err := json.Unmarshal(msgs[0].payload, &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.RequestID != "bad" || resp.Error == "" {
		t.Fatalf("unexpected error response %+v", resp)
	}
}

func TestMalformedRequestIgnored(t *testing.T) {
	mc := &mockClient{}
	withMockClient(t, mc)
	cli, err := NewPahoClient(context.Background(), Config{Broker: "tcp://localhost:1883"}, echoHandler)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	mc.handler(mc, mockMessage{[]byte(`not json`)})
	cli.Wait()
	if len(mc.messages()) != 0 {
		t.Fatalf("unexpected publish")
	}
}

func TestRetryLogic(t *testing.T) {
	mc := &mockClient{publishErrs: []error{fmt.Errorf("net fail"), nil}}
	withMockClient(t, mc)
	cfg := Config{Broker: "tcp://localhost:1883", ClientID: "id", MaxRetries: 1, BackoffMS: 1}
	cli, err := NewPahoClient(context.Background(), cfg, echoHandler)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if err := cli.PublishResponse("r1", map[string]string{"ok": "yes"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(mc.messages()) != 2 {
		t.Fatalf("expected retries")
	}
}

func TestRetryExhausted(t *testing.T) {
	fail := errors.New("net fail")
	mc := &mockClient{publishErrs: []error{fail, fail}}
	withMockClient(t, mc)
	cfg := Config{Broker: "tcp://localhost:1883", ClientID: "id", MaxRetries: 1, BackoffMS: 1}
	cli, err := NewPahoClient(context.Background(), cfg, echoHandler)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if err := cli.PublishResponse("r1", 1); !errors.Is(err, fail) {
		t.Fatalf("expected publish error, got %v", err)
	}
}

func TestLWTConfigured(t *testing.T) {
	mc := &mockClient{}
	withMockClient(t, mc)
	cfg := Config{Broker: "tcp://localhost:1883", ClientID: "id", LWTTopic: "lwt", LWTPayload: "bye", LWTQoS: 1}
	cli, err := NewPahoClient(context.Background(), cfg, echoHandler)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if !mc.opts.WillEnabled {
		t.Fatalf("will not enabled")
	}
	if mc.opts.WillTopic != "lwt" || string(mc.opts.WillPayload) != "bye" {
		t.Fatalf("will options incorrect")
	}
	cli.Disconnect()
	if len(mc.messages()) != 0 {
		t.Fatalf("unexpected publish on disconnect")
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{}).Validate(); err != nil {
		t.Fatalf("disabled config should be valid: %v", err)
	}
	if err := (Config{Enabled: true}).Validate(); err == nil {
		t.Fatalf("expected missing broker error")
	}
	cfg := Config{Enabled: true, Broker: "tcp://b:1883", ResponsePrefix: "routes/#"}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected wildcard error")
	}
}
