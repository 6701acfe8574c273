package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	coremqtt "github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/mqtt"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/model"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/infra/logger"
)

const (
	DefaultRequestTopic   = "evroute/requests"
	DefaultResponsePrefix = "evroute/routes"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Enabled        bool            `json:"enabled"`
	Broker         string          `json:"broker"`
	ClientID       string          `json:"client_id"`
	Username       string          `json:"username"`
	Password       string          `json:"password"`
	RequestTopic   string          `json:"request_topic"`
	ResponsePrefix string          `json:"response_topic_prefix"`
	UseTLS         bool            `json:"use_tls"`
	ClientCert     string          `json:"client_cert"`
	ClientKey      string          `json:"client_key"`
	CABundle       string          `json:"ca_bundle"`
	AuthMethod     string          `json:"auth_method"`
	QoS            map[string]byte `json:"qos"`
	LWTTopic       string          `json:"lwt_topic"`
	LWTPayload     string          `json:"lwt_payload"`
	LWTQoS         byte            `json:"lwt_qos"`
	LWTRetain      bool            `json:"lwt_retain"`
	MaxRetries     int             `json:"max_retries"`
	BackoffMS      int             `json:"backoff_ms"`
	TLSConfig      *tls.Config     `json:"-"`
}

// SetDefaults fills the topics and client id.
func (c *Config) SetDefaults() {
	if c.RequestTopic == "" {
		c.RequestTopic = DefaultRequestTopic
	}
	if c.ResponsePrefix == "" {
		c.ResponsePrefix = DefaultResponsePrefix
	}
	if c.ClientID == "" {
		c.ClientID = "evroute-" + uuid.NewString()[:8]
	}
}

// Validate checks the broker settings of an enabled transport.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Broker == "" {
		return fmt.Errorf("mqtt broker is required")
	}
	if strings.ContainsAny(c.ResponsePrefix, "+#") {
		return fmt.Errorf("mqtt response_topic_prefix must not contain wildcards")
	}
	return nil
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

// PahoClient serves route requests from the request topic and publishes the
// answers below the response prefix. It implements coremqtt.Responder.
type PahoClient struct {
	cli            pahoClient
	requestTopic   string
	responsePrefix string
	qos            map[string]byte
	handler        coremqtt.RouteHandler
	ctx            context.Context

	wg         sync.WaitGroup
	logger     logger.Logger
	maxRetries int
	backoff    time.Duration
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// NewPahoClient connects to the MQTT broker and subscribes to the request
// topic. Requests are handled until ctx is done.
func NewPahoClient(ctx context.Context, cfg Config, handler coremqtt.RouteHandler) (*PahoClient, error) {
	cfg.SetDefaults()
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	logger := logger.New("mqtt_client")
	pc := &PahoClient{
		requestTopic:   cfg.RequestTopic,
		responsePrefix: strings.TrimSuffix(cfg.ResponsePrefix, "/"),
		qos:            cfg.QoS,
		handler:        handler,
		ctx:            ctx,
		logger:         logger,
		maxRetries:     cfg.MaxRetries,
		backoff:        time.Duration(cfg.BackoffMS) * time.Millisecond,
	}
	if pc.maxRetries <= 0 {
		pc.maxRetries = 3
	}
	if pc.backoff <= 0 {
		pc.backoff = 100 * time.Millisecond
	}

	opts.OnConnect = func(c paho.Client) {
		logger.Infof("MQTT connected")
		if token := c.Subscribe(pc.requestTopic, pc.qosFor("request"), pc.onRequest); token.Wait() && token.Error() != nil {
			logger.Errorf("subscribe error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		logger.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		logger.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	pc.cli = c
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return pc, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.AuthMethod == "username_password" || cfg.AuthMethod == "both" || cfg.AuthMethod == "" {
		if cfg.Username != "" {
			opts.SetUsername(cfg.Username)
		}
		if cfg.Password != "" {
			opts.SetPassword(cfg.Password)
		}
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.LWTQoS, cfg.LWTRetain)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	cfg := &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}
	return cfg, nil
}

func (p *PahoClient) qosFor(kind string) byte {
	if q, ok := p.qos[kind]; ok {
		return q
	}
	return 0
}

// ResponseTopic returns the topic the answer to requestID is published on.
func (p *PahoClient) ResponseTopic(requestID string) string {
	return p.responsePrefix + "/" + requestID
}

func (p *PahoClient) onRequest(_ paho.Client, msg paho.Message) {
	var req model.RouteRequest
	if err := json.Unmarshal(msg.Payload(), &req); err != nil {
		p.logger.Errorf("failed to decode route request: %v", err)
		return
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.serve(req)
	}()
}

func (p *PahoClient) serve(req model.RouteRequest) {
	var payload any
	resp, err := p.handler(p.ctx, req)
	if err != nil {
		p.logger.Warnf("route request %s failed: %v", req.RequestID, err)
		payload = coremqtt.ErrorResponse{RequestID: req.RequestID, Error: err.Error()}
	} else {
		payload = resp
	}
	if err := p.PublishResponse(req.RequestID, payload); err != nil {
		p.logger.Errorf("publish response %s: %v", req.RequestID, err)
	}
}

// PublishResponse marshals payload and publishes it for requestID, retrying
// with exponential backoff.
func (p *PahoClient) PublishResponse(requestID string, payload any) error {
	if p.cli == nil || !p.cli.IsConnected() {
		return coremqtt.ErrNotConnected
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	topic := p.ResponseTopic(requestID)
	qos := p.qosFor("response")
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, qos, false, data)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.logger.Infof("published route %s to %s", requestID, topic)
			return nil
		}
		p.logger.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt < p.maxRetries {
			time.Sleep(p.backoff * time.Duration(1<<attempt))
		}
	}
	return errors.Join(fmt.Errorf("publish %s", topic), publishErr)
}

// Wait blocks until all in-flight requests are answered.
func (p *PahoClient) Wait() {
	p.wg.Wait()
}

// Disconnect waits for in-flight requests and closes the MQTT connection.
func (p *PahoClient) Disconnect() {
	p.wg.Wait()
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
