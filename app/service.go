// Package app wires the road network, the charger catalog and the planner
// to the HTTP and MQTT entry points.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/api/routes"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/config"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/charging"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/events"
	coremetrics "github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/metrics"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/model"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/monitoring"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/network"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/planner"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/routelog"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/infra/chargers"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/infra/logger"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/infra/metrics"
	infmon "github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/infra/monitoring"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/infra/mqtt"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/infra/roadnet"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/internal/eventbus"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/pkg/export"
)

// Channels a request can arrive on.
const (
	ChannelHTTP = routes.ChannelHTTP
	ChannelMQTT = "mqtt"
	ChannelCLI  = "cli"
)

// Service owns the loaded data and the planner. Its planning methods are
// safe for concurrent use.
type Service struct {
	cfg     *config.Config
	network *roadnet.Network
	catalog *charging.Catalog
	planner *planner.Planner
	vehicle model.Vehicle

	bus     *eventbus.Bus
	sink    coremetrics.MetricsSink
	store   routelog.Store
	log     logger.Logger
	loaded  events.CatalogLoaded
	monitor monitoring.Monitor

	startOnce sync.Once
	workers   []<-chan struct{}
}

// New loads the network and the catalog described by cfg.
func New(cfg *config.Config) (*Service, error) {
	if err := logger.Configure(cfg.Logging); err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	logg := logger.New("service")

	mon, err := infmon.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	monitoring.Init(mon)

	vehicle, err := cfg.Vehicle.Build()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	net, err := roadnet.LoadFiles(cfg.Network.Nodes, cfg.Network.Edges)
	if err != nil {
		return nil, fmt.Errorf("road network: %w", err)
	}
	logg.Infof("road network loaded in %s: %d nodes, %d edges", time.Since(start), net.NodeCount(), net.EdgeCount())

	res, err := chargers.LoadFile(cfg.Chargers.Path, net, cfg.Chargers.Options(), logger.New("chargers"))
	if err != nil {
		return nil, fmt.Errorf("charging parks: %w", err)
	}
	catalog := charging.NewCatalog(res.Parks)

	p, err := planner.New(net, catalog, cfg.Planner, logger.New("planner"))
	if err != nil {
		return nil, err
	}

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	store, err := routelog.NewStore(cfg.RouteLog.Module())
	if err != nil {
		return nil, fmt.Errorf("route log: %w", err)
	}

	return &Service{
		cfg:     cfg,
		network: net,
		catalog: catalog,
		planner: p,
		vehicle: vehicle,
		bus:     eventbus.New(eventbus.WithBuffer(64)),
		sink:    sink,
		store:   store,
		log:     logg,
		monitor: mon,
		loaded: events.CatalogLoaded{
			Source:  cfg.Chargers.Path,
			Loaded:  len(res.Parks),
			Skipped: res.Skipped,
		},
	}, nil
}

// Network returns the loaded road network.
func (s *Service) Network() *roadnet.Network { return s.network }

// Catalog returns the loaded charging parks.
func (s *Service) Catalog() *charging.Catalog { return s.catalog }

// Vehicle returns the configured default vehicle.
func (s *Service) Vehicle() model.Vehicle { return s.vehicle }

// Start runs the metrics collector and the route recorder. It is called by
// Run; one-shot callers use it to get their routes recorded.
func (s *Service) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		s.workers = append(s.workers,
			metrics.StartEventCollector(ctx, s.bus, s.sink, logger.New("metrics")),
			routelog.StartRecorder(ctx, s.bus, s.store, logger.New("route_log")),
		)
		s.bus.Publish(s.loaded)
	})
}

// PlanRoute snaps the endpoints of req to the network and plans the route.
func (s *Service) PlanRoute(ctx context.Context, req model.RouteRequest, channel string) (*model.Route, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	v := s.vehicle
	if req.Vehicle != nil {
		var err error
		if v, err = req.Vehicle.Build(); err != nil {
			return nil, err
		}
	}
	source, err := s.snap(req.From, "from")
	if err != nil {
		return nil, err
	}
	target, err := s.snap(req.To, "to")
	if err != nil {
		return nil, err
	}

	start := time.Now()
	route, err := s.planner.Plan(ctx, v, source, target)
	if err != nil {
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			monitoring.CaptureRequestError(err, channel, req.RequestID)
		}
		return nil, err
	}
	s.bus.Publish(events.RoutePlanned{
		RequestID: req.RequestID,
		Channel:   channel,
		Vehicle:   v.Model,
		Source:    source,
		Target:    target,
		Route:     route,
		Parks:     s.parks(route),
		Duration:  time.Since(start),
		Time:      time.Now(),
	})
	return route, nil
}

// PlanRequest plans req and renders the route document.
func (s *Service) PlanRequest(ctx context.Context, req model.RouteRequest, channel string) (export.Document, error) {
	route, err := s.PlanRoute(ctx, req, channel)
	if err != nil {
		return export.Document{}, err
	}
	return s.Document(route), nil
}

// Document renders route against the loaded network and catalog.
func (s *Service) Document(route *model.Route) export.Document {
	return export.NewDocument(s.network, s.catalog, route)
}

type mqttResponse struct {
	RequestID string `json:"request_id"`
	export.Document
}

// HandleMQTT serves a route request received over MQTT.
func (s *Service) HandleMQTT(ctx context.Context, req model.RouteRequest) (any, error) {
	doc, err := s.PlanRequest(ctx, req, ChannelMQTT)
	if err != nil {
		return nil, err
	}
	return mqttResponse{RequestID: req.RequestID, Document: doc}, nil
}

func (s *Service) snap(p model.GeoPoint, which string) (model.NodeID, error) {
	n, ok := s.network.Nearest(p, s.cfg.Network.SnapRadiusMeters)
	if !ok {
		return 0, fmt.Errorf("%s %s: %w within %.0f m", which, p, network.ErrNoNodeNearby, s.cfg.Network.SnapRadiusMeters)
	}
	return n, nil
}

func (s *Service) parks(route *model.Route) []model.ChargingPark {
	parks := make([]model.ChargingPark, len(route.ChargeEvents))
	for i, ev := range route.ChargeEvents {
		parks[i] = s.catalog.Park(ev.Park)
	}
	return parks
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	routes.Register(mux, s, s.store, s.cfg.Server.LogsToken, s.catalog)
	return mux
}

// Run starts the service and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	s.Start(ctx)
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, addr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if s.cfg.MQTT.Enabled {
		client, err := mqtt.NewPahoClient(ctx, s.cfg.MQTT, s.HandleMQTT)
		if err != nil {
			return fmt.Errorf("mqtt client: %w", err)
		}
		defer client.Disconnect()
	}
	return serveHTTP(ctx, s.cfg.Server, s.Handler(), s.log)
}

// Close stops the background workers and releases the stores.
func (s *Service) Close() error {
	s.bus.Close()
	for _, done := range s.workers {
		<-done
	}
	var errs []error
	if err := s.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("route log: %w", err))
	}
	if c, ok := s.sink.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("metrics sink: %w", err))
		}
	}
	s.monitor.Flush(2 * time.Second)
	return errors.Join(errs...)
}
