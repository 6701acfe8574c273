package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/metrics"
	"github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/infra/logger"
)

// InfluxSink writes planning events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordRoute writes the route summary.
func (s *InfluxSink) RecordRoute(ev coremetrics.RouteEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("route_planned").
		AddTag("channel", ev.Channel).
		AddTag("vehicle_model", ev.VehicleModel).
		AddTag("fail", strconv.FormatBool(ev.Fail)).
		AddTag("request_id", ev.RequestID).
		AddField("stops", ev.Stops).
		AddField("length_m", round3(ev.LengthMeters)).
		AddField("travel_time_s", round3(ev.TravelTimeSec)).
		AddField("charging_time_s", round3(ev.ChargingTimeSec)).
		AddField("consumption_kwh", round3(ev.ConsumptionKWh)).
		AddField("remaining_kwh", round3(ev.RemainingKWh)).
		AddField("duration_ms", round3(ev.Duration.Seconds()*1000)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordChargeStop writes one charging stop.
func (s *InfluxSink) RecordChargeStop(ev coremetrics.ChargeStopEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("charge_stop").
		AddTag("park_id", strconv.FormatInt(ev.ParkID, 10)).
		AddTag("connector", ev.ConnectorType).
		AddTag("request_id", ev.RequestID).
		AddField("park_name", ev.ParkName).
		AddField("power_kw", round3(ev.PowerKW)).
		AddField("arrival_kwh", round3(ev.ArrivalKWh)).
		AddField("target_kwh", round3(ev.TargetKWh)).
		AddField("charging_time_s", ev.ChargingTimeSec).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordCatalogLoad writes the result of a catalog load.
func (s *InfluxSink) RecordCatalogLoad(ev coremetrics.CatalogLoadEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("charger_catalog").
		AddTag("source", ev.Source).
		AddField("loaded", ev.Loaded).
		AddField("skipped", ev.Skipped).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
