package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/gridsim/core/metrics"
	"github.com/kilianp07/gridsim/infra/logger"
)

// InfluxSink writes tick summaries, commands and runs to InfluxDB.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	scenario string
	log      logger.Logger
}

// NewInfluxSink creates a sink for the given InfluxDB endpoint. Points are
// tagged with scenario.
func NewInfluxSink(url, token, org, bucket, scenario string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		scenario: scenario,
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a NopSink
// if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket, scenario string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket, scenario)
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

// RecordTick writes one grid_tick point.
func (s *InfluxSink) RecordTick(t coremetrics.TickSummary) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("grid_tick").
		AddTag("scenario", s.scenario).
		AddField("tick", t.Tick).
		AddField("generation_w", round3(t.Generation)).
		AddField("transmitted_w", round3(t.Transmitted)).
		AddField("distributed_w", round3(t.Distributed)).
		AddField("consumption", round3(t.Consumption)).
		AddField("production", round3(t.Production)).
		AddField("stored_energy", round3(t.StoredEnergy)).
		AddField("net_power_w", round3(t.NetPower)).
		AddField("unserved_w", round3(t.Unserved)).
		AddField("packets_delivered", t.PacketsDelivered).
		AddField("packets_dropped", t.PacketsDropped).
		SetTime(t.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordCommand writes one grid_command point.
func (s *InfluxSink) RecordCommand(ev coremetrics.CommandEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("grid_command").
		AddTag("scenario", s.scenario).
		AddTag("control", ev.Control).
		AddTag("kind", ev.Kind).
		AddField("id", ev.ID).
		AddField("tick", ev.Tick).
		AddField("message", ev.Message).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordRun writes one grid_run point.
func (s *InfluxSink) RecordRun(ev coremetrics.RunEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("grid_run").
		AddTag("scenario", s.scenario).
		AddTag("status", ev.Status).
		AddField("ticks", ev.Ticks).
		AddField("duration_ms", round3(ev.Duration.Seconds()*1000)).
		AddField("error", ev.Error).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the client.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
