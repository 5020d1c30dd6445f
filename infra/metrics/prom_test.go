package metrics

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/kilianp07/gridsim/core/metrics"
)

func TestPromSink_RecordTick(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	if err := sink.RecordTick(coremetrics.TickSummary{Tick: 4, Generation: 1500, PacketsDropped: 2}); err != nil {
		t.Fatalf("record tick: %v", err)
	}
	if got := testutil.ToFloat64(sink.power.WithLabelValues("generation")); got != 1500 {
		t.Fatalf("expected generation 1500 got %v", got)
	}
	if got := testutil.ToFloat64(sink.packets.WithLabelValues("dropped")); got != 2 {
		t.Fatalf("expected 2 dropped packets got %v", got)
	}
	if got := testutil.ToFloat64(sink.tick); got != 4 {
		t.Fatalf("expected tick 4 got %v", got)
	}

	if err := sink.RecordCommand(coremetrics.CommandEvent{Kind: "stability"}); err != nil {
		t.Fatalf("record command: %v", err)
	}
	if err := sink.RecordRun(coremetrics.RunEvent{Status: "completed", Duration: time.Second}); err != nil {
		t.Fatalf("record run: %v", err)
	}
	expected := `
# HELP gridsim_commands_total Control commands issued by kind
# TYPE gridsim_commands_total counter
gridsim_commands_total{kind="stability"} 1
`
	if err := testutil.CollectAndCompare(sink.commands, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
	if c := testutil.CollectAndCount(sink.duration); c == 0 {
		t.Errorf("run duration not recorded")
	}
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("first sink: %v", err)
	}
	b, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("second sink: %v", err)
	}
	_ = a.RecordTick(coremetrics.TickSummary{})
	_ = b.RecordTick(coremetrics.TickSummary{})
	if got := testutil.ToFloat64(a.ticks); got != 2 {
		t.Fatalf("expected shared counter at 2 got %v", got)
	}
}

func TestStartPromServer(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	_ = sink.RecordTick(coremetrics.TickSummary{Generation: 42})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- StartPromServer(ctx, addr, reg) }()
	defer func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("server: %v", err)
		}
	}()

	var body string
	for i := 0; i < 50; i++ {
		resp, err := http.Get("http://" + addr + "/metrics")
		if err == nil {
			b, _ := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			body = string(b)
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if !strings.Contains(body, `gridsim_power_watts{stage="generation"} 42`) {
		t.Fatalf("metric not exposed, body: %s", body)
	}
}
