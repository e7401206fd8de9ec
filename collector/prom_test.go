package collector

import (
	"net"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func collectMetrics(t *testing.T, p *PromCollector) []prometheus.Metric {
	t.Helper()

	chM := make(chan prometheus.Metric)
	go func() {
		p.Collect(chM)
		close(chM)
	}()

	var metrics []prometheus.Metric
	for m := range chM {
		metrics = append(metrics, m)
	}
	return metrics
}

func gaugeValue(t *testing.T, metrics []prometheus.Metric, fqName string) (float64, bool) {
	t.Helper()

	for _, metric := range metrics {
		if !strings.Contains(metric.Desc().String(), `"`+fqName+`"`) {
			continue
		}
		m := &dto.Metric{}
		require.NoError(t, metric.Write(m))
		if m.GetGauge() != nil {
			return m.GetGauge().GetValue(), true
		}
		if m.GetCounter() != nil {
			return m.GetCounter().GetValue(), true
		}
	}
	return 0, false
}

func TestPromCollector(t *testing.T) {
	addr := startFakeRedis(t, fakeServerOpts{info: testInfo})

	p := NewPromCollector(New(Options{}), specForAddr(t, addr), "test")
	metrics := collectMetrics(t, p)

	for fqName, want := range map[string]float64{
		"test_up":                1,
		"test_connected_clients": 3,
		"test_uptime_in_seconds": 86400,
		"test_keyspace_hits":     100,
		"test_db0_keys":          10,
		"test_maxclients":        10000,
	} {
		got, found := gaugeValue(t, metrics, fqName)
		if !found {
			t.Errorf("didn't find %s", fqName)
			continue
		}
		if got != want {
			t.Errorf("%s: got %f, wanted %f", fqName, got, want)
		}
	}

	// plain strings like redis_version aren't representable as values
	if _, found := gaugeValue(t, metrics, "test_redis_version"); found {
		t.Errorf("redis_version must not be exported as a number")
	}

	for _, fqName := range []string{"test_plugin_collects_total", "test_plugin_collect_duration_seconds", "test_last_collect_seconds"} {
		found := false
		for _, metric := range metrics {
			if strings.Contains(metric.Desc().String(), fqName) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("didn't find %s", fqName)
		}
	}
}

func TestPromCollectorTargetDown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	p := NewPromCollector(New(Options{}), specForAddr(t, addr), "test")
	metrics := collectMetrics(t, p)

	up, found := gaugeValue(t, metrics, "test_up")
	require.True(t, found, "didn't find test_up")
	require.Equal(t, 0.0, up)

	lastErr, found := gaugeValue(t, metrics, "test_last_collect_error")
	require.True(t, found, "didn't find test_last_collect_error")
	require.Equal(t, 1.0, lastErr)
}

func TestPromCollectorRegisters(t *testing.T) {
	addr := startFakeRedis(t, fakeServerOpts{info: testInfo})

	registry := prometheus.NewRegistry()
	registry.MustRegister(NewPromCollector(New(Options{}), specForAddr(t, addr), "test"))

	families, err := registry.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{"test_up", "test_connected_clients", "test_samples_collected"} {
		if !names[want] {
			t.Errorf("didn't find metric family %s", want)
		}
	}
}
