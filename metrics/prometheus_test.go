// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dto "github.com/prometheus/client_model/go"
)

func gather(t *testing.T) map[string]*dto.MetricFamily {
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	out := make(map[string]*dto.MetricFamily)
	for _, mf := range families {
		out[mf.GetName()] = mf
	}
	return out
}

func TestPromMetrics(t *testing.T) {
	InitializePrometheusMetrics()

	produced := CounterVec("produced_blocks_count", []string{"producer"})
	missed := Counter("missed_slots_count")
	paused := Gauge("paused")
	lead := GaugeVec("wakeup_lead_ms", []string{"producer"})
	build := Histogram("build_duration_ms", BucketBlockInterval)
	reqs := HistogramVec("http_request_duration_ms", []string{"path"}, BucketHTTPReqs)

	for range 3 {
		produced.AddWithLabel(1, map[string]string{"producer": "inita"})
	}
	produced.AddWithLabel(1, map[string]string{"producer": "initb"})
	missed.Add(2)
	Counter("missed_slots_count").Add(1)
	paused.Set(1)
	paused.Add(-1)
	lead.SetWithLabel(250, map[string]string{"producer": "inita"})
	lead.AddWithLabel(50, map[string]string{"producer": "inita"})
	build.Observe(120)
	build.Observe(80)
	reqs.ObserveWithLabels(3, map[string]string{"path": "/admin/producer"})

	m := gather(t)

	sum := 0.0
	for _, metric := range m["dpos_produced_blocks_count"].GetMetric() {
		sum += metric.GetCounter().GetValue()
	}
	assert.Equal(t, 4.0, sum)
	assert.Equal(t, 3.0, m["dpos_missed_slots_count"].GetMetric()[0].GetCounter().GetValue())
	assert.Equal(t, 0.0, m["dpos_paused"].GetMetric()[0].GetGauge().GetValue())
	assert.Equal(t, 300.0, m["dpos_wakeup_lead_ms"].GetMetric()[0].GetGauge().GetValue())
	assert.Equal(t, 200.0, m["dpos_build_duration_ms"].GetMetric()[0].GetHistogram().GetSampleSum())
	assert.Equal(t, uint64(2), m["dpos_build_duration_ms"].GetMetric()[0].GetHistogram().GetSampleCount())
	assert.Equal(t, 3.0, m["dpos_http_request_duration_ms"].GetMetric()[0].GetHistogram().GetSampleSum())

	assert.NotNil(t, HTTPHandler())
}

func TestLazyLoading(t *testing.T) {
	metrics = defaultNoopMetrics()

	for _, a := range []any{
		Gauge("noopGauge"),
		GaugeVec("noopGauge", nil),
		Counter("noopCounter"),
		CounterVec("noopCounter", nil),
		Histogram("noopHist", nil),
		HistogramVec("noopHist", nil, nil),
	} {
		require.IsType(t, &noopMeters{}, a)
	}

	lazyGauge := LazyLoadGauge("lazyGauge")
	lazyGaugeVec := LazyLoadGaugeVec("lazyGaugeVec", nil)
	lazyCounter := LazyLoadCounter("lazyCounter")
	lazyCounterVec := LazyLoadCounterVec("lazyCounterVec", nil)
	lazyHistogram := LazyLoadHistogram("lazyHistogram", nil)
	lazyHistogramVec := LazyLoadHistogramVec("lazyHistogramVec", nil, nil)

	// meters resolved after initialization are backed by prometheus
	InitializePrometheusMetrics()

	require.IsType(t, &promGaugeMeter{}, lazyGauge())
	require.IsType(t, &promGaugeVecMeter{}, lazyGaugeVec())
	require.IsType(t, &promCountMeter{}, lazyCounter())
	require.IsType(t, &promCountVecMeter{}, lazyCounterVec())
	require.IsType(t, &promHistogramMeter{}, lazyHistogram())
	require.IsType(t, &promHistogramVecMeter{}, lazyHistogramVec())

	// the same instance is returned on every call
	assert.Same(t, lazyCounter(), lazyCounter())
	assert.Same(t, Counter("lazyCounter"), lazyCounter())
}
