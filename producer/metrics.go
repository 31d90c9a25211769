// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package producer

import (
	"time"

	"github.com/vechain/dpos/clock"
	"github.com/vechain/dpos/metrics"
)

var (
	metricBlockProducedCount    = metrics.LazyLoadCounterVec("block_produced_count", []string{"status"})
	metricBlockProducedTxs      = metrics.LazyLoadCounter("block_produced_tx_count")
	metricBlockProducedDuration = metrics.LazyLoadHistogramVec(
		"block_produced_duration_ms", []string{"status"}, metrics.BucketBlockInterval,
	)
	metricDeadlinePhaseCount = metrics.LazyLoadCounterVec("block_deadline_phase_count", []string{"phase"})
	metricDeclinedCount      = metrics.LazyLoadCounterVec("slot_declined_count", []string{"reason"})
	metricWakeUpLead         = metrics.LazyLoadGauge("wakeup_lead_ms")
	metricPaused             = metrics.LazyLoadGauge("paused")
)

// evalBlockProduceMetrics captures block producing metrics, timed on the clock deadlines are measured on.
func evalBlockProduceMetrics(c clock.Clock, f func() (*Block, error)) (*Block, time.Duration, error) {
	start := c.Now()
	blk, err := f()
	elapsed := c.Now().Sub(start)
	status := map[string]string{"status": "produced"}
	if err != nil {
		status["status"] = "failed"
	} else {
		metricBlockProducedTxs().Add(int64(blk.Txs))
	}
	metricBlockProducedCount().AddWithLabel(1, status)
	metricBlockProducedDuration().ObserveWithLabels(elapsed.Milliseconds(), status)
	return blk, elapsed, err
}
