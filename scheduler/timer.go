// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package scheduler

import (
	"time"

	"github.com/vechain/dpos/clock"
	"github.com/vechain/dpos/schedule"
	"github.com/vechain/dpos/thor"
	"github.com/vechain/dpos/watermark"
)

// Timer binds the timing calculations to a clock and a cpu effort.
// It holds no state besides them and is safe for concurrent use.
type Timer struct {
	clock     clock.Clock
	cpuEffort time.Duration
}

// NewTimer create a Timer. cpuEffort is expected in (0, thor.BlockInterval].
func NewTimer(c clock.Clock, cpuEffort time.Duration) *Timer {
	return &Timer{c, cpuEffort}
}

// CPUEffort returns the time budget for producing one block.
func (t *Timer) CPUEffort() time.Duration {
	return t.cpuEffort
}

// Clock returns the bound clock.
func (t *Timer) Clock() clock.Clock {
	return t.clock
}

// Deadline returns the deadline of the slot's block as of now.
// The clock is read exactly once.
func (t *Timer) Deadline(slot thor.Slot) (time.Time, Phase) {
	return CalcDeadline(t.cpuEffort, slot, t.clock.Now())
}

// WakeUp returns the instant to begin producing the next owned block after the reference block.
func (t *Timer) WakeUp(
	refBlockNum uint32,
	refSlot thor.Slot,
	producers thor.Names,
	sched *schedule.Schedule,
	marks watermark.Watermarks,
) (time.Time, bool) {
	return WakeUpTime(t.cpuEffort, refBlockNum, refSlot, producers, sched, marks)
}

// NextSlot returns the next owned slot after the reference block together with the instant
// to begin producing it.
func (t *Timer) NextSlot(
	refBlockNum uint32,
	refSlot thor.Slot,
	producers thor.Names,
	sched *schedule.Schedule,
	marks watermark.Watermarks,
) (thor.Slot, time.Time, bool) {
	slot, ok := NextOwnedSlot(refBlockNum, refSlot, producers, sched, marks)
	if !ok {
		return 0, time.Time{}, false
	}
	return slot, RoundBlockStartTime(t.cpuEffort, slot), true
}
