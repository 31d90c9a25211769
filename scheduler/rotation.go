// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package scheduler

import (
	"time"

	"github.com/vechain/dpos/schedule"
	"github.com/vechain/dpos/thor"
	"github.com/vechain/dpos/watermark"
)

// minimumSlot returns the earliest slot the producer may sign after the reference block.
// It must at least be the next slot, and must be past any watermark of the producer.
// A watermark block number ahead of the reference block is conservatively mapped to slots,
// assuming no slot in between is missed.
func minimumSlot(
	name thor.Name,
	refBlockNum uint32,
	refSlot thor.Slot,
	marks watermark.Watermarks,
) thor.Slot {
	offset := uint32(1)
	if wm, ok := marks.Get(name); ok {
		if wm.BlockNum > refBlockNum {
			offset = wm.BlockNum - refBlockNum + 1
		}
		if wm.Slot > refSlot {
			offset = max(offset, uint32(wm.Slot-refSlot)+1)
		}
	}
	return refSlot + thor.Slot(offset)
}

// nextSlotAt returns the first slot at or after minSlot owned by the schedule entry at position.
func nextSlotAt(position int, minSlot thor.Slot, scheduleLen int) thor.Slot {
	var (
		n          = uint32(scheduleLen)
		runIndex   = uint32(minSlot) / thor.ProducerRepetitions
		atPosition = runIndex % n
	)
	if atPosition == uint32(position) {
		return minSlot
	}
	distance := (uint32(position) + n - atPosition) % n
	return thor.Slot((runIndex + distance) * thor.ProducerRepetitions)
}

// NextOwnedSlot returns the next slot after the reference block which is owned by one of the
// local producers and has not been signed yet according to the watermarks.
//
// If a local producer is in the middle of its own run, the immediately following slot of that run
// is returned, so blocks of a run are always produced in order.
// The returned flag is false if none of the producers is listed in the schedule.
func NextOwnedSlot(
	refBlockNum uint32,
	refSlot thor.Slot,
	producers thor.Names,
	sched *schedule.Schedule,
	marks watermark.Watermarks,
) (thor.Slot, bool) {
	if producers.Len() == 0 || sched == nil || sched.Len() == 0 {
		return 0, false
	}

	var (
		found    bool
		next     thor.Slot
		minimums = make(map[thor.Name]thor.Slot, producers.Len())
	)
	// one pass over the schedule array, each position yields at most one candidate
	for i := 0; i < sched.Len(); i++ {
		name := sched.At(i).Name
		if !producers.Has(name) {
			continue
		}
		minSlot, ok := minimums[name]
		if !ok {
			minSlot = minimumSlot(name, refBlockNum, refSlot, marks)
			minimums[name] = minSlot
		}

		candidate := nextSlotAt(i, minSlot, sched.Len())
		if wm, ok := marks.Get(name); ok && candidate <= wm.Slot {
			continue
		}
		if !found || candidate < next {
			next, found = candidate, true
		}
	}
	return next, found
}

// WakeUpTime returns the instant to begin producing the next block owned by the local producers.
// The returned flag is false if none of the producers is listed in the schedule, in which case
// the caller should wait for a schedule change instead of polling.
func WakeUpTime(
	cpuEffort time.Duration,
	refBlockNum uint32,
	refSlot thor.Slot,
	producers thor.Names,
	sched *schedule.Schedule,
	marks watermark.Watermarks,
) (time.Time, bool) {
	slot, ok := NextOwnedSlot(refBlockNum, refSlot, producers, sched, marks)
	if !ok {
		return time.Time{}, false
	}
	return RoundBlockStartTime(cpuEffort, slot), true
}
