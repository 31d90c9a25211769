// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package scheduler

import (
	"time"

	"github.com/vechain/dpos/thor"
)

// Phase tells whether a block deadline was derived from the production round plan
// or from catching up after falling behind it.
type Phase int

const (
	PhaseOnSchedule Phase = iota
	PhaseCatchingUp
)

func (p Phase) String() string {
	switch p {
	case PhaseOnSchedule:
		return "on-schedule"
	case PhaseCatchingUp:
		return "catching-up"
	}
	return "unknown"
}

// RoundBlockStartTime returns the instant at which work on the block of the given slot should begin.
//
// The first block of a production round starts one block interval ahead of its slot time.
// Each following block of the round starts cpuEffort after the previous one, not a full
// interval after, so that a producer spending less than an interval per block builds up slack.
func RoundBlockStartTime(cpuEffort time.Duration, slot thor.Slot) time.Time {
	roundFirst, index := slot.Position()
	return roundFirst.Time().Add(-thor.BlockInterval + time.Duration(index)*cpuEffort)
}

// HardDeadline returns the latest deadline of the slot's block, which still leaves
// (BlockInterval - cpuEffort) before the slot time.
func HardDeadline(cpuEffort time.Duration, slot thor.Slot) time.Time {
	return slot.Time().Add(-(thor.BlockInterval - cpuEffort))
}

// CalcDeadline returns the instant the block of the given slot must be completed by, with the phase it was derived in.
//
// While now is strictly before the planned deadline the plan holds. Otherwise the producer has
// fallen behind (e.g. stopped and came back in the middle of its round): it gets a full cpuEffort
// from now, capped by the hard deadline.
func CalcDeadline(cpuEffort time.Duration, slot thor.Slot, now time.Time) (time.Time, Phase) {
	optimized := RoundBlockStartTime(cpuEffort, slot).Add(cpuEffort)
	if now.Before(optimized) {
		return optimized, PhaseOnSchedule
	}

	deadline := now.Add(cpuEffort)
	if hard := HardDeadline(cpuEffort, slot); hard.Before(deadline) {
		deadline = hard
	}
	return deadline, PhaseCatchingUp
}

// BlockDeadline returns the instant the block of the given slot must be completed by.
func BlockDeadline(cpuEffort time.Duration, slot thor.Slot, now time.Time) time.Time {
	deadline, _ := CalcDeadline(cpuEffort, slot, now)
	return deadline
}
