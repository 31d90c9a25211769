// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package producer

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/vechain/dpos/co"
	"github.com/vechain/dpos/scheduler"
	"github.com/vechain/dpos/thor"
)

// reasons for not producing in a slot
const (
	declineNotOwner   = "not-owner"
	declineWatermark  = "watermark"
	declineNoSchedule = "no-schedule"
)

// Run runs the production loop until ctx is done.
func (p *Producer) Run(ctx context.Context) error {
	logger.Debug("enter producer loop")
	defer logger.Debug("leave producer loop")

	var active, idle bool
	for {
		// created ahead of reading any state, so a notification racing with the evaluation is kept
		waiter := p.signal.NewWaiter()

		if p.Paused() {
			p.setNext(0, time.Time{})
			select {
			case <-ctx.Done():
				return nil
			case <-waiter.C():
				continue
			}
		}

		var (
			head  = p.chain.Head()
			sched = p.chain.Schedule()
			marks = p.chain.Watermarks()
			names = p.keys.Producers()
		)
		slot, wake, ok := p.timer.NextSlot(head.Num, head.Slot, names, sched, marks)
		if !ok {
			p.setNext(0, time.Time{})
			if !idle {
				logger.Info("not an active producer, waiting for schedule change", "producers", names.Len())
			}
			active, idle = false, true
			if _, err := p.sleep(ctx, waiter, p.opts.RecheckInterval); err != nil {
				return nil
			}
			continue
		}
		if !active {
			active, idle = true, false
			logger.Info("prepared to produce blocks", "producers", names.Len(), "schedule", sched.Version())
		}
		p.setNext(slot, wake)

		now := p.clock.Now()
		if lead := wake.Sub(now); lead > 0 {
			metricWakeUpLead().Set(lead.Milliseconds())
			logger.Debug("scheduled to produce block", "slot", slot, "after", common.PrettyDuration(lead))
			// either the plan changed or it is time, both re-evaluate
			if _, err := p.sleep(ctx, waiter, lead); err != nil {
				return nil
			}
			continue
		}

		pendingSlot, err := p.produce(ctx, head, now)
		if err == nil {
			continue
		}
		if errors.Is(err, context.Canceled) {
			return nil
		}
		var decline *declineError
		if errors.As(err, &decline) {
			metricDeclinedCount().AddWithLabel(1, map[string]string{"reason": decline.reason})
			logger.Debug("skip slot", "slot", pendingSlot, "reason", decline.reason, "detail", decline.detail)
		} else {
			logger.Error("failed to produce block", "slot", pendingSlot, "err", err)
		}
		// the slot is lost, nothing changes before it passes unless notified
		if _, err := p.sleep(ctx, waiter, pendingSlot.Time().Sub(p.clock.Now())); err != nil {
			return nil
		}
	}
}

type declineError struct {
	reason string
	detail string
}

func (e *declineError) Error() string {
	return "declined: " + e.reason + ": " + e.detail
}

// produce builds and commits the block of the slot following max(now, head slot time).
// It returns the slot it considered.
func (p *Producer) produce(ctx context.Context, head Head, now time.Time) (thor.Slot, error) {
	base := now
	if t := head.Slot.Time(); t.After(base) {
		base = t
	}
	slot := thor.NextSlotAfter(base)

	sched := p.chain.Schedule()
	if sched == nil || sched.Len() == 0 {
		return slot, &declineError{declineNoSchedule, "empty schedule"}
	}
	owner := sched.ProducerAt(slot).Name
	if !p.keys.Producers().Has(owner) {
		return slot, &declineError{declineNotOwner, owner.String()}
	}
	if wm, ok := p.chain.Watermarks().Get(owner); ok {
		// producing above a newer watermark might fork away our own blocks
		if wm.BlockNum > head.Num {
			return slot, &declineError{declineWatermark, fmt.Sprintf("block num %d above head %d", wm.BlockNum, head.Num)}
		}
		if wm.Slot >= slot {
			return slot, &declineError{declineWatermark, fmt.Sprintf("slot %v already signed", wm.Slot)}
		}
	}

	deadline, phase := scheduler.CalcDeadline(p.timer.CPUEffort(), slot, now)
	metricDeadlinePhaseCount().AddWithLabel(1, map[string]string{"phase": phase.String()})
	if phase == scheduler.PhaseCatchingUp {
		logger.Debug("behind the production round, catching up", "slot", slot, "deadline", deadline)
	}

	pending := NewPending(p.clock, head, slot, owner, sched.Version(), deadline, phase)

	blk, elapsed, err := evalBlockProduceMetrics(p.clock, func() (*Block, error) {
		blk, err := p.assembler.Assemble(ctx, pending)
		if err != nil {
			return nil, errors.WithMessage(err, "assemble")
		}
		if err := p.chain.Commit(blk); err != nil {
			return nil, errors.WithMessage(err, "commit block")
		}
		return blk, nil
	})
	if err != nil {
		return slot, err
	}

	p.produced.Add(1)
	p.recent.Add(blk.Num, blk)
	p.feed.Send(&ProducedEvent{Block: blk})

	logger.Info("📦 new block produced",
		"id", blk.ID.AbbrevString(),
		"num", blk.Num,
		"slot", blk.Slot,
		"producer", blk.Producer,
		"txs", blk.Txs,
		"phase", phase,
		"elapsed", common.PrettyDuration(elapsed),
		"slack", common.PrettyDuration(blk.Timestamp.Sub(blk.ProducedAt)),
	)
	return slot, nil
}

// sleep waits on the clock for d, the waiter or ctx. It reports whether the waiter fired.
func (p *Producer) sleep(ctx context.Context, waiter co.Waiter, d time.Duration) (bool, error) {
	if d <= 0 {
		return false, ctx.Err()
	}
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case <-waiter.C():
		return true, nil
	case <-p.clock.After(d):
		return false, nil
	}
}
