// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/vechain/dpos/clock"
	"github.com/vechain/dpos/producer"
	"github.com/vechain/dpos/schedule"
	"github.com/vechain/dpos/thor"
	"github.com/vechain/dpos/watermark"
)

// soloChain is an in-process chain where only the local producers sign blocks.
// Slots of the other producers are missed.
type soloChain struct {
	mu    sync.Mutex
	store *watermark.Store
	sched *schedule.Schedule
	head  producer.Head
	marks watermark.Watermarks
}

var _ producer.Chain = (*soloChain)(nil)

// newSoloChain starts the chain at the current slot, or past the persisted watermarks.
// Blocks are not kept, a restarted chain builds on a head without id.
func newSoloChain(store *watermark.Store, sched *schedule.Schedule, c clock.Clock) (*soloChain, error) {
	marks, err := store.Load()
	if err != nil {
		return nil, errors.WithMessage(err, "load watermarks")
	}
	head := producer.Head{Slot: thor.SlotAt(c.Now())}
	for _, wm := range marks {
		head.Num = max(head.Num, wm.BlockNum)
		head.Slot = max(head.Slot, wm.Slot)
	}
	return &soloChain{
		store: store,
		sched: sched,
		head:  head,
		marks: marks,
	}, nil
}

func (c *soloChain) Head() producer.Head {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.head
}

func (c *soloChain) Schedule() *schedule.Schedule {
	return c.sched
}

func (c *soloChain) Watermarks() watermark.Watermarks {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.marks.Copy()
}

func (c *soloChain) Commit(blk *producer.Block) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if blk.Num != c.head.Num+1 {
		return errors.Errorf("block #%d does not extend head #%d", blk.Num, c.head.Num)
	}
	if blk.ParentID != c.head.ID {
		return errors.Errorf("block parent %v is not head %v", blk.ParentID.AbbrevString(), c.head.ID.AbbrevString())
	}
	if blk.Slot <= c.head.Slot {
		return errors.Errorf("block slot %v not after head slot %v", blk.Slot, c.head.Slot)
	}
	if owner := c.sched.ProducerAt(blk.Slot).Name; owner != blk.Producer {
		return errors.Errorf("slot %v belongs to %v, not %v", blk.Slot, owner, blk.Producer)
	}

	// persisted first, a crash must never forget a signed slot
	if err := c.store.Save(blk.Producer, watermark.Watermark{BlockNum: blk.Num, Slot: blk.Slot}); err != nil {
		return errors.WithMessage(err, "save watermark")
	}
	c.marks.Consider(blk.Producer, blk.Num, blk.Slot)
	c.head = producer.Head{ID: blk.ID, Num: blk.Num, Slot: blk.Slot}
	return nil
}

// soloAssembler spends the whole budget of the block, there's no transaction to collect.
type soloAssembler struct{}

func (soloAssembler) Assemble(ctx context.Context, pending *producer.Pending) (*producer.Block, error) {
	if d := pending.Remaining(); d > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-pending.Clock().After(d):
		}
	}
	return pending.Seal(0), nil
}
