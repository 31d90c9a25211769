// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package producer

import (
	"context"
	"time"

	"github.com/vechain/dpos/clock"
	"github.com/vechain/dpos/schedule"
	"github.com/vechain/dpos/scheduler"
	"github.com/vechain/dpos/thor"
	"github.com/vechain/dpos/watermark"
)

// Head is the reference block production builds on.
type Head struct {
	ID   thor.BlockID `json:"id"`
	Num  uint32       `json:"num"`
	Slot thor.Slot    `json:"slot"`
}

// Block is a produced block, as far as scheduling is concerned.
type Block struct {
	ID              thor.BlockID `json:"id"`
	ParentID        thor.BlockID `json:"parentID"`
	Num             uint32       `json:"num"`
	Slot            thor.Slot    `json:"slot"`
	Producer        thor.Name    `json:"producer"`
	ScheduleVersion uint32       `json:"scheduleVersion"`
	Timestamp       time.Time    `json:"timestamp"`
	Deadline        time.Time    `json:"deadline"`
	ProducedAt      time.Time    `json:"producedAt"`
	Txs             int          `json:"txs"`
}

// Chain is the block store production builds on.
type Chain interface {
	Head() Head
	Schedule() *schedule.Schedule
	// Watermarks returns a snapshot, it is not modified afterwards.
	Watermarks() watermark.Watermarks
	// Commit appends the block as new head and advances the producer's watermark.
	Commit(blk *Block) error
}

// KeyRing lists the producers whose keys are held locally.
type KeyRing interface {
	Producers() thor.Names
}

// Assembler fills a pending block. It should return once the pending block expired.
type Assembler interface {
	Assemble(ctx context.Context, pending *Pending) (*Block, error)
}

// ProducedEvent is sent after a produced block was committed.
type ProducedEvent struct {
	Block *Block
}

// Pending is a block under construction.
type Pending struct {
	ParentID        thor.BlockID
	Num             uint32
	Slot            thor.Slot
	Producer        thor.Name
	ScheduleVersion uint32
	Deadline        time.Time
	Phase           scheduler.Phase

	clock clock.Clock
}

// NewPending creates a pending block on top of head, with the deadline measured on c.
func NewPending(
	c clock.Clock,
	head Head,
	slot thor.Slot,
	producer thor.Name,
	scheduleVersion uint32,
	deadline time.Time,
	phase scheduler.Phase,
) *Pending {
	return &Pending{
		ParentID:        head.ID,
		Num:             head.Num + 1,
		Slot:            slot,
		Producer:        producer,
		ScheduleVersion: scheduleVersion,
		Deadline:        deadline,
		Phase:           phase,
		clock:           c,
	}
}

// Timestamp returns the slot time of the pending block.
func (p *Pending) Timestamp() time.Time {
	return p.Slot.Time()
}

// Expired returns whether the deadline has been reached.
func (p *Pending) Expired() bool {
	return !p.clock.Now().Before(p.Deadline)
}

// Remaining returns the time left until the deadline, zero once expired.
func (p *Pending) Remaining() time.Duration {
	return max(p.Deadline.Sub(p.clock.Now()), 0)
}

// Clock returns the clock the deadline is measured on.
func (p *Pending) Clock() clock.Clock {
	return p.clock
}

// Seal creates the block out of the pending one.
func (p *Pending) Seal(txs int) *Block {
	return &Block{
		ID:              thor.NewBlockID(p.ParentID, p.Num, p.Slot, p.Producer),
		ParentID:        p.ParentID,
		Num:             p.Num,
		Slot:            p.Slot,
		Producer:        p.Producer,
		ScheduleVersion: p.ScheduleVersion,
		Timestamp:       p.Timestamp(),
		Deadline:        p.Deadline,
		ProducedAt:      p.clock.Now(),
		Txs:             txs,
	}
}

// Status is a snapshot of the producer.
type Status struct {
	Paused     bool        `json:"paused"`
	Producers  []thor.Name `json:"producers"`
	Head       Head        `json:"head"`
	Scheduled  bool        `json:"scheduled"`
	NextSlot   thor.Slot   `json:"nextSlot,omitempty"`
	NextWakeUp *time.Time  `json:"nextWakeUp,omitempty"`
	Produced   uint64      `json:"produced"`
}
