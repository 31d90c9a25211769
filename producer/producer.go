// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package producer runs block production for the locally held producer keys.
//
// The loop wakes up ahead of each owned slot as planned by package scheduler, gives the
// assembler a deadline for the block and commits the result to the chain. All time readings
// come from one injected clock.
package producer

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/event"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"github.com/vechain/dpos/clock"
	"github.com/vechain/dpos/co"
	"github.com/vechain/dpos/log"
	"github.com/vechain/dpos/scheduler"
	"github.com/vechain/dpos/thor"
)

var logger = log.WithContext("pkg", "producer")

// Options tunes the producer.
type Options struct {
	// CPUEffort is the time budget of one block, in (0, thor.BlockInterval].
	CPUEffort time.Duration
	// RecheckInterval bounds how long an idle producer waits before looking at the schedule again.
	RecheckInterval time.Duration
	// RecentSize is the count of produced blocks kept for inspection.
	RecentSize int
}

// DefaultOptions returns options with 80% cpu effort.
func DefaultOptions() Options {
	return Options{
		CPUEffort:       thor.BlockInterval * 80 / 100,
		RecheckInterval: 10 * time.Second,
		RecentSize:      128,
	}
}

// Producer produces blocks in the slots owned by the local producers.
type Producer struct {
	chain     Chain
	keys      KeyRing
	assembler Assembler
	clock     clock.Clock
	timer     *scheduler.Timer
	opts      Options

	signal   co.Signal
	paused   atomic.Bool
	produced atomic.Uint64
	feed     event.Feed
	recent   *lru.Cache

	mu       sync.Mutex
	nextSlot thor.Slot
	nextWake time.Time
}

// New creates a producer.
func New(chain Chain, keys KeyRing, assembler Assembler, c clock.Clock, opts Options) (*Producer, error) {
	if opts.CPUEffort <= 0 || opts.CPUEffort > thor.BlockInterval {
		return nil, errors.Errorf("cpu effort %v out of range (0, %v]", opts.CPUEffort, thor.BlockInterval)
	}
	if opts.RecheckInterval <= 0 {
		opts.RecheckInterval = DefaultOptions().RecheckInterval
	}
	if opts.RecentSize <= 0 {
		opts.RecentSize = DefaultOptions().RecentSize
	}
	recent, err := lru.New(opts.RecentSize)
	if err != nil {
		return nil, errors.Wrap(err, "recent blocks cache")
	}
	return &Producer{
		chain:     chain,
		keys:      keys,
		assembler: assembler,
		clock:     c,
		timer:     scheduler.NewTimer(c, opts.CPUEffort),
		opts:      opts,
		recent:    recent,
	}, nil
}

// Notify makes the loop re-evaluate its plan, e.g. after the head, the schedule or the keys changed.
func (p *Producer) Notify() {
	p.signal.Signal()
}

// Pause stops producing after the block under construction, if any.
func (p *Producer) Pause() {
	if !p.paused.Swap(true) {
		metricPaused().Set(1)
		logger.Info("block production paused")
		p.Notify()
	}
}

// Resume restarts production.
func (p *Producer) Resume() {
	if p.paused.Swap(false) {
		metricPaused().Set(0)
		logger.Info("block production resumed")
		p.Notify()
	}
}

// Paused returns whether production is paused.
func (p *Producer) Paused() bool {
	return p.paused.Load()
}

// SubscribeProduced subscribes to committed blocks produced locally.
func (p *Producer) SubscribeProduced(ch chan *ProducedEvent) event.Subscription {
	return p.feed.Subscribe(ch)
}

// Recent returns the recently produced blocks, newest first.
func (p *Producer) Recent() []*Block {
	keys := p.recent.Keys()
	blocks := make([]*Block, 0, len(keys))
	for i := len(keys) - 1; i >= 0; i-- {
		if v, ok := p.recent.Peek(keys[i]); ok {
			blocks = append(blocks, v.(*Block))
		}
	}
	return blocks
}

// Status returns a snapshot of the producer.
func (p *Producer) Status() *Status {
	p.mu.Lock()
	nextSlot, nextWake := p.nextSlot, p.nextWake
	p.mu.Unlock()

	status := &Status{
		Paused:    p.Paused(),
		Producers: p.keys.Producers().Slice(),
		Head:      p.chain.Head(),
		Scheduled: !nextWake.IsZero(),
		Produced:  p.produced.Load(),
	}
	if status.Scheduled {
		status.NextSlot = nextSlot
		status.NextWakeUp = &nextWake
	}
	return status
}

func (p *Producer) setNext(slot thor.Slot, wake time.Time) {
	p.mu.Lock()
	p.nextSlot, p.nextWake = slot, wake
	p.mu.Unlock()
}
