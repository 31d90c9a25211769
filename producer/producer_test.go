// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package producer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vechain/dpos/clock"
	"github.com/vechain/dpos/schedule"
	"github.com/vechain/dpos/scheduler"
	"github.com/vechain/dpos/thor"
	"github.com/vechain/dpos/watermark"
)

const (
	cpuEffort = 400 * time.Millisecond
	// first slot of a production round
	roundFirst = thor.Slot(12 * 100_000)
)

var (
	inita = thor.MustParseName("inita")
	initb = thor.MustParseName("initb")
)

type memChain struct {
	mu    sync.Mutex
	head  Head
	sched *schedule.Schedule
	marks watermark.Watermarks
}

func newMemChain(head Head, producers ...thor.Name) *memChain {
	var auths []thor.ProducerAuthority
	for _, name := range producers {
		auths = append(auths, thor.ProducerAuthority{Name: name})
	}
	return &memChain{head: head, sched: schedule.New(1, auths), marks: make(watermark.Watermarks)}
}

func (c *memChain) Head() Head {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.head
}

func (c *memChain) Schedule() *schedule.Schedule { return c.sched }

func (c *memChain) Watermarks() watermark.Watermarks {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.marks.Copy()
}

func (c *memChain) Commit(blk *Block) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if blk.Num != c.head.Num+1 {
		return errors.Errorf("unexpected block num %d", blk.Num)
	}
	if blk.ParentID != c.head.ID {
		return errors.Errorf("unexpected parent %v", blk.ParentID)
	}
	c.head = Head{ID: blk.ID, Num: blk.Num, Slot: blk.Slot}
	c.marks.Consider(blk.Producer, blk.Num, blk.Slot)
	return nil
}

type testAssembler struct {
	mu      sync.Mutex
	fails   int
	pending []*Pending
}

func (a *testAssembler) Assemble(_ context.Context, pending *Pending) (*Block, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pending = append(a.pending, pending)
	if a.fails > 0 {
		a.fails--
		return nil, errors.New("no luck")
	}
	return pending.Seal(len(a.pending)), nil
}

func (a *testAssembler) assembled() []*Pending {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]*Pending(nil), a.pending...)
}

type harness struct {
	t      *testing.T
	clock  *clock.Mock
	chain  *memChain
	keys   *Keys
	asm    *testAssembler
	p      *Producer
	events chan *ProducedEvent
	done   chan error
	cancel context.CancelFunc
}

// newHarness starts a producer at the slot time of the head.
func newHarness(t *testing.T, chain *memChain, keys *Keys, start func(*Producer)) *harness {
	h := &harness{
		t:      t,
		clock:  clock.NewMock(chain.Head().Slot.Time()),
		chain:  chain,
		keys:   keys,
		asm:    &testAssembler{},
		events: make(chan *ProducedEvent, 64),
		done:   make(chan error, 1),
	}
	opts := DefaultOptions()
	opts.CPUEffort = cpuEffort

	p, err := New(chain, keys, h.asm, h.clock, opts)
	require.NoError(t, err)
	h.p = p

	sub := p.SubscribeProduced(h.events)
	var ctx context.Context
	ctx, h.cancel = context.WithCancel(context.Background())
	t.Cleanup(func() {
		h.cancel()
		sub.Unsubscribe()
	})
	if start != nil {
		start(p)
	}
	go func() { h.done <- p.Run(ctx) }()
	return h
}

func (h *harness) next() *Block {
	select {
	case ev := <-h.events:
		return ev.Block
	case <-time.After(5 * time.Second):
		h.t.Fatal("no block produced")
		return nil
	}
}

// step advances the clock in small increments until a block is produced.
func (h *harness) step(d time.Duration) *Block {
	for range 1000 {
		select {
		case ev := <-h.events:
			return ev.Block
		default:
		}
		h.clock.WaitForTimers(1)
		h.clock.Advance(d)
	}
	h.t.Fatal("no block produced")
	return nil
}

func (h *harness) none() {
	select {
	case ev := <-h.events:
		h.t.Fatalf("unexpected block %d", ev.Block.Num)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNew(t *testing.T) {
	chain := newMemChain(Head{}, inita)
	opts := DefaultOptions()
	assert.Equal(t, 400*time.Millisecond, opts.CPUEffort)

	for _, effort := range []time.Duration{0, -time.Millisecond, thor.BlockInterval + 1} {
		opts.CPUEffort = effort
		_, err := New(chain, NewKeys(inita), &testAssembler{}, clock.System{}, opts)
		assert.Error(t, err, effort)
	}

	opts.CPUEffort = thor.BlockInterval
	opts.RecentSize = 0
	p, err := New(chain, NewKeys(inita), &testAssembler{}, clock.System{}, opts)
	require.NoError(t, err)
	assert.Equal(t, DefaultOptions().RecentSize, p.opts.RecentSize)
}

func TestProduceRun(t *testing.T) {
	chain := newMemChain(Head{Num: 10, Slot: roundFirst - 1}, inita)
	h := newHarness(t, chain, NewKeys(inita), nil)

	// the round starts one interval ahead of its first slot, which is now
	blk := h.next()
	assert.Equal(t, uint32(11), blk.Num)
	assert.Equal(t, roundFirst, blk.Slot)
	assert.Equal(t, inita, blk.Producer)
	assert.Equal(t, roundFirst.Time().Add(-100*time.Millisecond), blk.Deadline)

	// runs over into the next round
	for i := 1; i < int(thor.ProducerRepetitions)+3; i++ {
		slot := roundFirst + thor.Slot(i)
		h.clock.WaitForTimers(1)
		h.clock.Set(scheduler.RoundBlockStartTime(cpuEffort, slot))

		blk := h.next()
		assert.Equal(t, uint32(11+i), blk.Num)
		assert.Equal(t, slot, blk.Slot)
		assert.Equal(t, scheduler.RoundBlockStartTime(cpuEffort, slot).Add(cpuEffort), blk.Deadline)
		assert.False(t, blk.Deadline.After(scheduler.HardDeadline(cpuEffort, slot)))
		assert.Equal(t, blk.Deadline, blk.ProducedAt.Add(cpuEffort))
	}

	wm, ok := chain.Watermarks().Get(inita)
	require.True(t, ok)
	assert.Equal(t, chain.Head().Slot, wm.Slot)
	assert.Equal(t, chain.Head().Num, wm.BlockNum)

	recent := h.p.Recent()
	require.Len(t, recent, int(thor.ProducerRepetitions)+3)
	assert.Equal(t, chain.Head().Num, recent[0].Num)
	assert.Equal(t, chain.Head().ID, recent[0].ID)
	assert.Equal(t, recent[1].ID, recent[0].ParentID)
	assert.Equal(t, uint32(11), recent[len(recent)-1].Num)

	h.clock.WaitForTimers(1)
	status := h.p.Status()
	assert.False(t, status.Paused)
	assert.True(t, status.Scheduled)
	assert.Equal(t, chain.Head().Slot+1, status.NextSlot)
	assert.Equal(t, uint64(len(recent)), status.Produced)
	assert.Equal(t, []thor.Name{inita}, status.Producers)

	h.cancel()
	assert.NoError(t, <-h.done)
}

func TestSkipSignedSlots(t *testing.T) {
	chain := newMemChain(Head{Num: 10, Slot: roundFirst - 1}, inita)
	// signed further ahead before a restart
	chain.marks.Consider(inita, 10, roundFirst+5)

	h := newHarness(t, chain, NewKeys(inita), nil)
	blk := h.step(100 * time.Millisecond)

	assert.Equal(t, roundFirst+6, blk.Slot)
	assert.Equal(t, uint32(11), blk.Num)
	// came back behind its round plan, full effort from now capped by the hard deadline
	assert.Equal(t, roundFirst.Time().Add(2500*time.Millisecond), blk.ProducedAt)
	assert.Equal(t, scheduler.HardDeadline(cpuEffort, blk.Slot), blk.Deadline)
}

func TestSkipOthersSlots(t *testing.T) {
	// initb owns the first run, inita the second
	chain := newMemChain(Head{Num: 10, Slot: 2*roundFirst - 1}, initb, inita)
	h := newHarness(t, chain, NewKeys(inita), nil)

	blk := h.step(thor.BlockInterval)
	assert.Equal(t, 2*roundFirst+thor.Slot(thor.ProducerRepetitions), blk.Slot)
	assert.Equal(t, inita, blk.Producer)
	assert.Equal(t, uint32(11), blk.Num)
}

func TestAssembleFailure(t *testing.T) {
	chain := newMemChain(Head{Num: 10, Slot: roundFirst - 1}, inita)
	h := newHarness(t, chain, NewKeys(inita), func(p *Producer) {
		p.assembler.(*testAssembler).fails = 1
	})

	// the failed slot is given up, the loop retries with the following one
	h.clock.WaitForTimers(1)
	assert.Equal(t, uint32(10), chain.Head().Num)
	h.clock.Advance(thor.BlockInterval)

	blk := h.next()
	assert.Equal(t, uint32(11), blk.Num)
	assert.Equal(t, roundFirst+1, blk.Slot)
	assembled := h.asm.assembled()
	require.Len(t, assembled, 2)
	assert.Equal(t, roundFirst, assembled[0].Slot)
}

func TestPauseResume(t *testing.T) {
	chain := newMemChain(Head{Num: 10, Slot: roundFirst - 1}, inita)
	h := newHarness(t, chain, NewKeys(inita), func(p *Producer) { p.Pause() })

	assert.True(t, h.p.Paused())
	h.none()
	assert.True(t, h.p.Status().Paused)
	assert.False(t, h.p.Status().Scheduled)

	h.p.Resume()
	assert.False(t, h.p.Paused())
	blk := h.next()
	assert.Equal(t, roundFirst, blk.Slot)

	h.clock.WaitForTimers(1)
	h.p.Pause()
	h.clock.Advance(thor.BlockInterval)
	h.none()
	assert.Equal(t, uint32(11), chain.Head().Num)
}

func TestInactiveProducer(t *testing.T) {
	chain := newMemChain(Head{Num: 10, Slot: roundFirst - 1}, inita)
	keys := NewKeys(initb)
	h := newHarness(t, chain, keys, nil)

	h.clock.WaitForTimers(1)
	h.none()
	assert.False(t, h.p.Status().Scheduled)

	keys.Add(inita)
	h.p.Notify()
	blk := h.next()
	assert.Equal(t, roundFirst, blk.Slot)
	assert.Equal(t, inita, blk.Producer)

	keys.Remove(inita)
	h.p.Notify()
	h.clock.Advance(thor.BlockInterval)
	h.none()
}

func TestEvalBlockProduceMetrics(t *testing.T) {
	c := clock.NewMock(roundFirst.Time())

	blk, elapsed, err := evalBlockProduceMetrics(c, func() (*Block, error) {
		c.Advance(300 * time.Millisecond)
		return &Block{Txs: 3}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, blk.Txs)
	assert.Equal(t, 300*time.Millisecond, elapsed)

	_, elapsed, err = evalBlockProduceMetrics(c, func() (*Block, error) {
		c.Advance(50 * time.Millisecond)
		return nil, errors.New("no luck")
	})
	assert.Error(t, err)
	assert.Equal(t, 50*time.Millisecond, elapsed)
}

func TestPending(t *testing.T) {
	start := roundFirst.Time()
	c := clock.NewMock(start)
	p := NewPending(c, Head{Num: 0, Slot: roundFirst}, roundFirst+1, inita, 1, start.Add(300*time.Millisecond), scheduler.PhaseOnSchedule)
	assert.Equal(t, uint32(1), p.Num)

	assert.False(t, p.Expired())
	assert.Equal(t, 300*time.Millisecond, p.Remaining())
	assert.Equal(t, (roundFirst + 1).Time(), p.Timestamp())

	c.Advance(300 * time.Millisecond)
	assert.True(t, p.Expired())
	assert.Zero(t, p.Remaining())

	blk := p.Seal(7)
	assert.Equal(t, 7, blk.Txs)
	assert.Equal(t, p.Deadline, blk.ProducedAt)
	assert.Equal(t, p.Timestamp(), blk.Timestamp)
	assert.Equal(t, thor.NewBlockID(thor.BlockID{}, 1, roundFirst+1, inita), blk.ID)
	assert.True(t, blk.ParentID.IsZero())
}
