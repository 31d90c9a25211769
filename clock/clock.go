// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package clock provides the time source consulted by block production.
//
// A single Clock is passed to every component that needs the current time, so one
// scheduling decision never mixes readings from different sources. Production code
// wires System, tests wire a Mock they advance explicitly.
package clock

import (
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common/mclock"
)

// Clock reads the current wall-clock time and creates timers on the same time base.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan mclock.AbsTime
}

// System is the clock of the host.
type System struct{}

var _ Clock = System{}

// Now returns the current local time.
func (System) Now() time.Time { return time.Now() }

// After fires after the duration elapsed.
func (System) After(d time.Duration) <-chan mclock.AbsTime {
	return mclock.System{}.After(d)
}

// Mock is a manually driven clock. Timers created by After only fire when the
// clock is advanced past their expiry.
type Mock struct {
	mu   sync.Mutex
	base time.Time
	sim  mclock.Simulated
}

var _ Clock = (*Mock)(nil)

// NewMock creates a mock clock reading start.
func NewMock(start time.Time) *Mock {
	return &Mock{base: start}
}

// Now returns the simulated time.
func (m *Mock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.base.Add(time.Duration(m.sim.Now()))
}

// After creates a timer that fires once the clock advanced by d.
func (m *Mock) After(d time.Duration) <-chan mclock.AbsTime {
	return m.sim.After(d)
}

// Advance moves the clock forward, firing all timers expiring within d.
func (m *Mock) Advance(d time.Duration) {
	m.sim.Run(d)
}

// Set moves the clock to t. Moving forward fires timers as Advance does.
// Moving backward only shifts the reading, pending timers keep their expiry.
func (m *Mock) Set(t time.Time) {
	now := m.Now()
	if t.After(now) {
		m.Advance(t.Sub(now))
		return
	}
	m.mu.Lock()
	m.base = m.base.Add(t.Sub(now))
	m.mu.Unlock()
}

// WaitForTimers blocks until at least n timers are pending.
func (m *Mock) WaitForTimers(n int) {
	m.sim.WaitForTimers(n)
}

// ActiveTimers returns the count of pending timers.
func (m *Mock) ActiveTimers() int {
	return m.sim.ActiveTimers()
}
