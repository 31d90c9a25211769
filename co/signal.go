// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"sync"
)

// Waiter provides a channel to wait on. A received true means the waiter was
// woken by Signal, a zero value read from the closed channel means Broadcast.
type Waiter interface {
	C() <-chan bool
}

// Signal is a channel based rendezvous point. Unlike sync.Cond it can take part in a select.
// The zero value is ready to use.
type Signal struct {
	mu sync.Mutex
	ch chan bool
}

func (s *Signal) current() chan bool {
	if s.ch == nil {
		s.ch = make(chan bool, 1)
	}
	return s.ch
}

// Signal wakes one waiter. It is remembered until consumed, so a signal sent
// before anybody waits is not lost.
func (s *Signal) Signal() {
	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case s.current() <- true:
	default:
	}
}

// Broadcast wakes every waiter created before the call.
func (s *Signal) Broadcast() {
	s.mu.Lock()
	defer s.mu.Unlock()

	close(s.current())
	s.ch = make(chan bool, 1)
}

// NewWaiter returns a waiter bound to the current generation. It must be created
// before the state it guards is inspected, otherwise a wake-up in between is missed.
func (s *Signal) NewWaiter() Waiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	return &waiter{s: s, ch: s.current()}
}

type waiter struct {
	s  *Signal
	ch chan bool
}

// C returns the channel of the generation the waiter was bound to and
// rebinds it to the latest one for the next call.
func (w *waiter) C() <-chan bool {
	ch := w.ch

	w.s.mu.Lock()
	w.ch = w.s.current()
	w.s.mu.Unlock()

	return ch
}
