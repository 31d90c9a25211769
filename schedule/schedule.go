// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package schedule

import (
	"github.com/pkg/errors"

	"github.com/vechain/dpos/thor"
)

// ErrEmptySchedule is returned by Validate when the schedule has no producer.
var ErrEmptySchedule = errors.New("empty producer schedule")

// Schedule is an immutable snapshot of the active producer schedule.
// The schedule is treated as an infinite repetition: each entry owns
// thor.ProducerRepetitions consecutive slots before the turn passes to the next one.
type Schedule struct {
	version   uint32
	producers []thor.ProducerAuthority
}

// New create a new schedule instance.
func New(version uint32, producers []thor.ProducerAuthority) *Schedule {
	return &Schedule{
		version,
		append([]thor.ProducerAuthority(nil), producers...),
	}
}

// Validate checks the invariants the timing calculations rely on.
// It's expected to be called when a schedule is loaded, not while scheduling.
func (s *Schedule) Validate() error {
	if len(s.producers) == 0 {
		return ErrEmptySchedule
	}
	if len(s.producers) > thor.MaxProducers {
		return errors.Errorf("too many producers in schedule: %d > %d", len(s.producers), thor.MaxProducers)
	}
	for i, p := range s.producers {
		if p.Name.IsEmpty() {
			return errors.Errorf("empty producer name at position %d", i)
		}
	}
	return nil
}

// Version returns the schedule version.
func (s *Schedule) Version() uint32 {
	return s.version
}

// Len returns the count of schedule entries.
func (s *Schedule) Len() int {
	return len(s.producers)
}

// Period returns the length of one full rotation in slots.
func (s *Schedule) Period() uint32 {
	return uint32(len(s.producers)) * thor.ProducerRepetitions
}

// At returns the entry at position i.
func (s *Schedule) At(i int) thor.ProducerAuthority {
	return s.producers[i]
}

// Producers returns a copy of the entries.
func (s *Schedule) Producers() []thor.ProducerAuthority {
	return append([]thor.ProducerAuthority(nil), s.producers...)
}

// IndexAt returns the position of the entry owning the slot.
func (s *Schedule) IndexAt(slot thor.Slot) int {
	return int((uint32(slot) / thor.ProducerRepetitions) % uint32(len(s.producers)))
}

// ProducerAt returns the entry owning the slot.
func (s *Schedule) ProducerAt(slot thor.Slot) thor.ProducerAuthority {
	return s.producers[s.IndexAt(slot)]
}

// Positions returns all positions of the named producer.
// A producer may appear more than once, at non-adjacent positions.
func (s *Schedule) Positions(name thor.Name) []int {
	var positions []int
	for i, p := range s.producers {
		if p.Name == name {
			positions = append(positions, i)
		}
	}
	return positions
}

// Contains returns whether the named producer is listed.
func (s *Schedule) Contains(name thor.Name) bool {
	for _, p := range s.producers {
		if p.Name == name {
			return true
		}
	}
	return false
}
