// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"strconv"
	"time"
)

// Slot is the count of BlockInterval units elapsed since BlockTimestampEpoch.
type Slot uint32

// SlotAt returns the slot which covers t. Instants before the epoch map to slot 0.
func SlotAt(t time.Time) Slot {
	if !t.After(BlockTimestampEpoch) {
		return 0
	}
	return Slot(t.Sub(BlockTimestampEpoch) / BlockInterval)
}

// NextSlotAfter returns the smallest slot whose time is strictly after t.
func NextSlotAfter(t time.Time) Slot {
	if t.Before(BlockTimestampEpoch) {
		return 0
	}
	return SlotAt(t) + 1
}

// Time returns the nominal wall-clock instant of the slot.
func (s Slot) Time() time.Time {
	return BlockTimestampEpoch.Add(time.Duration(s) * BlockInterval)
}

// Next returns the following slot.
func (s Slot) Next() Slot {
	return s + 1
}

// Position resolves the run the slot belongs to.
// roundFirst is the first slot of the run and index is the offset of s inside it,
// 0 <= index < ProducerRepetitions.
func (s Slot) Position() (roundFirst Slot, index uint32) {
	index = uint32(s) % ProducerRepetitions
	return s - Slot(index), index
}

func (s Slot) String() string {
	return strconv.FormatUint(uint64(s), 10)
}
