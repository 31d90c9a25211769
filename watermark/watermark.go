// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package watermark

import (
	"github.com/vechain/dpos/thor"
)

// Watermark is the highest block number and slot a producer is known to have signed.
// A producer must never sign again at or below it.
type Watermark struct {
	BlockNum uint32
	Slot     thor.Slot
}

// Watermarks maps producers to their watermarks.
type Watermarks map[thor.Name]Watermark

// Get returns the watermark of the producer. Safe on a nil map.
func (w Watermarks) Get(name thor.Name) (Watermark, bool) {
	wm, ok := w[name]
	return wm, ok
}

// Consider raises the watermark of the producer to cover the given block.
// Each component only ever grows, so replaying an older block is a no-op.
func (w Watermarks) Consider(name thor.Name, blockNum uint32, slot thor.Slot) {
	wm, ok := w[name]
	if !ok {
		w[name] = Watermark{blockNum, slot}
		return
	}
	if blockNum > wm.BlockNum {
		wm.BlockNum = blockNum
	}
	if slot > wm.Slot {
		wm.Slot = slot
	}
	w[name] = wm
}

// Copy returns an independent snapshot.
func (w Watermarks) Copy() Watermarks {
	cpy := make(Watermarks, len(w))
	for k, v := range w {
		cpy[k] = v
	}
	return cpy
}
