// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package producer

import (
	"sync"

	"github.com/vechain/dpos/thor"
)

// Keys is an in-memory KeyRing. It can be changed while the producer runs,
// the producer should be notified afterwards.
type Keys struct {
	mu    sync.RWMutex
	names thor.Names
}

var _ KeyRing = (*Keys)(nil)

// NewKeys creates a key ring holding the given producers.
func NewKeys(names ...thor.Name) *Keys {
	return &Keys{names: thor.NewNames(names...)}
}

// Producers returns a copy of the local producers.
func (k *Keys) Producers() thor.Names {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.names.Copy()
}

func (k *Keys) Add(name thor.Name) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.names.Add(name)
}

func (k *Keys) Remove(name thor.Name) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.names.Remove(name)
}
