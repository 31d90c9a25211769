// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"slices"
	"strings"
)

// ProducerAuthority is a schedule entry: the producer name with its block signing authority.
// Only the name takes part in identity comparison.
type ProducerAuthority struct {
	Name       Name
	SigningKey string
}

// Names is a set of producer names.
type Names map[Name]struct{}

// NewNames creates a set holding the given names.
func NewNames(names ...Name) Names {
	set := make(Names, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// Has returns whether the name is in the set. Safe on a nil set.
func (ns Names) Has(n Name) bool {
	_, ok := ns[n]
	return ok
}

// Add puts the name into the set.
func (ns Names) Add(n Name) {
	ns[n] = struct{}{}
}

// Remove deletes the name from the set.
func (ns Names) Remove(n Name) {
	delete(ns, n)
}

// Len returns the size of the set.
func (ns Names) Len() int {
	return len(ns)
}

// Copy returns an independent copy.
func (ns Names) Copy() Names {
	cpy := make(Names, len(ns))
	for n := range ns {
		cpy[n] = struct{}{}
	}
	return cpy
}

// Slice returns the names sorted by their string form.
func (ns Names) Slice() []Name {
	list := make([]Name, 0, len(ns))
	for n := range ns {
		list = append(list, n)
	}
	slices.SortFunc(list, func(a, b Name) int {
		return strings.Compare(a.String(), b.String())
	})
	return list
}
