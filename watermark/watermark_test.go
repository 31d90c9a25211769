// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package watermark

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/dpos/thor"
)

func TestConsider(t *testing.T) {
	p1, p2 := thor.MustParseName("p1"), thor.MustParseName("p2")

	var empty Watermarks
	_, ok := empty.Get(p1)
	assert.False(t, ok)

	marks := make(Watermarks)
	marks.Consider(p1, 10, 100)
	wm, ok := marks.Get(p1)
	assert.True(t, ok)
	assert.Equal(t, Watermark{10, 100}, wm)

	// older block does not lower it
	marks.Consider(p1, 9, 99)
	assert.Equal(t, Watermark{10, 100}, marks[p1])

	// components grow independently
	marks.Consider(p1, 11, 90)
	assert.Equal(t, Watermark{11, 100}, marks[p1])
	marks.Consider(p1, 5, 120)
	assert.Equal(t, Watermark{11, 120}, marks[p1])

	cpy := marks.Copy()
	marks.Consider(p2, 1, 1)
	marks.Consider(p1, 50, 500)
	assert.Equal(t, Watermarks{p1: {11, 120}}, cpy)
}

func TestStore(t *testing.T) {
	p1, p2 := thor.MustParseName("p1"), thor.MustParseName("p2")

	s, err := NewMem()
	require.NoError(t, err)
	defer s.Close()

	marks, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, marks)

	_, ok, err := s.Get(p1)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Save(p1, Watermark{3, 30}))
	require.NoError(t, s.Save(p2, Watermark{4, 40}))
	require.NoError(t, s.Save(p1, Watermark{2, 35}))

	wm, ok, err := s.Get(p1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, Watermark{3, 35}, wm)

	marks, err = s.Load()
	require.NoError(t, err)
	assert.Equal(t, Watermarks{p1: {3, 35}, p2: {4, 40}}, marks)
}

func TestStoreReopen(t *testing.T) {
	dir := t.TempDir()
	p1 := thor.MustParseName("p1")

	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.Save(p1, Watermark{7, 1207}))
	require.NoError(t, s.Close())

	s, err = Open(dir)
	require.NoError(t, err)
	defer s.Close()

	marks, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, Watermarks{p1: {7, 1207}}, marks)
}

func TestDecodeInvalid(t *testing.T) {
	_, err := decode([]byte{1, 2, 3})
	assert.Error(t, err)
}
