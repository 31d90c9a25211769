// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMockNowAndAdvance(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m := NewMock(start)
	assert.Equal(t, start, m.Now())

	m.Advance(1500 * time.Millisecond)
	assert.Equal(t, start.Add(1500*time.Millisecond), m.Now())

	m.Set(start.Add(time.Minute))
	assert.Equal(t, start.Add(time.Minute), m.Now())

	m.Set(start)
	assert.Equal(t, start, m.Now())
}

func TestMockAfter(t *testing.T) {
	m := NewMock(time.Unix(0, 0))

	ch := m.After(time.Second)
	assert.Equal(t, 1, m.ActiveTimers())

	m.Advance(999 * time.Millisecond)
	select {
	case <-ch:
		t.Fatal("timer fired early")
	default:
	}

	m.Advance(time.Millisecond)
	select {
	case <-ch:
	default:
		t.Fatal("timer not fired")
	}
	assert.Equal(t, 0, m.ActiveTimers())
}

func TestMockWaitForTimers(t *testing.T) {
	m := NewMock(time.Unix(0, 0))
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-m.After(time.Second)
	}()

	m.WaitForTimers(1)
	m.Set(m.Now().Add(2 * time.Second))
	<-done
}

func TestSystem(t *testing.T) {
	var c Clock = System{}
	before := time.Now()
	assert.False(t, c.Now().Before(before))

	select {
	case <-c.After(time.Millisecond):
	case <-time.After(time.Second):
		t.Fatal("system timer not fired")
	}
}

func TestIsOffsetTolerable(t *testing.T) {
	assert.True(t, IsOffsetTolerable(0))
	assert.True(t, IsOffsetTolerable(MaxClockOffset))
	assert.True(t, IsOffsetTolerable(-MaxClockOffset))
	assert.False(t, IsOffsetTolerable(MaxClockOffset+time.Millisecond))
	assert.False(t, IsOffsetTolerable(-MaxClockOffset-time.Millisecond))
}
