package multitouch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotMapStable(t *testing.T) {
	m := NewSlotMap(4)
	a, ok := m.Slot(10)
	require.True(t, ok)
	b, ok := m.Slot(20)
	require.True(t, ok)
	assert.NotEqual(t, a, b)

	// The same contact id keeps its slot across frames.
	for i := 0; i < 3; i++ {
		got, ok := m.Slot(10)
		require.True(t, ok)
		assert.Equal(t, a, got)
	}
}

func TestSlotMapOverflow(t *testing.T) {
	m := NewSlotMap(2)
	_, ok := m.Slot(1)
	require.True(t, ok)
	_, ok = m.Slot(2)
	require.True(t, ok)
	_, ok = m.Slot(3)
	assert.False(t, ok)
}

func TestSlotMapRelease(t *testing.T) {
	m := NewSlotMap(2)
	a, _ := m.Slot(1)
	m.Slot(2)
	m.ReleaseSlot(a)

	// The freed slot is the lowest available again.
	got, ok := m.Slot(3)
	require.True(t, ok)
	assert.Equal(t, a, got)
}

func TestNewSlotMapClamp(t *testing.T) {
	m := NewSlotMap(0)
	for i := 0; i < MaxSlots; i++ {
		_, ok := m.Slot(uint32(i))
		require.True(t, ok)
	}
	_, ok := m.Slot(99)
	assert.False(t, ok)
}
