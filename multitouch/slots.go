package multitouch

// SlotMap is the default contact-id allocator: a contact id keeps its slot
// until the slot is released. It implements SlotAllocator; release is the
// sink side's job when it forwards a no-contact tracking id.
type SlotMap struct {
	capacity int
	ids      [MaxSlots]uint32
	used     [MaxSlots]bool
}

// NewSlotMap creates an allocator with the given slot capacity, clamped
// to [1, MaxSlots].
func NewSlotMap(capacity int) *SlotMap {
	if capacity < 1 || capacity > MaxSlots {
		capacity = MaxSlots
	}
	return &SlotMap{capacity: capacity}
}

// Slot returns the slot already held by contactID, or allocates the lowest
// free one. ok is false when every slot is taken.
func (m *SlotMap) Slot(contactID uint32) (int, bool) {
	free := -1
	for i := 0; i < m.capacity; i++ {
		if m.used[i] && m.ids[i] == contactID {
			return i, true
		}
		if !m.used[i] && free == -1 {
			free = i
		}
	}
	if free == -1 {
		return 0, false
	}
	m.used[free] = true
	m.ids[free] = contactID
	return free, true
}

// ReleaseSlot frees a slot so its contact id can be reassigned.
func (m *SlotMap) ReleaseSlot(slot int) {
	if slot >= 0 && slot < m.capacity {
		m.used[slot] = false
	}
}
