package model

import (
	"strings"

	"github.com/soocke/mystic-booth/domain/session"
)

// Slot is the display state of one shot in the progress row.
type Slot int

const (
	SlotEmpty Slot = iota
	SlotActive
	SlotFilled
)

// Rune returns the glyph drawn for the slot.
func (s Slot) Rune() rune {
	switch s {
	case SlotFilled:
		return '●'
	case SlotActive:
		return '◉'
	default:
		return '○'
	}
}

// ProgressModel derives one slot per shot from session snapshots.
type ProgressModel struct {
	slots []Slot
}

// Update recomputes the slots and reports whether anything changed.
func (m *ProgressModel) Update(snap session.Snapshot) bool {
	n := snap.Config.MaxShots
	if n <= 0 {
		n = session.DefaultMaxShots
	}
	next := make([]Slot, n)
	for i := range next {
		switch {
		case i < snap.Accepted:
			next[i] = SlotFilled
		case i == snap.Accepted && snap.State != session.StateIdle && snap.State != session.StateCompleted:
			next[i] = SlotActive
		}
	}
	if equalSlots(m.slots, next) {
		return false
	}
	m.slots = next
	return true
}

// Slots returns a copy of the current slots.
func (m *ProgressModel) Slots() []Slot {
	return append([]Slot(nil), m.slots...)
}

func (m *ProgressModel) String() string {
	var b strings.Builder
	for i, s := range m.slots {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(s.Rune())
	}
	return b.String()
}

func equalSlots(a, b []Slot) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
