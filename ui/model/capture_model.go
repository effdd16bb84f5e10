package model

import (
	"sync/atomic"
)

// CaptureModel tracks whether the live preview is running. The zero value is
// stopped and usable. Tk callbacks and presenter ticks may race, hence atomic.
type CaptureModel struct{ enabled atomic.Bool }

// Enabled reports whether the preview is running.
func (m *CaptureModel) Enabled() bool {
	if m == nil {
		return false
	}
	return m.enabled.Load()
}

// SetEnabled stores the flag and reports whether it changed.
func (m *CaptureModel) SetEnabled(b bool) bool {
	if m == nil {
		return false
	}
	return m.enabled.Swap(b) != b
}
