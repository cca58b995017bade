package board

import "fmt"

// WIPStatus summarizes the in_progress column against the limit.
type WIPStatus struct {
	Count     int `json:"count"`
	Limit     int `json:"limit"`
	Available int `json:"available"`
}

// Full reports whether in_progress has no free slots.
func (w WIPStatus) Full() bool {
	return w.Available == 0
}

// CanAdmitToInProgress reports whether one more item fits in in_progress.
func CanAdmitToInProgress(b Board) bool {
	return b.Count(StatusInProgress) < b.WIPLimit
}

// WIPStatusOf reports in_progress usage for b.
func WIPStatusOf(b Board) WIPStatus {
	count := b.Count(StatusInProgress)
	available := b.WIPLimit - count
	if available < 0 {
		available = 0
	}
	return WIPStatus{Count: count, Limit: b.WIPLimit, Available: available}
}

// ValidateWIPLimit checks a proposed limit against the current in_progress count.
func ValidateWIPLimit(newLimit, currentInProgress int) error {
	if newLimit <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidWIPLimit, newLimit)
	}
	if newLimit < currentInProgress {
		return fmt.Errorf("%w: %d < %d", ErrWIPLimitBelowCurrent, newLimit, currentInProgress)
	}
	return nil
}
