package domain

import "fmt"

// Status is the connectivity verdict for a single network interface.
type Status string

const (
	StatusUp   Status = "up"
	StatusDown Status = "down"
)

// ParseStatus maps a persisted status token back to a Status. Anything
// other than the exact tokens "up" and "down" is rejected.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusUp, StatusDown:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// StatusFor folds a boolean check outcome into a Status.
func StatusFor(ok bool) Status {
	if ok {
		return StatusUp
	}
	return StatusDown
}
