package domain

import "time"

// TransitionEvent is the wire form of a Transition published to the
// event stream. One event is produced per changed interface per run.
type TransitionEvent struct {
	RunID     string    `json:"run_id"`
	Interface string    `json:"interface"`
	Label     string    `json:"label"`
	Previous  Status    `json:"previous"`
	Current   Status    `json:"current"`
	Failures  []string  `json:"failures,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// EventFromTransition stamps a Transition with the run that observed it.
func EventFromTransition(runID string, tr Transition) TransitionEvent {
	return TransitionEvent{
		RunID:     runID,
		Interface: tr.Iface.Name,
		Label:     tr.Iface.Label,
		Previous:  tr.Previous,
		Current:   tr.Current,
		Failures:  tr.Failures,
		Timestamp: tr.At,
	}
}
