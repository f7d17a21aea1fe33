package service

import "github.com/mikesoares/linkwatch/internal/domain"

// Reconcile compares current evaluations with the previously
// persisted statuses and returns one transition per interface whose
// status changed, in evaluation order. Interfaces without a previous
// record produce no transition: the first sighting establishes a
// baseline instead of alerting.
func Reconcile(previous map[string]domain.Status, current []domain.Evaluation) []domain.Transition {
	var transitions []domain.Transition

	for _, ev := range current {
		prev, seen := previous[ev.Iface.Name]
		if !seen || prev == ev.Status {
			continue
		}

		transitions = append(transitions, domain.Transition{
			Iface:    ev.Iface,
			Previous: prev,
			Current:  ev.Status,
			Failures: ev.Failures,
			At:       ev.CheckedAt,
		})
	}

	return transitions
}
