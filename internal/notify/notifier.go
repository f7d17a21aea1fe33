// Package notify delivers transition alerts over email, Telegram and
// a Kafka event stream.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mikesoares/linkwatch/internal/domain"
)

// DefaultSubject is the subject line used for transition alerts.
const DefaultSubject = "Network Interface Status Update"

// Channel is one delivery mechanism for transition alerts.
type Channel interface {
	Name() string
	Notify(ctx context.Context, runID string, transitions []domain.Transition, viaIface string) error
}

// Multi fans a notification out to every configured channel. A
// failing channel does not stop the others; the joined error reports
// every failure.
type Multi struct {
	channels []Channel
	log      *slog.Logger
}

func NewMulti(log *slog.Logger, channels ...Channel) *Multi {
	return &Multi{channels: channels, log: log}
}

func (m *Multi) Notify(ctx context.Context, runID string, transitions []domain.Transition, viaIface string) error {
	var errs []error

	for _, ch := range m.channels {
		if err := ch.Notify(ctx, runID, transitions, viaIface); err != nil {
			m.log.Error("alert channel failed", "channel", ch.Name(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", ch.Name(), err))
			continue
		}
		m.log.Info("alert delivered", "channel", ch.Name(), "transitions", len(transitions))
	}

	return errors.Join(errs...)
}

// FormatAlertBody renders transitions into the plain-text body shared
// by the email and Telegram channels: failed interfaces first with
// their probe failures indented, restored interfaces after.
func FormatAlertBody(transitions []domain.Transition) string {
	var failed, restored []string

	for _, tr := range transitions {
		switch tr.Current {
		case domain.StatusDown:
			entry := fmt.Sprintf("%s (%s):", tr.Iface.Label, tr.Iface.Name)
			if len(tr.Failures) > 0 {
				entry += "\n  " + strings.Join(tr.Failures, "\n  ")
			}
			failed = append(failed, entry)
		case domain.StatusUp:
			restored = append(restored, tr.Iface.Label)
		}
	}

	var parts []string
	if len(failed) > 0 {
		parts = append(parts, "The following interfaces failed connectivity:\n\n"+strings.Join(failed, "\n\n"))
	}
	if len(restored) > 0 {
		parts = append(parts, "The following interfaces have been restored:\n\n"+strings.Join(restored, "\n"))
	}

	return strings.Join(parts, "\n\n")
}
