package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikesoares/linkwatch/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func transitionAt(name, label string, current domain.Status, failures ...string) domain.Transition {
	previous := domain.StatusUp
	if current == domain.StatusUp {
		previous = domain.StatusDown
	}
	return domain.Transition{
		Iface:    domain.Iface{Name: name, Label: label},
		Previous: previous,
		Current:  current,
		Failures: failures,
		At:       time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestFormatAlertBodyFailures(t *testing.T) {
	body := FormatAlertBody([]domain.Transition{
		transitionAt("eth0", "Fiber", domain.StatusDown,
			"example.com: connect timeout",
			"example.org: tls handshake timeout",
		),
	})

	want := "The following interfaces failed connectivity:\n\n" +
		"Fiber (eth0):\n  example.com: connect timeout\n  example.org: tls handshake timeout"
	assert.Equal(t, want, body)
}

func TestFormatAlertBodyRestored(t *testing.T) {
	body := FormatAlertBody([]domain.Transition{
		transitionAt("eth0", "Fiber", domain.StatusUp),
		transitionAt("wlan0", "Backup WiFi", domain.StatusUp),
	})

	want := "The following interfaces have been restored:\n\nFiber\nBackup WiFi"
	assert.Equal(t, want, body)
}

func TestFormatAlertBodyMixed(t *testing.T) {
	body := FormatAlertBody([]domain.Transition{
		transitionAt("eth0", "Fiber", domain.StatusDown, "example.com: timeout"),
		transitionAt("wlan0", "Backup WiFi", domain.StatusUp),
	})

	want := "The following interfaces failed connectivity:\n\n" +
		"Fiber (eth0):\n  example.com: timeout" +
		"\n\n" +
		"The following interfaces have been restored:\n\nBackup WiFi"
	assert.Equal(t, want, body)
}

type stubChannel struct {
	name  string
	err   error
	calls int
}

func (s *stubChannel) Name() string { return s.name }

func (s *stubChannel) Notify(ctx context.Context, runID string, transitions []domain.Transition, viaIface string) error {
	s.calls++
	return s.err
}

func TestMultiDeliversToAllChannels(t *testing.T) {
	first := &stubChannel{name: "email"}
	second := &stubChannel{name: "telegram"}
	m := NewMulti(testLogger(), first, second)

	err := m.Notify(context.Background(), "run-1", []domain.Transition{
		transitionAt("eth0", "Fiber", domain.StatusDown, "example.com: timeout"),
	}, "")

	require.NoError(t, err)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
}

func TestMultiFailureDoesNotStopOthers(t *testing.T) {
	first := &stubChannel{name: "email", err: errors.New("smtp unreachable")}
	second := &stubChannel{name: "telegram"}
	m := NewMulti(testLogger(), first, second)

	err := m.Notify(context.Background(), "run-1", []domain.Transition{
		transitionAt("eth0", "Fiber", domain.StatusDown),
	}, "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "email")
	assert.Equal(t, 1, second.calls)
}
