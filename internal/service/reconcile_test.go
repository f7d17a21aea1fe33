package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikesoares/linkwatch/internal/domain"
)

func eval(name string, status domain.Status, failures ...string) domain.Evaluation {
	return domain.Evaluation{
		Iface:     domain.Iface{Name: name, Label: name},
		Status:    status,
		Failures:  failures,
		CheckedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestReconcileFirstSightingSuppressed(t *testing.T) {
	transitions := Reconcile(map[string]domain.Status{}, []domain.Evaluation{
		eval("eth0", domain.StatusDown, "example.com: timeout"),
	})

	assert.Empty(t, transitions)
}

func TestReconcileUnchangedStatus(t *testing.T) {
	previous := map[string]domain.Status{"eth0": domain.StatusUp}

	transitions := Reconcile(previous, []domain.Evaluation{eval("eth0", domain.StatusUp)})
	assert.Empty(t, transitions)
}

func TestReconcileUpToDown(t *testing.T) {
	previous := map[string]domain.Status{"eth0": domain.StatusUp}

	transitions := Reconcile(previous, []domain.Evaluation{
		eval("eth0", domain.StatusDown, "example.com: connect refused"),
	})

	require.Len(t, transitions, 1)
	tr := transitions[0]
	assert.Equal(t, "eth0", tr.Iface.Name)
	assert.Equal(t, domain.StatusUp, tr.Previous)
	assert.Equal(t, domain.StatusDown, tr.Current)
	assert.Equal(t, []string{"example.com: connect refused"}, tr.Failures)
}

func TestReconcileDownToUp(t *testing.T) {
	previous := map[string]domain.Status{"wlan0": domain.StatusDown}

	transitions := Reconcile(previous, []domain.Evaluation{eval("wlan0", domain.StatusUp)})

	require.Len(t, transitions, 1)
	assert.Equal(t, domain.StatusUp, transitions[0].Current)
	assert.Empty(t, transitions[0].Failures)
}

func TestReconcileKeepsEvaluationOrder(t *testing.T) {
	previous := map[string]domain.Status{
		"wlan0": domain.StatusUp,
		"eth0":  domain.StatusUp,
		"ppp0":  domain.StatusDown,
	}

	transitions := Reconcile(previous, []domain.Evaluation{
		eval("wlan0", domain.StatusDown, "example.com: timeout"),
		eval("eth0", domain.StatusUp),
		eval("ppp0", domain.StatusUp),
	})

	require.Len(t, transitions, 2)
	assert.Equal(t, "wlan0", transitions[0].Iface.Name)
	assert.Equal(t, "ppp0", transitions[1].Iface.Name)
}

func TestReconcileStaleEntriesIgnored(t *testing.T) {
	// An interface that was persisted earlier but is no longer
	// configured must not produce a transition.
	previous := map[string]domain.Status{
		"eth0": domain.StatusUp,
		"old0": domain.StatusDown,
	}

	transitions := Reconcile(previous, []domain.Evaluation{eval("eth0", domain.StatusUp)})
	assert.Empty(t, transitions)
}

func TestReconcileIdempotent(t *testing.T) {
	previous := map[string]domain.Status{"eth0": domain.StatusUp}
	current := []domain.Evaluation{eval("eth0", domain.StatusDown, "example.com: timeout")}

	first := Reconcile(previous, current)
	second := Reconcile(previous, current)
	assert.Equal(t, first, second)
}
