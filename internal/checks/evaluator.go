package checks

import (
	"context"
	"log/slog"
	"time"

	"github.com/mikesoares/linkwatch/internal/domain"
	"github.com/mikesoares/linkwatch/internal/netbind"
)

// Evaluator produces the per-interface verdict by chaining the
// connectivity probe with the optional ISP verification.
type Evaluator struct {
	prober       Prober
	verifier     Verifier
	targets      []string
	whoisEnabled bool
	log          *slog.Logger
}

func NewEvaluator(prober Prober, verifier Verifier, targets []string, whoisEnabled bool, log *slog.Logger) *Evaluator {
	return &Evaluator{
		prober:       prober,
		verifier:     verifier,
		targets:      targets,
		whoisEnabled: whoisEnabled,
		log:          log,
	}
}

// Evaluate probes the interface; only when the probe passes and an
// expected organization is configured does it verify ISP ownership.
// A probe failure is final, so no verification traffic is ever sent
// over a link that just failed.
func (e *Evaluator) Evaluate(ctx context.Context, ifc domain.Iface) domain.Evaluation {
	ev := domain.Evaluation{Iface: ifc, CheckedAt: time.Now().UTC()}

	if state := netbind.InterfaceState(ifc.Name); state == netbind.LinkMissing || state == netbind.LinkDown {
		e.log.Warn("interface link is not up", "iface", ifc.Name, "link", state.String())
	}

	ok, failures := e.prober.Probe(ctx, ifc.Name, e.targets)
	ev.Failures = failures
	if !ok {
		ev.Status = domain.StatusDown
		return ev
	}

	if !e.whoisEnabled || ifc.ExpectedOrg == "" {
		ev.Status = domain.StatusUp
		return ev
	}

	verification := e.verifier.Verify(ctx, ifc.Name, ifc.ExpectedOrg)
	ev.Verification = &verification
	ev.Status = verification.Status
	if verification.Status == domain.StatusDown {
		ev.Failures = append(ev.Failures, verification.Reason)
	}

	return ev
}
