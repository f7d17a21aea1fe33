package checks

import (
	"context"
	"fmt"
	"log/slog"
	"net/netip"
	"strings"

	"github.com/mikesoares/linkwatch/internal/domain"
)

// ISPVerifier confirms that an interface which already passed its
// probes actually egresses through the expected provider. Missing
// data never fails a link: if the public IP or its organization
// cannot be determined the interface stays up, and only an explicit
// organization mismatch demotes it.
type ISPVerifier struct {
	resolver IPResolver
	lookups  []OrgLookup
	log      *slog.Logger
}

func NewISPVerifier(resolver IPResolver, lookups []OrgLookup, log *slog.Logger) *ISPVerifier {
	return &ISPVerifier{resolver: resolver, lookups: lookups, log: log}
}

func (v *ISPVerifier) Verify(ctx context.Context, iface, expectedOrg string) domain.Verification {
	ip, ok := v.resolver.Resolve(ctx, iface)
	if !ok {
		v.log.Debug("public ip unavailable, skipping isp verification", "iface", iface)
		return domain.Verification{
			Status: domain.StatusUp,
			Reason: "public IP unavailable, ISP verification skipped",
		}
	}

	org, ok := v.lookupOrg(ctx, ip)
	if !ok {
		v.log.Debug("organization unavailable, skipping isp verification", "iface", iface, "ip", ip.String())
		return domain.Verification{
			Status:   domain.StatusUp,
			Reason:   "organization unavailable, ISP verification skipped",
			PublicIP: ip.String(),
		}
	}

	// Case-insensitive containment: the configured name is usually a
	// fragment of the registered one ("Comcast" vs "Comcast Cable
	// Communications, LLC").
	if strings.Contains(strings.ToUpper(org), strings.ToUpper(expectedOrg)) {
		return domain.Verification{
			Status:   domain.StatusUp,
			Reason:   fmt.Sprintf("ISP verified: %s", org),
			PublicIP: ip.String(),
			Org:      org,
		}
	}

	return domain.Verification{
		Status:   domain.StatusDown,
		Reason:   fmt.Sprintf("ISP mismatch (expected %s, got %s)", expectedOrg, org),
		PublicIP: ip.String(),
		Org:      org,
	}
}

func (v *ISPVerifier) lookupOrg(ctx context.Context, ip netip.Addr) (string, bool) {
	for _, lookup := range v.lookups {
		if org, ok := lookup.Lookup(ctx, ip); ok {
			return org, true
		}
	}
	return "", false
}
