// Package checks contains the connectivity checks performed per
// monitored interface: TLS reachability probes, public IP discovery
// and ISP ownership verification.
package checks

import (
	"context"
	"net/netip"

	"github.com/mikesoares/linkwatch/internal/domain"
)

// Prober decides whether an interface has working internet access.
type Prober interface {
	Probe(ctx context.Context, iface string, targets []string) (ok bool, failures []string)
}

// IPResolver discovers the public IP seen through an interface.
type IPResolver interface {
	Resolve(ctx context.Context, iface string) (netip.Addr, bool)
}

// OrgLookup maps a public IP to the organization that owns it.
type OrgLookup interface {
	Lookup(ctx context.Context, ip netip.Addr) (string, bool)
}

// Verifier checks that an interface egresses through the expected ISP.
type Verifier interface {
	Verify(ctx context.Context, iface, expectedOrg string) domain.Verification
}
