package checks

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/mikesoares/linkwatch/internal/netbind"
)

// EchoResolver asks a chain of plain-text IP echo services which
// public address the interface egresses through.
type EchoResolver struct {
	endpoints []string
	timeout   time.Duration
	log       *slog.Logger
}

func NewEchoResolver(endpoints []string, timeout time.Duration, log *slog.Logger) *EchoResolver {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &EchoResolver{endpoints: endpoints, timeout: timeout, log: log}
}

// Resolve walks the endpoint chain in order and returns the first
// response that parses as a public address. Individual endpoint
// failures are tolerated; false means the whole chain was exhausted.
func (r *EchoResolver) Resolve(ctx context.Context, iface string) (netip.Addr, bool) {
	client := netbind.HTTPClient(iface, r.timeout)

	for _, endpoint := range r.endpoints {
		addr, err := r.fetch(ctx, client, endpoint)
		if err != nil {
			r.log.Debug("public ip endpoint failed", "iface", iface, "endpoint", endpoint, "error", err)
			continue
		}

		r.log.Debug("public ip resolved", "iface", iface, "endpoint", endpoint, "ip", addr.String())
		return addr, true
	}

	return netip.Addr{}, false
}

func (r *EchoResolver) fetch(ctx context.Context, client *http.Client, endpoint string) (netip.Addr, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return netip.Addr{}, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return netip.Addr{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return netip.Addr{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	// Echo services answer with a bare address; anything longer is
	// an error page.
	body, err := io.ReadAll(io.LimitReader(resp.Body, 128))
	if err != nil {
		return netip.Addr{}, err
	}

	addr, err := netip.ParseAddr(strings.TrimSpace(string(body)))
	if err != nil {
		return netip.Addr{}, fmt.Errorf("parse response: %w", err)
	}

	if !PublicAddr(addr) {
		return netip.Addr{}, fmt.Errorf("%s is not a public address", addr)
	}

	return addr, nil
}

// PublicAddr reports whether addr is publicly routable unicast.
// Private, loopback, link-local, multicast and unspecified addresses
// all disqualify an echo response.
func PublicAddr(addr netip.Addr) bool {
	addr = addr.Unmap()

	switch {
	case !addr.IsValid(),
		addr.IsLoopback(),
		addr.IsPrivate(),
		addr.IsLinkLocalUnicast(),
		addr.IsLinkLocalMulticast(),
		addr.IsMulticast(),
		addr.IsUnspecified():
		return false
	}

	return true
}
