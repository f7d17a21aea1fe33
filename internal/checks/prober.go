package checks

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/mikesoares/linkwatch/internal/netbind"
)

const probePort = "443"

// TLSProber checks a target by resolving its hostname through the
// system resolver and completing a TLS handshake on port 443 over a
// socket bound to the interface. Name resolution deliberately stays on
// the default path: DNS servers learned via DHCP are often reachable
// on one uplink only, and probing must not depend on that.
type TLSProber struct {
	timeout time.Duration
	log     *slog.Logger
}

func NewTLSProber(timeout time.Duration, log *slog.Logger) *TLSProber {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &TLSProber{timeout: timeout, log: log}
}

// Probe tries targets in order and returns on the first completed
// handshake; remaining targets are skipped. failures carries one line
// per target tried and failed, for alerts. With zero targets nothing
// can succeed and the interface is down.
func (p *TLSProber) Probe(ctx context.Context, iface string, targets []string) (bool, []string) {
	var failures []string

	for _, target := range targets {
		if err := p.probeTarget(ctx, iface, target); err != nil {
			p.log.Debug("probe failed", "iface", iface, "target", target, "error", err)
			failures = append(failures, fmt.Sprintf("%s: %v", target, err))
			continue
		}

		p.log.Debug("probe succeeded", "iface", iface, "target", target)
		return true, failures
	}

	return false, failures
}

func (p *TLSProber) probeTarget(ctx context.Context, iface, host string) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return fmt.Errorf("resolve: %w", err)
	}
	if len(addrs) == 0 {
		return fmt.Errorf("resolve: no addresses for %s", host)
	}

	var lastErr error
	for _, addr := range addrs {
		if lastErr = p.handshake(ctx, iface, addr.IP.String(), host); lastErr == nil {
			return nil
		}
	}

	return lastErr
}

func (p *TLSProber) handshake(ctx context.Context, iface, ip, serverName string) error {
	d := &netbind.Dialer{Iface: iface, Timeout: p.timeout}

	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(ip, probePort))
	if err != nil {
		return fmt.Errorf("connect %s: %w", ip, err)
	}
	defer conn.Close()

	tlsConn := tls.Client(conn, &tls.Config{ServerName: serverName})
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		return fmt.Errorf("tls handshake with %s: %w", ip, err)
	}

	return nil
}
