// Package netbind opens outbound connections through a named network
// interface so that probe traffic cannot leak onto the default route.
package netbind

import (
	"context"
	"net"
	"net/http"
	"time"
)

// Dialer dials through the interface named by Iface. An empty Iface
// means no binding: the OS routing table picks the egress path, which
// is what callers want for unbound fallbacks and for tests.
type Dialer struct {
	Iface   string
	Timeout time.Duration
}

// DialContext opens a connection to address. Name resolution inside
// the dial is not bound to the interface; only the connection socket
// is. Callers that need bound resolution must pass an address literal.
func (d *Dialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	nd := net.Dialer{Timeout: d.Timeout}
	if d.Iface != "" {
		nd.Control = bindControl(d.Iface)
	}
	return nd.DialContext(ctx, network, address)
}

// HTTPClient returns a client whose TCP connections go out through
// iface. Keep-alives are off so every request re-binds a fresh socket.
func HTTPClient(iface string, timeout time.Duration) *http.Client {
	d := &Dialer{Iface: iface, Timeout: timeout}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext:       d.DialContext,
			DisableKeepAlives: true,
		},
	}
}

// LinkState is a coarse link-layer view of an interface, used for
// diagnostics before any socket is opened.
type LinkState int

const (
	LinkUnknown LinkState = iota
	LinkMissing
	LinkDown
	LinkUp
)

func (s LinkState) String() string {
	switch s {
	case LinkMissing:
		return "missing"
	case LinkDown:
		return "down"
	case LinkUp:
		return "up"
	}
	return "unknown"
}
