package checks

import (
	"context"
	"log/slog"
	"net"
	"net/netip"
	"sync"

	"github.com/oschwald/geoip2-golang"
)

// ASNLookup resolves organizations from a local GeoLite2 ASN database.
// It backs up WhoisLookup: when whois misses (rate limits, missing
// binary, no org field) the database still identifies the provider.
type ASNLookup struct {
	dbPath string
	log    *slog.Logger

	once sync.Once
	db   *geoip2.Reader
}

func NewASNLookup(dbPath string, log *slog.Logger) *ASNLookup {
	return &ASNLookup{dbPath: dbPath, log: log}
}

func (a *ASNLookup) Lookup(_ context.Context, ip netip.Addr) (string, bool) {
	if a.dbPath == "" {
		return "", false
	}

	a.once.Do(func() {
		db, err := geoip2.Open(a.dbPath)
		if err != nil {
			a.log.Warn("asn database unavailable", "path", a.dbPath, "error", err)
			return
		}
		a.db = db
	})

	if a.db == nil {
		return "", false
	}

	record, err := a.db.ASN(net.IP(ip.AsSlice()))
	if err != nil {
		a.log.Debug("asn lookup failed", "ip", ip.String(), "error", err)
		return "", false
	}
	if record.AutonomousSystemOrganization == "" {
		return "", false
	}

	return record.AutonomousSystemOrganization, true
}

func (a *ASNLookup) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
