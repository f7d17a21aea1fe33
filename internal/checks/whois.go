package checks

import (
	"context"
	"log/slog"
	"net/netip"
	"os/exec"
	"strings"
	"time"
)

// orgFields are the registry field spellings recognized in WHOIS
// output: ARIN uses OrgName, RIPE and APNIC use org-name, several
// registrars use Organization. Matching is case-insensitive per line
// and the first matching line in document order wins. New registry
// formats are supported by appending a spelling here.
var orgFields = []string{
	"orgname:",
	"org-name:",
	"organization:",
}

// WhoisLookup resolves the owning organization of an IP by shelling
// out to whois(1).
type WhoisLookup struct {
	timeout time.Duration
	log     *slog.Logger
}

func NewWhoisLookup(timeout time.Duration, log *slog.Logger) *WhoisLookup {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &WhoisLookup{timeout: timeout, log: log}
}

// Lookup returns the organization that owns ip. A missing binary,
// query timeout or unparseable output all come back as not found.
func (w *WhoisLookup) Lookup(ctx context.Context, ip netip.Addr) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "whois", ip.String())

	// Output, not CombinedOutput: referral chatter on stderr must not
	// reach the parser.
	output, err := cmd.Output()
	if err != nil {
		w.log.Debug("whois query failed", "ip", ip.String(), "error", err)
		return "", false
	}

	org, ok := ParseOrgName(string(output))
	if !ok {
		w.log.Debug("no organization field in whois output", "ip", ip.String())
	}

	return org, ok
}

// ParseOrgName scans WHOIS output line by line for an organization
// field. Values that are empty after trimming are skipped so a bare
// header line cannot shadow a real entry further down.
func ParseOrgName(output string) (string, bool) {
	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(trimmed)

		for _, field := range orgFields {
			if !strings.HasPrefix(lower, field) {
				continue
			}

			if value := strings.TrimSpace(trimmed[len(field):]); value != "" {
				return value, true
			}
		}
	}

	return "", false
}
