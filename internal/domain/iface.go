package domain

// Iface is one monitored network interface.
type Iface struct {
	// Name is the OS device name the probes bind to, e.g. "eth0".
	Name string `json:"name"`
	// Label is the human-readable name used in alerts, e.g. "Fiber".
	Label string `json:"label"`
	// ExpectedOrg is the ISP organization expected to own the public IP
	// seen through this interface. Empty means ISP verification is
	// skipped for the interface.
	ExpectedOrg string `json:"expected_org,omitempty"`
}
