package domain

import "time"

// Verification is the outcome of an ISP ownership check for an
// interface that already passed its connectivity probes.
type Verification struct {
	Status   Status `json:"status"`
	Reason   string `json:"reason"`
	PublicIP string `json:"public_ip,omitempty"`
	Org      string `json:"org,omitempty"`
}

// Evaluation is the full verdict for one interface in one run.
type Evaluation struct {
	Iface  Iface  `json:"iface"`
	Status Status `json:"status"`
	// Failures holds one line per failed probe target, plus the
	// verification reason when the ISP check demoted the interface.
	Failures     []string      `json:"failures,omitempty"`
	Verification *Verification `json:"verification,omitempty"`
	CheckedAt    time.Time     `json:"checked_at"`
}

// Transition records an interface whose status differs from the
// previously persisted one.
type Transition struct {
	Iface    Iface     `json:"iface"`
	Previous Status    `json:"previous"`
	Current  Status    `json:"current"`
	Failures []string  `json:"failures,omitempty"`
	At       time.Time `json:"at"`
}
