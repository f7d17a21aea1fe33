package config

import (
	"fmt"
	"strings"
)

// Tri is a three-valued switch for notification channels: follow the
// environment, force on, or force off.
type Tri int

const (
	TriDefault Tri = iota
	TriOn
	TriOff
)

// Overrides carries command line intent into feature resolution.
type Overrides struct {
	Email    Tri
	Telegram Tri
	Whois    Tri
	DryRun   bool
}

// Features is the resolved set of switches a run operates with.
type Features struct {
	Email    bool
	Telegram bool
	Whois    bool
	Kafka    bool
	DryRun   bool
}

// ResolveFeatures combines configured availability with command line
// overrides. Forcing a channel on whose variables are missing is an
// error rather than a silent no-op.
func ResolveFeatures(cfg *Config, ov Overrides) (Features, error) {
	email, err := resolveFeature("email", ov.Email, cfg.EmailAvailable(), cfg.MissingSMTPVars())
	if err != nil {
		return Features{}, err
	}

	telegram, err := resolveFeature("telegram", ov.Telegram, cfg.TelegramAvailable(), cfg.MissingTelegramVars())
	if err != nil {
		return Features{}, err
	}

	whois := cfg.Whois.Enabled
	switch ov.Whois {
	case TriOn:
		whois = true
	case TriOff:
		whois = false
	}

	return Features{
		Email:    email,
		Telegram: telegram,
		Whois:    whois,
		Kafka:    cfg.KafkaAvailable(),
		DryRun:   ov.DryRun,
	}, nil
}

func resolveFeature(name string, ov Tri, available bool, missing []string) (bool, error) {
	switch ov {
	case TriOn:
		if !available {
			return false, fmt.Errorf("--%s requires missing env vars: %s", name, strings.Join(missing, ", "))
		}
		return true, nil
	case TriOff:
		return false, nil
	default:
		return available, nil
	}
}
