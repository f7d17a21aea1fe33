// Package config loads settings from environment variables, with an
// optional YAML file for deployments that prefer one. Every value has
// an env spelling (INTERFACES, SMTP_SENDER, TELEGRAM_BOT_TOKEN, ...)
// so a bare .env file is a complete configuration.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mikesoares/linkwatch/internal/domain"
)

type Config struct {
	Env string `mapstructure:"env"`

	// Interfaces holds comma-separated name:label[:expected_org]
	// entries, kept raw so the env form stays a plain string.
	Interfaces   string `mapstructure:"interfaces"`
	Websites     string `mapstructure:"websites"`
	IPLookupURLs string `mapstructure:"ip_lookup_urls"`
	StateFile    string `mapstructure:"state_file"`

	SMTP     SMTPConfig     `mapstructure:"smtp"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Whois    WhoisConfig    `mapstructure:"whois"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Watch    WatchConfig    `mapstructure:"watch"`
	Timeouts TimeoutsConfig `mapstructure:"timeouts"`
}

type SMTPConfig struct {
	Sender    string `mapstructure:"sender"`
	Recipient string `mapstructure:"recipient"`
	Server    string `mapstructure:"server"`
	Port      int    `mapstructure:"port"`
	Login     string `mapstructure:"login"`
	Password  string `mapstructure:"password"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Timeout   int    `mapstructure:"timeout"`
}

type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

type WhoisConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	ASNDB   string `mapstructure:"asn_db"`
}

type KafkaConfig struct {
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
}

type WatchConfig struct {
	Interval   int    `mapstructure:"interval"`
	StatusAddr string `mapstructure:"status_addr"`
}

type TimeoutsConfig struct {
	Probe  int `mapstructure:"probe"`
	Lookup int `mapstructure:"lookup"`
	Whois  int `mapstructure:"whois"`
}

// Load reads configuration. With an explicit path the file must
// exist; otherwise linkwatch.yaml is searched in ./config, . and
// /etc/linkwatch, and a missing file is fine because env vars cover
// everything.
func Load(path string) (*Config, error) {
	setDefaults()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		viper.SetConfigName("linkwatch")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/linkwatch")

		if err := viper.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("env", "local")

	// Monitoring defaults
	viper.SetDefault("interfaces", "eth0:Primary Connection,wlan0:Wi-Fi Connection")
	viper.SetDefault("websites", "one.one.one.one,google.com")
	viper.SetDefault("ip_lookup_urls", "https://api.ipify.org,https://ifconfig.me/ip,https://icanhazip.com")
	viper.SetDefault("state_file", "interface_states.csv")

	// SMTP defaults; sender through password stay empty so feature
	// availability can be derived from their presence
	viper.SetDefault("smtp.sender", "")
	viper.SetDefault("smtp.recipient", "")
	viper.SetDefault("smtp.server", "")
	viper.SetDefault("smtp.port", 465)
	viper.SetDefault("smtp.login", "")
	viper.SetDefault("smtp.password", "")
	viper.SetDefault("smtp.use_ssl", true)
	viper.SetDefault("smtp.timeout", 10)

	// Telegram defaults
	viper.SetDefault("telegram.bot_token", "")
	viper.SetDefault("telegram.chat_id", "")

	// WHOIS defaults
	viper.SetDefault("whois.enabled", false)
	viper.SetDefault("whois.asn_db", "")

	// Kafka defaults
	viper.SetDefault("kafka.brokers", "")
	viper.SetDefault("kafka.topic", "interface-transitions")

	// Watch mode defaults
	viper.SetDefault("watch.interval", 300)
	viper.SetDefault("watch.status_addr", "")

	// Timeout defaults, in seconds
	viper.SetDefault("timeouts.probe", 5)
	viper.SetDefault("timeouts.lookup", 10)
	viper.SetDefault("timeouts.whois", 15)
}

// InterfaceList parses the configured interface entries. Blank
// entries are skipped, a bare name doubles as its label, and a
// duplicate name replaces the earlier entry in place.
func (c *Config) InterfaceList() []domain.Iface {
	var out []domain.Iface
	index := map[string]int{}

	for _, entry := range strings.Split(c.Interfaces, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		parts := strings.SplitN(entry, ":", 3)
		name := strings.TrimSpace(parts[0])
		if name == "" {
			continue
		}

		label := name
		if len(parts) >= 2 {
			if l := strings.TrimSpace(parts[1]); l != "" {
				label = l
			}
		}

		org := ""
		if len(parts) == 3 {
			org = strings.TrimSpace(parts[2])
		}

		ifc := domain.Iface{Name: name, Label: label, ExpectedOrg: org}
		if i, ok := index[name]; ok {
			out[i] = ifc
			continue
		}
		index[name] = len(out)
		out = append(out, ifc)
	}

	return out
}

func (c *Config) WebsiteList() []string {
	return splitList(c.Websites)
}

func (c *Config) LookupURLList() []string {
	return splitList(c.IPLookupURLs)
}

func (c *Config) KafkaBrokerList() []string {
	return splitList(c.Kafka.Brokers)
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// MissingSMTPVars lists the SMTP variables required for email alerts
// that are currently unset.
func (c *Config) MissingSMTPVars() []string {
	var missing []string
	if c.SMTP.Sender == "" {
		missing = append(missing, "SMTP_SENDER")
	}
	if c.SMTP.Recipient == "" {
		missing = append(missing, "SMTP_RECIPIENT")
	}
	if c.SMTP.Server == "" {
		missing = append(missing, "SMTP_SERVER")
	}
	if c.SMTP.Login == "" {
		missing = append(missing, "SMTP_LOGIN")
	}
	if c.SMTP.Password == "" {
		missing = append(missing, "SMTP_PASSWORD")
	}
	return missing
}

func (c *Config) EmailAvailable() bool {
	return len(c.MissingSMTPVars()) == 0
}

// MissingTelegramVars lists the Telegram variables required for bot
// alerts that are currently unset.
func (c *Config) MissingTelegramVars() []string {
	var missing []string
	if c.Telegram.BotToken == "" {
		missing = append(missing, "TELEGRAM_BOT_TOKEN")
	}
	if c.Telegram.ChatID == "" {
		missing = append(missing, "TELEGRAM_CHAT_ID")
	}
	return missing
}

func (c *Config) TelegramAvailable() bool {
	return len(c.MissingTelegramVars()) == 0
}

func (c *Config) KafkaAvailable() bool {
	return len(c.KafkaBrokerList()) > 0
}

func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.Timeouts.Probe) * time.Second
}

func (c *Config) LookupTimeout() time.Duration {
	return time.Duration(c.Timeouts.Lookup) * time.Second
}

func (c *Config) WhoisTimeout() time.Duration {
	return time.Duration(c.Timeouts.Whois) * time.Second
}

func (c *Config) SMTPTimeout() time.Duration {
	return time.Duration(c.SMTP.Timeout) * time.Second
}

func (c *Config) WatchInterval() time.Duration {
	return time.Duration(c.Watch.Interval) * time.Second
}

// RedactToken keeps only the first and last four characters of a
// secret for display.
func RedactToken(token string) string {
	if len(token) > 8 {
		return token[:4] + "..." + token[len(token)-4:]
	}
	return "****"
}
