package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikesoares/linkwatch/internal/domain"
)

// Load mutates the global viper, so these tests reset it and never
// run in parallel.
func loadFresh(t *testing.T, path string) (*Config, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	return Load(path)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := loadFresh(t, "")
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "eth0:Primary Connection,wlan0:Wi-Fi Connection", cfg.Interfaces)
	assert.Equal(t, "one.one.one.one,google.com", cfg.Websites)
	assert.Equal(t, "interface_states.csv", cfg.StateFile)
	assert.Equal(t, []string{
		"https://api.ipify.org",
		"https://ifconfig.me/ip",
		"https://icanhazip.com",
	}, cfg.LookupURLList())

	assert.Equal(t, 465, cfg.SMTP.Port)
	assert.True(t, cfg.SMTP.UseSSL)
	assert.Equal(t, 10*time.Second, cfg.SMTPTimeout())

	assert.False(t, cfg.Whois.Enabled)
	assert.Equal(t, "interface-transitions", cfg.Kafka.Topic)
	assert.Empty(t, cfg.KafkaBrokerList())

	assert.Equal(t, 5*time.Minute, cfg.WatchInterval())
	assert.Empty(t, cfg.Watch.StatusAddr)

	assert.Equal(t, 5*time.Second, cfg.ProbeTimeout())
	assert.Equal(t, 10*time.Second, cfg.LookupTimeout())
	assert.Equal(t, 15*time.Second, cfg.WhoisTimeout())
}

func TestLoadExplicitPathMustExist(t *testing.T) {
	_, err := loadFresh(t, "/nonexistent/linkwatch.yaml")
	require.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("INTERFACES", "ppp0:LTE Backup")
	t.Setenv("WEBSITES", "example.org")
	t.Setenv("STATE_FILE", "/var/lib/linkwatch/states.csv")
	t.Setenv("SMTP_PORT", "587")
	t.Setenv("SMTP_USE_SSL", "false")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "-100200300")
	t.Setenv("WHOIS_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("WATCH_INTERVAL", "60")
	t.Setenv("TIMEOUTS_PROBE", "3")

	cfg, err := loadFresh(t, "")
	require.NoError(t, err)

	assert.Equal(t, "ppp0:LTE Backup", cfg.Interfaces)
	assert.Equal(t, []string{"example.org"}, cfg.WebsiteList())
	assert.Equal(t, "/var/lib/linkwatch/states.csv", cfg.StateFile)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.False(t, cfg.SMTP.UseSSL)
	assert.True(t, cfg.TelegramAvailable())
	assert.True(t, cfg.Whois.Enabled)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokerList())
	assert.True(t, cfg.KafkaAvailable())
	assert.Equal(t, time.Minute, cfg.WatchInterval())
	assert.Equal(t, 3*time.Second, cfg.ProbeTimeout())
}

func TestInterfaceList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []domain.Iface
	}{
		{
			name: "name only",
			raw:  "eth0",
			want: []domain.Iface{{Name: "eth0", Label: "eth0"}},
		},
		{
			name: "name and label",
			raw:  "eth0:Primary Connection",
			want: []domain.Iface{{Name: "eth0", Label: "Primary Connection"}},
		},
		{
			name: "name label and expected org",
			raw:  "eth0:Fiber:Comcast",
			want: []domain.Iface{{Name: "eth0", Label: "Fiber", ExpectedOrg: "Comcast"}},
		},
		{
			name: "org may contain no further colons split",
			raw:  "eth0:Fiber:AS13335: Cloudflare",
			want: []domain.Iface{{Name: "eth0", Label: "Fiber", ExpectedOrg: "AS13335: Cloudflare"}},
		},
		{
			name: "multiple entries with whitespace",
			raw:  " eth0:Wired , wlan0:Wireless ",
			want: []domain.Iface{
				{Name: "eth0", Label: "Wired"},
				{Name: "wlan0", Label: "Wireless"},
			},
		},
		{
			name: "empty entries skipped",
			raw:  ",eth0,,",
			want: []domain.Iface{{Name: "eth0", Label: "eth0"}},
		},
		{
			name: "empty label falls back to name",
			raw:  "eth0::Verizon",
			want: []domain.Iface{{Name: "eth0", Label: "eth0", ExpectedOrg: "Verizon"}},
		},
		{
			name: "duplicate name replaced in place",
			raw:  "eth0:First,wlan0:Wi-Fi,eth0:Second",
			want: []domain.Iface{
				{Name: "eth0", Label: "Second"},
				{Name: "wlan0", Label: "Wi-Fi"},
			},
		},
		{
			name: "blank",
			raw:  "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Interfaces: tt.raw}
			assert.Equal(t, tt.want, cfg.InterfaceList())
		})
	}
}

func TestMissingSMTPVars(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, []string{
		"SMTP_SENDER", "SMTP_RECIPIENT", "SMTP_SERVER", "SMTP_LOGIN", "SMTP_PASSWORD",
	}, cfg.MissingSMTPVars())
	assert.False(t, cfg.EmailAvailable())

	cfg.SMTP = SMTPConfig{
		Sender:    "alerts@example.org",
		Recipient: "admin@example.org",
		Server:    "mail.example.org",
		Login:     "alerts",
	}
	assert.Equal(t, []string{"SMTP_PASSWORD"}, cfg.MissingSMTPVars())

	cfg.SMTP.Password = "secret"
	assert.Empty(t, cfg.MissingSMTPVars())
	assert.True(t, cfg.EmailAvailable())
}

func TestMissingTelegramVars(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, []string{"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID"}, cfg.MissingTelegramVars())
	assert.False(t, cfg.TelegramAvailable())

	cfg.Telegram = TelegramConfig{BotToken: "123:abc", ChatID: "42"}
	assert.Empty(t, cfg.MissingTelegramVars())
	assert.True(t, cfg.TelegramAvailable())
}

func TestResolveFeatures(t *testing.T) {
	available := &Config{
		SMTP: SMTPConfig{
			Sender:    "a@example.org",
			Recipient: "b@example.org",
			Server:    "mail.example.org",
			Login:     "a",
			Password:  "p",
		},
		Telegram: TelegramConfig{BotToken: "t", ChatID: "c"},
		Whois:    WhoisConfig{Enabled: true},
		Kafka:    KafkaConfig{Brokers: "kafka:9092"},
	}
	bare := &Config{}

	tests := []struct {
		name    string
		cfg     *Config
		ov      Overrides
		want    Features
		wantErr string
	}{
		{
			name: "defaults follow availability",
			cfg:  available,
			want: Features{Email: true, Telegram: true, Whois: true, Kafka: true},
		},
		{
			name: "bare config disables everything",
			cfg:  bare,
			want: Features{},
		},
		{
			name: "force off wins over availability",
			cfg:  available,
			ov:   Overrides{Email: TriOff, Telegram: TriOff, Whois: TriOff},
			want: Features{Kafka: true},
		},
		{
			name:    "force email on without vars",
			cfg:     bare,
			ov:      Overrides{Email: TriOn},
			wantErr: "SMTP_SENDER",
		},
		{
			name:    "force telegram on without vars",
			cfg:     bare,
			ov:      Overrides{Telegram: TriOn},
			wantErr: "TELEGRAM_BOT_TOKEN",
		},
		{
			name: "force whois on needs no vars",
			cfg:  bare,
			ov:   Overrides{Whois: TriOn},
			want: Features{Whois: true},
		},
		{
			name: "dry run carried through",
			cfg:  bare,
			ov:   Overrides{DryRun: true},
			want: Features{DryRun: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveFeatures(tt.cfg, tt.ov)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRedactToken(t *testing.T) {
	assert.Equal(t, "1234...wxyz", RedactToken("1234567890abcwxyz"))
	assert.Equal(t, "****", RedactToken("short"))
	assert.Equal(t, "****", RedactToken(""))
}
