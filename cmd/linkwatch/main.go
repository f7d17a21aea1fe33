package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net"
	nethttp "net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/go-ping/ping"
	"github.com/joho/godotenv"

	apihttp "github.com/mikesoares/linkwatch/internal/api/http"
	"github.com/mikesoares/linkwatch/internal/checks"
	"github.com/mikesoares/linkwatch/internal/config"
	"github.com/mikesoares/linkwatch/internal/domain"
	"github.com/mikesoares/linkwatch/internal/lib/logger/slogpretty"
	"github.com/mikesoares/linkwatch/internal/netbind"
	"github.com/mikesoares/linkwatch/internal/notify"
	"github.com/mikesoares/linkwatch/internal/service"
	"github.com/mikesoares/linkwatch/internal/state"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"

	pingTarget = "1.1.1.1"
)

type options struct {
	configPath string
	envFile    string
	verbose    bool
	watch      bool
	showConfig bool
	testAlerts bool
	testWhois  bool
	testConn   bool
	overrides  config.Overrides
}

func main() {
	opts := parseFlags()

	if err := godotenv.Load(opts.envFile); err != nil {
		log.Printf("Warning: %s file not found: %v", opts.envFile, err)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log := setupLogger(cfg.Env, opts.verbose)

	features, err := config.ResolveFeatures(cfg, opts.overrides)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	if opts.showConfig {
		printConfig(cfg, features)
		return
	}

	ifaces := cfg.InterfaceList()

	prober := checks.NewTLSProber(cfg.ProbeTimeout(), log)
	resolver := checks.NewEchoResolver(cfg.LookupURLList(), cfg.LookupTimeout(), log)

	// whois answers first; the local ASN database, when configured,
	// covers whois misses (rate limits, missing binary).
	lookups := []checks.OrgLookup{checks.NewWhoisLookup(cfg.WhoisTimeout(), log)}
	if cfg.Whois.ASNDB != "" {
		asn := checks.NewASNLookup(cfg.Whois.ASNDB, log)
		defer asn.Close()
		lookups = append(lookups, asn)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	switch {
	case opts.testAlerts:
		os.Exit(runTestAlerts(ctx, cfg, features, log))
	case opts.testWhois:
		os.Exit(runTestWhois(ctx, resolver, lookups, ifaces))
	case opts.testConn:
		os.Exit(runTestConnectivity(ctx, prober, cfg.WebsiteList(), ifaces))
	}

	verifier := checks.NewISPVerifier(resolver, lookups, log)
	evaluator := checks.NewEvaluator(prober, verifier, cfg.WebsiteList(), features.Whois, log)
	store := state.NewStore(cfg.StateFile, log)

	var channels []notify.Channel
	if features.Email {
		channels = append(channels, notify.NewEmail(emailConfig(cfg), log))
	}
	if features.Telegram {
		channels = append(channels, notify.NewTelegram(telegramConfig(cfg), log))
	}
	if features.Kafka {
		producer := notify.NewKafka(cfg.KafkaBrokerList(), cfg.Kafka.Topic, log)
		defer producer.Close()
		channels = append(channels, producer)
	}

	monitor, err := service.New(evaluator, store, notify.NewMulti(log, channels...), service.Config{
		Interfaces: ifaces,
		Interval:   cfg.WatchInterval(),
		DryRun:     features.DryRun,
	}, log)
	if err != nil {
		log.Error("failed to initialize monitor", "error", err)
		os.Exit(1)
	}

	log.Info("starting linkwatch",
		"env", cfg.Env,
		"interfaces", len(ifaces),
		"email", features.Email,
		"telegram", features.Telegram,
		"whois", features.Whois,
		"kafka", features.Kafka,
		"dry_run", features.DryRun,
	)

	if !opts.watch {
		if _, err := monitor.RunOnce(ctx); err != nil {
			log.Error("run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	runWatch(ctx, cancel, cfg, monitor, log)
}

func parseFlags() options {
	var opts options

	flag.StringVar(&opts.configPath, "config", "", "path to a YAML config file (default: search for linkwatch.yaml)")
	flag.StringVar(&opts.envFile, "env-file", ".env", "path to an env file to load")
	flag.BoolVar(&opts.verbose, "v", false, "enable verbose logging")
	flag.BoolVar(&opts.overrides.DryRun, "dry-run", false, "check connectivity but do not save state or send alerts")
	flag.BoolVar(&opts.watch, "watch", false, "keep running and re-check every WATCH_INTERVAL seconds")
	flag.BoolVar(&opts.showConfig, "show-config", false, "print effective configuration and exit")
	flag.BoolVar(&opts.testAlerts, "test-alerts", false, "send a test message through enabled alert channels and exit")
	flag.BoolVar(&opts.testWhois, "test-whois", false, "fetch public IP and look up its organization to test ISP verification")
	flag.BoolVar(&opts.testConn, "test-connectivity", false, "report link state, ping and probe results per interface and exit")

	var email, noEmail, telegram, noTelegram, whois, noWhois bool
	flag.BoolVar(&email, "email", false, "force-enable email alerts")
	flag.BoolVar(&noEmail, "no-email", false, "disable email alerts")
	flag.BoolVar(&telegram, "telegram", false, "force-enable Telegram alerts")
	flag.BoolVar(&noTelegram, "no-telegram", false, "disable Telegram alerts")
	flag.BoolVar(&whois, "whois", false, "force-enable WHOIS ISP verification")
	flag.BoolVar(&noWhois, "no-whois", false, "disable WHOIS ISP verification")

	flag.Parse()

	opts.overrides.Email = triState("email", email, noEmail)
	opts.overrides.Telegram = triState("telegram", telegram, noTelegram)
	opts.overrides.Whois = triState("whois", whois, noWhois)

	return opts
}

// triState folds a force-enable/force-disable flag pair into one value.
// Passing neither means the env-var default decides.
func triState(name string, on, off bool) config.Tri {
	switch {
	case on && off:
		fmt.Fprintf(os.Stderr, "Error: -%s and -no-%s are mutually exclusive\n", name, name)
		os.Exit(2)
	case on:
		return config.TriOn
	case off:
		return config.TriOff
	}
	return config.TriDefault
}

func runWatch(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, monitor *service.Monitor, log *slog.Logger) {
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := monitor.Watch(ctx); err != nil {
			log.Error("monitor failed", "error", err)
		}
	}()

	var httpServer *nethttp.Server
	if cfg.Watch.StatusAddr != "" {
		controller := apihttp.NewStatusController(monitor)
		router := apihttp.NewRouter(controller, log)

		httpServer = &nethttp.Server{
			Addr:    cfg.Watch.StatusAddr,
			Handler: router,
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Info("starting status server", "addr", cfg.Watch.StatusAddr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
				log.Error("status server failed", "error", err)
				cancel()
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info("shutting down...")
	case <-ctx.Done():
	}
	cancel()

	if httpServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("status server shutdown failed", "error", err)
		}
	}

	wg.Wait()
	log.Info("linkwatch stopped gracefully")
}

func printConfig(cfg *config.Config, features config.Features) {
	fmt.Println("Interfaces:")
	for _, ifc := range cfg.InterfaceList() {
		org := ""
		if ifc.ExpectedOrg != "" {
			org = fmt.Sprintf("  (WHOIS: %s)", ifc.ExpectedOrg)
		}
		fmt.Printf("  %-10s %s%s\n", ifc.Name, ifc.Label, org)
	}

	fmt.Printf("\nWebsites: %s\n", strings.Join(cfg.WebsiteList(), ", "))
	fmt.Printf("State file: %s\n", cfg.StateFile)

	fmt.Println("\nFeatures:")

	if features.Email {
		ssl := "SSL"
		if !cfg.SMTP.UseSSL {
			ssl = "STARTTLS"
		}
		fmt.Printf("  Email:    enabled (%s:%d %s)\n", cfg.SMTP.Server, cfg.SMTP.Port, ssl)
	} else {
		fmt.Printf("  Email:    disabled (%s)\n", disabledReason(cfg.MissingSMTPVars()))
	}

	if features.Telegram {
		fmt.Printf("  Telegram: enabled (token: %s, chat: %s)\n",
			config.RedactToken(cfg.Telegram.BotToken), cfg.Telegram.ChatID)
	} else {
		fmt.Printf("  Telegram: disabled (%s)\n", disabledReason(cfg.MissingTelegramVars()))
	}

	if features.Whois {
		fmt.Printf("  WHOIS:    enabled (IP lookup: %s)\n", strings.Join(cfg.LookupURLList(), ", "))
	} else {
		fmt.Println("  WHOIS:    disabled")
	}

	if features.Kafka {
		fmt.Printf("  Kafka:    enabled (%s topic %s)\n",
			strings.Join(cfg.KafkaBrokerList(), ", "), cfg.Kafka.Topic)
	} else {
		fmt.Println("  Kafka:    disabled (KAFKA_BROKERS not set)")
	}
}

func disabledReason(missing []string) string {
	if len(missing) > 0 {
		return "missing " + strings.Join(missing, ", ")
	}
	return "disabled via flag"
}

// runTestAlerts sends a test message through every enabled channel and
// reports per-channel results on stdout.
func runTestAlerts(ctx context.Context, cfg *config.Config, features config.Features, log *slog.Logger) int {
	if !features.Email && !features.Telegram {
		fmt.Fprintln(os.Stderr, "Error: no notification channels are enabled. "+
			"Configure email or Telegram env vars, or use -email / -telegram to force-enable.")
		return 1
	}

	body := fmt.Sprintf(
		"This is a test alert.\nTimestamp: %s\n\nIf you received this message, the notification channel is configured correctly.",
		time.Now().Format("2006-01-02 15:04:05"),
	)

	ok := true

	if features.Email {
		fmt.Printf("Testing email to %s via %s:%d...\n", cfg.SMTP.Recipient, cfg.SMTP.Server, cfg.SMTP.Port)
		email := notify.NewEmail(emailConfig(cfg), log)
		if err := email.Send(ctx, "Test Alert", body, ""); err != nil {
			fmt.Fprintf(os.Stderr, "  Email: FAILED: %v\n", err)
			ok = false
		} else {
			fmt.Println("  Email: OK")
		}
	}

	if features.Telegram {
		fmt.Printf("Testing Telegram chat %s (token: %s)...\n",
			cfg.Telegram.ChatID, config.RedactToken(cfg.Telegram.BotToken))
		tg := notify.NewTelegram(telegramConfig(cfg), log)
		if err := tg.Send(ctx, "Test Alert", body, ""); err != nil {
			fmt.Fprintf(os.Stderr, "  Telegram: FAILED: %v\n", err)
			ok = false
		} else {
			fmt.Println("  Telegram: OK")
		}
	}

	if !ok {
		return 1
	}
	return 0
}

// runTestWhois resolves the public IP over the default route, looks up
// the owning organization and shows whether it matches each configured
// expected org.
func runTestWhois(ctx context.Context, resolver checks.IPResolver, lookups []checks.OrgLookup, ifaces []domain.Iface) int {
	fmt.Println("Fetching public IP...")
	ip, ok := resolver.Resolve(ctx, "")
	if !ok {
		fmt.Fprintln(os.Stderr, "  IP lookup: FAILED")
		return 1
	}
	fmt.Printf("  Public IP: %s\n", ip)

	fmt.Printf("\nLooking up organization for %s...\n", ip)
	org := ""
	for _, lookup := range lookups {
		if name, found := lookup.Lookup(ctx, ip); found {
			org = name
			break
		}
	}
	if org == "" {
		fmt.Fprintln(os.Stderr, "  WHOIS: FAILED: could not determine organization")
		return 1
	}
	fmt.Printf("  Organization: %s\n", org)

	hasExpected := false
	for _, ifc := range ifaces {
		if ifc.ExpectedOrg != "" {
			hasExpected = true
			break
		}
	}
	if hasExpected {
		fmt.Println("\nInterface matches:")
		for _, ifc := range ifaces {
			if ifc.ExpectedOrg == "" {
				fmt.Printf("  %s (%s): no expected org configured\n", ifc.Name, ifc.Label)
				continue
			}
			status := "MISMATCH"
			if strings.Contains(strings.ToUpper(org), strings.ToUpper(ifc.ExpectedOrg)) {
				status = "matches"
			}
			fmt.Printf("  %s (%s): expected %q: %s\n", ifc.Name, ifc.Label, ifc.ExpectedOrg, status)
		}
	}

	return 0
}

// runTestConnectivity prints a per-interface diagnostic: link state,
// ICMP round-trip time and the full TLS probe verdict.
func runTestConnectivity(ctx context.Context, prober checks.Prober, targets []string, ifaces []domain.Iface) int {
	exit := 0

	for _, ifc := range ifaces {
		fmt.Printf("%s (%s):\n", ifc.Label, ifc.Name)
		fmt.Printf("  Link:  %s\n", netbind.InterfaceState(ifc.Name))

		if rtt, err := pingThrough(ifc.Name); err != nil {
			fmt.Printf("  Ping:  failed (%v)\n", err)
		} else {
			fmt.Printf("  Ping:  %.1fms avg\n", float64(rtt)/float64(time.Millisecond))
		}

		ok, failures := prober.Probe(ctx, ifc.Name, targets)
		if ok {
			fmt.Println("  Probe: up")
		} else {
			fmt.Println("  Probe: down")
			for _, failure := range failures {
				fmt.Printf("    %s\n", failure)
			}
			exit = 1
		}
	}

	return exit
}

// pingThrough measures ICMP round-trip time with packets sourced from
// the interface's first IPv4 address, which pins them to its route.
func pingThrough(iface string) (time.Duration, error) {
	src, err := interfaceAddr(iface)
	if err != nil {
		return 0, err
	}

	pinger, err := ping.NewPinger(pingTarget)
	if err != nil {
		return 0, err
	}
	pinger.Source = src
	pinger.Count = 3
	pinger.Interval = 200 * time.Millisecond
	pinger.Timeout = 5 * time.Second
	pinger.SetPrivileged(false)

	if err := pinger.Run(); err != nil {
		return 0, err
	}

	stats := pinger.Statistics()
	if stats.PacketsRecv == 0 {
		return 0, errors.New("no replies")
	}
	return stats.AvgRtt, nil
}

func interfaceAddr(name string) (string, error) {
	ifc, err := net.InterfaceByName(name)
	if err != nil {
		return "", err
	}

	addrs, err := ifc.Addrs()
	if err != nil {
		return "", err
	}

	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		if ip4 := ipNet.IP.To4(); ip4 != nil {
			return ip4.String(), nil
		}
	}

	return "", fmt.Errorf("no IPv4 address on %s", name)
}

func emailConfig(cfg *config.Config) notify.EmailConfig {
	return notify.EmailConfig{
		Sender:    cfg.SMTP.Sender,
		Recipient: cfg.SMTP.Recipient,
		Server:    cfg.SMTP.Server,
		Port:      cfg.SMTP.Port,
		Login:     cfg.SMTP.Login,
		Password:  cfg.SMTP.Password,
		UseSSL:    cfg.SMTP.UseSSL,
		Timeout:   cfg.SMTPTimeout(),
	}
}

func telegramConfig(cfg *config.Config) notify.TelegramConfig {
	return notify.TelegramConfig{
		BotToken: cfg.Telegram.BotToken,
		ChatID:   cfg.Telegram.ChatID,
		Timeout:  cfg.LookupTimeout(),
	}
}

func setupLogger(env string, verbose bool) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}),
		)
	default:
		log = setupPrettySlog()
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
