package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/mikesoares/linkwatch/internal/domain"
	"github.com/mikesoares/linkwatch/internal/netbind"
)

type EmailConfig struct {
	Sender    string
	Recipient string
	Server    string
	Port      int
	Login     string
	Password  string
	UseSSL    bool
	Timeout   time.Duration
}

// Email delivers alerts over authenticated SMTP. The connection is
// opened through the working interface when one is known, so an alert
// about a dead uplink does not try to leave through it.
type Email struct {
	cfg EmailConfig
	log *slog.Logger
}

func NewEmail(cfg EmailConfig, log *slog.Logger) *Email {
	if cfg.Port == 0 {
		cfg.Port = 465
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Email{cfg: cfg, log: log}
}

func (e *Email) Name() string { return "email" }

func (e *Email) Notify(ctx context.Context, runID string, transitions []domain.Transition, viaIface string) error {
	return e.Send(ctx, DefaultSubject, FormatAlertBody(transitions), viaIface)
}

// Send delivers one message. With UseSSL the session is TLS from the
// first byte (implicit TLS, typically port 465); otherwise the
// session is upgraded with STARTTLS before authenticating.
func (e *Email) Send(ctx context.Context, subject, body, iface string) error {
	addr := net.JoinHostPort(e.cfg.Server, strconv.Itoa(e.cfg.Port))

	d := &netbind.Dialer{Iface: iface, Timeout: e.cfg.Timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial smtp server: %w", err)
	}

	// The smtp client has no context support, so bound the whole
	// conversation with a deadline instead.
	if err := conn.SetDeadline(time.Now().Add(e.cfg.Timeout)); err != nil {
		conn.Close()
		return fmt.Errorf("set smtp deadline: %w", err)
	}

	tlsConfig := &tls.Config{ServerName: e.cfg.Server}
	if e.cfg.UseSSL {
		conn = tls.Client(conn, tlsConfig)
	}

	client, err := smtp.NewClient(conn, e.cfg.Server)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if !e.cfg.UseSSL {
		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}

	auth := smtp.PlainAuth("", e.cfg.Login, e.cfg.Password, e.cfg.Server)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}

	if err := client.Mail(e.cfg.Sender); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(e.cfg.Recipient); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := fmt.Fprintf(w,
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n%s",
		e.cfg.Sender, e.cfg.Recipient, subject, body,
	); err != nil {
		w.Close()
		return fmt.Errorf("smtp write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp finish message: %w", err)
	}

	if err := client.Quit(); err != nil {
		e.log.Debug("smtp quit failed", "error", err)
	}

	return nil
}
