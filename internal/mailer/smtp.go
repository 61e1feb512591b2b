package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/welldanyogia/webrana-teammail-backend/internal/models"
)

// SMTPConfig points at a relay that accepts authenticated submissions
type SMTPConfig struct {
	Addr     string
	Username string
	Password string
	// Timeout bounds the whole conversation with the relay
	Timeout time.Duration
	// TLSConfig is used for STARTTLS when the relay offers it
	TLSConfig *tls.Config
	// RequireTLS fails the submission when the relay does not offer STARTTLS
	RequireTLS bool
}

// SMTPTransport submits messages to a relay over SMTP
type SMTPTransport struct {
	cfg SMTPConfig
}

// NewSMTP creates a relay transport
func NewSMTP(cfg SMTPConfig) *SMTPTransport {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &SMTPTransport{cfg: cfg}
}

// Name returns the provider name.
func (t *SMTPTransport) Name() string {
	return string(models.IntegrationSMTP)
}

// Send generates a Message-Id when the message has none, submits the
// message and returns that id.
func (t *SMTPTransport) Send(ctx context.Context, msg *Message) (string, error) {
	if msg.MessageID == "" {
		msg.MessageID = NewMessageID(msg.From)
	}
	raw, err := BuildMIME(msg)
	if err != nil {
		return "", err
	}

	if err := t.submit(ctx, msg.From, msg.Recipients(), raw); err != nil {
		return "", deliveryError(t.Name(), err)
	}
	return msg.MessageID, nil
}

func (t *SMTPTransport) submit(ctx context.Context, from string, rcpts []string, raw []byte) error {
	ctx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	c, err := t.connect(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	if t.cfg.Username != "" {
		if err := c.Auth(sasl.NewPlainClient("", t.cfg.Username, t.cfg.Password)); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}
	if err := c.SendMail(from, rcpts, bytes.NewReader(raw)); err != nil {
		return err
	}
	return c.Quit()
}

// connect returns a client that has already greeted the relay. When
// RequireTLS is unset the relay is asked for its extensions first and the
// session is reopened under STARTTLS only if it is advertised.
func (t *SMTPTransport) connect(ctx context.Context) (*smtp.Client, error) {
	if !t.cfg.RequireTLS {
		conn, err := t.dial(ctx)
		if err != nil {
			return nil, err
		}
		c := smtp.NewClient(conn)
		if err := c.Hello("localhost"); err != nil {
			c.Close()
			return nil, err
		}
		if ok, _ := c.Extension("STARTTLS"); !ok {
			return c, nil
		}
		if err := c.Quit(); err != nil {
			c.Close()
		}
	}

	conn, err := t.dial(ctx)
	if err != nil {
		return nil, err
	}
	c, err := smtp.NewClientStartTLS(conn, t.tlsConfig())
	if err != nil {
		return nil, fmt.Errorf("starttls: %w", err)
	}
	return c, nil
}

func (t *SMTPTransport) dial(ctx context.Context) (net.Conn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", t.cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", t.cfg.Addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	return conn, nil
}

func (t *SMTPTransport) tlsConfig() *tls.Config {
	if t.cfg.TLSConfig != nil {
		return t.cfg.TLSConfig
	}
	host, _, _ := net.SplitHostPort(t.cfg.Addr)
	return &tls.Config{ServerName: host}
}
