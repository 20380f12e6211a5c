package smtp

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"strings"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"

	"github.com/welldanyogia/webrana-mailsender/internal/validator"
)

// Security selects how the connection to the relay is protected.
type Security int

const (
	// SecurityTLS wraps the connection in TLS from the first byte (smtps).
	SecurityTLS Security = iota
	// SecurityStartTLS upgrades a plain connection with STARTTLS.
	SecurityStartTLS
	// SecurityNone sends in clear text. Only for local sinks.
	SecurityNone
)

func (s Security) String() string {
	switch s {
	case SecurityStartTLS:
		return "starttls"
	case SecurityNone:
		return "none"
	default:
		return "tls"
	}
}

// Default relay ports
const (
	PortSubmissions = 465
	PortSubmission  = 587
	PortSMTP        = 25
)

// ErrInvalidEndpoint is returned for a transport host that cannot be used.
var ErrInvalidEndpoint = errors.New("invalid relay endpoint")

// Endpoint is a parsed relay address.
type Endpoint struct {
	Host     string
	Port     int
	Security Security
}

// Addr returns host:port.
func (e Endpoint) Addr() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

func (e Endpoint) String() string {
	return e.Security.String() + "://" + e.Addr()
}

// ParseEndpoint parses a configured transport host.
//
// A bare host relays over implicit TLS on port 465. A host:port pair uses
// implicit TLS on 465 and STARTTLS elsewhere. The schemes smtps://,
// smtp+starttls:// and smtp:// select the security explicitly.
func ParseEndpoint(raw string) (Endpoint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Endpoint{}, fmt.Errorf("%w: empty host", ErrInvalidEndpoint)
	}

	ep := Endpoint{Security: SecurityTLS, Port: PortSubmissions}
	explicit := false
	if scheme, rest, ok := strings.Cut(raw, "://"); ok {
		explicit = true
		raw = rest
		switch strings.ToLower(scheme) {
		case "smtps":
			ep.Security, ep.Port = SecurityTLS, PortSubmissions
		case "smtp+starttls":
			ep.Security, ep.Port = SecurityStartTLS, PortSubmission
		case "smtp":
			ep.Security, ep.Port = SecurityNone, PortSMTP
		default:
			return Endpoint{}, fmt.Errorf("%w: unknown scheme %q", ErrInvalidEndpoint, scheme)
		}
	}

	host := raw
	if h, p, err := net.SplitHostPort(raw); err == nil {
		port, err := strconv.Atoi(p)
		if err != nil || port <= 0 || port > 65535 {
			return Endpoint{}, fmt.Errorf("%w: bad port %q", ErrInvalidEndpoint, p)
		}
		host, ep.Port = h, port
		if !explicit && port != PortSubmissions {
			ep.Security = SecurityStartTLS
		}
	}

	if err := validator.ValidateHost(host); err != nil {
		return Endpoint{}, fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}
	ep.Host = strings.ToLower(host)

	return ep, nil
}

// Credentials is the login pair presented to the relay.
type Credentials struct {
	Username string
	Secret   string
}

// Empty reports whether no login should be attempted.
func (c Credentials) Empty() bool {
	return c.Username == "" && c.Secret == ""
}

// Transport delivers one already-encoded message.
type Transport interface {
	Send(ctx context.Context, from string, to []string, msg io.Reader) error
}

// Dialer prepares a Transport for a relay host. Relay fails only when the
// host cannot be used at all; network errors surface from Send.
type Dialer interface {
	Relay(host string, creds Credentials) (Transport, error)
}

// RelayDialer is the go-smtp backed Dialer.
type RelayDialer struct {
	// TLSConfig overrides the default client TLS settings; ServerName is
	// filled in per endpoint.
	TLSConfig *tls.Config
	Logger    *slog.Logger
}

// NewRelayDialer creates a RelayDialer.
func NewRelayDialer(logger *slog.Logger) *RelayDialer {
	return &RelayDialer{Logger: logger}
}

// Relay implements Dialer.
func (d *RelayDialer) Relay(host string, creds Credentials) (Transport, error) {
	ep, err := ParseEndpoint(host)
	if err != nil {
		return nil, err
	}

	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
	if d.TLSConfig != nil {
		tlsConfig = d.TLSConfig.Clone()
	}
	if tlsConfig.ServerName == "" {
		tlsConfig.ServerName = ep.Host
	}

	return &relayTransport{
		endpoint:  ep,
		creds:     creds,
		tlsConfig: tlsConfig,
		logger:    d.Logger,
	}, nil
}

type relayTransport struct {
	endpoint  Endpoint
	creds     Credentials
	tlsConfig *tls.Config
	logger    *slog.Logger
}

func (t *relayTransport) dial() (*smtp.Client, error) {
	switch t.endpoint.Security {
	case SecurityStartTLS:
		return smtp.DialStartTLS(t.endpoint.Addr(), t.tlsConfig)
	case SecurityNone:
		return smtp.Dial(t.endpoint.Addr())
	default:
		return smtp.DialTLS(t.endpoint.Addr(), t.tlsConfig)
	}
}

// Send dials the relay, authenticates when credentials are set and submits
// the message. There is no retry.
func (t *relayTransport) Send(ctx context.Context, from string, to []string, msg io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c, err := t.dial()
	if err != nil {
		return fmt.Errorf("connect to %s: %w", t.endpoint, err)
	}
	defer c.Close()

	if !t.creds.Empty() {
		if err := c.Auth(sasl.NewPlainClient("", t.creds.Username, t.creds.Secret)); err != nil {
			return fmt.Errorf("authenticate as %s: %w", t.creds.Username, err)
		}
	}

	if err := c.SendMail(from, to, msg); err != nil {
		return fmt.Errorf("submit message: %w", err)
	}

	if err := c.Quit(); err != nil && t.logger != nil {
		t.logger.Debug("QUIT failed after delivery", slog.Any("error", err))
	}

	if t.logger != nil {
		t.logger.Info("message relayed",
			slog.String("relay", t.endpoint.String()),
			slog.Int("recipients", len(to)),
		)
	}
	return nil
}
