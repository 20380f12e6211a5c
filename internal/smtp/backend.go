package smtp

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/google/uuid"
)

// Security limits
const (
	DefaultMaxMessageSize = 25 * 1024 * 1024 // 25 MB
	DefaultMaxRecipients  = 100
	DefaultReadTimeout    = 60 * time.Second
	DefaultWriteTimeout   = 60 * time.Second
	DefaultMaxLineLength  = 2000
)

// ReceivedMessage is one message accepted by the sink.
type ReceivedMessage struct {
	ID         string
	From       string
	To         []string
	Username   string
	Raw        []byte
	Parsed     *ParsedEmail
	ReceivedAt time.Time
}

// Backend implements the go-smtp Backend interface for a local sink that
// accepts every message and keeps it in memory (and optionally on disk).
type Backend struct {
	username string
	password string
	dir      string
	logger   *slog.Logger

	mu       sync.Mutex
	messages []*ReceivedMessage
	notify   chan struct{}
}

// BackendConfig holds configuration for the sink backend
type BackendConfig struct {
	// Username and Password, when set, are the only accepted PLAIN login.
	// Otherwise any login is accepted and authentication is optional.
	Username string
	Password string
	// Dir, when set, receives one .eml file per accepted message.
	Dir    string
	Logger *slog.Logger
}

// NewBackend creates a new sink backend
func NewBackend(cfg *BackendConfig) *Backend {
	return &Backend{
		username: cfg.Username,
		password: cfg.Password,
		dir:      cfg.Dir,
		logger:   cfg.Logger,
		notify:   make(chan struct{}, 1),
	}
}

// NewSession creates a new SMTP session
func (b *Backend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	if b.logger != nil {
		b.logger.Info("new SMTP connection", slog.String("remote_addr", c.Conn().RemoteAddr().String()))
	}
	return NewSession(b), nil
}

func (b *Backend) requiresAuth() bool {
	return b.username != "" || b.password != ""
}

func (b *Backend) store(msg *ReceivedMessage) error {
	if b.dir != "" {
		if err := os.MkdirAll(b.dir, 0755); err != nil {
			return fmt.Errorf("failed to create sink directory: %w", err)
		}
		path := filepath.Join(b.dir, msg.ID+".eml")
		if err := os.WriteFile(path, msg.Raw, 0644); err != nil {
			return fmt.Errorf("failed to write message: %w", err)
		}
	}

	b.mu.Lock()
	b.messages = append(b.messages, msg)
	b.mu.Unlock()

	select {
	case b.notify <- struct{}{}:
	default:
	}
	return nil
}

// Messages returns a snapshot of the accepted messages in arrival order.
func (b *Backend) Messages() []*ReceivedMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*ReceivedMessage, len(b.messages))
	copy(out, b.messages)
	return out
}

// Reset forgets every accepted message.
func (b *Backend) Reset() {
	b.mu.Lock()
	b.messages = nil
	b.mu.Unlock()
}

// Received signals (coalesced) that a message was accepted.
func (b *Backend) Received() <-chan struct{} {
	return b.notify
}

func newMessageID() string {
	return uuid.New().String()
}

// ServerConfig holds security configuration for the sink server
type ServerConfig struct {
	Addr           string
	Domain         string
	MaxMessageSize int64
	MaxRecipients  int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowInsecure  bool
	TLSConfig      *tls.Config
}

// NewServer creates a sink SMTP server with limits applied
func NewServer(backend *Backend, cfg *ServerConfig) *smtp.Server {
	s := smtp.NewServer(backend)

	s.Addr = cfg.Addr
	s.Domain = cfg.Domain

	s.MaxMessageBytes = DefaultMaxMessageSize
	if cfg.MaxMessageSize > 0 {
		s.MaxMessageBytes = cfg.MaxMessageSize
	}

	s.MaxRecipients = DefaultMaxRecipients
	if cfg.MaxRecipients > 0 {
		s.MaxRecipients = cfg.MaxRecipients
	}

	s.ReadTimeout = DefaultReadTimeout
	if cfg.ReadTimeout > 0 {
		s.ReadTimeout = cfg.ReadTimeout
	}

	s.WriteTimeout = DefaultWriteTimeout
	if cfg.WriteTimeout > 0 {
		s.WriteTimeout = cfg.WriteTimeout
	}

	// PLAIN over a clear-text socket only when asked for
	s.AllowInsecureAuth = cfg.AllowInsecure

	if cfg.TLSConfig != nil {
		s.TLSConfig = cfg.TLSConfig
	}

	// Set max line length to prevent buffer overflow attacks
	s.MaxLineLength = DefaultMaxLineLength

	return s
}

// LoadTLSConfig builds a server TLS config from a certificate pair.
func LoadTLSConfig(certFile, keyFile string) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load TLS key pair: %w", err)
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}
