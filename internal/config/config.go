package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sadopc/timebill/internal/logger"
	"github.com/sadopc/timebill/internal/mail"
	"github.com/sadopc/timebill/internal/store"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSMTPServer = "smtp.gmail.com"
	DefaultSMTPPort   = 587

	appDir = ".timebill"
)

// Paths locates the files the application reads and writes.
type Paths struct {
	DB     string
	Key    string
	Config string
}

// ResolvePaths returns the default locations in the home directory,
// overridden by TIMEBILL_DB, TIMEBILL_KEY and TIMEBILL_CONFIG.
func ResolvePaths() (Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Paths{}, fmt.Errorf("resolve home directory: %w", err)
	}
	db, err := store.DefaultDBPath()
	if err != nil {
		return Paths{}, err
	}
	p := Paths{
		DB:     db,
		Key:    filepath.Join(home, appDir, "email.key"),
		Config: filepath.Join(home, appDir, "email.yaml"),
	}
	OverridePathsFromEnv(&p)
	return p, nil
}

func OverridePathsFromEnv(p *Paths) {
	if v := os.Getenv("TIMEBILL_DB"); v != "" {
		p.DB = v
	}
	if v := os.Getenv("TIMEBILL_KEY"); v != "" {
		p.Key = v
	}
	if v := os.Getenv("TIMEBILL_CONFIG"); v != "" {
		p.Config = v
	}
}

// Verbose reports whether TIMEBILL_VERBOSE asks for debug logging.
func Verbose() bool {
	v, _ := strconv.ParseBool(os.Getenv("TIMEBILL_VERBOSE"))
	return v
}

// EmailConfig is the in-memory mail account. Password is plaintext here
// and never written to disk as such.
type EmailConfig struct {
	SMTPServer  string
	SMTPPort    int
	SenderEmail string
	Password    string
}

func DefaultEmailConfig() EmailConfig {
	return EmailConfig{SMTPServer: DefaultSMTPServer, SMTPPort: DefaultSMTPPort}
}

// OverrideEmailFromEnv applies TIMEBILL_SMTP_SERVER, TIMEBILL_SMTP_PORT and
// TIMEBILL_SENDER_EMAIL.
func OverrideEmailFromEnv(cfg *EmailConfig) {
	if v := os.Getenv("TIMEBILL_SMTP_SERVER"); v != "" {
		cfg.SMTPServer = v
	}
	if v := os.Getenv("TIMEBILL_SMTP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			cfg.SMTPPort = p
		}
	}
	if v := os.Getenv("TIMEBILL_SENDER_EMAIL"); v != "" {
		cfg.SenderEmail = v
	}
}

// emailFile is the on-disk layout. SenderPassword holds an encrypted token.
type emailFile struct {
	SMTPServer     string `yaml:"smtp_server"`
	SMTPPort       int    `yaml:"smtp_port"`
	SenderEmail    string `yaml:"sender_email"`
	SenderPassword string `yaml:"sender_password,omitempty"`
}

// Cipher protects the stored password.
type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(token string) (string, error)
}

// Manager loads and saves the mail settings file.
type Manager struct {
	path   string
	cipher Cipher
	logger *zap.Logger
}

func NewManager(path string, cipher Cipher, l *zap.Logger) *Manager {
	return &Manager{path: path, cipher: cipher, logger: logger.OrNop(l)}
}

func (m *Manager) Path() string { return m.path }

// Load reads the settings file. A missing, unreadable or corrupt file, or a
// password that does not decrypt, falls back to the defaults without error.
func (m *Manager) Load() EmailConfig {
	cfg := DefaultEmailConfig()
	if loaded, err := m.read(); err != nil {
		m.logger.Debug("using default email settings", zap.String("path", m.path), zap.Error(err))
	} else {
		cfg = loaded
	}
	OverrideEmailFromEnv(&cfg)
	return cfg
}

func (m *Manager) read() (EmailConfig, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return EmailConfig{}, err
	}
	var f emailFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return EmailConfig{}, fmt.Errorf("parse %s: %w", m.path, err)
	}

	cfg := DefaultEmailConfig()
	if f.SMTPServer != "" {
		cfg.SMTPServer = f.SMTPServer
	}
	if f.SMTPPort > 0 {
		cfg.SMTPPort = f.SMTPPort
	}
	cfg.SenderEmail = f.SenderEmail
	if f.SenderPassword != "" {
		if m.cipher == nil {
			return EmailConfig{}, errors.New("no key to decrypt stored password")
		}
		cfg.Password, err = m.cipher.Decrypt(f.SenderPassword)
		if err != nil {
			return EmailConfig{}, fmt.Errorf("decrypt stored password: %w", err)
		}
	}
	return cfg, nil
}

// Save writes cfg with the password encrypted.
func (m *Manager) Save(cfg EmailConfig) error {
	f := emailFile{
		SMTPServer:  cfg.SMTPServer,
		SMTPPort:    cfg.SMTPPort,
		SenderEmail: strings.TrimSpace(cfg.SenderEmail),
	}
	if cfg.Password != "" {
		if m.cipher == nil {
			return errors.New("no key to encrypt password")
		}
		token, err := m.cipher.Encrypt(cfg.Password)
		if err != nil {
			return fmt.Errorf("encrypt password: %w", err)
		}
		f.SenderPassword = token
	}

	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal email settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0o600); err != nil {
		return fmt.Errorf("write email settings: %w", err)
	}
	return nil
}

// Credentials returns the stored account for sending reports.
func (m *Manager) Credentials() (mail.Credentials, error) {
	cfg := m.Load()
	return mail.Credentials{
		Server:   cfg.SMTPServer,
		Port:     cfg.SMTPPort,
		Username: cfg.SenderEmail,
		Password: cfg.Password,
	}, nil
}
