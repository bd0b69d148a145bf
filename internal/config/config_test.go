package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sadopc/timebill/internal/secret"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) (*Manager, *secret.Box) {
	t.Helper()
	box, err := secret.Generate()
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "conf", "email.yaml")
	return NewManager(path, box, nil), box
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"TIMEBILL_SMTP_SERVER", "TIMEBILL_SMTP_PORT", "TIMEBILL_SENDER_EMAIL"} {
		t.Setenv(k, "")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	m, _ := newManager(t)
	assert.Equal(t, DefaultEmailConfig(), m.Load())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	clearEnv(t)
	m, _ := newManager(t)

	cfg := EmailConfig{SMTPServer: "smtp.mail.me.com", SMTPPort: 587, SenderEmail: "me@icloud.com", Password: "app-password"}
	require.NoError(t, m.Save(cfg))

	assert.Equal(t, cfg, m.Load())

	creds, err := m.Credentials()
	require.NoError(t, err)
	assert.Equal(t, "me@icloud.com", creds.Username)
	assert.Equal(t, "app-password", creds.Password)
	assert.True(t, creds.Complete())
}

func TestSaveNeverWritesPlaintext(t *testing.T) {
	clearEnv(t)
	m, _ := newManager(t)
	require.NoError(t, m.Save(EmailConfig{SMTPServer: "s", SMTPPort: 25, SenderEmail: "a@b.c", Password: "plain-secret"}))

	data, err := os.ReadFile(m.Path())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "plain-secret")
	assert.Contains(t, string(data), "sender_password:")

	info, err := os.Stat(m.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSaveWithoutPasswordOmitsField(t *testing.T) {
	clearEnv(t)
	m, _ := newManager(t)
	require.NoError(t, m.Save(EmailConfig{SMTPServer: "s", SMTPPort: 25, SenderEmail: "a@b.c"}))

	data, err := os.ReadFile(m.Path())
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(data), "sender_password"))
}

func TestLoadCorruptFileFallsBack(t *testing.T) {
	clearEnv(t)
	m, _ := newManager(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(m.Path()), 0o700))
	require.NoError(t, os.WriteFile(m.Path(), []byte("smtp_port: [not, a, number"), 0o600))

	assert.Equal(t, DefaultEmailConfig(), m.Load())
}

func TestLoadForeignPasswordFallsBack(t *testing.T) {
	clearEnv(t)
	m, _ := newManager(t)
	require.NoError(t, m.Save(EmailConfig{SMTPServer: "custom", SMTPPort: 2525, SenderEmail: "a@b.c", Password: "pw"}))

	// Same file, different key.
	other, err := secret.Generate()
	require.NoError(t, err)
	m2 := NewManager(m.Path(), other, nil)
	assert.Equal(t, DefaultEmailConfig(), m2.Load())
}

func TestEnvOverrides(t *testing.T) {
	m, _ := newManager(t)
	t.Setenv("TIMEBILL_SMTP_SERVER", "smtp.example.org")
	t.Setenv("TIMEBILL_SMTP_PORT", "2525")
	t.Setenv("TIMEBILL_SENDER_EMAIL", "env@example.org")

	cfg := m.Load()
	assert.Equal(t, "smtp.example.org", cfg.SMTPServer)
	assert.Equal(t, 2525, cfg.SMTPPort)
	assert.Equal(t, "env@example.org", cfg.SenderEmail)

	t.Setenv("TIMEBILL_SMTP_PORT", "not-a-port")
	assert.Equal(t, DefaultSMTPPort, m.Load().SMTPPort)
}

func TestResolvePaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("TIMEBILL_DB", "")
	t.Setenv("TIMEBILL_KEY", "")
	t.Setenv("TIMEBILL_CONFIG", "")

	p, err := ResolvePaths()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "time_tracker.db"), p.DB)
	assert.Equal(t, filepath.Join(home, ".timebill", "email.key"), p.Key)
	assert.Equal(t, filepath.Join(home, ".timebill", "email.yaml"), p.Config)

	t.Setenv("TIMEBILL_DB", "/tmp/other.db")
	p, err = ResolvePaths()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/other.db", p.DB)
}

func TestLookupProvider(t *testing.T) {
	p, ok := LookupProvider(" Outlook ")
	require.True(t, ok)
	assert.Equal(t, "smtp-mail.outlook.com", p.Server)
	assert.Equal(t, 587, p.Port)

	_, ok = LookupProvider("aol")
	assert.False(t, ok)
	assert.Len(t, Providers, 4)
}

func TestVerbose(t *testing.T) {
	t.Setenv("TIMEBILL_VERBOSE", "")
	assert.False(t, Verbose())
	t.Setenv("TIMEBILL_VERBOSE", "true")
	assert.True(t, Verbose())
	t.Setenv("TIMEBILL_VERBOSE", "loud")
	assert.False(t, Verbose())
}
