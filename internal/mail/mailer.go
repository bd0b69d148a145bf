package mail

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/sadopc/timebill/internal/export"
	"github.com/sadopc/timebill/internal/logger"
	"github.com/sadopc/timebill/internal/report"
	"github.com/sadopc/timebill/internal/store"
	"go.uber.org/zap"
)

var timeNow = time.Now

var errIncompleteCredentials = errors.New("mail account is not configured")

// CredentialSource provides the stored account settings.
type CredentialSource interface {
	Credentials() (Credentials, error)
}

// Request describes one report email.
type Request struct {
	Rows      []store.ReportRow
	Options   report.Options
	Recipient string
	AttachPDF bool
}

// Mailer renders reports and hands them to a Sender. Every failure is
// logged and collapsed into a false or a lower success count.
type Mailer struct {
	sender Sender
	source CredentialSource
	logger *zap.Logger
}

func NewMailer(sender Sender, source CredentialSource, l *zap.Logger) *Mailer {
	return &Mailer{sender: sender, source: source, logger: logger.OrNop(l)}
}

// SendUsingStoredCredentials sends with the account from the settings file.
func (m *Mailer) SendUsingStoredCredentials(ctx context.Context, req Request) bool {
	creds, ok := m.storedCredentials()
	if !ok {
		return false
	}
	return m.SendWithExplicitCredentials(ctx, creds, req)
}

// SendWithExplicitCredentials sends with creds, ignoring stored settings.
func (m *Mailer) SendWithExplicitCredentials(ctx context.Context, creds Credentials, req Request) bool {
	return m.sendAll(ctx, creds, req, []string{req.Recipient}) == 1
}

// SendToAll sends the same report to each recipient with the stored
// account and returns how many deliveries succeeded.
func (m *Mailer) SendToAll(ctx context.Context, req Request, recipients []string) int {
	creds, ok := m.storedCredentials()
	if !ok {
		return 0
	}
	return m.sendAll(ctx, creds, req, recipients)
}

// TestConnection checks that creds can log in to the SMTP server.
func (m *Mailer) TestConnection(ctx context.Context, creds Credentials) bool {
	if err := m.sender.Dial(ctx, creds); err != nil {
		m.logger.Error("smtp connection test failed",
			zap.String("server", creds.Server),
			zap.Int("port", creds.Port),
			zap.Error(err),
		)
		return false
	}
	return true
}

func (m *Mailer) storedCredentials() (Credentials, bool) {
	if m.source == nil {
		m.logger.Error("send report", zap.Error(errIncompleteCredentials))
		return Credentials{}, false
	}
	creds, err := m.source.Credentials()
	if err == nil && !creds.Complete() {
		err = errIncompleteCredentials
	}
	if err != nil {
		m.logger.Error("load mail credentials", zap.Error(err))
		return Credentials{}, false
	}
	return creds, true
}

func (m *Mailer) sendAll(ctx context.Context, creds Credentials, req Request, recipients []string) int {
	doc := report.Build(req.Rows, req.Options)
	body, err := export.ToHTML(doc)
	if err != nil {
		m.logger.Error("render report email", zap.Error(err))
		return 0
	}

	var attachment string
	if req.AttachPDF {
		dir, err := os.MkdirTemp("", "timebill-report-")
		if err != nil {
			m.logger.Error("create attachment directory", zap.Error(err))
			return 0
		}
		defer os.RemoveAll(dir)

		attachment = filepath.Join(dir, attachmentName(timeNow()))
		if err := export.ToPDF(doc, attachment); err != nil {
			m.logger.Error("render report attachment", zap.Error(err))
			return 0
		}
	}

	sent := 0
	for _, to := range recipients {
		msg := Message{
			Credentials: creds,
			To:          to,
			Subject:     doc.Title,
			HTMLBody:    body,
			Attachment:  attachment,
		}
		if err := m.sender.Send(ctx, msg); err != nil {
			m.logger.Error("send report email", zap.String("to", to), zap.Error(err))
			continue
		}
		m.logger.Info("report email sent", zap.String("to", to), zap.String("subject", doc.Title))
		sent++
	}
	return sent
}

func attachmentName(t time.Time) string {
	return "time_report_" + t.Format("20060102_150405") + ".pdf"
}
