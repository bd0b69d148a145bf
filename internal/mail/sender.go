package mail

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"
)

// Credentials identify the SMTP account a report is sent from. Username is
// also used as the From address.
type Credentials struct {
	Server   string
	Port     int
	Username string
	Password string
}

// Complete reports whether every field needed to log in is set.
func (c Credentials) Complete() bool {
	return c.Server != "" && c.Port > 0 && c.Username != "" && c.Password != ""
}

type Message struct {
	Credentials Credentials
	To          string
	Subject     string
	HTMLBody    string
	// Attachment is an optional file path.
	Attachment string
}

// Sender delivers a message. Implementations do not retry.
type Sender interface {
	Send(ctx context.Context, msg Message) error
	Dial(ctx context.Context, creds Credentials) error
}

// SMTPSender sends over SMTP with STARTTLS.
type SMTPSender struct{}

func NewSMTPSender() *SMTPSender {
	return &SMTPSender{}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", msg.Credentials.Username)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetHeader("Message-ID", messageID(msg.Credentials.Username))
	m.SetDateHeader("Date", timeNow())
	m.SetBody("text/html", msg.HTMLBody)
	if msg.Attachment != "" {
		m.Attach(msg.Attachment)
	}

	d := dialer(msg.Credentials)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

// Dial logs in and disconnects, to check the account settings.
func (s *SMTPSender) Dial(ctx context.Context, creds Credentials) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	conn, err := dialer(creds).Dial()
	if err != nil {
		return fmt.Errorf("connect to %s:%d: %w", creds.Server, creds.Port, err)
	}
	return conn.Close()
}

func dialer(c Credentials) *gomail.Dialer {
	return gomail.NewDialer(c.Server, c.Port, c.Username, c.Password)
}

func messageID(from string) string {
	domain := "localhost"
	if at := strings.LastIndex(from, "@"); at >= 0 && at < len(from)-1 {
		domain = from[at+1:]
	}
	return fmt.Sprintf("<%s@%s>", uuid.NewString(), domain)
}
