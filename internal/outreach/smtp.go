package outreach

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/model"
)

// SMTPSettings configures the outbound mail relay.
type SMTPSettings struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// sendFunc matches smtp.SendMail, injectable for tests.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Sender delivers drafts over SMTP.
type Sender struct {
	settings SMTPSettings
	send     sendFunc
}

// NewSender creates a Sender. Settings with an empty host produce a sender
// that refuses to send, so drafting can run without mail credentials.
func NewSender(settings SMTPSettings) *Sender {
	return &Sender{settings: settings, send: smtp.SendMail}
}

// Send delivers one draft to the contact's resolved address and marks it sent.
func (s *Sender) Send(draft *model.OutreachDraft) error {
	if s.settings.Host == "" {
		return eris.New("outreach: smtp host not configured")
	}
	to := draft.Contact.Email
	if to == "" {
		return eris.New("outreach: draft has no recipient address")
	}

	addr := fmt.Sprintf("%s:%d", s.settings.Host, s.settings.Port)
	var auth smtp.Auth
	if s.settings.Username != "" {
		auth = smtp.PlainAuth("", s.settings.Username, s.settings.Password, s.settings.Host)
	}

	msg := buildMessage(s.settings.From, to, draft.Subject, draft.Body)
	if err := s.send(addr, auth, s.settings.From, []string{to}, msg); err != nil {
		return eris.Wrapf(err, "outreach: send to %s", to)
	}

	draft.Sent = true
	zap.L().Info("outreach email sent",
		zap.String("to", to),
		zap.String("subject", draft.Subject),
	)
	return nil
}

// buildMessage assembles an RFC 5322 message with CRLF line endings.
func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}
