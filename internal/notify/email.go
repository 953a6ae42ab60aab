package notify

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Mailer sends alert emails over SMTP with STARTTLS. The tracker mails
// the account owner, so sender and recipient are the same address.
type Mailer struct {
	Address  string
	Password string
	Server   string
	Port     int
}

// NewMailer creates a mailer. Returns an error when credentials are
// incomplete so the caller can surface the configuration problem
// without disabling price checks.
func NewMailer(address, password, server string, port int) (*Mailer, error) {
	if address == "" || password == "" {
		return nil, fmt.Errorf("mail alerts need EMAIL_ADDRESS and EMAIL_PASSWORD")
	}
	return &Mailer{Address: address, Password: password, Server: server, Port: port}, nil
}

// Name identifies the channel in logs.
func (m *Mailer) Name() string { return "email" }

// SendPriceAlert emails a single price-drop notice.
func (m *Mailer) SendPriceAlert(a PriceAlert) error {
	subject := fmt.Sprintf("📦 %s", truncate(a.Product.Title, 40))
	return m.send(subject, priceAlertBody(a))
}

// SendRecallAlert emails a recall notice.
func (m *Mailer) SendRecallAlert(a RecallAlert) error {
	subject := fmt.Sprintf("⚠️ RECALL: %s", truncate(a.Product.Title, 40))
	return m.send(subject, recallAlertBody(a))
}

func (m *Mailer) send(subject, body string) error {
	msg := strings.Join([]string{
		"From: " + m.Address,
		"To: " + m.Address,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"utf-8\"",
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", m.Server, m.Port)
	auth := smtp.PlainAuth("", m.Address, m.Password, m.Server)
	return smtp.SendMail(addr, auth, m.Address, []string{m.Address}, []byte(msg))
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
