// Package notify mails TapeAlert summaries to the drive's operator.
package notify

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	mail "github.com/wneessen/go-mail"

	"github.com/revpol/tapealert/internal/tapealert"
	"github.com/revpol/tapealert/internal/version"
)

var validate = validator.New()

// ValidAddress reports whether addr is usable as a mail address.
func ValidAddress(addr string) bool {
	return validate.Var(addr, "required,email") == nil
}

// Mailer sends alert mail over SMTP. Credentials are optional; auth is
// attempted only when both username and password are set.
type Mailer struct {
	Server   string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

// Event is one drive check that raised alerts.
type Event struct {
	Device string
	JobID  string
	Alerts []tapealert.Alert
}

func warnText(n int) string {
	plural := ""
	if n > 1 {
		plural = "s"
	}
	return fmt.Sprintf("(%d) TapeAlert%s", n, plural)
}

// Subject builds the warning subject line for an event.
func Subject(ev Event) string {
	jobid := ""
	if ev.JobID != "" {
		jobid = "during jobid: " + ev.JobID + " "
	}
	return fmt.Sprintf("tapealert - WARN: %s detected %son device '%s'",
		warnText(len(ev.Alerts)), jobid, ev.Device)
}

// Body lists each alert line in full, framed by a header and the
// program signature.
func Body(ev Event) string {
	was := " was"
	if len(ev.Alerts) > 1 {
		was = " were"
	}
	hdr := fmt.Sprintf("The following %s%s detected:\n", warnText(len(ev.Alerts)), was)

	var b strings.Builder
	b.WriteString(hdr)
	b.WriteString(strings.Repeat("-", len(hdr)-1))
	b.WriteString("\n")
	for _, a := range ev.Alerts {
		detail := a.Detail
		if detail == "" {
			detail = a.Name + ": " + a.Description
		}
		fmt.Fprintf(&b, "TapeAlert[%d]: %s\n", a.Code, detail)
	}
	b.WriteString("\n")
	b.WriteString(strings.Repeat("-", len(version.Signature)))
	b.WriteString("\n")
	b.WriteString(version.Signature)
	b.WriteString("\n")
	return b.String()
}

// Send delivers the event summary in one SMTP exchange.
func (m *Mailer) Send(ev Event) error {
	msg := mail.NewMsg()
	if err := msg.From(m.From); err != nil {
		return fmt.Errorf("sender address: %w", err)
	}
	if err := msg.To(m.To); err != nil {
		return fmt.Errorf("recipient address: %w", err)
	}
	msg.Subject(Subject(ev))
	msg.SetBodyString(mail.TypeTextPlain, Body(ev))

	opts := []mail.Option{
		mail.WithPort(m.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if m.Username != "" && m.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.Username),
			mail.WithPassword(m.Password),
		)
	}
	client, err := mail.NewClient(m.Server, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	return client.DialAndSend(msg)
}
