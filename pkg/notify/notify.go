// Package notify sends operational email notifications over SMTP.
package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"gopkg.in/gomail.v2"
)

// Config contains SMTP settings for the mailer.
type Config struct {
	Enabled    bool
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	Recipients []string
}

// Sender delivers a composed message. Satisfied by *gomail.Dialer.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// MetricsRecorder counts notification send outcomes. Satisfied by
// *metrics.Collector.
type MetricsRecorder interface {
	RecordNotification(status string)
}

// Mailer composes and sends notification emails. A disabled mailer (or
// one with no recipients) silently drops every message.
type Mailer struct {
	config  *Config
	sender  Sender
	logger  *slog.Logger
	metrics MetricsRecorder
}

// NewMailer builds a mailer from config.
func NewMailer(config *Config) *Mailer {
	m := &Mailer{
		config: config,
		logger: slog.Default().With("component", "notify"),
	}
	if config != nil && config.Enabled {
		m.sender = gomail.NewDialer(config.Host, config.Port, config.Username, config.Password)
	}
	return m
}

// NewMailerWithSender builds a mailer with a custom sender, used in tests.
func NewMailerWithSender(config *Config, sender Sender) *Mailer {
	return &Mailer{
		config: config,
		sender: sender,
		logger: slog.Default().With("component", "notify"),
	}
}

// SetMetrics attaches a recorder for send outcomes.
func (m *Mailer) SetMetrics(rec MetricsRecorder) {
	m.metrics = rec
}

// Enabled reports whether the mailer will actually send anything.
func (m *Mailer) Enabled() bool {
	return m.config != nil && m.config.Enabled && len(m.config.Recipients) > 0 && m.sender != nil
}

func (m *Mailer) record(status string) {
	if m.metrics != nil {
		m.metrics.RecordNotification(status)
	}
}

// Send delivers an HTML message to the configured recipients. Returns
// nil without sending when the mailer is disabled.
func (m *Mailer) Send(subject, htmlBody string) error {
	if !m.Enabled() {
		m.logger.Debug("notification skipped, mailer disabled", "subject", subject)
		m.record("skipped")
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.config.From)
	msg.SetHeader("To", m.config.Recipients...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.sender.DialAndSend(msg); err != nil {
		m.record("error")
		return fmt.Errorf("failed to send notification: %w", err)
	}

	m.logger.Info("notification sent",
		"subject", subject,
		"recipients", len(m.config.Recipients),
	)
	m.record("sent")
	return nil
}

// DistributionReport summarizes one distribution run for notification
// purposes. Mirrors the report produced by the distribution job.
type DistributionReport struct {
	RunAt            time.Time
	Duration         time.Duration
	CampaignsFound   int
	UsersFound       int
	UsersDistributed int
	SkipReason       string
	Stage            string
	Err              error
}

var successTmpl = template.Must(template.New("success").Parse(`
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2 style="color: #27ae60;">Daily distribution completed</h2>
  <table style="border-collapse: collapse;">
    <tr><td style="padding: 6px 12px;"><b>Run at</b></td><td style="padding: 6px 12px;">{{.RunAt.Format "2006-01-02 15:04:05 MST"}}</td></tr>
    <tr><td style="padding: 6px 12px;"><b>Duration</b></td><td style="padding: 6px 12px;">{{.Duration}}</td></tr>
    <tr><td style="padding: 6px 12px;"><b>Active campaigns</b></td><td style="padding: 6px 12px;">{{.CampaignsFound}}</td></tr>
    <tr><td style="padding: 6px 12px;"><b>Users found</b></td><td style="padding: 6px 12px;">{{.UsersFound}}</td></tr>
    <tr><td style="padding: 6px 12px;"><b>Users distributed</b></td><td style="padding: 6px 12px;">{{.UsersDistributed}}</td></tr>
  </table>
</body>
</html>`))

var skippedTmpl = template.Must(template.New("skipped").Parse(`
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2 style="color: #f39c12;">Daily distribution skipped</h2>
  <p>{{.SkipReason}}</p>
  <table style="border-collapse: collapse;">
    <tr><td style="padding: 6px 12px;"><b>Run at</b></td><td style="padding: 6px 12px;">{{.RunAt.Format "2006-01-02 15:04:05 MST"}}</td></tr>
    <tr><td style="padding: 6px 12px;"><b>Active campaigns</b></td><td style="padding: 6px 12px;">{{.CampaignsFound}}</td></tr>
    <tr><td style="padding: 6px 12px;"><b>Users found</b></td><td style="padding: 6px 12px;">{{.UsersFound}}</td></tr>
  </table>
</body>
</html>`))

var errorTmpl = template.Must(template.New("error").Parse(`
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2 style="color: #c0392b;">Daily distribution failed</h2>
  <p>Stage: <b>{{.Stage}}</b></p>
  <p style="background: #fdecea; padding: 10px; border-radius: 4px;"><code>{{.Error}}</code></p>
  <table style="border-collapse: collapse;">
    <tr><td style="padding: 6px 12px;"><b>Run at</b></td><td style="padding: 6px 12px;">{{.RunAt.Format "2006-01-02 15:04:05 MST"}}</td></tr>
    <tr><td style="padding: 6px 12px;"><b>Duration</b></td><td style="padding: 6px 12px;">{{.Duration}}</td></tr>
  </table>
</body>
</html>`))

// SendDistributionSuccess emails a success summary for a run.
func (m *Mailer) SendDistributionSuccess(report DistributionReport) error {
	var buf bytes.Buffer
	if err := successTmpl.Execute(&buf, report); err != nil {
		return fmt.Errorf("failed to render success notification: %w", err)
	}
	subject := fmt.Sprintf("Distribution completed: %d users across %d campaigns",
		report.UsersDistributed, report.CampaignsFound)
	return m.Send(subject, buf.String())
}

// SendDistributionSkipped emails a skip notice for a run.
func (m *Mailer) SendDistributionSkipped(report DistributionReport) error {
	var buf bytes.Buffer
	if err := skippedTmpl.Execute(&buf, report); err != nil {
		return fmt.Errorf("failed to render skip notification: %w", err)
	}
	return m.Send("Distribution skipped: "+report.SkipReason, buf.String())
}

// SendDistributionError emails a failure notice for a run.
func (m *Mailer) SendDistributionError(report DistributionReport) error {
	data := struct {
		DistributionReport
		Error string
	}{DistributionReport: report}
	if report.Err != nil {
		data.Error = report.Err.Error()
	}

	var buf bytes.Buffer
	if err := errorTmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to render error notification: %w", err)
	}
	return m.Send("Distribution failed at stage "+report.Stage, buf.String())
}
