package mailer

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer sends transactional email over SMTP. All sends are best-effort from
// the caller's point of view: failures are returned, never panicked, and the
// callers decide whether to surface them.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
	Log    *zap.Logger
}

func New(host string, port int, user, password, from string, log *zap.Logger) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
		Log:    log,
	}
}

// Send delivers one HTML mail, retrying transient SMTP failures with
// backoff.
func (m *Mailer) Send(to, subject, html string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)

	err := retry(3, 1*time.Second, func() error {
		return m.dialer.DialAndSend(msg)
	})
	if err != nil {
		m.Log.Error("email send failed", zap.String("to", to), zap.String("subject", subject), zap.Error(err))
		return err
	}
	return nil
}

// SendTeamInvite mails the invite link to a prospective team member.
func (m *Mailer) SendTeamInvite(to, inviterName, companyName, inviteURL string) error {
	subject := fmt.Sprintf("Invitation to join %s on Mini ATS", companyName)
	return m.Send(to, subject, teamInviteHTML(inviterName, companyName, inviteURL))
}

// SendApplicationReceived notifies a recruiter about a new application.
func (m *Mailer) SendApplicationReceived(to, candidateName, jobTitle, companyName, applicationURL string) error {
	subject := fmt.Sprintf("New application for %s - %s", jobTitle, candidateName)
	return m.Send(to, subject, applicationReceivedHTML(candidateName, jobTitle, applicationURL))
}

// SendStageChanged notifies the team that a candidate moved stages.
func (m *Mailer) SendStageChanged(to, candidateName, jobTitle, stage, applicationURL string) error {
	subject := fmt.Sprintf("Application update: %s - %s", candidateName, StageName(stage))
	return m.Send(to, subject, stageChangedHTML(candidateName, jobTitle, StageName(stage), applicationURL))
}

// StageName maps pipeline stage ids to the names used in mail copy.
func StageName(stage string) string {
	names := map[string]string{
		"new":          "New",
		"phone-screen": "Phone Screen",
		"interview":    "Interview",
		"technical":    "Technical Test",
		"offer":        "Offer",
		"hired":        "Hired",
		"rejected":     "Rejected",
	}
	if name, ok := names[stage]; ok {
		return name
	}
	return stage
}

// retry executes f with exponential backoff between attempts.
func retry(attempts int, sleep time.Duration, f func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		err = f()
		if err == nil {
			return nil
		}
		time.Sleep(sleep)
		sleep *= 2
	}
	return fmt.Errorf("failed after %d attempts: %w", attempts, err)
}
