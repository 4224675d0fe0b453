package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

// layout wraps every transactional mail in the shared header/footer.
var layout = template.Must(template.New("layout").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background-color: #f0f4f8; padding: 20px; text-align: center;">
    <h1 style="color: #3b82f6; margin: 0;">Mini ATS</h1>
  </div>
  <div style="padding: 20px; border: 1px solid #e5e7eb; border-top: none;">
    <h2>{{.Heading}}</h2>
    {{range .Paragraphs}}<p>{{.}}</p>
    {{end}}<div style="text-align: center; margin: 30px 0;">
      <a href="{{.ActionURL}}" style="background-color: #3b82f6; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; font-weight: bold;">{{.ActionLabel}}</a>
    </div>
  </div>
  <div style="background-color: #f0f4f8; padding: 20px; text-align: center; font-size: 12px; color: #6b7280;">
    <p>&copy; {{.Year}} Mini ATS. All rights reserved.</p>
  </div>
</div>`))

type mailData struct {
	Heading     string
	Paragraphs  []template.HTML
	ActionURL   string
	ActionLabel string
	Year        int
}

func render(data mailData) string {
	data.Year = time.Now().Year()
	var buf bytes.Buffer
	if err := layout.Execute(&buf, data); err != nil {
		return ""
	}
	return buf.String()
}

func bold(s string) template.HTML {
	return template.HTML("<strong>" + template.HTMLEscapeString(s) + "</strong>")
}

func teamInviteHTML(inviterName, companyName, inviteURL string) string {
	return render(mailData{
		Heading: "You have been invited to join a team",
		Paragraphs: []template.HTML{
			template.HTML(fmt.Sprintf("%s invited you to join the %s team on Mini ATS.", bold(inviterName), bold(companyName))),
			"Mini ATS is a recruiting platform for small and medium companies.",
			"If you were not expecting this invitation, you can ignore this email.",
		},
		ActionURL:   inviteURL,
		ActionLabel: "Accept Invitation",
	})
}

func applicationReceivedHTML(candidateName, jobTitle, applicationURL string) string {
	return render(mailData{
		Heading: "New Application Received",
		Paragraphs: []template.HTML{
			template.HTML(fmt.Sprintf("You received a new application for %s.", bold(jobTitle))),
			template.HTML(fmt.Sprintf("Candidate: %s", bold(candidateName))),
		},
		ActionURL:   applicationURL,
		ActionLabel: "View Application",
	})
}

func stageChangedHTML(candidateName, jobTitle, stageName, applicationURL string) string {
	return render(mailData{
		Heading: "Application Update",
		Paragraphs: []template.HTML{
			template.HTML(fmt.Sprintf("The application from %s for %s moved to the %s stage.",
				bold(candidateName), bold(jobTitle), bold(stageName))),
		},
		ActionURL:   applicationURL,
		ActionLabel: "View Application",
	})
}
