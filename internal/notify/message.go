package notify

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/parishlabs/lifelines/internal/formation"
)

const leaderWelcomeSubject = "Your LifeLine %q is ready to set up"

var leaderWelcomeTemplate = template.Must(template.New("leader_welcome").Parse(`Hi {{.DisplayName}},

Your request to lead the LifeLine "{{.LifeLineTitle}}" has been approved.
The group starts in draft; sign in to finish setting it up and publish it.
{{if .OneTimePassword}}
An account was created for you. Sign in with this one-time password and
choose your own right away:

    {{.OneTimePassword}}
{{else}}
Sign in with your existing account to get started.
{{end}}
Grace and peace,
The LifeLines team
`))

func renderLeaderWelcome(welcome formation.LeaderWelcome) (Message, error) {
	if strings.TrimSpace(welcome.Email) == "" {
		return Message{}, fmt.Errorf("welcome recipient is required")
	}
	var body strings.Builder
	if err := leaderWelcomeTemplate.Execute(&body, welcome); err != nil {
		return Message{}, fmt.Errorf("render leader welcome: %w", err)
	}
	return Message{
		To:      welcome.Email,
		Subject: fmt.Sprintf(leaderWelcomeSubject, welcome.LifeLineTitle),
		Body:    body.String(),
	}, nil
}
