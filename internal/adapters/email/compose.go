package email

import (
	"fmt"

	"grindset/internal/adapters/markdown"
)

// WelcomeEmail is sent once after sign-up.
func WelcomeEmail(to string) SendRequest {
	return SendRequest{
		To:      []string{to},
		Subject: "Welcome to Grindset",
		HTML: "<p>Welcome to Grindset!</p>" +
			"<p>Finish your profile to join the leaderboard, then check in every day for the new workout. " +
			"Complete every exercise to grow your streak.</p>",
	}
}

// AnnouncementEmails renders message once and addresses one email per recipient,
// so no recipient sees another's address.
func AnnouncementEmails(recipients []string, date, message string) ([]SendRequest, error) {
	body, err := markdown.Render(message)
	if err != nil {
		return nil, fmt.Errorf("render announcement: %w", err)
	}
	subject := fmt.Sprintf("Grindset announcement for %s", date)

	reqs := make([]SendRequest, 0, len(recipients))
	for _, to := range recipients {
		reqs = append(reqs, SendRequest{
			To:      []string{to},
			Subject: subject,
			HTML:    body,
		})
	}
	return reqs, nil
}
