package notify

import (
	"context"
	"fmt"
	"strings"

	"tradecrm/internal/reminder"

	brevo "github.com/getbrevo/brevo-go/lib"
)

// EmailNotifier sends sweep summaries to an operations mailbox through
// the Brevo transactional email API.
type EmailNotifier struct {
	fromName  string
	fromEmail string
	toEmail   string
	client    *brevo.APIClient
}

func NewEmailNotifier(apiKey, fromName, fromEmail, toEmail string) (*EmailNotifier, error) {
	cfg := brevo.NewConfiguration()
	cfg.AddDefaultHeader("api-key", apiKey)
	cfg.AddDefaultHeader("partner-key", apiKey)
	client := brevo.NewAPIClient(cfg)

	_, _, err := client.AccountApi.GetAccount(context.Background())
	if err != nil {
		return nil, err
	}

	return &EmailNotifier{
		fromName:  fromName,
		fromEmail: fromEmail,
		toEmail:   toEmail,
		client:    client,
	}, nil
}

func (n *EmailNotifier) SweepCompleted(result *reminder.SweepResult) error {
	var body strings.Builder
	body.WriteString(fmt.Sprintf("Reminder sweep completed.\n\nProcessed: %d\nSent: %d\nFollow-ups created: %d\nFailed: %d\n",
		result.Processed, result.Sent, result.NextCreated, result.Failed))
	for _, e := range result.Errors {
		body.WriteString(fmt.Sprintf("\n- reminder %d: %s", e.ReminderID, e.Message))
	}

	subject := "Reminder sweep completed"
	if result.Failed > 0 {
		subject = fmt.Sprintf("Reminder sweep completed with %d failures", result.Failed)
	}

	_, _, err := n.client.TransactionalEmailsApi.SendTransacEmail(context.Background(), brevo.SendSmtpEmail{
		Sender: &brevo.SendSmtpEmailSender{
			Name:  n.fromName,
			Email: n.fromEmail,
		},
		To: []brevo.SendSmtpEmailTo{
			{Email: n.toEmail},
		},
		Subject:     subject,
		TextContent: body.String(),
	})
	return err
}
