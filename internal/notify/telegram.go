package notify

import (
	"fmt"
	"strings"

	"tradecrm/internal/reminder"

	gotgbot "github.com/PaulSonOfLars/gotgbot/v2"
)

// TelegramNotifier posts sweep summaries to an operations chat.
type TelegramNotifier struct {
	bot    *gotgbot.Bot
	chatID int64
}

func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := gotgbot.NewBot(token, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

func (n *TelegramNotifier) SweepCompleted(result *reminder.SweepResult) error {
	var text strings.Builder

	text.WriteString("🔔 <b>Reminder sweep completed</b>\n\n")
	text.WriteString(fmt.Sprintf("Processed: <b>%d</b>\n", result.Processed))
	text.WriteString(fmt.Sprintf("Sent: <b>%d</b>\n", result.Sent))
	text.WriteString(fmt.Sprintf("Follow-ups created: <b>%d</b>\n", result.NextCreated))

	if result.Failed > 0 {
		text.WriteString(fmt.Sprintf("\n❌ <b>Failed: %d</b>\n", result.Failed))
		for _, e := range result.Errors {
			text.WriteString(fmt.Sprintf("  • reminder %d: %s\n", e.ReminderID, e.Message))
		}
	}

	_, err := n.bot.SendMessage(n.chatID, text.String(), &gotgbot.SendMessageOpts{
		ParseMode: "HTML",
	})
	return err
}
