package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"pv-hotspot/internal/domain/entity"
	"pv-hotspot/internal/domain/port"
)

// TelegramNotifier отправляет сводку прогона в заданный чат.
type TelegramNotifier struct {
	sender Sender
	chatID int64
	top    int
}

// NewTelegramNotifier создаёт уведомитель. top задаёт, сколько неисправностей приложить к сводке.
func NewTelegramNotifier(sender Sender, chatID int64, top int) *TelegramNotifier {
	return &TelegramNotifier{sender: sender, chatID: chatID, top: top}
}

// NewBotAPI авторизует клиента Telegram для уведомителя
func NewBotAPI(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	return api, nil
}

// Notify отправляет сводку и, если есть неисправности, список приоритетных
func (n *TelegramNotifier) Notify(ctx context.Context, report *entity.Report) error {
	texts := []string{FormatSummary(report)}
	if n.top > 0 && len(report.Faults) > 0 {
		texts = append(texts, FormatTop(report.Top(n.top)))
	}

	for _, text := range texts {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := n.sender.Send(tgbotapi.NewMessage(n.chatID, text)); err != nil {
			return fmt.Errorf("send report to chat %d: %w", n.chatID, err)
		}
	}
	return nil
}

var _ port.ReportNotifier = (*TelegramNotifier)(nil)
