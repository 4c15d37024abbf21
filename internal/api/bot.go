package telegram

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	app "pv-hotspot/internal/application"
	"pv-hotspot/internal/container"
	"pv-hotspot/internal/domain/entity"
	"pv-hotspot/internal/domain/port"
)

const (
	msgStart = `👋 Привет! Я бот инвентаризации горячих точек солнечной электростанции.

Я показываю результаты последнего облёта тепловизором.

📋 Команды:
/report — сводка последнего прогона
/top — самые срочные неисправности
/fault <id> — карточка неисправности
/help — справка`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ /report — сколько найдено неисправностей и какие потери
2️⃣ /top — пять неисправностей с наибольшим приоритетом
3️⃣ /fault F-0007 — подробности по неисправности (можно просто /fault и затем номер)

📋 Команды:
/cancel — отменить текущую операцию`

	msgAwaitingFaultID = "🔎 Отправьте идентификатор неисправности, например F-0007."
	msgCancelled       = "❌ Операция отменена."
	msgUseCommands     = "📋 Используйте /report, /top или /fault <id>."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgNoRuns          = "📭 Прогонов ещё не было."
	msgNoFaults        = "✅ Неисправности не обнаружены."
	msgFaultNotFound   = "🤷 Неисправность не найдена в последнем прогоне."
	msgInternalError   = "⚠️ Не удалось получить данные. Попробуйте позже."
)

// Sender часть BotAPI, через которую уходят сообщения.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot представляет Telegram-бота
type Bot struct {
	api      *tgbotapi.BotAPI
	sender   Sender
	services *container.Container
	log      *slog.Logger
}

// NewBot создаёт нового бота
func NewBot(token string, services *container.Container, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	// внутренний журнал библиотеки уходит в slog на уровне debug
	if err := tgbotapi.SetLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug)); err != nil {
		return nil, err
	}

	logger.Info("authorized", "account", api.Self.UserName)

	return &Bot{
		api:      api,
		sender:   api,
		services: services,
		log:      logger,
	}, nil
}

// Run запускает основной цикл обработки сообщений до отмены ctx
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.From == nil {
				continue
			}
			msg := update.Message
			b.sendMessage(msg.Chat.ID, b.reply(ctx, msg.From.ID, msg.Chat.ID, msg.Command(), msg.CommandArguments(), msg.Text))
		}
	}
}

// reply строит ответ на сообщение. command пустой для обычного текста.
func (b *Bot) reply(ctx context.Context, userID, chatID int64, command, args, text string) string {
	user, err := b.services.UserService.Get(ctx, userID, chatID)
	if err != nil {
		b.log.Error("get user", "user", userID, "err", err)
		return msgInternalError
	}

	if command != "" {
		return b.handleCommand(ctx, user, command, strings.TrimSpace(args))
	}

	if user.State == entity.StateAwaitingFaultID {
		if _, err := b.services.UserService.Cancel(ctx, userID, chatID); err != nil {
			b.log.Error("reset user state", "user", userID, "err", err)
		}
		return b.faultCard(ctx, text)
	}

	return msgUseCommands
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, user *entity.User, command, args string) string {
	switch command {
	case "start":
		b.resetState(ctx, user)
		return msgStart

	case "help":
		return msgHelp

	case "report":
		report, err := b.services.ReportService.Latest(ctx)
		if err != nil {
			return b.queryError(err)
		}
		return FormatSummary(report)

	case "top":
		faults, err := b.services.ReportService.Top(ctx, app.TopLimit)
		if err != nil {
			return b.queryError(err)
		}
		return FormatTop(faults)

	case "fault":
		if args == "" {
			if _, err := b.services.UserService.BeginFaultLookup(ctx, user.ID, user.ChatID); err != nil {
				b.log.Error("set user state", "user", user.ID, "err", err)
				return msgInternalError
			}
			return msgAwaitingFaultID
		}
		return b.faultCard(ctx, args)

	case "cancel":
		b.resetState(ctx, user)
		return msgCancelled

	default:
		return msgUnknownCommand
	}
}

func (b *Bot) faultCard(ctx context.Context, id string) string {
	fault, err := b.services.ReportService.Fault(ctx, id)
	if errors.Is(err, port.ErrNotFound) {
		return msgFaultNotFound
	}
	if err != nil {
		b.log.Error("get fault", "fault", id, "err", err)
		return msgInternalError
	}
	return FormatFault(fault)
}

func (b *Bot) queryError(err error) string {
	if errors.Is(err, port.ErrNotFound) {
		return msgNoRuns
	}
	b.log.Error("query latest run", "err", err)
	return msgInternalError
}

func (b *Bot) resetState(ctx context.Context, user *entity.User) {
	if _, err := b.services.UserService.Cancel(ctx, user.ID, user.ChatID); err != nil {
		b.log.Error("reset user state", "user", user.ID, "err", err)
	}
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.sender.Send(msg); err != nil {
		b.log.Error("send message", "chat", chatID, "err", err)
	}
}
