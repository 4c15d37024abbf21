package telegram

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"

	app "pv-hotspot/internal/application"
	"pv-hotspot/internal/container"
	"pv-hotspot/internal/domain/entity"
	"pv-hotspot/internal/infrastructure/storage"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
}

func (s *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	s.sent = append(s.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func sampleReport() *entity.Report {
	return &entity.Report{
		RunID:        "0f8c2a1e-5b7d-4c11-9a3e-2d6f8b9c0a11",
		FinishedAt:   time.Date(2026, 6, 1, 10, 30, 0, 0, time.UTC),
		TilesTotal:   12,
		TilesSkipped: 1,
		Detections:   3,
		MergePasses:  2,
		Reported:     1,
		SeverityCounts: map[entity.Severity]int{
			entity.SeverityCritical: 1,
			entity.SeverityLow:      1,
		},
		AnnualKWhLoss: 126.9,
		Faults: []entity.Fault{
			{
				FaultID: "F-0002", FaultType: entity.FaultCellHotspot, Severity: entity.SeverityCritical,
				Confidence: 81.3, DeltaTMax: 30.52, PixelArea: 356, MergeCount: 2, Tiles: []int{0, 1},
				LossPct: 11.27, AnnualKWhLoss: 100.4, Priority: 346.13, Lon: 12.4951, Lat: 41.9022,
			},
			{
				FaultID: "F-0003", FaultType: entity.FaultPanelHotspot, Severity: entity.SeverityLow,
				DeltaTMax: 9, PixelArea: 40, MergeCount: 1, Tiles: []int{3}, Priority: 26.5,
			},
		},
	}
}

func newTestBot(t *testing.T, withRun bool) *Bot {
	t.Helper()
	faults := storage.NewMemoryFaultRepository()
	if withRun {
		require.NoError(t, faults.SaveRun(context.Background(), sampleReport()))
	}
	return &Bot{
		sender:   &fakeSender{},
		services: container.New(storage.NewMemoryUserRepository(), faults, app.PipelineDeps{}),
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestBot_Commands(t *testing.T) {
	ctx := context.Background()
	b := newTestBot(t, true)

	require.Equal(t, msgStart, b.reply(ctx, 1, 10, "start", "", "/start"))
	require.Equal(t, msgHelp, b.reply(ctx, 1, 10, "help", "", "/help"))
	require.Equal(t, msgUnknownCommand, b.reply(ctx, 1, 10, "check", "", "/check"))
	require.Equal(t, msgUseCommands, b.reply(ctx, 1, 10, "", "", "hello"))

	report := b.reply(ctx, 1, 10, "report", "", "/report")
	require.Contains(t, report, "0f8c2a1e")
	require.Contains(t, report, "Неисправностей: 2, к устранению: 1")

	top := b.reply(ctx, 1, 10, "top", "", "/top")
	require.Contains(t, top, "1. 🔴 F-0002 CELL_HOTSPOT")
	require.Contains(t, top, "2. 🟢 F-0003")

	card := b.reply(ctx, 1, 10, "fault", "f-0002", "/fault f-0002")
	require.Contains(t, card, "F-0002")
	require.Contains(t, card, "тайлы: 0, 1")

	require.Equal(t, msgFaultNotFound, b.reply(ctx, 1, 10, "fault", "42", "/fault 42"))
}

func TestBot_FaultLookupDialog(t *testing.T) {
	ctx := context.Background()
	b := newTestBot(t, true)

	require.Equal(t, msgAwaitingFaultID, b.reply(ctx, 1, 10, "fault", "", "/fault"))
	user, err := b.services.UserService.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingFaultID, user.State)

	card := b.reply(ctx, 1, 10, "", "", "3")
	require.Contains(t, card, "F-0003")
	require.Equal(t, entity.StateMainMenu, user.State)

	// после ответа диалог закрыт
	require.Equal(t, msgUseCommands, b.reply(ctx, 1, 10, "", "", "3"))

	require.Equal(t, msgAwaitingFaultID, b.reply(ctx, 1, 10, "fault", "", "/fault"))
	require.Equal(t, msgCancelled, b.reply(ctx, 1, 10, "cancel", "", "/cancel"))
	require.Equal(t, entity.StateMainMenu, user.State)
}

func TestBot_NoRuns(t *testing.T) {
	ctx := context.Background()
	b := newTestBot(t, false)

	require.Equal(t, msgNoRuns, b.reply(ctx, 1, 10, "report", "", "/report"))
	require.Equal(t, msgNoRuns, b.reply(ctx, 1, 10, "top", "", "/top"))
	require.Equal(t, msgFaultNotFound, b.reply(ctx, 1, 10, "fault", "F-0001", "/fault F-0001"))
}

func TestBot_SendMessage(t *testing.T) {
	b := newTestBot(t, false)
	b.sendMessage(10, "hi")

	sent := b.sender.(*fakeSender).sent
	require.Len(t, sent, 1)
	require.Equal(t, int64(10), sent[0].ChatID)
	require.Equal(t, "hi", sent[0].Text)
}
