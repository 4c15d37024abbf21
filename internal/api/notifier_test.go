package telegram

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"

	"pv-hotspot/internal/domain/entity"
)

type failingSender struct{}

func (failingSender) Send(tgbotapi.Chattable) (tgbotapi.Message, error) {
	return tgbotapi.Message{}, errors.New("bad request")
}

func TestTelegramNotifier_Notify(t *testing.T) {
	sender := &fakeSender{}
	n := NewTelegramNotifier(sender, -100200300, 5)

	require.NoError(t, n.Notify(context.Background(), sampleReport()))
	require.Len(t, sender.sent, 2)
	require.Equal(t, int64(-100200300), sender.sent[0].ChatID)
	require.Contains(t, sender.sent[0].Text, "Прогон 0f8c2a1e")
	require.Contains(t, sender.sent[1].Text, "F-0002")
}

func TestTelegramNotifier_EmptyInventory(t *testing.T) {
	sender := &fakeSender{}
	n := NewTelegramNotifier(sender, 1, 5)

	require.NoError(t, n.Notify(context.Background(), &entity.Report{RunID: "r1"}))
	require.Len(t, sender.sent, 1)
}

func TestTelegramNotifier_SendError(t *testing.T) {
	n := NewTelegramNotifier(failingSender{}, 7, 5)

	err := n.Notify(context.Background(), sampleReport())
	require.ErrorContains(t, err, "chat 7")
}

func TestFormatSummary(t *testing.T) {
	text := FormatSummary(sampleReport())

	require.Contains(t, text, "Тайлов: 12 (пропущено 1)")
	require.Contains(t, text, "🔴 CRITICAL: 1")
	require.Contains(t, text, "🟢 LOW: 1")
	require.NotContains(t, text, "HIGH")
	require.Contains(t, text, "126.9 кВт·ч/год")
	require.Contains(t, text, "2026-06-01 10:30")
}

func TestFormatTop_Empty(t *testing.T) {
	require.Equal(t, msgNoFaults, FormatTop(nil))
}
