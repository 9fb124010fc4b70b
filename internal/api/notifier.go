package telegram

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"detect-runner/internal/domain/entity"
	"detect-runner/internal/domain/port"
)

// maxMessageLen ограничение Telegram на длину текста сообщения.
const maxMessageLen = 4096

// Notifier отправляет сводку и размеченное фото в чат Telegram
type Notifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
	log    logrus.FieldLogger
}

// NewNotifier создаёт уведомитель для официального API
func NewNotifier(token string, chatID int64, log logrus.FieldLogger) (*Notifier, error) {
	return NewNotifierWithEndpoint(token, tgbotapi.APIEndpoint, chatID, &http.Client{}, log)
}

// NewNotifierWithEndpoint создаёт уведомитель для произвольного endpoint (формат "…/bot%s/%s")
func NewNotifierWithEndpoint(token, endpoint string, chatID int64, client *http.Client, log logrus.FieldLogger) (*Notifier, error) {
	api, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}

	log.WithField("account", api.Self.UserName).Debug("Authorized on Telegram")

	return &Notifier{
		api:    api,
		chatID: chatID,
		log:    log,
	}, nil
}

// Notify отправляет текст сводки, затем фото с рамками, если оно есть
func (n *Notifier) Notify(ctx context.Context, summary string, result *entity.ResultSet) error {
	_ = ctx

	text := truncate(strings.TrimSpace(summary), maxMessageLen)
	if text == "" {
		text = fmt.Sprintf("Total de objetos detectados: %d", result.Count())
	}
	if _, err := n.api.Send(tgbotapi.NewMessage(n.chatID, text)); err != nil {
		return fmt.Errorf("send summary: %w", err)
	}

	if result == nil || len(result.Annotated) == 0 {
		return nil
	}

	name := filepath.Base(result.SavedPath)
	if result.SavedPath == "" {
		name = filepath.Base(result.ImagePath)
	}
	photo := tgbotapi.NewPhoto(n.chatID, tgbotapi.FileBytes{Name: name, Bytes: result.Annotated})
	photo.Caption = name
	if _, err := n.api.Send(photo); err != nil {
		return fmt.Errorf("send photo: %w", err)
	}

	n.log.WithField("chat_id", n.chatID).Debug("Detection summary sent")
	return nil
}

// truncate обрезает строку до max рун
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}

// Проверка реализации интерфейса
var _ port.Notifier = (*Notifier)(nil)
