package notify

import (
	"fmt"
	"log"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"
)

// AdminBot отправляет служебные сообщения администратору платформы в
// Telegram: новые депозиты, заявки на вывод, итоги циклов распределения.
type AdminBot struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewAdminBot инициализирует бота. Возвращает nil без ошибки, если токен или
// chat_id не заданы: уведомления администратора в этом случае отключены.
func NewAdminBot(token string, chatID int64) (*AdminBot, error) {
	if token == "" || chatID == 0 {
		log.Println("NewAdminBot: токен или ADMIN_CHAT_ID не заданы, Telegram-уведомления отключены.")
		return nil, nil
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("не удалось инициализировать Telegram бота: %w", err)
	}
	log.Printf("Telegram-бот авторизован как @%s.", api.Self.UserName)
	return &AdminBot{api: api, chatID: chatID}, nil
}

// Send отправляет текстовое сообщение в административный чат.
func (b *AdminBot) Send(text string) error {
	msg := tgbotapi.NewMessage(b.chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("ошибка отправки сообщения в чат %d: %w", b.chatID, err)
	}
	return nil
}
