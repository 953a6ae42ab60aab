package notify

import (
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram sends alerts to a single chat via a bot.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegram connects the bot and validates the token.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is not set")
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		if err.Error() == "Unauthorized" {
			return nil, fmt.Errorf("telegram token invalid or expired; get a fresh one from @BotFather")
		}
		return nil, fmt.Errorf("connecting to Telegram: %v", err)
	}
	bot.Debug = false
	log.Printf("Telegram bot authorized as: %s", bot.Self.UserName)
	return &Telegram{bot: bot, chatID: chatID}, nil
}

// Name identifies the channel in logs.
func (t *Telegram) Name() string { return "telegram" }

// SendPriceAlert posts a price-drop notice to the chat.
func (t *Telegram) SendPriceAlert(a PriceAlert) error {
	msg := tgbotapi.NewMessage(t.chatID, priceAlertBody(a))
	_, err := t.bot.Send(msg)
	return err
}

// SendRecallAlert posts a recall notice to the chat.
func (t *Telegram) SendRecallAlert(a RecallAlert) error {
	msg := tgbotapi.NewMessage(t.chatID, recallAlertBody(a))
	_, err := t.bot.Send(msg)
	return err
}
