// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const adminHelp = "Available commands:\n\n" +
	"`/reports [count]`\n - List the most recent controller reports.\n\n" +
	"`/report <month> <year>`\n - Show the outcome of one report.\n\n" +
	"`/delete_report <month> <year>`\n - Delete a report so the period can be uploaded again.\n\n" +
	"`/help`\n - Show this message."

// RegisterBotCommands registers /start and /help.
func RegisterBotCommands(b *telebot.Bot, adminTelegramID int64, baseLogger *logrus.Entry) {
	startHelpLogger := baseLogger.WithField("handler_group", "start_help")

	b.Handle("/start", func(c telebot.Context) error {
		text, _ := startReply(c.Sender().ID, adminTelegramID, c.Sender().FirstName)
		startHelpLogger.WithFields(logrus.Fields{"command": "/start", "sender_id": c.Sender().ID}).Info("Processing command")
		return c.Send(text)
	})

	b.Handle("/help", func(c telebot.Context) error {
		text, isAdmin := helpReply(c.Sender().ID, adminTelegramID)
		startHelpLogger.WithFields(logrus.Fields{"command": "/help", "sender_id": c.Sender().ID}).Info("Processing command")
		if isAdmin {
			return c.Send(text, &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
		}
		return c.Send(text)
	})
}

func startReply(senderID, adminTelegramID int64, firstName string) (string, bool) {
	if senderID == adminTelegramID {
		return "Hello, " + firstName + "! I will report every controller reconciliation here. Use /help for commands.", true
	}
	return "Hello! This bot is for the savings association administrators only.", false
}

func helpReply(senderID, adminTelegramID int64) (string, bool) {
	if senderID == adminTelegramID {
		return adminHelp, true
	}
	return "There are no commands available to you.", false
}
