package notifications

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"voart-api/shared/env"

	"github.com/mymmrac/telego"
	"golang.org/x/time/rate"
)

var bot *telego.Bot
var isInitialized bool = false
var telegramLimiter *rate.Limiter

func InitTelegramBot() error {
	if isInitialized && bot != nil {
		log.Println("INFO: Telegram bot already initialized.")
		return nil
	}

	isInitialized = false
	bot = nil
	telegramLimiter = nil

	botToken := env.TelegramBotToken
	groupID := env.TelegramGroupID

	if botToken == "" {
		return fmt.Errorf("critical error: TELEGRAM_BOT_TOKEN missing from env configuration")
	}
	if groupID == 0 {
		return fmt.Errorf("critical error: TELEGRAM_GROUP_ID missing or invalid in env configuration")
	}
	log.Println("Initializing Telegram bot API...")
	var err error

	bot, err = telego.NewBot(botToken, telego.WithDiscardLogger())
	if err != nil {
		bot = nil
		return fmt.Errorf("failed to initialize Telegram bot API: %w", err)
	}
	log.Println("Verifying bot token with Telegram API (GetMe)...")
	userInfo, err := bot.GetMe(context.Background())
	if err != nil {
		bot = nil
		return fmt.Errorf("failed to verify bot token with GetMe API call: %w", err)
	}
	isInitialized = true
	telegramLimiter = rate.NewLimiter(rate.Limit(0.2), 1)
	log.Printf("Telegram bot initialized successfully for @%s", userInfo.Username)
	log.Printf("Telegram rate limiter initialized (1 msg / 5 sec)")

	SendSystemLogMessage(fmt.Sprintf("Bot connected successfully (@%s). Ready.", userInfo.Username))

	return nil
}

func GetBotInstance() *telego.Bot {
	if !isInitialized || bot == nil {
		log.Println("WARN: GetBotInstance called but bot is not initialized or initialization failed.")
	}
	return bot
}

// SendTelegramMessage posts to the main group.
func SendTelegramMessage(message string) {
	sendMessageWithRetry(env.TelegramGroupID, 0, message)
}

// SendModerationMessage posts admin moderation alerts to the moderation topic.
func SendModerationMessage(message string) {
	sendMessageWithRetry(env.TelegramGroupID, env.ModerationThread, message)
}

func SendSystemLogMessage(message string) {
	sendMessageWithRetry(env.TelegramGroupID, env.SystemLogsThread, message)
}

func sendMessageWithRetry(chatID int64, threadID int, message string) {
	if !isInitialized || bot == nil {
		log.Printf("WARN: Telegram bot not initialized. Dropping message: %s", truncate(message, 80))
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := telegramLimiter.Wait(ctx); err != nil {
			log.Printf("WARN: Telegram rate limiter wait aborted: %v", err)
			return
		}

		params := &telego.SendMessageParams{
			ChatID:    telego.ChatID{ID: chatID},
			Text:      message,
			ParseMode: telego.ModeMarkdown,
		}
		if threadID != 0 {
			params.MessageThreadID = threadID
		}

		const maxAttempts = 3
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			_, err := bot.SendMessage(ctx, params)
			if err == nil {
				return
			}
			// Markdown parse failures are permanent; resend as plain text.
			if strings.Contains(err.Error(), "can't parse entities") {
				params.ParseMode = ""
				continue
			}
			log.Printf("WARN: Telegram send attempt %d/%d failed: %v", attempt, maxAttempts, err)
			time.Sleep(time.Duration(attempt*2) * time.Second)
		}
		log.Printf("ERROR: Giving up on Telegram message after %d attempts: %s", maxAttempts, truncate(message, 80))
	}()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
