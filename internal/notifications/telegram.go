package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/palma21/yt-analysis-bot/internal/models"
	"github.com/sirupsen/logrus"
)

// TelegramNotifier posts analyses to a Telegram chat through the Bot API
type TelegramNotifier struct {
	apiURL string
	token  string
	chatID string
	client *resty.Client
}

var _ Notifier = (*TelegramNotifier)(nil)

type telegramMessage struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	Result      struct {
		MessageID int64 `json:"message_id"`
	} `json:"result"`
}

// NewTelegramNotifier creates a new Telegram notifier
func NewTelegramNotifier(apiURL, token, chatID string) *TelegramNotifier {
	return &TelegramNotifier{
		apiURL: strings.TrimRight(apiURL, "/"),
		token:  token,
		chatID: chatID,
		client: resty.New().SetTimeout(30 * time.Second),
	}
}

// Notify sends the formatted analysis of a video
func (t *TelegramNotifier) Notify(ctx context.Context, video models.Video, analysis string) error {
	message := BuildMessage(video, analysis)

	resp, err := t.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(telegramMessage{
			ChatID:    t.chatID,
			Text:      message,
			ParseMode: "HTML",
		}).
		Post(fmt.Sprintf("%s/bot%s/sendMessage", t.apiURL, t.token))
	if err != nil {
		// the request URL carries the bot token
		return fmt.Errorf("failed to send Telegram message: %s", strings.ReplaceAll(err.Error(), t.token, "***"))
	}

	var result telegramResponse
	_ = json.Unmarshal(resp.Body(), &result)

	if !resp.IsSuccess() || !result.OK {
		return fmt.Errorf("Telegram returned status %d: %s", resp.StatusCode(), result.Description)
	}

	logrus.WithFields(logrus.Fields{
		"video_id":   video.ID,
		"message_id": result.Result.MessageID,
		"length":     len([]rune(message)),
	}).Info("Sent analysis to Telegram")

	return nil
}
