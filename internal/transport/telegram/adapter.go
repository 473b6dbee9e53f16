// Package telegram connects the bot router to the Telegram Bot API using long
// polling.
package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/rohits-web03/sitedrop/internal/bot"
	"github.com/rohits-web03/sitedrop/internal/observability"
)

type Config struct {
	Token       string
	PollTimeout int // seconds
	Debug       bool
}

// sender is the part of *tgbotapi.BotAPI used to reply.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

type Adapter struct {
	api         *tgbotapi.BotAPI
	out         sender
	router      *bot.Router
	dispatcher  *bot.Dispatcher
	httpClient  *http.Client
	pollTimeout int
}

func New(cfg Config, router *bot.Router, dispatcher *bot.Dispatcher) (*Adapter, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("connect to telegram: %w", err)
	}
	api.Debug = cfg.Debug

	timeout := cfg.PollTimeout
	if timeout <= 0 {
		timeout = 60
	}
	return &Adapter{
		api:         api,
		out:         api,
		router:      router,
		dispatcher:  dispatcher,
		httpClient:  &http.Client{Timeout: 2 * time.Minute},
		pollTimeout: timeout,
	}, nil
}

// Run polls for updates until ctx is cancelled. Each update is queued on the
// dispatcher under its chat id.
func (a *Adapter) Run(ctx context.Context) error {
	log := observability.Logger().With("bot", a.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = a.pollTimeout
	updates := a.api.GetUpdatesChan(u)
	log.Info("telegram polling started")

	for {
		select {
		case <-ctx.Done():
			a.api.StopReceivingUpdates()
			log.Info("telegram polling stopped")
			return nil
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			a.enqueue(ctx, upd)
		}
	}
}

func (a *Adapter) enqueue(ctx context.Context, upd tgbotapi.Update) {
	in, ok := toUpdate(upd, a.fetcher)
	if !ok {
		return
	}
	err := a.dispatcher.Dispatch(in.ChatID, func() {
		a.handle(ctx, upd, in)
	})
	if err != nil {
		observability.WithFields("chat_id", in.ChatID).Warn("dropping update", "error", err)
	}
}

func (a *Adapter) handle(ctx context.Context, upd tgbotapi.Update, in bot.Update) {
	log := observability.LoggerFromContext(observability.WithChatID(ctx, in.ChatID))
	resp := a.router.Handle(ctx, in)

	if upd.CallbackQuery != nil {
		if _, err := a.out.Request(tgbotapi.NewCallback(upd.CallbackQuery.ID, resp.Notice)); err != nil {
			log.Warn("failed to answer callback", "error", err)
		}
	}
	if resp.Text == "" {
		return
	}
	if _, err := a.out.Send(buildMessage(in.ChatID, resp)); err != nil {
		log.Error("failed to send message", "error", err)
	}
}

// fetcher returns a download function for a Telegram file id.
func (a *Adapter) fetcher(fileID string) func(context.Context) ([]byte, error) {
	return func(ctx context.Context) ([]byte, error) {
		url, err := a.out.GetFileDirectURL(fileID)
		if err != nil {
			return nil, fmt.Errorf("resolve file: %w", err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := a.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	}
}

// toUpdate converts a Telegram update. Updates the router has no use for
// (edits, stickers, channel posts) are reported as not ok.
func toUpdate(upd tgbotapi.Update, fetch func(fileID string) func(context.Context) ([]byte, error)) (bot.Update, bool) {
	if cq := upd.CallbackQuery; cq != nil {
		if cq.Message == nil || cq.From == nil {
			return bot.Update{}, false
		}
		return bot.Update{
			ChatID:   cq.Message.Chat.ID,
			UserID:   cq.From.ID,
			Username: cq.From.UserName,
			Callback: cq.Data,
		}, true
	}

	msg := upd.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return bot.Update{}, false
	}
	out := bot.Update{
		ChatID:   msg.Chat.ID,
		UserID:   msg.From.ID,
		Username: msg.From.UserName,
	}
	switch {
	case msg.IsCommand():
		out.Command = msg.Command()
	case msg.Document != nil:
		out.File = &bot.File{
			Name:  msg.Document.FileName,
			Size:  int64(msg.Document.FileSize),
			Fetch: fetch(msg.Document.FileID),
		}
	case msg.Text != "":
		out.Text = msg.Text
	default:
		return bot.Update{}, false
	}
	return out, true
}

func buildMessage(chatID int64, resp bot.Response) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, resp.Text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if len(resp.Menu) > 0 {
		msg.ReplyMarkup = keyboard(resp.Menu)
	}
	return msg
}

func keyboard(menu [][]bot.Button) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(menu))
	for _, row := range menu {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			if b.URL != "" {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL(b.Text, b.URL))
			} else {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
			}
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
