package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohits-web03/sitedrop/internal/bot"
	"github.com/rohits-web03/sitedrop/internal/deploy"
	"github.com/rohits-web03/sitedrop/internal/hosting"
	"github.com/rohits-web03/sitedrop/internal/repositories"
	"github.com/rohits-web03/sitedrop/internal/session"
)

type fakeSender struct {
	sent      []tgbotapi.Chattable
	requested []tgbotapi.Chattable
	fileURL   string
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requested = append(f.requested, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) GetFileDirectURL(string) (string, error) {
	return f.fileURL, nil
}

func noFetch(string) func(context.Context) ([]byte, error) {
	return nil
}

func command(text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		From:     &tgbotapi.User{ID: 5, UserName: "ada"},
		Chat:     &tgbotapi.Chat{ID: 50},
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}},
	}
}

func TestToUpdateCommand(t *testing.T) {
	in, ok := toUpdate(tgbotapi.Update{Message: command("/start")}, noFetch)
	require.True(t, ok)
	assert.Equal(t, "start", in.Command)
	assert.Equal(t, int64(50), in.ChatID)
	assert.Equal(t, int64(5), in.UserID)
	assert.Equal(t, "ada", in.Username)
}

func TestToUpdateText(t *testing.T) {
	in, ok := toUpdate(tgbotapi.Update{Message: &tgbotapi.Message{
		From: &tgbotapi.User{ID: 5},
		Chat: &tgbotapi.Chat{ID: 50},
		Text: "My Portfolio",
	}}, noFetch)
	require.True(t, ok)
	assert.Equal(t, "My Portfolio", in.Text)
	assert.Empty(t, in.Command)
}

func TestToUpdateDocument(t *testing.T) {
	var requested string
	fetch := func(id string) func(context.Context) ([]byte, error) {
		requested = id
		return func(context.Context) ([]byte, error) { return []byte("PK"), nil }
	}

	in, ok := toUpdate(tgbotapi.Update{Message: &tgbotapi.Message{
		From:     &tgbotapi.User{ID: 5},
		Chat:     &tgbotapi.Chat{ID: 50},
		Document: &tgbotapi.Document{FileID: "file-1", FileName: "site.zip", FileSize: 2048},
	}}, fetch)
	require.True(t, ok)
	require.NotNil(t, in.File)
	assert.Equal(t, "site.zip", in.File.Name)
	assert.Equal(t, int64(2048), in.File.Size)
	assert.Equal(t, "file-1", requested)

	data, err := in.File.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("PK"), data)
}

func TestToUpdateCallback(t *testing.T) {
	in, ok := toUpdate(tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb-1",
		From:    &tgbotapi.User{ID: 5},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 50}},
		Data:    bot.CallbackUploadZip,
	}}, noFetch)
	require.True(t, ok)
	assert.Equal(t, bot.CallbackUploadZip, in.Callback)
	assert.Equal(t, int64(50), in.ChatID)
}

func TestToUpdateIgnoresUnsupported(t *testing.T) {
	_, ok := toUpdate(tgbotapi.Update{}, noFetch)
	assert.False(t, ok)

	_, ok = toUpdate(tgbotapi.Update{Message: &tgbotapi.Message{
		From:    &tgbotapi.User{ID: 5},
		Chat:    &tgbotapi.Chat{ID: 50},
		Sticker: &tgbotapi.Sticker{FileID: "s"},
	}}, noFetch)
	assert.False(t, ok)
}

func TestBuildMessage(t *testing.T) {
	msg := buildMessage(50, bot.Response{
		Text: "<b>hi</b>",
		Menu: [][]bot.Button{
			{{Text: "Open", URL: "https://host.example/s"}},
			{{Text: "Back", Data: bot.CallbackBackMenu}, {Text: "Cancel", Data: bot.CallbackCancel}},
		},
	})

	assert.Equal(t, int64(50), msg.ChatID)
	assert.Equal(t, tgbotapi.ModeHTML, msg.ParseMode)
	kb, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, kb.InlineKeyboard, 2)
	require.NotNil(t, kb.InlineKeyboard[0][0].URL)
	assert.Equal(t, "https://host.example/s", *kb.InlineKeyboard[0][0].URL)
	require.Len(t, kb.InlineKeyboard[1], 2)
	require.NotNil(t, kb.InlineKeyboard[1][1].CallbackData)
	assert.Equal(t, bot.CallbackCancel, *kb.InlineKeyboard[1][1].CallbackData)
}

func newTestAdapter(t *testing.T, out *fakeSender) *Adapter {
	t.Helper()
	client, err := hosting.NewClient(context.Background(), hosting.Config{BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)
	svc := deploy.NewService(session.NewMemoryStore(), client, repositories.NewMemoryDeploymentStore(), deploy.NewAdminSet())
	return &Adapter{
		out:        out,
		router:     bot.NewRouter(svc),
		dispatcher: bot.NewDispatcher(),
		httpClient: http.DefaultClient,
	}
}

func TestHandleSendsReplyAndAnswersCallback(t *testing.T) {
	out := &fakeSender{}
	a := newTestAdapter(t, out)

	upd := tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb-1",
		From:    &tgbotapi.User{ID: 5},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 50}},
		Data:    bot.CallbackHelp,
	}}
	in, ok := toUpdate(upd, a.fetcher)
	require.True(t, ok)
	a.handle(context.Background(), upd, in)

	require.Len(t, out.requested, 1)
	cb := out.requested[0].(tgbotapi.CallbackConfig)
	assert.Equal(t, "cb-1", cb.CallbackQueryID)

	require.Len(t, out.sent, 1)
	msg := out.sent[0].(tgbotapi.MessageConfig)
	assert.Contains(t, msg.Text, "How it works")
}

func TestHandleNoticeOnlyDoesNotSendMessage(t *testing.T) {
	out := &fakeSender{}
	a := newTestAdapter(t, out)

	upd := tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb-2",
		From:    &tgbotapi.User{ID: 5},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 50}},
		Data:    bot.CallbackAdminPanel,
	}}
	in, _ := toUpdate(upd, a.fetcher)
	a.handle(context.Background(), upd, in)

	require.Len(t, out.requested, 1)
	assert.Equal(t, "⛔ Not allowed.", out.requested[0].(tgbotapi.CallbackConfig).Text)
	assert.Empty(t, out.sent)
}

func TestFetcherDownloadsFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("zip-bytes"))
	}))
	t.Cleanup(srv.Close)

	out := &fakeSender{fileURL: srv.URL + "/file/bot123/doc.zip"}
	a := newTestAdapter(t, out)

	data, err := a.fetcher("file-1")(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "zip-bytes", string(data))
}
