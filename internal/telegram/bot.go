// Package telegram adapts the chess game engine to the Telegram Bot API:
// commands, inline-keyboard taps and voice messages all funnel into the
// same move pipeline.
package telegram

import (
	"context"
	"math/rand"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/iamhajemi/lichesstelegrammbot/internal/engine"
	"github.com/iamhajemi/lichesstelegrammbot/internal/game"
	"github.com/iamhajemi/lichesstelegrammbot/internal/msgcat"
	"github.com/iamhajemi/lichesstelegrammbot/internal/obslog"
	"github.com/iamhajemi/lichesstelegrammbot/internal/render"
	"github.com/iamhajemi/lichesstelegrammbot/internal/speech"
)

// Downloader fetches attachment bytes from Telegram's file CDN.
type Downloader interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

// Deps carries everything a running bot needs. Engine may be nil, in
// which case replies fall back to random legal moves. Transcoder and
// Recognizer may be nil, disabling voice input.
type Deps struct {
	API        *tgbotapi.BotAPI
	Catalog    *msgcat.Catalog
	Store      game.Store
	Engine     *engine.Engine
	Renderer   render.Renderer
	Downloader Downloader
	Transcoder *speech.Transcoder
	Recognizer speech.Recognizer
	Locales    []string
}

type Bot struct {
	api        *tgbotapi.BotAPI
	cat        *msgcat.Catalog
	store      game.Store
	engine     *engine.Engine
	renderer   render.Renderer
	downloader Downloader
	transcoder *speech.Transcoder
	recognizer speech.Recognizer
	locales    []string

	rngMu sync.Mutex
	rng   *rand.Rand

	guard  sync.Mutex
	userMu map[int64]*sync.Mutex

	wg sync.WaitGroup
}

func New(deps Deps) *Bot {
	return &Bot{
		api:        deps.API,
		cat:        deps.Catalog,
		store:      deps.Store,
		engine:     deps.Engine,
		renderer:   deps.Renderer,
		downloader: deps.Downloader,
		transcoder: deps.Transcoder,
		recognizer: deps.Recognizer,
		locales:    deps.Locales,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		userMu:     make(map[int64]*sync.Mutex),
	}
}

// Run consumes updates until ctx is cancelled. Updates for different
// users are handled concurrently; updates for the same user run in
// arrival order.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	obslog.L().Info("bot started", zap.String("username", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.wg.Wait()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				b.wg.Wait()
				return nil
			}
			b.wg.Add(1)
			go func(update tgbotapi.Update) {
				defer b.wg.Done()
				b.dispatch(ctx, update)
			}(update)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	userID, ok := updateUserID(update)
	if !ok {
		return
	}

	unlock := b.lockUser(userID)
	defer unlock()

	defer func() {
		if r := recover(); r != nil {
			obslog.L().Error("handler panic",
				zap.Int64("user_id", userID),
				zap.Any("panic", r),
				zap.Stack("stack"))
			if chatID, ok := updateChatID(update); ok {
				b.reply(chatID, "common.error", nil)
			}
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	case update.Message != nil && (update.Message.Voice != nil || update.Message.Audio != nil):
		b.handleVoice(ctx, update.Message)
	case update.Message != nil && update.Message.Text != "":
		b.handleText(ctx, update.Message)
	}
}

func (b *Bot) lockUser(userID int64) func() {
	b.guard.Lock()
	mu, ok := b.userMu[userID]
	if !ok {
		mu = &sync.Mutex{}
		b.userMu[userID] = mu
	}
	b.guard.Unlock()
	mu.Lock()
	return mu.Unlock
}

func (b *Bot) randomMove(s *game.Session) (string, error) {
	b.rngMu.Lock()
	defer b.rngMu.Unlock()
	return s.RandomReply(b.rng)
}

// reply renders a catalog message and sends it as plain text.
func (b *Bot) reply(chatID int64, key string, data any) {
	b.sendText(chatID, b.cat.MustRender(key, data))
}

func (b *Bot) sendText(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		obslog.L().Warn("send message failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func updateUserID(update tgbotapi.Update) (int64, bool) {
	if update.CallbackQuery != nil && update.CallbackQuery.From != nil {
		return update.CallbackQuery.From.ID, true
	}
	if update.Message != nil && update.Message.From != nil {
		return update.Message.From.ID, true
	}
	return 0, false
}

func updateChatID(update tgbotapi.Update) (int64, bool) {
	if update.CallbackQuery != nil && update.CallbackQuery.Message != nil {
		return update.CallbackQuery.Message.Chat.ID, true
	}
	if update.Message != nil {
		return update.Message.Chat.ID, true
	}
	return 0, false
}
