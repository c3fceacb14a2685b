// Package botbuilder wires configuration into a ready-to-run bot:
// Telegram client, session store, engine, renderer and speech stack.
package botbuilder

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iamhajemi/lichesstelegrammbot/internal/config"
	"github.com/iamhajemi/lichesstelegrammbot/internal/engine"
	"github.com/iamhajemi/lichesstelegrammbot/internal/game"
	"github.com/iamhajemi/lichesstelegrammbot/internal/msgcat"
	"github.com/iamhajemi/lichesstelegrammbot/internal/render"
	"github.com/iamhajemi/lichesstelegrammbot/internal/speech"
	"github.com/iamhajemi/lichesstelegrammbot/internal/telegram"
)

type Deps struct {
	Bot    *telegram.Bot
	Engine *engine.Engine
	Redis  *redis.Client
}

// Close releases the long-lived resources owned by the dependency tree.
func (d *Deps) Close() {
	if d.Engine != nil {
		_ = d.Engine.Close()
	}
	if d.Redis != nil {
		_ = d.Redis.Close()
	}
}

func New(cfg *config.AppConfig, logger *zap.Logger) (*Deps, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("init telegram client: %w", err)
	}

	catalog, err := msgcat.New(cfg.MsgOverrideDir)
	if err != nil {
		return nil, fmt.Errorf("load message catalog: %w", err)
	}

	// Engine is optional: without a UCI binary the bot answers with
	// random legal moves.
	var eng *engine.Engine
	if strings.TrimSpace(cfg.StockfishPath) != "" {
		eng, err = engine.New(engine.Config{
			BinaryPath:     cfg.StockfishPath,
			MoveTimeMillis: cfg.EngineMoveTimeMS,
		})
		if err != nil {
			logger.Warn("engine unavailable, falling back to random moves",
				zap.String("path", cfg.StockfishPath), zap.Error(err))
			eng = nil
		}
	} else {
		logger.Warn("STOCKFISH_PATH not set, falling back to random moves")
	}

	// Session store: Redis when configured, in-process map otherwise.
	var store game.Store
	var rdb *redis.Client
	if strings.TrimSpace(cfg.RedisURL) != "" {
		opts, perr := redis.ParseURL(cfg.RedisURL)
		if perr != nil {
			return nil, fmt.Errorf("parse redis url: %w", perr)
		}
		rdb = redis.NewClient(opts)
		store = game.NewRedisStore(rdb, cfg.SessionTTL)
		logger.Info("using redis session store", zap.Duration("ttl", cfg.SessionTTL))
	} else {
		store = game.NewMemoryStore()
	}

	renderer := render.NewClient(cfg.BoardExportURL, cfg.BoardSize)

	var recognizer speech.Recognizer
	if strings.TrimSpace(cfg.SpeechAPIKey) != "" {
		recognizer = speech.NewWhisperRecognizer(cfg.SpeechAPIKey, cfg.SpeechBaseURL)
	} else {
		logger.Warn("SPEECH_API_KEY not set, voice messages disabled")
	}

	bot := telegram.New(telegram.Deps{
		API:        api,
		Catalog:    catalog,
		Store:      store,
		Engine:     eng,
		Renderer:   renderer,
		Downloader: renderer,
		Transcoder: speech.NewTranscoder(cfg.FFmpegPath),
		Recognizer: recognizer,
		Locales:    cfg.SpeechLocales,
	})

	return &Deps{Bot: bot, Engine: eng, Redis: rdb}, nil
}
