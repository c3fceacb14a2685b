package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	BotToken    string
	BotUsername string

	StockfishPath    string
	EngineMoveTimeMS int

	BoardExportURL string
	BoardSize      int

	FFmpegPath string

	SpeechAPIKey  string
	SpeechBaseURL string
	SpeechLocales []string

	RedisURL   string
	SessionTTL time.Duration

	MsgOverrideDir string
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		EngineMoveTimeMS: 2000,
		BoardExportURL:   "https://lichess1.org/export/fen.gif",
		BoardSize:        8,
		FFmpegPath:       "ffmpeg",
		SpeechLocales:    []string{"tr", "en"},
		SessionTTL:       time.Hour,
	}

	cfg.BotToken = strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))
	cfg.BotUsername = strings.TrimSpace(os.Getenv("TELEGRAM_BOT_USERNAME"))

	cfg.StockfishPath = strings.TrimSpace(os.Getenv("STOCKFISH_PATH"))
	if v := strings.TrimSpace(os.Getenv("ENGINE_MOVE_TIME_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.EngineMoveTimeMS = n
		}
	}

	if v := strings.TrimSpace(os.Getenv("BOARD_EXPORT_URL")); v != "" {
		cfg.BoardExportURL = v
	}
	if v := strings.TrimSpace(os.Getenv("BOARD_SIZE")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.BoardSize = n
		}
	}

	if v := strings.TrimSpace(os.Getenv("FFMPEG_PATH")); v != "" {
		cfg.FFmpegPath = v
	}

	cfg.SpeechAPIKey = strings.TrimSpace(os.Getenv("SPEECH_API_KEY"))
	cfg.SpeechBaseURL = strings.TrimSpace(os.Getenv("SPEECH_BASE_URL"))
	if v := strings.TrimSpace(os.Getenv("SPEECH_LOCALES")); v != "" {
		var locales []string
		for _, p := range strings.Split(v, ",") {
			if s := strings.TrimSpace(p); s != "" {
				locales = append(locales, s)
			}
		}
		if len(locales) > 0 {
			cfg.SpeechLocales = locales
		}
	}

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	if v := strings.TrimSpace(os.Getenv("SESSION_TTL")); v != "" { // duration like 30m, or bare seconds
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.SessionTTL = d
		} else if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SessionTTL = time.Duration(n) * time.Second
		}
	}

	cfg.MsgOverrideDir = strings.TrimSpace(os.Getenv("MSG_OVERRIDE_DIR"))

	if cfg.BotToken == "" {
		return nil, errors.New("TELEGRAM_BOT_TOKEN is required")
	}
	if cfg.BotUsername == "" {
		return nil, errors.New("TELEGRAM_BOT_USERNAME is required")
	}

	return cfg, nil
}
