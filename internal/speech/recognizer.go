package speech

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

var ErrNoSpeech = errors.New("speech: nothing recognized")

// Recognizer transcribes a WAV file in a given locale.
type Recognizer interface {
	Recognize(ctx context.Context, wavPath, locale string) (string, error)
}

// WhisperRecognizer transcribes audio through the OpenAI-compatible
// transcription endpoint.
type WhisperRecognizer struct {
	client *openai.Client
}

func NewWhisperRecognizer(apiKey, baseURL string) *WhisperRecognizer {
	cfg := openai.DefaultConfig(apiKey)
	if strings.TrimSpace(baseURL) != "" {
		cfg.BaseURL = baseURL
	}
	return &WhisperRecognizer{client: openai.NewClientWithConfig(cfg)}
}

func (r *WhisperRecognizer) Recognize(ctx context.Context, wavPath, locale string) (string, error) {
	resp, err := r.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: wavPath,
		Language: normalizeLocale(locale),
	})
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", ErrNoSpeech
	}
	return text, nil
}

// RecognizeAny tries each locale in order and returns the first
// non-empty transcript. Service errors abort immediately, an empty
// result falls through to the next locale.
func RecognizeAny(ctx context.Context, rec Recognizer, wavPath string, locales []string) (string, error) {
	if len(locales) == 0 {
		locales = []string{"tr", "en"}
	}
	for _, locale := range locales {
		text, err := rec.Recognize(ctx, wavPath, locale)
		if err != nil {
			if errors.Is(err, ErrNoSpeech) {
				continue
			}
			return "", err
		}
		return text, nil
	}
	return "", ErrNoSpeech
}

// normalizeLocale maps BCP-47 style tags like "tr-TR" down to the
// bare language code the transcription API expects.
func normalizeLocale(locale string) string {
	locale = strings.TrimSpace(locale)
	if i := strings.IndexAny(locale, "-_"); i > 0 {
		locale = locale[:i]
	}
	return strings.ToLower(locale)
}
