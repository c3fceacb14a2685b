package telegram

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/iamhajemi/lichesstelegrammbot/internal/engine"
	"github.com/iamhajemi/lichesstelegrammbot/internal/game"
	"github.com/iamhajemi/lichesstelegrammbot/internal/obslog"
	"github.com/iamhajemi/lichesstelegrammbot/internal/speech"
	"github.com/iamhajemi/lichesstelegrammbot/internal/voice"
)

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		name := strings.TrimSpace(msg.From.FirstName)
		if name == "" {
			name = msg.From.UserName
		}
		b.reply(msg.Chat.ID, "start.welcome", map[string]any{"Name": name})
	case "help":
		b.reply(msg.Chat.ID, "help.text", nil)
	case "newgame":
		b.handleNewGame(ctx, msg)
	case "move":
		b.handleMove(ctx, msg)
	default:
		b.reply(msg.Chat.ID, "text.help_hint", nil)
	}
}

func (b *Bot) handleNewGame(ctx context.Context, msg *tgbotapi.Message) {
	rec := game.NewRecord(msg.From.ID, msg.Chat.ID)
	sess, err := game.Replay(rec)
	if err != nil {
		obslog.L().Error("new game", zap.Error(err))
		b.reply(msg.Chat.ID, "newgame.failed", nil)
		return
	}

	if err := b.sendBoard(ctx, rec, sess, b.cat.MustRender("newgame.caption", nil)); err != nil {
		b.reply(msg.Chat.ID, "newgame.failed", nil)
		return
	}
	if err := b.store.Put(ctx, rec); err != nil {
		obslog.L().Error("store session", zap.Int64("user_id", rec.UserID), zap.Error(err))
		b.reply(msg.Chat.ID, "common.error", nil)
	}
}

func (b *Bot) handleMove(ctx context.Context, msg *tgbotapi.Message) {
	token := strings.TrimSpace(msg.CommandArguments())
	if token == "" {
		b.reply(msg.Chat.ID, "move.usage", nil)
		return
	}

	rec, sess, ok := b.loadSession(ctx, msg.From.ID, msg.Chat.ID, "move.no_session")
	if !ok {
		return
	}
	b.advance(ctx, rec, sess, token, "", b.cat.MustRender("move.invalid", nil))
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil {
		return
	}
	chatID := cq.Message.Chat.ID

	square, ok := squareFromCallback(cq.Data)
	if !ok {
		b.answerCallback(cq.ID, "")
		return
	}

	rec, err := b.store.Get(ctx, cq.From.ID)
	if err != nil {
		b.answerCallback(cq.ID, "")
		if errors.Is(err, game.ErrSessionNotFound) {
			b.reply(chatID, "tap.no_session", nil)
		} else {
			obslog.L().Error("load session", zap.Int64("user_id", cq.From.ID), zap.Error(err))
			b.reply(chatID, "common.error", nil)
		}
		return
	}
	sess, err := game.Replay(rec)
	if err != nil {
		b.answerCallback(cq.ID, "")
		obslog.L().Error("replay session", zap.Int64("user_id", cq.From.ID), zap.Error(err))
		b.reply(chatID, "common.error", nil)
		return
	}

	result, token := sess.TapSquare(square)
	switch result {
	case game.TapSelected:
		b.answerCallback(cq.ID, b.cat.MustRender("tap.selected", map[string]any{"Square": token}))
		b.putSession(ctx, rec)
	case game.TapNoPiece:
		b.answerCallback(cq.ID, b.cat.MustRender("tap.no_piece", nil))
	case game.TapCancelled:
		b.answerCallback(cq.ID, b.cat.MustRender("tap.cancelled", nil))
		b.putSession(ctx, rec)
	case game.TapMove:
		b.answerCallback(cq.ID, "")
		b.advance(ctx, rec, sess, token, "", b.cat.MustRender("tap.illegal", nil))
	}
}

func (b *Bot) handleVoice(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	if b.transcoder == nil || b.recognizer == nil || b.downloader == nil {
		b.reply(chatID, "voice.service_unavailable", nil)
		return
	}

	fileID := ""
	switch {
	case msg.Voice != nil:
		fileID = msg.Voice.FileID
	case msg.Audio != nil:
		fileID = msg.Audio.FileID
	}
	if fileID == "" {
		b.reply(chatID, "voice.no_audio", nil)
		return
	}

	transcript, ok := b.transcribe(ctx, chatID, fileID)
	if !ok {
		return
	}

	token, ok := voice.MoveFromTranscript(transcript)
	if !ok {
		b.reply(chatID, "voice.no_move", map[string]any{"Transcript": transcript})
		return
	}

	rec, sess, ok := b.loadSession(ctx, msg.From.ID, chatID, "move.no_session")
	if !ok {
		return
	}
	prefix := b.cat.MustRender("voice.caption_prefix", map[string]any{"Transcript": transcript})
	invalid := b.cat.MustRender("voice.invalid_move", map[string]any{"Transcript": transcript})
	b.advance(ctx, rec, sess, token, prefix+"\n", invalid)
}

// transcribe downloads the audio, transcodes it to WAV and runs speech
// recognition, reporting every failure to the chat. Temp files are
// removed before returning.
func (b *Bot) transcribe(ctx context.Context, chatID int64, fileID string) (string, bool) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		obslog.L().Warn("get file", zap.Error(err))
		b.reply(chatID, "voice.download_failed", nil)
		return "", false
	}
	data, err := b.downloader.Download(ctx, file.Link(b.api.Token))
	if err != nil {
		obslog.L().Warn("download voice", zap.Error(err))
		b.reply(chatID, "voice.download_failed", nil)
		return "", false
	}

	src, err := os.CreateTemp("", "voice-*.oga")
	if err != nil {
		obslog.L().Error("temp file", zap.Error(err))
		b.reply(chatID, "common.error", nil)
		return "", false
	}
	srcPath := src.Name()
	defer os.Remove(srcPath)
	if _, err := src.Write(data); err != nil {
		src.Close()
		obslog.L().Error("write temp file", zap.Error(err))
		b.reply(chatID, "common.error", nil)
		return "", false
	}
	src.Close()

	wavPath := srcPath + ".wav"
	defer os.Remove(wavPath)
	if err := b.transcoder.ToWAV(ctx, srcPath, wavPath); err != nil {
		if errors.Is(err, speech.ErrTranscoderMissing) {
			b.reply(chatID, "voice.transcoder_missing", nil)
		} else {
			obslog.L().Warn("transcode voice", zap.Error(err))
			b.reply(chatID, "voice.transcode_failed", nil)
		}
		return "", false
	}

	transcript, err := speech.RecognizeAny(ctx, b.recognizer, wavPath, b.locales)
	if err != nil {
		if errors.Is(err, speech.ErrNoSpeech) {
			b.reply(chatID, "voice.not_understood", nil)
		} else {
			obslog.L().Warn("speech recognition", zap.Error(err))
			b.reply(chatID, "voice.service_unavailable", nil)
		}
		return "", false
	}
	return transcript, true
}

func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message) {
	text := strings.ToLower(msg.Text)
	if strings.Contains(text, "satranç") || strings.Contains(text, "satranc") || strings.Contains(text, "chess") {
		b.reply(msg.Chat.ID, "text.chess_hint", nil)
		return
	}
	b.reply(msg.Chat.ID, "text.help_hint", nil)
}

// advance plays the user's move, lets the engine answer, persists the
// session and posts the refreshed board. invalidMsg is the already
// rendered text sent when the token does not decode to a legal move.
func (b *Bot) advance(ctx context.Context, rec *game.Record, sess *game.Session, token, captionPrefix, invalidMsg string) {
	chatID := rec.ChatID

	playerSAN, _, err := sess.ApplyMove(token)
	if err != nil {
		switch {
		case errors.Is(err, game.ErrGameOver):
			b.reply(chatID, "move.no_session", nil)
		case errors.Is(err, game.ErrInvalidMove):
			b.sendText(chatID, invalidMsg)
			b.putSession(ctx, rec)
		default:
			obslog.L().Error("apply move", zap.Error(err))
			b.reply(chatID, "common.error", nil)
		}
		return
	}

	engineSAN := ""
	if !sess.Over() {
		engineSAN, err = b.engineReply(ctx, sess)
		if err != nil {
			obslog.L().Error("engine reply", zap.Error(err))
			b.reply(chatID, "common.error", nil)
			b.putSession(ctx, rec)
			return
		}
	}

	caption := captionPrefix + b.cat.MustRender("move.caption", map[string]any{
		"Player": playerSAN,
		"Engine": engineSAN,
	})
	caption += "\n" + b.statusLine(sess)

	if sess.Over() {
		if err := b.store.Remove(ctx, rec.UserID); err != nil {
			obslog.L().Warn("remove session", zap.Int64("user_id", rec.UserID), zap.Error(err))
		}
	} else {
		b.putSession(ctx, rec)
	}

	if err := b.sendBoard(ctx, rec, sess, caption); err != nil {
		b.reply(chatID, "board.render_failed", nil)
		return
	}
	if !sess.Over() {
		// BoardMessageID changed inside sendBoard.
		b.putSession(ctx, rec)
	}
}

// engineReply asks the engine for the reply move and plays it. When
// the engine is down a random legal move keeps the game going.
func (b *Bot) engineReply(ctx context.Context, sess *game.Session) (string, error) {
	if b.engine != nil {
		searchCtx, cancel := context.WithTimeout(ctx, b.engine.Budget()+5*time.Second)
		uci, err := b.engine.BestMove(searchCtx, sess.Record.Moves)
		cancel()
		if err == nil {
			return sess.ApplyEngineMove(uci)
		}
		if !errors.Is(err, engine.ErrUnavailable) {
			obslog.L().Warn("engine search failed, playing random move", zap.Error(err))
		}
	}
	uci, err := b.randomMove(sess)
	if err != nil {
		return "", fmt.Errorf("random reply: %w", err)
	}
	return sess.ApplyEngineMove(uci)
}

func (b *Bot) statusLine(sess *game.Session) string {
	key, winnerKey := sess.StatusKey()
	if winnerKey != "" {
		winner := b.cat.MustRender(winnerKey, nil)
		return b.cat.MustRender(key, map[string]any{"Winner": winner})
	}
	return b.cat.MustRender(key, nil)
}

// sendBoard posts a fresh board photo with the tap keyboard and removes
// the previous board message so the chat shows a single live board.
func (b *Bot) sendBoard(ctx context.Context, rec *game.Record, sess *game.Session, caption string) error {
	img, err := b.renderer.Render(ctx, sess.FEN())
	if err != nil {
		obslog.L().Warn("render board", zap.Error(err))
		return err
	}

	photo := tgbotapi.NewPhoto(rec.ChatID, tgbotapi.FileBytes{Name: "board.gif", Bytes: img})
	photo.Caption = caption
	if !sess.Over() {
		photo.ReplyMarkup = BoardKeyboard()
	}
	sent, err := b.api.Send(photo)
	if err != nil {
		obslog.L().Warn("send board", zap.Int64("chat_id", rec.ChatID), zap.Error(err))
		return err
	}

	if rec.BoardMessageID != 0 {
		if _, err := b.api.Request(tgbotapi.NewDeleteMessage(rec.ChatID, rec.BoardMessageID)); err != nil {
			obslog.L().Debug("delete old board", zap.Error(err))
		}
	}
	rec.BoardMessageID = sent.MessageID
	return nil
}

func (b *Bot) loadSession(ctx context.Context, userID, chatID int64, missingKey string) (*game.Record, *game.Session, bool) {
	rec, err := b.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, game.ErrSessionNotFound) {
			b.reply(chatID, missingKey, nil)
		} else {
			obslog.L().Error("load session", zap.Int64("user_id", userID), zap.Error(err))
			b.reply(chatID, "common.error", nil)
		}
		return nil, nil, false
	}
	sess, err := game.Replay(rec)
	if err != nil {
		obslog.L().Error("replay session", zap.Int64("user_id", userID), zap.Error(err))
		b.reply(chatID, "common.error", nil)
		return nil, nil, false
	}
	return rec, sess, true
}

func (b *Bot) putSession(ctx context.Context, rec *game.Record) {
	if err := b.store.Put(ctx, rec); err != nil {
		obslog.L().Error("store session", zap.Int64("user_id", rec.UserID), zap.Error(err))
	}
}

func (b *Bot) answerCallback(id, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(id, text)); err != nil {
		obslog.L().Debug("answer callback", zap.Error(err))
	}
}
