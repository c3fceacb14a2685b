package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	callbackSquarePrefix = "square_"

	// Telegram rejects empty button labels, so every square carries a
	// zero-width space instead.
	blankLabel = "​"
)

// BoardKeyboard builds the 8x8 tap grid overlaying the board image.
// Rows run rank 8 down to rank 1 so buttons line up with the rendered
// image, which is drawn from White's side.
func BoardKeyboard() tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, 8)
	for rank := '8'; rank >= '1'; rank-- {
		row := make([]tgbotapi.InlineKeyboardButton, 0, 8)
		for file := 'a'; file <= 'h'; file++ {
			square := string(file) + string(rank)
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(blankLabel, callbackSquarePrefix+square))
		}
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// squareFromCallback extracts the square name from callback data like
// "square_e2". Returns false for anything else.
func squareFromCallback(data string) (string, bool) {
	if len(data) != len(callbackSquarePrefix)+2 || data[:len(callbackSquarePrefix)] != callbackSquarePrefix {
		return "", false
	}
	sq := data[len(callbackSquarePrefix):]
	if sq[0] < 'a' || sq[0] > 'h' || sq[1] < '1' || sq[1] > '8' {
		return "", false
	}
	return sq, true
}
