// Package game holds per-user chess sessions: a stored move record that is
// replayed into a rules-library game, plus the tap-to-move selection state.
package game

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	nchess "github.com/corentings/chess/v2"
	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("chess session not found")
	ErrInvalidMove     = errors.New("invalid chess move")
	ErrGameOver        = errors.New("chess game already finished")
)

// Record is the stored shape of a session. One record per user; creating a
// new game replaces the record wholesale, so selection and board-message
// state never survive a restart of the game.
type Record struct {
	UserID         int64     `json:"user_id"`
	ChatID         int64     `json:"chat_id"`
	SessionUUID    string    `json:"session_uuid"`
	Moves          []string  `json:"moves"`
	SelectedSquare string    `json:"selected_square,omitempty"`
	BoardMessageID int       `json:"board_message_id,omitempty"`
	StartedAt      time.Time `json:"started_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func NewRecord(userID, chatID int64) *Record {
	now := time.Now()
	return &Record{
		UserID:      userID,
		ChatID:      chatID,
		SessionUUID: uuid.NewString(),
		Moves:       []string{},
		StartedAt:   now,
		UpdatedAt:   now,
	}
}

// Session is a Record hydrated into a playable game. The human always plays
// White and moves first.
type Session struct {
	Record *Record
	game   *nchess.Game
}

// Replay rebuilds the rules-library game from the record's UCI move list.
func Replay(rec *Record) (*Session, error) {
	if rec == nil {
		return nil, ErrSessionNotFound
	}
	g := nchess.NewGame()
	notation := nchess.UCINotation{}
	for _, mv := range rec.Moves {
		move, err := notation.Decode(g.Position(), strings.ToLower(strings.TrimSpace(mv)))
		if err != nil {
			return nil, fmt.Errorf("decode move %s: %w", mv, err)
		}
		if err := g.Move(move, nil); err != nil {
			return nil, fmt.Errorf("apply move %s: %w", mv, err)
		}
	}
	return &Session{Record: rec, game: g}, nil
}

func (s *Session) FEN() string {
	return s.game.FEN()
}

func (s *Session) Over() bool {
	return s.game.Outcome() != nchess.NoOutcome
}

// PlayerTurn reports whether the human (White) is to move.
func (s *Session) PlayerTurn() bool {
	return s.game.Position().Turn() == nchess.White
}

// ApplyMove plays the user's move given in SAN or coordinate notation.
// Returns the move in both notations. The record's selection is cleared on
// every attempt, accepted or not.
func (s *Session) ApplyMove(token string) (san, uciMove string, err error) {
	s.Record.SelectedSquare = ""

	text := strings.TrimSpace(token)
	if text == "" {
		return "", "", ErrInvalidMove
	}
	if s.Over() {
		return "", "", ErrGameOver
	}

	notationSAN := nchess.AlgebraicNotation{}
	notationUCI := nchess.UCINotation{}
	pos := s.game.Position()

	move, decodeErr := notationSAN.Decode(pos, text)
	if decodeErr != nil {
		move, decodeErr = notationUCI.Decode(pos, strings.ToLower(text))
		if decodeErr != nil {
			return "", "", ErrInvalidMove
		}
	}
	if err := s.game.Move(move, nil); err != nil {
		return "", "", ErrInvalidMove
	}

	san = notationSAN.Encode(pos, move)
	uciMove = strings.ToLower(notationUCI.Encode(pos, move))
	s.Record.Moves = append(s.Record.Moves, uciMove)
	s.Record.UpdatedAt = time.Now()
	return san, uciMove, nil
}

// ApplyEngineMove plays the engine's reply given in coordinate notation.
func (s *Session) ApplyEngineMove(uciMove string) (san string, err error) {
	if s.Over() {
		return "", ErrGameOver
	}
	notationUCI := nchess.UCINotation{}
	pos := s.game.Position()
	move, err := notationUCI.Decode(pos, strings.ToLower(strings.TrimSpace(uciMove)))
	if err != nil {
		return "", fmt.Errorf("decode engine move: %w", err)
	}
	if err := s.game.Move(move, nil); err != nil {
		return "", fmt.Errorf("apply engine move: %w", err)
	}
	san = nchess.AlgebraicNotation{}.Encode(pos, move)
	s.Record.Moves = append(s.Record.Moves, strings.ToLower(uciMove))
	s.Record.UpdatedAt = time.Now()
	return san, nil
}

// RandomReply picks a uniformly random legal move for the side to move,
// used when no engine process is available.
func (s *Session) RandomReply(rng *rand.Rand) (string, error) {
	if s.Over() {
		return "", ErrGameOver
	}
	moves := s.game.ValidMoves()
	if len(moves) == 0 {
		return "", ErrGameOver
	}
	mv := moves[rng.Intn(len(moves))]
	return strings.ToLower(nchess.UCINotation{}.Encode(s.game.Position(), &mv)), nil
}

// TapResult describes the outcome of one keyboard tap.
type TapResult int

const (
	TapSelected TapResult = iota
	TapNoPiece
	TapCancelled
	TapMove
)

// TapSquare implements the two-phase tap-to-move flow. The first tap selects
// one of the player's own pieces; tapping the selected square again cancels;
// a second tap elsewhere produces a coordinate move token for ApplyMove.
func (s *Session) TapSquare(square string) (TapResult, string) {
	square = strings.ToLower(strings.TrimSpace(square))
	sq, ok := parseSquare(square)
	if !ok {
		return TapNoPiece, ""
	}

	if s.Record.SelectedSquare == "" {
		piece := s.game.Position().Board().Piece(sq)
		if piece == nchess.NoPiece || piece.Color() != nchess.White {
			return TapNoPiece, ""
		}
		s.Record.SelectedSquare = square
		return TapSelected, square
	}

	if s.Record.SelectedSquare == square {
		s.Record.SelectedSquare = ""
		return TapCancelled, ""
	}

	token := s.Record.SelectedSquare + square
	if needsPromotion(s.game.Position(), s.Record.SelectedSquare, square) {
		token += "q"
	}
	return TapMove, token
}

// StatusKey returns the message-catalog key describing the current game
// state, plus the winner's side key for checkmate captions.
func (s *Session) StatusKey() (key string, winner string) {
	switch s.game.Method() {
	case nchess.Checkmate:
		// side to move is the one mated
		if s.game.Position().Turn() == nchess.Black {
			return "status.checkmate", "status.white"
		}
		return "status.checkmate", "status.black"
	case nchess.Stalemate:
		return "status.stalemate", ""
	case nchess.InsufficientMaterial:
		return "status.insufficient", ""
	}
	if s.Over() {
		return "status.stalemate", ""
	}
	if s.inCheck() {
		return "status.check", ""
	}
	if s.PlayerTurn() {
		return "status.turn_player", ""
	}
	return "status.turn_engine", ""
}

// inCheck derives check from the SAN of the last move; the notation encoder
// appends "+" for checking moves.
func (s *Session) inCheck() bool {
	moves := s.game.Moves()
	positions := s.game.Positions()
	if len(moves) == 0 || len(positions) < len(moves) {
		return false
	}
	last := moves[len(moves)-1]
	san := nchess.AlgebraicNotation{}.Encode(positions[len(moves)-1], last)
	return strings.HasSuffix(san, "+")
}

func parseSquare(s string) (nchess.Square, bool) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return 0, false
	}
	return nchess.NewSquare(nchess.File(s[0]-'a'), nchess.Rank(s[1]-'1')), true
}

func needsPromotion(pos *nchess.Position, from, to string) bool {
	sq, ok := parseSquare(from)
	if !ok || len(to) != 2 {
		return false
	}
	piece := pos.Board().Piece(sq)
	if piece == nchess.NoPiece || piece.Type() != nchess.Pawn {
		return false
	}
	return to[1] == '8' || to[1] == '1'
}
