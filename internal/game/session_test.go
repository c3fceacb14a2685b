package game

import (
	"errors"
	"math/rand"
	"strings"
	"testing"
)

func newTestSession(t *testing.T, moves ...string) *Session {
	t.Helper()
	rec := NewRecord(1, 1)
	rec.Moves = append(rec.Moves, moves...)
	s, err := Replay(rec)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	return s
}

func TestReplayRebuildsPosition(t *testing.T) {
	s := newTestSession(t, "e2e4", "e7e5", "g1f3")
	if s.Over() {
		t.Fatal("game should not be over")
	}
	if s.PlayerTurn() {
		t.Fatal("after three plies it is Black's turn")
	}
	if !strings.Contains(s.FEN(), " b ") {
		t.Fatalf("FEN should show black to move: %s", s.FEN())
	}
}

func TestReplayRejectsBadMove(t *testing.T) {
	rec := NewRecord(1, 1)
	rec.Moves = []string{"e2e5"}
	if _, err := Replay(rec); err == nil {
		t.Fatal("expected error replaying illegal move")
	}
}

func TestApplyMoveSANAndUCI(t *testing.T) {
	s := newTestSession(t)
	san, uciMove, err := s.ApplyMove("e4")
	if err != nil {
		t.Fatalf("ApplyMove SAN: %v", err)
	}
	if san != "e4" || uciMove != "e2e4" {
		t.Fatalf("got san=%q uci=%q", san, uciMove)
	}
	if len(s.Record.Moves) != 1 || s.Record.Moves[0] != "e2e4" {
		t.Fatalf("record moves: %v", s.Record.Moves)
	}

	_, uciMove, err = s.ApplyMove("e7e5")
	if err != nil {
		t.Fatalf("ApplyMove UCI: %v", err)
	}
	if uciMove != "e7e5" {
		t.Fatalf("got uci=%q", uciMove)
	}
}

func TestApplyMoveInvalidLeavesStateUntouched(t *testing.T) {
	s := newTestSession(t)
	if _, _, err := s.ApplyMove("e5"); !errors.Is(err, ErrInvalidMove) {
		t.Fatalf("expected ErrInvalidMove, got %v", err)
	}
	if _, _, err := s.ApplyMove("zzz"); !errors.Is(err, ErrInvalidMove) {
		t.Fatalf("expected ErrInvalidMove, got %v", err)
	}
	if len(s.Record.Moves) != 0 {
		t.Fatalf("record mutated by invalid move: %v", s.Record.Moves)
	}
}

func TestApplyMoveClearsSelection(t *testing.T) {
	s := newTestSession(t)
	s.Record.SelectedSquare = "e2"
	if _, _, err := s.ApplyMove("zzz"); err == nil {
		t.Fatal("expected invalid move")
	}
	if s.Record.SelectedSquare != "" {
		t.Fatal("selection should be cleared on every attempt")
	}
}

func TestRandomReplyIsLegal(t *testing.T) {
	s := newTestSession(t, "e2e4")
	rng := rand.New(rand.NewSource(1))
	reply, err := s.RandomReply(rng)
	if err != nil {
		t.Fatalf("RandomReply: %v", err)
	}
	if _, err := s.ApplyEngineMove(reply); err != nil {
		t.Fatalf("random reply %q not applicable: %v", reply, err)
	}
	if len(s.Record.Moves) != 2 {
		t.Fatalf("record moves: %v", s.Record.Moves)
	}
}

func TestTapSquareSelectAndCancel(t *testing.T) {
	s := newTestSession(t)

	// empty square: nothing to select
	res, _ := s.TapSquare("e4")
	if res != TapNoPiece || s.Record.SelectedSquare != "" {
		t.Fatalf("empty square tap: res=%v selected=%q", res, s.Record.SelectedSquare)
	}

	// opponent piece: rejected
	res, _ = s.TapSquare("e7")
	if res != TapNoPiece || s.Record.SelectedSquare != "" {
		t.Fatalf("opponent tap: res=%v selected=%q", res, s.Record.SelectedSquare)
	}

	// own piece: selected
	res, sq := s.TapSquare("e2")
	if res != TapSelected || sq != "e2" || s.Record.SelectedSquare != "e2" {
		t.Fatalf("own piece tap: res=%v sq=%q selected=%q", res, sq, s.Record.SelectedSquare)
	}

	// same square again: cancel without board mutation
	res, _ = s.TapSquare("e2")
	if res != TapCancelled || s.Record.SelectedSquare != "" {
		t.Fatalf("cancel tap: res=%v selected=%q", res, s.Record.SelectedSquare)
	}
	if len(s.Record.Moves) != 0 {
		t.Fatalf("cancel mutated board: %v", s.Record.Moves)
	}
}

func TestTapSquareProducesMoveToken(t *testing.T) {
	s := newTestSession(t)
	if res, _ := s.TapSquare("e2"); res != TapSelected {
		t.Fatal("expected selection")
	}
	res, token := s.TapSquare("e4")
	if res != TapMove || token != "e2e4" {
		t.Fatalf("second tap: res=%v token=%q", res, token)
	}
	if _, _, err := s.ApplyMove(token); err != nil {
		t.Fatalf("ApplyMove(%q): %v", token, err)
	}
}

func TestStatusKeys(t *testing.T) {
	s := newTestSession(t)
	if key, _ := s.StatusKey(); key != "status.turn_player" {
		t.Fatalf("initial status: %q", key)
	}

	s = newTestSession(t, "e2e4")
	if key, _ := s.StatusKey(); key != "status.turn_engine" {
		t.Fatalf("after player move: %q", key)
	}

	// fool's mate: Black wins by checkmate
	s = newTestSession(t, "f2f3", "e7e5", "g2g4", "d8h4")
	if !s.Over() {
		t.Fatal("fool's mate should end the game")
	}
	key, winner := s.StatusKey()
	if key != "status.checkmate" || winner != "status.black" {
		t.Fatalf("checkmate status: key=%q winner=%q", key, winner)
	}
}

func TestStatusCheck(t *testing.T) {
	// 1.e4 f5 2.Qh5+ leaves Black in check
	s := newTestSession(t, "e2e4", "f7f5", "d1h5")
	key, _ := s.StatusKey()
	if key != "status.check" {
		t.Fatalf("expected check status, got %q", key)
	}
}
