package uci

import (
	"strings"
	"testing"
	"time"
)

func TestBuildPositionCommand(t *testing.T) {
	got := buildPositionCommand("", nil)
	if got != "position startpos\n" {
		t.Fatalf("empty fen: %q", got)
	}
	got = buildPositionCommand("startpos", []string{"e2e4", "e7e5"})
	if got != "position startpos moves e2e4 e7e5\n" {
		t.Fatalf("startpos with moves: %q", got)
	}
	got = buildPositionCommand("8/8/8/8/8/8/8/K6k w - - 0 1", []string{"a1a2"})
	if !strings.HasPrefix(got, "position fen 8/8/8/8/8/8/8/K6k w - - 0 1") || !strings.Contains(got, "moves a1a2") {
		t.Fatalf("fen with moves: %q", got)
	}
}

func TestBuildGoCommand(t *testing.T) {
	got, err := buildGoCommand(2000)
	if err != nil {
		t.Fatalf("buildGoCommand: %v", err)
	}
	if got != "go movetime 2000" {
		t.Fatalf("got %q", got)
	}
	if _, err := buildGoCommand(0); err == nil {
		t.Fatal("expected error for zero budget")
	}
}

func TestComputeSearchTimeout(t *testing.T) {
	if d := computeSearchTimeout(2000); d != 4*time.Second {
		t.Fatalf("timeout for 2000ms budget = %v", d)
	}
	if d := computeSearchTimeout(0); d != 6*time.Second {
		t.Fatalf("fallback timeout = %v", d)
	}
}

func TestParseBestMove(t *testing.T) {
	if mv, ok := parseBestMove("bestmove e2e4 ponder e7e5"); !ok || mv != "e2e4" {
		t.Fatalf("bestmove with ponder: %q %v", mv, ok)
	}
	if mv, ok := parseBestMove("bestmove g1f3"); !ok || mv != "g1f3" {
		t.Fatalf("plain bestmove: %q %v", mv, ok)
	}
	if _, ok := parseBestMove("info depth 10 score cp 34 pv e2e4"); ok {
		t.Fatal("info line should not parse as bestmove")
	}
	if mv, ok := parseBestMove("bestmove"); !ok || mv != "" {
		t.Fatalf("truncated bestmove: %q %v", mv, ok)
	}
}
