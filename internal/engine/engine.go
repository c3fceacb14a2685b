// Package engine wraps an external UCI engine process behind a best-move
// query with a fixed thinking-time budget.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iamhajemi/lichesstelegrammbot/internal/engine/uci"
)

var ErrUnavailable = errors.New("chess engine unavailable")

type Config struct {
	BinaryPath     string
	MoveTimeMillis int
	Threads        int
	HashMB         int
}

type Engine struct {
	pool           *uci.Pool
	moveTimeMillis int
}

// New starts an engine pool for the configured binary. The caller is expected
// to have verified the binary exists; a missing or broken binary surfaces as
// an error here so the builder can degrade to the random-move fallback.
func New(cfg Config) (*Engine, error) {
	if strings.TrimSpace(cfg.BinaryPath) == "" {
		return nil, ErrUnavailable
	}
	pool, err := uci.NewPool(uci.PoolConfig{
		BinaryPath: cfg.BinaryPath,
		Options:    uci.Options{Threads: cfg.Threads, HashMB: cfg.HashMB},
	})
	if err != nil {
		return nil, err
	}
	budget := cfg.MoveTimeMillis
	if budget <= 0 {
		budget = 2000
	}
	return &Engine{pool: pool, moveTimeMillis: budget}, nil
}

// BestMove returns the engine's reply in UCI notation for the game reached by
// playing moves from the starting position.
func (e *Engine) BestMove(ctx context.Context, moves []string) (string, error) {
	if e == nil || e.pool == nil {
		return "", ErrUnavailable
	}

	session, err := e.pool.Acquire(ctx)
	if err != nil {
		return "", fmt.Errorf("acquire engine session: %w", err)
	}
	var searchErr error
	defer func() {
		e.pool.Release(session, searchErr)
	}()

	if searchErr = session.NewGame(ctx); searchErr != nil {
		return "", searchErr
	}

	move, err := session.Search(ctx, uci.SearchRequest{
		FEN:            "startpos",
		Moves:          moves,
		MoveTimeMillis: e.moveTimeMillis,
	})
	if err != nil {
		searchErr = err
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(move)), nil
}

// Budget reports the configured per-move thinking time.
func (e *Engine) Budget() time.Duration {
	if e == nil {
		return 0
	}
	return time.Duration(e.moveTimeMillis) * time.Millisecond
}

func (e *Engine) Close() error {
	if e == nil || e.pool == nil {
		return nil
	}
	return e.pool.Close()
}
