package tetris

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/progate-hackathon-strawberry-flavor/GITRIS-engine/internal/models/tetris"
)

func newLoopConfig() Config {
	cfg := DefaultConfig()
	cfg.FrameInterval = time.Millisecond
	cfg.GravityInterval = time.Millisecond
	cfg.Generator = NewSequenceGenerator(tetris.KindO)
	return cfg
}

func TestRun_EndsOnGameOver(t *testing.T) {
	cfg := newLoopConfig()
	cfg.Rows, cfg.Cols = 4, 4
	cfg.SpawnX, cfg.SpawnY = 0, -2

	rec := &recorder{}
	e, err := NewEngine(cfg, rec)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = e.Run(ctx, nil)
	assert.NoError(t, err)
	assert.Equal(t, StateGameOver, e.State())
	assert.Equal(t, 1, rec.gameOvers)
}

func TestRun_StopsOnCancel(t *testing.T) {
	cfg := newLoopConfig()
	cfg.GravityInterval = time.Hour

	e, err := NewEngine(cfg, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx, make(chan Command)) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_ProcessesCommands(t *testing.T) {
	cfg := newLoopConfig()
	cfg.GravityInterval = time.Hour

	e, err := NewEngine(cfg, nil)
	require.NoError(t, err)

	inputs := make(chan Command, 3)
	inputs <- CommandLeft
	inputs <- CommandLeft
	inputs <- CommandUnknown
	close(inputs)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err = e.Run(ctx, inputs)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, e.Piece().X)
	assert.Equal(t, StateRunning, e.State())
}
