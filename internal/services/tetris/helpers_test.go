package tetris

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/progate-hackathon-strawberry-flavor/GITRIS-engine/internal/models/tetris"
)

// fakeClock はテスト用の手動で進める時計です。
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// recorder はエンジンの出力を記録する Listener です。
type recorder struct {
	boards    []Snapshot
	scores    []int
	gameOvers int
}

func (r *recorder) OnBoardChanged(s Snapshot) { r.boards = append(r.boards, s) }
func (r *recorder) OnScoreChanged(score int)  { r.scores = append(r.scores, score) }
func (r *recorder) OnGameOver()               { r.gameOvers++ }

func (r *recorder) last() Snapshot { return r.boards[len(r.boards)-1] }

// newTestEngine は kinds の順にピースを出現させる、時計を手動で進めるエンジンを作成します。
func newTestEngine(t *testing.T, kinds ...tetris.ShapeKind) (*Engine, *fakeClock, *recorder) {
	t.Helper()
	cfg := DefaultConfig()
	clock := newFakeClock()
	cfg.Clock = clock
	cfg.Generator = NewSequenceGenerator(kinds...)
	rec := &recorder{}

	e, err := NewEngine(cfg, rec)
	require.NoError(t, err)
	return e, clock, rec
}
