package tetris

import (
	"fmt"
	"log"
	"time"

	"github.com/progate-hackathon-strawberry-flavor/GITRIS-engine/internal/models/tetris"
)

// State はゲームの進行状態です。GameOver は終端状態で、Running に戻ることはありません。
type State int

const (
	StateRunning  State = iota // プレイ中
	StateGameOver              // ゲームオーバー
)

// String はStateを文字列表現に変換します。
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateGameOver:
		return "game_over"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// MarshalText はJSONでStateを文字列として出力するために使われます。
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText は MarshalText の逆変換です。
func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "running":
		*s = StateRunning
	case "game_over":
		*s = StateGameOver
	default:
		return fmt.Errorf("unknown game state %q", text)
	}
	return nil
}

// Engine は1つのゲームのボード、落下中のピース、スコア、進行状態をすべて保持します。
// ゲームごとに独立したインスタンスで、グローバルな状態は持ちません。
//
// Engine はロックを持ちません。1つのゴルーチン（Run またはホストのフレームコールバック）
// だけが操作してください。
type Engine struct {
	cfg       Config
	board     *tetris.Board
	piece     *tetris.Piece
	score     int
	state     State
	listener  Listener
	dropStart time.Time // 自動落下タイマーの基準時刻
}

// NewEngine は設定を検証して新しいゲームを初期化し、最初のピースを出現させます。
//
// Parameters:
//
//	cfg      : エンジンの設定（DefaultConfig を基に作成）
//	listener : 出力の受け取り先。nil の場合は何も通知しない
//
// Returns:
//
//	*Engine: 初期化されたエンジン
//	error: 設定が不正な場合
func NewEngine(cfg Config, listener Listener) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}
	cfg = cfg.withCollaborators()
	if err := cfg.validateSpawn(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}

	board, err := tetris.NewBoard(cfg.Rows, cfg.Cols)
	if err != nil {
		return nil, fmt.Errorf("failed to create board: %w", err)
	}
	if listener == nil {
		listener = NopListener{}
	}

	e := &Engine{
		cfg:      cfg,
		board:    board,
		state:    StateRunning,
		listener: listener,
	}
	e.dropStart = cfg.Clock.Now()
	e.SpawnNext()
	return e, nil
}

// Board はボードを返します。エンジンを動かしているゴルーチン以外から変更しないでください。
func (e *Engine) Board() *tetris.Board { return e.board }

// Piece は落下中のピースのコピーを返します。変更してもエンジンには反映されません。
func (e *Engine) Piece() *tetris.Piece {
	if e.piece == nil {
		return nil
	}
	return e.piece.Clone()
}

// Score は現在のスコアを返します。
func (e *Engine) Score() int { return e.score }

// State は現在の進行状態を返します。
func (e *Engine) State() State { return e.state }

// Config はエンジンの設定を返します。
func (e *Engine) Config() Config { return e.cfg }

// Spawn は shape を出現位置に新しいピースとして出現させます。衝突判定は行いません。
func (e *Engine) Spawn(shape *tetris.Shape) {
	e.piece = tetris.NewPiece(shape, e.cfg.SpawnX, e.cfg.SpawnY)
	e.notifyBoardChanged()
}

// SpawnNext はジェネレーターが選んだ形状を出現させます。
func (e *Engine) SpawnNext() {
	e.Spawn(e.cfg.Generator.Next(e.cfg.Shapes))
}

// Snapshot は描画用に現在の状態のコピーを作成します。
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		Rows:  e.board.Rows(),
		Cols:  e.board.Cols(),
		Cells: e.board.Cells(),
		Score: e.score,
		State: e.state,
	}
	if e.piece != nil {
		s.Piece = &PieceSnapshot{
			Shape:    e.piece.Shape.Name,
			Rotation: e.piece.Rotation,
			X:        e.piece.X,
			Y:        e.piece.Y,
			Color:    e.piece.Color,
			Cells:    e.piece.Cells(),
		}
	}
	return s
}

func (e *Engine) notifyBoardChanged() {
	e.listener.OnBoardChanged(e.Snapshot())
}

// gameOver は終端状態へ遷移し、最終盤面と OnGameOver を一度だけ通知します。
func (e *Engine) gameOver() {
	if e.state == StateGameOver {
		return
	}
	e.state = StateGameOver
	log.Printf("[Engine] Game Over! Final Score: %d", e.score)
	log.Printf("[Engine] Final board:\n%s", e.board)
	e.notifyBoardChanged()
	e.listener.OnGameOver()
}
