package tetris

import "github.com/progate-hackathon-strawberry-flavor/GITRIS-engine/internal/models/tetris"

// Listener はエンジンの出力（描画、スコア表示、ゲームオーバー通知）を受け取ります。
// すべてのコールバックはエンジンを動かしているゴルーチンから同期的に呼ばれます。
type Listener interface {
	// OnBoardChanged はピースの出現、移動・回転の成功、固定とライン消去の後に呼ばれます。
	OnBoardChanged(snapshot Snapshot)
	// OnScoreChanged はスコアが増えたときに呼ばれます。
	OnScoreChanged(score int)
	// OnGameOver はゲームオーバー時に一度だけ呼ばれます。
	OnGameOver()
}

// NopListener は何もしない Listener です。
type NopListener struct{}

func (NopListener) OnBoardChanged(Snapshot) {}
func (NopListener) OnScoreChanged(int)      {}
func (NopListener) OnGameOver()             {}

// Listeners は複数の Listener に順番に通知します。
type Listeners []Listener

func (ls Listeners) OnBoardChanged(s Snapshot) {
	for _, l := range ls {
		l.OnBoardChanged(s)
	}
}

func (ls Listeners) OnScoreChanged(score int) {
	for _, l := range ls {
		l.OnScoreChanged(score)
	}
}

func (ls Listeners) OnGameOver() {
	for _, l := range ls {
		l.OnGameOver()
	}
}

// PieceSnapshot は落下中のピースの軽量な表現です。
type PieceSnapshot struct {
	Shape    string       `json:"shape"`
	Rotation int          `json:"rotation"`
	X        int          `json:"x"`
	Y        int          `json:"y"`
	Color    tetris.Color `json:"color"`
	Cells    [][2]int     `json:"cells"` // 占有するボード上の絶対座標 {x, y}
}

// Snapshot は描画用のゲーム状態のコピーです。エンジンの内部状態とは共有しません。
type Snapshot struct {
	Rows  int              `json:"rows"`
	Cols  int              `json:"cols"`
	Cells [][]tetris.Color `json:"cells"` // 固定済みのブロックのみ
	Piece *PieceSnapshot   `json:"piece,omitempty"`
	Score int              `json:"score"`
	State State            `json:"state"`
}

// Composite は固定済みのブロックに落下中のピースを重ねた盤面を返します。
// ボードより上にあるピースのマスは含みません。
func (s Snapshot) Composite() [][]tetris.Color {
	out := make([][]tetris.Color, len(s.Cells))
	for y := range s.Cells {
		out[y] = make([]tetris.Color, len(s.Cells[y]))
		copy(out[y], s.Cells[y])
	}
	if s.Piece == nil {
		return out
	}
	for _, cell := range s.Piece.Cells {
		x, y := cell[0], cell[1]
		if y >= 0 && y < s.Rows && x >= 0 && x < s.Cols {
			out[y][x] = s.Piece.Color
		}
	}
	return out
}
