package tetris

const (
	DefaultSpawnX = 3  // 出現時のX座標（ボード左寄りの中央）
	DefaultSpawnY = -2 // 出現時のY座標（ボードの上端より上）
)

// Piece は落下中のテトリミノの状態（形状、回転状態、アンカー座標、色）を表します。
// Y はボードの上に出現している間は負になります。
type Piece struct {
	Shape    *Shape `json:"-"`
	Rotation int    `json:"rotation"` // 回転状態のインデックス (0-3)
	X        int    `json:"x"`        // アンカーのX座標
	Y        int    `json:"y"`        // アンカーのY座標
	Color    Color  `json:"color"`    // 出現時に形状からコピーした色
}

// NewPiece は shape を回転状態0、アンカー (x, y) で出現させます。衝突判定は行いません。
func NewPiece(shape *Shape, x, y int) *Piece {
	return &Piece{
		Shape:    shape,
		Rotation: 0,
		X:        x,
		Y:        y,
		Color:    shape.Color,
	}
}

// Matrix は現在の回転状態の占有行列を返します。
func (p *Piece) Matrix() Matrix {
	return p.Shape.States[p.Rotation]
}

// NextRotation は時計回りに1つ回転した後の回転状態のインデックスを返します。
func (p *Piece) NextRotation() int {
	return (p.Rotation + 1) % RotationStates
}

// Cells は現在の回転状態でピースが占有するボード上の絶対座標を行列の走査順で返します。
//
// Returns:
//
//	[][2]int: {x, y} の配列
func (p *Piece) Cells() [][2]int {
	var cells [][2]int
	for r, row := range p.Matrix() {
		for c, occupied := range row {
			if occupied {
				cells = append(cells, [2]int{p.X + c, p.Y + r})
			}
		}
	}
	return cells
}

// MoveBy はピースを (dx, dy) だけ動かします。衝突する場合は何もせず false を返します。
// 下方向の移動に失敗した場合の固定処理は呼び出し側の責務です。
func (p *Piece) MoveBy(b *Board, dx, dy int) bool {
	if WouldCollide(b, p.X, p.Y, dx, dy, p.Matrix()) {
		return false
	}
	p.X += dx
	p.Y += dy
	return true
}

// Rotate はピースを時計回りに回転させます。回転できた場合は true を返します。
//
// 回転後の形状が衝突する場合、ピースがボードの右半分にあれば -1、左半分にあれば +1 の
// 壁蹴り量を求めますが、再判定は壁蹴りを適用していないアンカーで行います。
// そのため一度衝突と判定された回転は壁蹴りで救済されず、そのまま破棄されます。
func (p *Piece) Rotate(b *Board) bool {
	next := p.NextRotation()
	nextMatrix := p.Shape.States[next]
	kick := 0

	if WouldCollide(b, p.X, p.Y, 0, 0, nextMatrix) {
		if p.X > b.Cols()/2 {
			kick = -1 // 右の壁側なので左へ
		} else {
			kick = 1 // 左の壁側なので右へ
		}
	}

	if WouldCollide(b, p.X, p.Y, 0, 0, nextMatrix) {
		return false
	}
	p.X += kick
	p.Rotation = next
	return true
}

// Clone は現在のPieceのコピーを返します。Shapeは共有します。
func (p *Piece) Clone() *Piece {
	newP := *p
	return &newP
}
