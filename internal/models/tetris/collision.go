package tetris

// WouldCollide はアンカー (x, y) にオフセット (dx, dy) を加えた位置に matrix を置いた場合に
// 壁、床、既存のブロックと衝突するかどうかを判定します。
// ボードより上（row < 0）のマスは常に空として扱います。
// 最初に衝突したマスで判定を打ち切ります。ボードは変更しません。
//
// Parameters:
//
//	b      : 判定対象のボード
//	x, y   : ピースの現在のアンカー座標
//	dx, dy : 移動量
//	matrix : 判定する回転状態の占有行列
//
// Returns:
//
//	bool: 衝突する場合はtrue
func WouldCollide(b *Board, x, y, dx, dy int, matrix Matrix) bool {
	for r, row := range matrix {
		for c, occupied := range row {
			if !occupied {
				continue
			}
			col := x + c + dx
			line := y + r + dy

			if col < 0 || col >= b.Cols() || line >= b.Rows() {
				return true // 左右の壁、または床
			}
			if line < 0 {
				continue // ボード上部の見えない領域
			}
			if !b.IsVacant(col, line) {
				return true
			}
		}
	}
	return false
}
