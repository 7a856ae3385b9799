package tetris

import (
	"fmt"
	"strings"
)

const (
	DefaultRows = 20 // ボードの行数（表示部分）
	DefaultCols = 10 // ボードの列数
)

// Color はボードのマスやテトリミノの表示色です。
// Vacant（空文字列）は空のマスを表す番兵値です。
type Color string

// Vacant は空のマスを表します。
const Vacant Color = ""

// Board はテトリスのゲームボードです。
// cells[y][x] でアクセスします。yは行、xは列です。
// 各マスは Vacant か、固定されたピースの色のどちらかです。
type Board struct {
	rows  int
	cols  int
	cells [][]Color
}

// NewBoard は rows × cols の空のボードを初期化して返します。
//
// Parameters:
//
//	rows : 行数（1以上）
//	cols : 列数（1以上）
//
// Returns:
//
//	*Board: 初期化されたボード
//	error: サイズが不正な場合
func NewBoard(rows, cols int) (*Board, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("invalid board size %dx%d", rows, cols)
	}
	b := &Board{rows: rows, cols: cols, cells: make([][]Color, rows)}
	for y := range b.cells {
		b.cells[y] = make([]Color, cols)
	}
	return b, nil
}

// Rows はボードの行数を返します。
func (b *Board) Rows() int { return b.rows }

// Cols はボードの列数を返します。
func (b *Board) Cols() int { return b.cols }

// IsVacant は (x, y) のマスが空かどうかを返します。
// 0 <= y < rows, 0 <= x < cols の範囲でのみ定義されます。範囲外の扱いは WouldCollide の責務です。
func (b *Board) IsVacant(x, y int) bool {
	return b.cells[y][x] == Vacant
}

// Cell は (x, y) のマスの色を返します。
func (b *Board) Cell(x, y int) Color {
	return b.cells[y][x]
}

// Lock は (x, y) のマスに色を書き込みます。
// 範囲外の座標は呼び出し側のバグなので panic します。
func (b *Board) Lock(x, y int, color Color) {
	if !b.inBounds(x, y) {
		panic(fmt.Sprintf("tetris: Board.Lock out of range (%d, %d) on %dx%d board", x, y, b.rows, b.cols))
	}
	b.cells[y][x] = color
}

func (b *Board) inBounds(x, y int) bool {
	return x >= 0 && x < b.cols && y >= 0 && y < b.rows
}

// ClearFullRows は揃った行を消去し、上の行を1行ずつ下にずらします。
// 上から下への1回の走査のみで、ずらした結果新たに揃った行は同じ呼び出しでは検出しません。
//
// Returns:
//
//	int: 消去した行数
func (b *Board) ClearFullRows() int {
	cleared := 0
	for r := 0; r < b.rows; r++ {
		if !b.isRowFull(r) {
			continue
		}
		// 揃った行より上の行をすべて1行下へ
		for y := r; y > 0; y-- {
			copy(b.cells[y], b.cells[y-1])
		}
		for x := range b.cells[0] {
			b.cells[0][x] = Vacant
		}
		cleared++
	}
	return cleared
}

func (b *Board) isRowFull(y int) bool {
	for _, c := range b.cells[y] {
		if c == Vacant {
			return false
		}
	}
	return true
}

// Fill は y 行目を color で埋めます。skip に含まれる列は空のままにします。
// 盤面の事前準備（テストやデバッグ）用です。
func (b *Board) Fill(y int, color Color, skip ...int) {
	for x := 0; x < b.cols; x++ {
		b.Lock(x, y, color)
	}
	for _, x := range skip {
		b.cells[y][x] = Vacant
	}
}

// Cells はボードのディープコピーを返します。スナップショット用です。
func (b *Board) Cells() [][]Color {
	out := make([][]Color, b.rows)
	for y := range b.cells {
		out[y] = make([]Color, b.cols)
		copy(out[y], b.cells[y])
	}
	return out
}

// String はデバッグ用に盤面を文字列化します。空のマスは '.'、埋まったマスは '#' です。
func (b *Board) String() string {
	var sb strings.Builder
	for _, row := range b.cells {
		for _, c := range row {
			if c == Vacant {
				sb.WriteByte('.')
			} else {
				sb.WriteByte('#')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
