package tetris

import (
	"errors"
	"fmt"
)

// RotationStates は1つのテトリミノが持つ回転状態の数です。
const RotationStates = 4

// ErrInvalidShape はテトリミノの定義が不正な場合に返されます。
var ErrInvalidShape = errors.New("invalid shape")

// ShapeKind はテトリミノの種類を表します。
type ShapeKind int

const (
	KindZ      ShapeKind = iota // 0: Z-ミノ (赤)
	KindS                       // 1: S-ミノ (緑)
	KindT                       // 2: T-ミノ (黄)
	KindO                       // 3: O-ミノ (青)
	KindL                       // 4: L-ミノ (紫)
	KindI                       // 5: I-ミノ (シアン)
	KindJ                       // 6: J-ミノ (オレンジ)
	KindCustom                  // YAMLなどから読み込んだ独自の形状
)

var kindNames = map[ShapeKind]string{
	KindZ: "Z",
	KindS: "S",
	KindT: "T",
	KindO: "O",
	KindL: "L",
	KindI: "I",
	KindJ: "J",
}

// String はShapeKindを文字列表現に変換します。
func (k ShapeKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "custom"
}

// KindFromName は "I", "O", "T" などの名前をShapeKindに変換します。
func KindFromName(name string) (ShapeKind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return KindCustom, false
}

// Matrix は1つの回転状態の占有行列です。Matrix[r][c] が true のマスをピースが占有します。
// 常に正方行列です。
type Matrix [][]bool

// Size は行列の一辺の長さを返します。
func (m Matrix) Size() int { return len(m) }

// Shape はテトリミノの定義です。4つの回転状態の行列と表示色を持ちます。
type Shape struct {
	Kind   ShapeKind
	Name   string
	Color  Color
	States [RotationStates]Matrix
}

// validate は4つの回転状態がすべて正方行列で、同じサイズであることを確認します。
func (s *Shape) validate() error {
	size := s.States[0].Size()
	if size == 0 {
		return fmt.Errorf("%w: %s has an empty rotation state", ErrInvalidShape, s.Name)
	}
	for i, m := range s.States {
		if m.Size() != size {
			return fmt.Errorf("%w: %s state %d is %d rows, want %d", ErrInvalidShape, s.Name, i, m.Size(), size)
		}
		occupied := false
		for r, row := range m {
			if len(row) != size {
				return fmt.Errorf("%w: %s state %d row %d is not square", ErrInvalidShape, s.Name, i, r)
			}
			for _, v := range row {
				occupied = occupied || v
			}
		}
		if !occupied {
			return fmt.Errorf("%w: %s state %d has no occupied cell", ErrInvalidShape, s.Name, i)
		}
	}
	if s.Color == Vacant {
		return fmt.Errorf("%w: %s has no color", ErrInvalidShape, s.Name)
	}
	return nil
}

// ShapeTable は読み込み時に検証済みの、変更されないテトリミノの一覧です。
type ShapeTable struct {
	shapes []Shape
}

// NewShapeTable は形状を検証してShapeTableを作成します。
// 不正な形状が1つでもあればエラーを返します。
func NewShapeTable(shapes []Shape) (*ShapeTable, error) {
	if len(shapes) == 0 {
		return nil, fmt.Errorf("%w: shape table is empty", ErrInvalidShape)
	}
	t := &ShapeTable{shapes: make([]Shape, len(shapes))}
	for i := range shapes {
		if err := shapes[i].validate(); err != nil {
			return nil, err
		}
		t.shapes[i] = shapes[i]
	}
	return t, nil
}

// Len は形状の数を返します。
func (t *ShapeTable) Len() int { return len(t.shapes) }

// At は i 番目の形状を返します。
func (t *ShapeTable) At(i int) *Shape { return &t.shapes[i] }

// ByKind は指定された種類の最初の形状を返します。
func (t *ShapeTable) ByKind(kind ShapeKind) (*Shape, bool) {
	for i := range t.shapes {
		if t.shapes[i].Kind == kind {
			return &t.shapes[i], true
		}
	}
	return nil, false
}

// m は 0/1 の行から Matrix を作るヘルパーです。
func m(rows ...[]int) Matrix {
	out := make(Matrix, len(rows))
	for r, row := range rows {
		out[r] = make([]bool, len(row))
		for c, v := range row {
			out[r][c] = v == 1
		}
	}
	return out
}

// standardShapes は7種類の標準テトリミノです。各回転状態は時計回りの順です。
func standardShapes() []Shape {
	o := m([]int{0, 0, 0, 0}, []int{0, 1, 1, 0}, []int{0, 1, 1, 0}, []int{0, 0, 0, 0})
	return []Shape{
		{Kind: KindZ, Name: "Z", Color: "red", States: [RotationStates]Matrix{
			m([]int{1, 1, 0}, []int{0, 1, 1}, []int{0, 0, 0}),
			m([]int{0, 0, 1}, []int{0, 1, 1}, []int{0, 1, 0}),
			m([]int{0, 0, 0}, []int{1, 1, 0}, []int{0, 1, 1}),
			m([]int{0, 1, 0}, []int{1, 1, 0}, []int{1, 0, 0}),
		}},
		{Kind: KindS, Name: "S", Color: "green", States: [RotationStates]Matrix{
			m([]int{0, 1, 1}, []int{1, 1, 0}, []int{0, 0, 0}),
			m([]int{0, 1, 0}, []int{0, 1, 1}, []int{0, 0, 1}),
			m([]int{0, 0, 0}, []int{0, 1, 1}, []int{1, 1, 0}),
			m([]int{1, 0, 0}, []int{1, 1, 0}, []int{0, 1, 0}),
		}},
		{Kind: KindT, Name: "T", Color: "yellow", States: [RotationStates]Matrix{
			m([]int{0, 0, 0}, []int{1, 1, 1}, []int{0, 1, 0}),
			m([]int{0, 1, 0}, []int{1, 1, 0}, []int{0, 1, 0}),
			m([]int{0, 1, 0}, []int{1, 1, 1}, []int{0, 0, 0}),
			m([]int{0, 1, 0}, []int{0, 1, 1}, []int{0, 1, 0}),
		}},
		{Kind: KindO, Name: "O", Color: "blue", States: [RotationStates]Matrix{o, o, o, o}},
		{Kind: KindL, Name: "L", Color: "purple", States: [RotationStates]Matrix{
			m([]int{0, 0, 1}, []int{1, 1, 1}, []int{0, 0, 0}),
			m([]int{0, 1, 0}, []int{0, 1, 0}, []int{0, 1, 1}),
			m([]int{0, 0, 0}, []int{1, 1, 1}, []int{1, 0, 0}),
			m([]int{1, 1, 0}, []int{0, 1, 0}, []int{0, 1, 0}),
		}},
		{Kind: KindI, Name: "I", Color: "cyan", States: [RotationStates]Matrix{
			m([]int{0, 0, 0, 0}, []int{1, 1, 1, 1}, []int{0, 0, 0, 0}, []int{0, 0, 0, 0}),
			m([]int{0, 0, 1, 0}, []int{0, 0, 1, 0}, []int{0, 0, 1, 0}, []int{0, 0, 1, 0}),
			m([]int{0, 0, 0, 0}, []int{0, 0, 0, 0}, []int{1, 1, 1, 1}, []int{0, 0, 0, 0}),
			m([]int{0, 1, 0, 0}, []int{0, 1, 0, 0}, []int{0, 1, 0, 0}, []int{0, 1, 0, 0}),
		}},
		{Kind: KindJ, Name: "J", Color: "orange", States: [RotationStates]Matrix{
			m([]int{1, 0, 0}, []int{1, 1, 1}, []int{0, 0, 0}),
			m([]int{0, 1, 1}, []int{0, 1, 0}, []int{0, 1, 0}),
			m([]int{0, 0, 0}, []int{1, 1, 1}, []int{0, 0, 1}),
			m([]int{0, 1, 0}, []int{0, 1, 0}, []int{1, 1, 0}),
		}},
	}
}

// DefaultShapeTable は7種類の標準テトリミノのShapeTableを返します。
// 組み込みの定義が不正な場合はプログラムのバグなので panic します。
func DefaultShapeTable() *ShapeTable {
	t, err := NewShapeTable(standardShapes())
	if err != nil {
		panic(fmt.Sprintf("tetris: default shape table: %v", err))
	}
	return t
}
