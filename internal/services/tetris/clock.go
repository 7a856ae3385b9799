package tetris

import (
	"math/rand"
	"time"

	"github.com/progate-hackathon-strawberry-flavor/GITRIS-engine/internal/models/tetris"
)

// Clock は自動落下の経過時間を測るための時計です。
// time.Now が返す値は単調時計の読み値を含むので、壁時計の変更に影響されません。
type Clock interface {
	Now() time.Time
}

// SystemClock は time.Now を使う Clock です。
type SystemClock struct{}

// Now は現在時刻を返します。
func (SystemClock) Now() time.Time { return time.Now() }

// ShapeGenerator は次に出現させるテトリミノを選びます。
type ShapeGenerator interface {
	Next(table *tetris.ShapeTable) *tetris.Shape
}

// UniformGenerator はShapeTableから一様ランダムに形状を選びます。
// 並行利用はできません。ゲームごとに1つ作成してください。
type UniformGenerator struct {
	rng *rand.Rand
}

// NewUniformGenerator は seed で初期化した UniformGenerator を返します。
func NewUniformGenerator(seed int64) *UniformGenerator {
	return &UniformGenerator{rng: rand.New(rand.NewSource(seed))}
}

// Next は一様ランダムに形状を1つ返します。
func (g *UniformGenerator) Next(table *tetris.ShapeTable) *tetris.Shape {
	return table.At(g.rng.Intn(table.Len()))
}

// SequenceGenerator は指定された種類を順番に繰り返し返します。テストやリプレイ用です。
// テーブルに存在しない種類はテーブルの先頭の形状で代用します。
type SequenceGenerator struct {
	kinds []tetris.ShapeKind
	next  int
}

// NewSequenceGenerator は kinds を順に返す SequenceGenerator を返します。
func NewSequenceGenerator(kinds ...tetris.ShapeKind) *SequenceGenerator {
	return &SequenceGenerator{kinds: kinds}
}

// Next は次の種類の形状を返します。
func (g *SequenceGenerator) Next(table *tetris.ShapeTable) *tetris.Shape {
	if len(g.kinds) == 0 {
		return table.At(0)
	}
	kind := g.kinds[g.next%len(g.kinds)]
	g.next++
	if shape, ok := table.ByKind(kind); ok {
		return shape
	}
	return table.At(0)
}
