package tetris

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/progate-hackathon-strawberry-flavor/GITRIS-engine/internal/models/tetris"
)

// ゲーム全体に影響する既定値です。
const (
	DefaultGravityInterval    = 400 * time.Millisecond // 自動落下の間隔
	DefaultScorePerClearedRow = 10                     // 1ライン消去あたりのスコア
	DefaultFrameInterval      = 16 * time.Millisecond  // ゲームループのフレーム間隔（約60fps）
)

// Config はエンジン生成時の設定です。DefaultConfig から始めて必要な値だけ変更してください。
type Config struct {
	Rows               int
	Cols               int
	GravityInterval    time.Duration
	ScorePerClearedRow int
	SpawnX             int
	SpawnY             int
	FrameInterval      time.Duration

	Shapes    *tetris.ShapeTable // nil の場合は標準の7種類
	Generator ShapeGenerator     // nil の場合は一様ランダム
	Clock     Clock              // nil の場合は SystemClock
}

// DefaultConfig は既定値で埋めたConfigを返します。
func DefaultConfig() Config {
	return Config{
		Rows:               tetris.DefaultRows,
		Cols:               tetris.DefaultCols,
		GravityInterval:    DefaultGravityInterval,
		ScorePerClearedRow: DefaultScorePerClearedRow,
		SpawnX:             tetris.DefaultSpawnX,
		SpawnY:             tetris.DefaultSpawnY,
		FrameInterval:      DefaultFrameInterval,
	}
}

// withCollaborators は nil の協調オブジェクトを既定の実装で埋めます。
func (c Config) withCollaborators() Config {
	if c.Shapes == nil {
		c.Shapes = tetris.DefaultShapeTable()
	}
	if c.Generator == nil {
		c.Generator = NewUniformGenerator(time.Now().UnixNano())
	}
	if c.Clock == nil {
		c.Clock = SystemClock{}
	}
	return c
}

// Validate は設定値が有効かどうかを確認します。
func (c Config) Validate() error {
	if c.Rows <= 0 || c.Cols <= 0 {
		return fmt.Errorf("invalid board size %dx%d", c.Rows, c.Cols)
	}
	if c.GravityInterval <= 0 {
		return fmt.Errorf("gravity interval must be positive, got %s", c.GravityInterval)
	}
	if c.FrameInterval <= 0 {
		return fmt.Errorf("frame interval must be positive, got %s", c.FrameInterval)
	}
	if c.ScorePerClearedRow < 0 {
		return fmt.Errorf("score per cleared row must not be negative, got %d", c.ScorePerClearedRow)
	}
	return nil
}

// validateSpawn は全形状の回転状態0の占有マスが、出現位置でボードの列の範囲内かつ床より上に
// 収まることを確認します。収まらない設定では固定時にボード外へ書き込むことになります。
// Shapes が設定済みであることが前提です。
func (c Config) validateSpawn() error {
	for i := 0; i < c.Shapes.Len(); i++ {
		shape := c.Shapes.At(i)
		for r, row := range shape.States[0] {
			for col, occupied := range row {
				if !occupied {
					continue
				}
				x, y := c.SpawnX+col, c.SpawnY+r
				if x < 0 || x >= c.Cols || y >= c.Rows {
					return fmt.Errorf("shape %s spawned at (%d, %d) occupies (%d, %d) outside the %dx%d board",
						shape.Name, c.SpawnX, c.SpawnY, x, y, c.Rows, c.Cols)
				}
			}
		}
	}
	return nil
}

// LoadConfigFromEnv は環境変数から設定を読み込みます。
// 未設定の変数は既定値のままです。
//
//	TETRIS_ROWS, TETRIS_COLS       : ボードのサイズ
//	TETRIS_GRAVITY_MS              : 自動落下の間隔（ミリ秒）
//	TETRIS_SCORE_PER_ROW           : 1ライン消去あたりのスコア
//	TETRIS_FRAME_MS                : ゲームループのフレーム間隔（ミリ秒）
//	TETRIS_SPAWN_X, TETRIS_SPAWN_Y : 出現位置
//	TETRIS_SHAPES_FILE             : テトリミノ定義のYAMLファイル
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	ints := []struct {
		key string
		dst *int
	}{
		{"TETRIS_ROWS", &cfg.Rows},
		{"TETRIS_COLS", &cfg.Cols},
		{"TETRIS_SCORE_PER_ROW", &cfg.ScorePerClearedRow},
		{"TETRIS_SPAWN_X", &cfg.SpawnX},
		{"TETRIS_SPAWN_Y", &cfg.SpawnY},
	}
	for _, v := range ints {
		if err := envInt(v.key, v.dst); err != nil {
			return Config{}, err
		}
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"TETRIS_GRAVITY_MS", &cfg.GravityInterval},
		{"TETRIS_FRAME_MS", &cfg.FrameInterval},
	}
	for _, v := range durations {
		var ms int
		if err := envInt(v.key, &ms); err != nil {
			return Config{}, err
		}
		if ms != 0 {
			*v.dst = time.Duration(ms) * time.Millisecond
		}
	}

	if path := os.Getenv("TETRIS_SHAPES_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read shapes file %s: %w", path, err)
		}
		shapes, err := tetris.LoadShapeTableYAML(data)
		if err != nil {
			return Config{}, fmt.Errorf("failed to load shapes file %s: %w", path, err)
		}
		cfg.Shapes = shapes
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.withCollaborators().validateSpawn(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func envInt(key string, dst *int) error {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%s must be an integer: %w", key, err)
	}
	*dst = v
	return nil
}
