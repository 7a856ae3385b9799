package terminal

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/progate-hackathon-strawberry-flavor/GITRIS-engine/internal/models/tetris"
	engine "github.com/progate-hackathon-strawberry-flavor/GITRIS-engine/internal/services/tetris"
)

const (
	cellWidth = 2 // 1マスを2文字幅で描画する
	originX   = 1 // ボード左上（枠の内側）の画面座標
	originY   = 1
)

const helpText = "←/→ move  ↑ rotate  ↓ drop  q quit"

// Renderer はエンジンの出力を tcell の画面に描画する Listener です。
// エンジンのゴルーチンと入力のゴルーチン（リサイズ時）の両方から呼ばれるのでロックで保護します。
type Renderer struct {
	screen tcell.Screen

	mu       sync.Mutex
	snapshot engine.Snapshot
	score    int
	gameOver bool
}

// NewRenderer は screen に描画する Renderer を作成します。screen は初期化済みである必要があります。
func NewRenderer(screen tcell.Screen) *Renderer {
	return &Renderer{screen: screen}
}

// OnBoardChanged は盤面を描画し直します。
func (r *Renderer) OnBoardChanged(s engine.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshot = s
	r.score = s.Score
	r.draw()
}

// OnScoreChanged はスコア表示を更新します。
func (r *Renderer) OnScoreChanged(score int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.score = score
	r.draw()
}

// OnGameOver はゲームオーバーの表示を出します。
func (r *Renderer) OnGameOver() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gameOver = true
	r.draw()
}

// Redraw は最後に受け取った状態で画面全体を描き直します。端末のリサイズ時に使います。
func (r *Renderer) Redraw() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.screen.Sync()
	r.draw()
}

// CellPosition はボードのマス (x, y) を描画する画面上の左端の座標を返します。
func CellPosition(x, y int) (int, int) {
	return originX + x*cellWidth, originY + y
}

// draw は r.mu を保持した状態で呼び出してください。
func (r *Renderer) draw() {
	r.screen.Clear()
	s := r.snapshot
	if s.Rows == 0 || s.Cols == 0 {
		r.screen.Show()
		return
	}

	r.drawFrame(s.Rows, s.Cols)
	for y, row := range s.Composite() {
		for x, color := range row {
			r.drawCell(x, y, color)
		}
	}

	infoX := originX + s.Cols*cellWidth + 3
	drawText(r.screen, infoX, originY, tcell.StyleDefault.Bold(true), fmt.Sprintf("Score: %d", r.score))
	drawText(r.screen, infoX, originY+2, tcell.StyleDefault.Foreground(tcell.ColorGray), helpText)

	if r.gameOver {
		banner := " GAME OVER "
		bx := originX + (s.Cols*cellWidth-len(banner))/2
		if bx < 0 {
			bx = 0
		}
		style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorRed).Bold(true)
		drawText(r.screen, bx, originY+s.Rows/2, style, banner)
		drawText(r.screen, infoX, originY+4, tcell.StyleDefault, "press q to quit")
	}
	r.screen.Show()
}

func (r *Renderer) drawFrame(rows, cols int) {
	style := tcell.StyleDefault.Foreground(tcell.ColorGray)
	right := originX + cols*cellWidth
	bottom := originY + rows

	for y := originY; y < bottom; y++ {
		r.screen.SetContent(originX-1, y, tcell.RuneVLine, nil, style)
		r.screen.SetContent(right, y, tcell.RuneVLine, nil, style)
	}
	for x := originX; x < right; x++ {
		r.screen.SetContent(x, bottom, tcell.RuneHLine, nil, style)
	}
	r.screen.SetContent(originX-1, bottom, tcell.RuneLLCorner, nil, style)
	r.screen.SetContent(right, bottom, tcell.RuneLRCorner, nil, style)
}

func (r *Renderer) drawCell(x, y int, color tetris.Color) {
	sx, sy := CellPosition(x, y)
	if color == tetris.Vacant {
		style := tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
		r.screen.SetContent(sx, sy, ' ', nil, style)
		r.screen.SetContent(sx+1, sy, '.', nil, style)
		return
	}
	style := tcell.StyleDefault.Foreground(StyleColor(color))
	for i := 0; i < cellWidth; i++ {
		r.screen.SetContent(sx+i, sy, '█', nil, style)
	}
}

// StyleColor は盤面の色名を tcell の色に変換します。
// "red" などの色名と "#ff8800" 形式を受け付け、不明な場合は端末の既定色になります。
func StyleColor(c tetris.Color) tcell.Color {
	return tcell.GetColor(string(c))
}

func drawText(screen tcell.Screen, x, y int, style tcell.Style, text string) {
	for _, ch := range text {
		screen.SetContent(x, y, ch, nil, style)
		x++
	}
}
