package terminal

import (
	"github.com/gdamore/tcell/v2"

	engine "github.com/progate-hackathon-strawberry-flavor/GITRIS-engine/internal/services/tetris"
)

// KeyCommand はキー入力をエンジンの操作に変換します。
// 矢印キーに加えて vi 風の h/j/k/l も受け付けます。
func KeyCommand(ev *tcell.EventKey) (engine.Command, bool) {
	switch ev.Key() {
	case tcell.KeyLeft:
		return engine.CommandLeft, true
	case tcell.KeyRight:
		return engine.CommandRight, true
	case tcell.KeyUp:
		return engine.CommandRotateCW, true
	case tcell.KeyDown:
		return engine.CommandSoftDrop, true
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'h':
			return engine.CommandLeft, true
		case 'l':
			return engine.CommandRight, true
		case 'k':
			return engine.CommandRotateCW, true
		case 'j':
			return engine.CommandSoftDrop, true
		}
	}
	return engine.CommandUnknown, false
}

// IsQuit は終了キー（q、Esc、Ctrl-C）かどうかを返します。
func IsQuit(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return ev.Rune() == 'q' || ev.Rune() == 'Q'
	}
	return false
}
