package tetris

import "strings"

// Command は入力元（キーボードやWebSocket）から受け取る操作です。
type Command int

const (
	CommandUnknown  Command = iota // 不明な操作（無視される）
	CommandLeft                    // 左へ移動
	CommandRight                   // 右へ移動
	CommandRotateCW                // 時計回りに回転
	CommandSoftDrop                // 1段落下
)

var commandNames = map[Command]string{
	CommandUnknown:  "unknown",
	CommandLeft:     "left",
	CommandRight:    "right",
	CommandRotateCW: "rotate",
	CommandSoftDrop: "soft_drop",
}

// String はCommandを文字列表現に変換します。
func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "unknown"
}

// ParseCommand はクライアントから送られたアクション名をCommandに変換します。
// 認識できない名前の場合は CommandUnknown と false を返します。
func ParseCommand(action string) (Command, bool) {
	switch strings.ToLower(strings.TrimSpace(action)) {
	case "left", "move_left":
		return CommandLeft, true
	case "right", "move_right":
		return CommandRight, true
	case "rotate", "rotate_right", "rotate_cw":
		return CommandRotateCW, true
	case "down", "soft_drop":
		return CommandSoftDrop, true
	default:
		return CommandUnknown, false
	}
}
