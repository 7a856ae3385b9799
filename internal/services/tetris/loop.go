package tetris

import (
	"context"
	"time"
)

// Run はゲームループです。FrameInterval ごとに Frame を呼び、その合間に inputs から
// 受け取った操作を1つずつ同期的に処理します。エンジンを操作するのはこのゴルーチンだけです。
//
// ゲームオーバーになると nil を返します。ctx がキャンセルされた場合は ctx.Err() を返します。
// inputs が閉じられた後も、自動落下はゲームオーバーかキャンセルまで続きます。
func (e *Engine) Run(ctx context.Context, inputs <-chan Command) error {
	ticker := time.NewTicker(e.cfg.FrameInterval)
	defer ticker.Stop()

	for e.state == StateRunning {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd, ok := <-inputs:
			if !ok {
				inputs = nil
				continue
			}
			e.HandleCommand(cmd)
		case <-ticker.C:
			e.Frame()
		}
	}
	return nil
}
