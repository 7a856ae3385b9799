package terminal

import (
	"context"
	"fmt"
	"log"

	"github.com/gdamore/tcell/v2"

	engine "github.com/progate-hackathon-strawberry-flavor/GITRIS-engine/internal/services/tetris"
)

// Run は screen 上で1人用のゲームを1つ実行します。
// プレイヤーが終了キーを押すか ctx がキャンセルされると戻ります。ゲームオーバー後は
// 最終盤面とバナーを表示したまま終了キーを待ちます。
//
// Parameters:
//
//	ctx    : キャンセル用のコンテキスト
//	screen : 初期化済みの画面。Fini は呼び出し側が行う
//	cfg    : エンジンの設定
//
// Returns:
//
//	int: 最終スコア
//	error: エンジンの作成に失敗した場合
func Run(ctx context.Context, screen tcell.Screen, cfg engine.Config) (int, error) {
	renderer := NewRenderer(screen)
	game, err := engine.NewEngine(cfg, renderer)
	if err != nil {
		return 0, fmt.Errorf("failed to start game: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	inputs := make(chan engine.Command, 100)
	go pollEvents(ctx, cancel, screen, renderer, inputs)

	if err := game.Run(ctx, inputs); err != nil {
		// 終了キーによるキャンセル
		return game.Score(), nil
	}

	log.Printf("[Terminal] Game over with score %d, waiting for quit", game.Score())
	<-ctx.Done()
	return game.Score(), nil
}

// pollEvents は画面のイベントを読み、操作を inputs に送ります。
// 終了キーで quit を呼びます。screen.Fini の後は PollEvent が nil を返すので終了します。
func pollEvents(ctx context.Context, quit context.CancelFunc, screen tcell.Screen, renderer *Renderer, inputs chan<- engine.Command) {
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}

		switch ev := ev.(type) {
		case *tcell.EventKey:
			if IsQuit(ev) {
				quit()
				return
			}
			cmd, ok := KeyCommand(ev)
			if !ok {
				continue
			}
			select {
			case inputs <- cmd:
			case <-ctx.Done():
				return
			default:
				// 入力が溜まりすぎている場合は捨てる
			}
		case *tcell.EventResize:
			renderer.Redraw()
		}
	}
}
