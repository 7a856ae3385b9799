package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/joho/godotenv"

	engine "github.com/progate-hackathon-strawberry-flavor/GITRIS-engine/internal/services/tetris"
	"github.com/progate-hackathon-strawberry-flavor/GITRIS-engine/internal/terminal"
)

func main() {
	if os.Getenv("APP_ENV") != "production" {
		// .env が無くても続行する
		_ = godotenv.Load()
	}

	// 画面を描画している間はログを端末に出さない
	log.SetOutput(io.Discard)
	if path := os.Getenv("TETRIS_LOG_FILE"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	cfg, err := engine.LoadConfigFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize screen: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	score, err := terminal.Run(ctx, screen, cfg)
	stop()
	screen.Fini()

	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Final score: %d\n", score)
}
