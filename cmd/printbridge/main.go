package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"printbridge/internal/config"
	"printbridge/internal/logger"
	"printbridge/internal/printer"
	"printbridge/internal/security"
	"printbridge/internal/server"
	"printbridge/internal/utils"
)

func main() {
	configPath := flag.String("config", "", "path to the config file (default ./print-bridge.toml)")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	fileLog := flag.Bool("file-log", true, "also write JSON logs to the platform log directory")
	showQR := flag.Bool("qr", false, "print a pairing QR code for the bridge URL on startup")
	flag.Parse()

	// Optional .env next to the binary; real env vars win.
	_ = godotenv.Load()

	zl, err := logger.New(logger.Options{Level: *logLevel, FileEnabled: *fileLog})
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer zl.Sync()

	provider := config.NewProvider(*configPath)
	cfg, err := provider.Load()
	if err != nil {
		zl.Fatal("config load failed", zap.Error(err))
	}

	limiter := security.NewRateLimiter(zl)
	gate := security.NewGate(limiter)

	runner := printer.NewRunner()
	renderer, err := printer.NewRenderer(cfg.HTMLRenderer, runner, zl)
	if err != nil {
		zl.Fatal("renderer init failed", zap.Error(err))
	}
	defer renderer.Close()

	directory := printer.NewDirectory(runner, zl)
	dispatcher := printer.NewDispatcher(runner, renderer, zl)

	srv := server.New(cfg, gate, directory, dispatcher, zl)

	// Config edits on disk swap in a fresh snapshot without a restart. The
	// renderer backend follows html_renderer changes; host/port still need a
	// restart.
	provider.Watch(zl, func(next *config.Config) {
		prevKind := srv.Config().HTMLRenderer
		srv.SetConfig(next)
		if next.HTMLRenderer == prevKind {
			return
		}
		nextRenderer, err := printer.NewRenderer(next.HTMLRenderer, runner, zl)
		if err != nil {
			zl.Warn("keeping previous html renderer", zap.Error(err))
			return
		}
		if old := dispatcher.SetRenderer(nextRenderer); old != nil {
			old.Close()
		}
		zl.Info("html renderer swapped", zap.String("renderer", next.HTMLRenderer))
	})

	if *showQR {
		printPairingQR(cfg, zl)
	}

	if err := srv.Run(); err != nil {
		zl.Fatal("server error", zap.Error(err))
	}
}

func printPairingQR(cfg *config.Config, zl *zap.Logger) {
	url := fmt.Sprintf("http://%s", cfg.Address())
	qr, err := utils.PairingQR(url)
	if err != nil {
		zl.Warn("pairing QR generation failed", zap.Error(err))
		return
	}
	fmt.Printf("\nScan to pair client apps with the bridge:\n%s\n%s\n\n", qr, url)
}
