// Command corridor runs the classifier-steered corridor.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Carmen-Shannon/oxy-corridor/engine"
	"github.com/Carmen-Shannon/oxy-corridor/engine/config"
	"github.com/Carmen-Shannon/oxy-corridor/engine/renderer"
	"github.com/Carmen-Shannon/oxy-corridor/engine/window"
	"github.com/spf13/pflag"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "path to a YAML configuration file (defaults to $"+config.EnvConfigPath+")")
	headless := pflag.Bool("headless", false, "run without a window using the headless renderer")
	metricsAddr := pflag.String("metrics", "", "address to serve Prometheus metrics on, overriding the config")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("[Main] %v", err)
	}
	if *headless {
		cfg.Renderer.Backend = renderer.BackendTypeHeadless.String()
	}
	if *metricsAddr != "" {
		cfg.Metrics.Listen = *metricsAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Renderer.Backend == renderer.BackendTypeHeadless.String() {
		eng, err := engine.NewEngine(cfg)
		if err != nil {
			log.Fatalf("[Main] %v", err)
		}
		if err := eng.Run(ctx); err != nil {
			log.Printf("[Main] %v", err)
			os.Exit(1)
		}
		return
	}

	os.Exit(runWindowed(ctx, stop, cfg))
}

// runWindowed keeps the window's message pump on the main goroutine while the engine runs alongside it.
func runWindowed(ctx context.Context, stop context.CancelFunc, cfg *config.Config) int {
	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
	)
	if err != nil {
		log.Printf("[Main] %v", err)
		return 1
	}
	defer win.Close()

	eng, err := engine.NewEngine(cfg, engine.WithWindow(win))
	if err != nil {
		log.Printf("[Main] %v", err)
		return 1
	}

	done := make(chan error, 1)
	go func() { done <- eng.Run(ctx) }()

	win.SetUpdateCallback(func() {
		if ctx.Err() != nil {
			win.RequestClose()
		}
	})
	win.ProcessMessages()

	stop()
	err = <-done
	eng.Renderer().Release()
	if err != nil {
		log.Printf("[Main] %v", err)
		return 1
	}
	return 0
}
