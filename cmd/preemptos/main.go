// Command preemptos boots the kernel and runs it against a VGA surface,
// a keyboard decoder, and a timer source until interrupted. Mirrors the
// teacher codebase's main.go: parse flags, construct every peripheral,
// wire them to the machine, then run until told to stop.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zotley/preemptos/internal/kernel"
	"github.com/zotley/preemptos/internal/keyboard"
	"github.com/zotley/preemptos/internal/klog"
	"github.com/zotley/preemptos/internal/timersrc"
	"github.com/zotley/preemptos/internal/vga"
)

func main() {
	logLevel := flag.String("log-level", "info", "log level: error|warn|info|debug|trace")
	flag.Parse()

	klog.SetLevel(parseLevel(*logLevel))

	cfg := kernel.DefaultConfig()
	ctx, err := kernel.Boot(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "preemptos: boot failed: %v\n", err)
		os.Exit(1)
	}

	surface, err := vga.NewSurface()
	if err != nil {
		fmt.Fprintf(os.Stderr, "preemptos: video init failed: %v\n", err)
		os.Exit(1)
	}
	if err := surface.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "preemptos: video start failed: %v\n", err)
		os.Exit(1)
	}
	defer surface.Stop()

	decoder := keyboard.New(ctx.TTYs(), ctx)
	if src, ok := surface.(interface{ SetKeyHandler(func(keyboard.Event)) }); ok {
		src.SetKeyHandler(func(ev keyboard.Event) {
			if err := decoder.HandleEvent(ev); err != nil {
				klog.Warn("keyboard: %v", err)
			}
		})
	}
	timer := timersrc.New(ctx, kernel.TimerRateHz)

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		timer.Run(gctx)
		return nil
	})

	g.Go(func() error {
		return refreshLoop(gctx, ctx, surface)
	})

	if err := g.Wait(); err != nil {
		klog.Error("preemptos: %v", err)
	}
}

// refreshLoop periodically drains the visible TTY's output ring onto row 0
// of the surface, a simplified stand-in for the VGA surface's real
// character-placement logic (tracking per-TTY cursor position is outside
// this kernel core's scope). Output of the other TTYs stays buffered until
// one of them is made visible.
func refreshLoop(ctx context.Context, k *kernel.Context, surface vga.Surface) error {
	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			visible := k.TTYs().Visible()
			x := 0
			_ = k.TTYs().Flush(visible, func(b byte) {
				if x >= vga.Cols {
					return
				}
				surface.PutCharAt(x, 0, 0, 7, b)
				x++
			})
		}
	}
}

func parseLevel(s string) klog.Level {
	switch s {
	case "error":
		return klog.LevelError
	case "warn":
		return klog.LevelWarn
	case "debug":
		return klog.LevelDebug
	case "trace":
		return klog.LevelTrace
	default:
		return klog.LevelInfo
	}
}
