// Command ws281xd drives WS281x LED strips and exposes them over HTTP.
// Run with --mock to use the in-memory driver (no SPI or serial device required).
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/micro-nova/ws281x-go/internal/api"
	"github.com/micro-nova/ws281x-go/internal/config"
	"github.com/micro-nova/ws281x-go/internal/controller"
	"github.com/micro-nova/ws281x-go/internal/events"
	"github.com/micro-nova/ws281x-go/internal/identity"
	"github.com/micro-nova/ws281x-go/internal/maintenance"
	"github.com/micro-nova/ws281x-go/internal/zeroconf"
)

func main() {
	var (
		mock       = flag.Bool("mock", false, "use the mock driver regardless of the config")
		addr       = flag.String("addr", ":8080", "HTTP listen address")
		cfgDir     = flag.String("config-dir", "", "config directory (default: ~/.config/ws281x)")
		debug      = flag.Bool("debug", false, "enable debug logging")
		fps        = flag.Int("fps", 30, "render loop rate for buffered changes, 0 to render only on request")
		noZeroconf = flag.Bool("no-zeroconf", false, "do not advertise the service over mDNS")
	)
	flag.Parse()

	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	if *cfgDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			slog.Error("cannot determine home directory", "err", err)
			os.Exit(1)
		}
		*cfgDir = filepath.Join(home, ".config", "ws281x")
	}
	if err := os.MkdirAll(*cfgDir, 0755); err != nil {
		slog.Error("cannot create config directory", "path", *cfgDir, "err", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Config store
	store := config.NewJSONStore(*cfgDir)
	cfg, err := store.Load()
	if err != nil {
		slog.Error("cannot load config", "path", store.Path(), "err", err)
		os.Exit(1)
	}
	if _, err := os.Stat(store.Path()); errors.Is(err, os.ErrNotExist) {
		// Write the defaults so there is a file to edit.
		_ = store.Save(cfg)
	}

	// Strip
	drv, err := controller.NewDriver(*cfg, *mock)
	if err != nil {
		slog.Error("cannot select driver", "err", err)
		os.Exit(1)
	}
	strip, err := controller.BuildStrip(ctx, *cfg, drv)
	if err != nil {
		slog.Error("strip initialization failed", "driver", drv.Name(), "err", err)
		os.Exit(1)
	}
	slog.Info("strip ready", "driver", drv.Name(), "channels", strip.Channels(), "freq", cfg.Freq)

	bus := events.NewBus()
	ctrl := controller.New(strip, *cfg, store, bus)
	// The controller holds its own handle from here on.
	if err := strip.Close(); err != nil {
		slog.Warn("close strip handle", "err", err)
	}

	go ctrl.RunRenderLoop(ctx, *fps)

	// Hot reload of brightness from strip.json
	if err := config.Watch(ctx, store, ctrl.ApplyConfig); err != nil {
		slog.Warn("config watch unavailable", "err", err)
	}

	maint := maintenance.New(store.Path(), filepath.Join(*cfgDir, "backups"))
	go maint.Start(ctx)

	info := identity.Get()
	if !*noZeroconf {
		zc := zeroconf.New(info.Hostname, listenPort(*addr), zeroconf.TXTRecords(info, ctrl.State()))
		go func() {
			if err := zc.Start(ctx); err != nil {
				slog.Warn("zeroconf failed", "err", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:         *addr,
		Handler:      api.NewRouter(ctrl, bus),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // 0 = no timeout (needed for SSE)
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("ws281xd listening", "addr", *addr, "driver", drv.Name(), "config", *cfgDir, "version", info.Version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down...")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutCancel()

	if err := srv.Shutdown(shutCtx); err != nil {
		slog.Warn("server shutdown error", "err", err)
	}

	// Leave the strip dark.
	if _, appErr := ctrl.Clear(shutCtx); appErr != nil {
		slog.Warn("failed to clear strip", "err", appErr)
	}
	if err := store.Flush(); err != nil {
		slog.Warn("failed to flush config", "err", err)
	}
	// Last handle: finalizes the driver.
	if err := ctrl.Close(); err != nil {
		slog.Warn("close strip", "err", err)
	}

	slog.Info("shutdown complete")
}

// listenPort extracts the port from a listen address, defaulting to 80.
func listenPort(addr string) int {
	_, p, err := net.SplitHostPort(addr)
	if err != nil {
		return 80
	}
	port, err := strconv.Atoi(p)
	if err != nil {
		return 80
	}
	return port
}
