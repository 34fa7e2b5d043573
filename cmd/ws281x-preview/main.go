// Command ws281x-preview polls a ws281xd instance and renders what the
// strip is showing into a PNG file, one row of LEDs per channel.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/micro-nova/ws281x-go/internal/models"
)

// Config holds the preview configuration.
type Config struct {
	APIURL     string        // base URL of the ws281xd API
	OutPath    string        // PNG file written on every update
	UpdateRate time.Duration // poll interval
	Raw        bool          // ignore channel brightness
}

func main() {
	var (
		addr       = flag.String("addr", "localhost:8080", "ws281xd address")
		out        = flag.String("out", "strip.png", "PNG output path")
		updateRate = flag.Duration("rate", time.Second, "poll interval")
		once       = flag.Bool("once", false, "render a single frame and exit")
		raw        = flag.Bool("raw", false, "show colors before brightness scaling")
		debug      = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := Config{
		APIURL:     fmt.Sprintf("http://%s/api", *addr),
		OutPath:    *out,
		UpdateRate: *updateRate,
		Raw:        *raw,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client := &http.Client{Timeout: 5 * time.Second}
	if *once {
		if err := update(ctx, client, cfg); err != nil {
			slog.Error("preview failed", "err", err)
			os.Exit(1)
		}
		return
	}

	slog.Info("ws281x-preview starting", "api", cfg.APIURL, "out", cfg.OutPath, "rate", cfg.UpdateRate)
	if err := run(ctx, client, cfg); err != nil {
		slog.Error("preview failed", "err", err)
		os.Exit(1)
	}
	slog.Info("ws281x-preview stopped")
}

// run executes the poll loop until ctx is cancelled.
func run(ctx context.Context, client *http.Client, cfg Config) error {
	ticker := time.NewTicker(cfg.UpdateRate)
	defer ticker.Stop()

	consecutiveErrors := 0
	const maxConsecutiveErrors = 10

	for {
		if err := update(ctx, client, cfg); err != nil {
			consecutiveErrors++
			if consecutiveErrors >= maxConsecutiveErrors {
				return fmt.Errorf("too many consecutive errors (%d): %w", consecutiveErrors, err)
			}
			slog.Warn("preview update failed", "err", err, "consecutive_errors", consecutiveErrors)
		} else {
			consecutiveErrors = 0
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// update fetches the strip state and rewrites the PNG.
func update(ctx context.Context, client *http.Client, cfg Config) error {
	var state models.State
	if err := getJSON(ctx, client, cfg.APIURL, &state); err != nil {
		return fmt.Errorf("fetch state: %w", err)
	}
	rows := make([]Row, 0, len(state.Channels))
	for _, ch := range state.Channels {
		if ch.Count == 0 {
			continue
		}
		var leds models.Leds
		if err := getJSON(ctx, client, fmt.Sprintf("%s/channels/%d/leds", cfg.APIURL, ch.Index), &leds); err != nil {
			return fmt.Errorf("fetch channel %d: %w", ch.Index, err)
		}
		row, err := NewRow(ch, leds.Colors, !cfg.Raw)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}

	img := Render(state, rows)
	if err := writePNG(cfg.OutPath, img); err != nil {
		return fmt.Errorf("write %s: %w", cfg.OutPath, err)
	}
	slog.Debug("preview written", "out", cfg.OutPath, "channels", len(rows), "frames", state.Frames)
	return nil
}

func getJSON(ctx context.Context, client *http.Client, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
