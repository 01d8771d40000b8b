package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/siren/internal/lyrics"
)

// context lines shown around the active line with --at
const windowBefore, windowAfter = 2, 2

var lyricsCmd = &cobra.Command{
	Use:   "lyrics <file>",
	Short: "Print a local LRC file, or the lines around a playback time",
	Args:  cobra.ExactArgs(1),
	RunE:  runLyrics,
}

var (
	lyricsAt    float64
	lyricsWatch bool
	lyricsT2S   bool
)

func init() {
	lyricsCmd.Flags().Float64Var(&lyricsAt, "at", -1, "playback time in seconds; shows the active line with context")
	lyricsCmd.Flags().BoolVar(&lyricsWatch, "watch", false, "re-render whenever the file changes")
	lyricsCmd.Flags().BoolVar(&lyricsT2S, "t2s", false, "convert Traditional Chinese lyrics to Simplified")
	rootCmd.AddCommand(lyricsCmd)
}

func runLyrics(cmd *cobra.Command, args []string) error {
	path := args[0]
	var transform func(string) string
	if lyricsT2S {
		t2s, err := newT2S()
		if err != nil {
			return err
		}
		transform = t2s
	}

	out := cmd.OutOrStdout()
	if err := renderFile(out, path, lyricsAt, transform); err != nil {
		return err
	}
	if !lyricsWatch {
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watchFile(ctx, path, func() {
		fmt.Fprintln(out, "----")
		if err := renderFile(out, path, lyricsAt, transform); err != nil {
			slog.Warn("failed to re-read lyrics", "path", path, "error", err)
		}
	})
}

func loadTrack(path string, transform func(string) string) (lyrics.Track, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lyrics: %w", err)
	}
	text, err := lyrics.Decode(raw)
	if err != nil {
		return nil, err
	}
	if transform != nil {
		text = transform(text)
	}
	return lyrics.Parse(text), nil
}

func renderFile(out io.Writer, path string, at float64, transform func(string) string) error {
	track, err := loadTrack(path, transform)
	if err != nil {
		return err
	}
	if at < 0 {
		renderTrack(out, track)
		return nil
	}
	renderWindow(out, track, at)
	return nil
}

func renderTrack(out io.Writer, track lyrics.Track) {
	if len(track) == 0 {
		fmt.Fprintln(out, "(no timed lines)")
		return
	}
	for _, line := range track {
		fmt.Fprintf(out, "[%s] %s\n", lyrics.FormatTimestamp(line.Time), line.Text)
	}
}

// renderWindow prints the active line at time at with a few neighbours,
// marking the active one.
func renderWindow(out io.Writer, track lyrics.Track, at float64) {
	index := track.ActiveIndex(at)
	window := track.Window(index, windowBefore, windowAfter)
	if len(window) == 0 {
		fmt.Fprintln(out, "(no timed lines)")
		return
	}

	active := -1
	if index >= 0 {
		active = min(index, windowBefore)
	}
	for i, line := range window {
		marker := " "
		if i == active {
			marker = ">"
		}
		fmt.Fprintf(out, "%s [%s] %s\n", marker, lyrics.FormatTimestamp(line.Time), line.Text)
	}
}

// watchFile calls onChange whenever path is written or replaced. The parent
// directory is watched so editors that save by rename are still seen.
func watchFile(ctx context.Context, path string, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	slog.Info("watching lyrics", "path", abs)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				slog.Debug("lyrics changed", "op", event.Op.String())
				onChange()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", "error", err)
		}
	}
}
