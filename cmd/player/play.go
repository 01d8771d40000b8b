package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/siren/internal/audio"
	"github.com/ewilliams-labs/siren/internal/lyrics"
	"github.com/ewilliams-labs/siren/internal/player"
)

// tailPad keeps playback going after the last lyric line when the audio
// length is unknown.
const tailPad = 3.0

var playCmd = &cobra.Command{
	Use:   "play <cid>",
	Short: "Play a song and print its lyrics as each line comes up",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlay,
}

var (
	playSpeed    float64
	playT2S      bool
	playStart    float64
	playInterval time.Duration
	playNoProbe  bool
)

func init() {
	playCmd.Flags().Float64Var(&playSpeed, "speed", 1, "playback speed multiplier")
	playCmd.Flags().BoolVar(&playT2S, "t2s", false, "convert Traditional Chinese lyrics to Simplified")
	playCmd.Flags().Float64Var(&playStart, "start", 0, "start position in seconds")
	playCmd.Flags().DurationVar(&playInterval, "interval", 100*time.Millisecond, "clock tick interval")
	playCmd.Flags().BoolVar(&playNoProbe, "no-probe", false, "do not download the audio to measure its length")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	if playSpeed <= 0 {
		return fmt.Errorf("--speed must be positive, got %v", playSpeed)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := newClient()
	if err := client.WaitReady(ctx, 5*time.Second); err != nil {
		slog.Warn("API not reachable, continuing anyway", "error", err)
	}

	var opts player.Options
	if playT2S {
		t2s, err := newT2S()
		if err != nil {
			return err
		}
		opts.TransformLyrics = t2s
	}

	ctrl := player.NewController(client, opts)
	if err := ctrl.Load(ctx, args[0]); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Failed to load")
		return err
	}

	out := cmd.OutOrStdout()
	song := ctrl.Song()
	fmt.Fprintf(out, "%s\n", song.Name)

	if !playNoProbe {
		if d, err := probeAudio(ctx, ctrl.AudioURL()); err != nil {
			slog.Warn("could not measure audio length", "error", err)
		} else {
			ctrl.SetDuration(d)
			fmt.Fprintf(out, "Length: %s\n", lyrics.FormatTimestamp(d))
		}
	}
	fmt.Fprintln(out)

	return follow(ctx, ctrl, out, playStart, playSpeed, playInterval)
}

func probeAudio(ctx context.Context, audioURL string) (float64, error) {
	if audioURL == "" {
		return 0, errors.New("song has no audio source")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return 0, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("audio proxy returned %d", resp.StatusCode)
	}
	return audio.ProbeDuration(resp.Body, resp.Header.Get("Content-Type"))
}

// follow drives the playback clock and prints each lyric line as it becomes
// active. Playback starts without waiting for the cover and lyrics; they are
// picked up mid-song when they land. It returns when the song ends or ctx is
// cancelled.
func follow(ctx context.Context, ctrl *player.Controller, out io.Writer, start, speed float64, interval time.Duration) error {
	if start > 0 {
		if err := ctrl.Seek(start); err != nil {
			return err
		}
	}
	if err := ctrl.Play(); err != nil {
		return err
	}

	enriched := ctrl.Enriched()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	began := time.Now()
	for {
		end := playbackEnd(ctrl, enriched != nil)
		pos := start + time.Since(began).Seconds()*speed
		if pos >= end {
			pos = end
		}
		if line, _, entered := ctrl.Tick(pos); entered {
			fmt.Fprintf(out, "[%s] %s\n", lyrics.FormatTimestamp(line.Time), line.Text)
		}
		if pos >= end {
			return ctrl.Ended()
		}

		select {
		case <-ctx.Done():
			_ = ctrl.Pause()
			fmt.Fprintf(out, "Stopped at %s\n", lyrics.FormatTimestamp(ctrl.Position()))
			return nil
		case <-enriched:
			enriched = nil
			if cover := ctrl.CoverURL(); cover != "" {
				fmt.Fprintf(out, "Cover: %s\n", cover)
			}
			if len(ctrl.Lyrics()) == 0 {
				fmt.Fprintln(out, "No lyrics available")
			}
		case <-ticker.C:
		}
	}
}

// playbackEnd is the audio length when known. Otherwise playback runs until
// the lyrics are in and then stops shortly after the last line.
func playbackEnd(ctrl *player.Controller, lyricsPending bool) float64 {
	if d := ctrl.Duration(); d > 0 {
		return d
	}
	if lyricsPending {
		return math.Inf(1)
	}
	if track := ctrl.Lyrics(); len(track) > 0 {
		return track[len(track)-1].Time + tailPad
	}
	return tailPad
}
