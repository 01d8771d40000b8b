package player

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ewilliams-labs/siren/internal/core/domain"
	"github.com/ewilliams-labs/siren/internal/core/ports"
	"github.com/ewilliams-labs/siren/internal/lyrics"
)

// ErrSuperseded is returned by Load when a newer Load replaced it before the
// song metadata arrived.
var ErrSuperseded = errors.New("player: load superseded")

// Options configures a Controller.
type Options struct {
	// TransformLyrics, when set, rewrites lyric text before it is parsed.
	TransformLyrics func(string) string
}

// Controller owns the state of one player: the loaded song, its lyric cursor
// and the playback position. Methods are safe for concurrent use.
type Controller struct {
	src  ports.SongSource
	opts Options

	mu       sync.Mutex
	state    State
	session  string
	song     domain.Song
	audioURL string
	coverURL string
	cursor   *lyrics.Cursor
	position float64
	duration float64
	enriched chan struct{}
}

// NewController returns an idle controller reading from src.
func NewController(src ports.SongSource, opts Options) *Controller {
	done := make(chan struct{})
	close(done)
	return &Controller{
		src:      src,
		opts:     opts,
		state:    Idle,
		cursor:   lyrics.NewCursor(lyrics.Track{}),
		enriched: done,
	}
}

// Load switches the player to the song cid. It returns once the song metadata
// is in and the audio source is attached; the cover and lyrics follow in the
// background and Enriched reports when they land. Cancelling ctx after Load
// returns does not stop the background fetches.
func (c *Controller) Load(ctx context.Context, cid string) error {
	session := uuid.NewString()
	done := make(chan struct{})

	c.mu.Lock()
	// LoadRequested is accepted from every state
	_ = c.fire(LoadRequested)
	c.session = session
	c.song = domain.Song{}
	c.audioURL = ""
	c.coverURL = ""
	c.cursor.Reset(lyrics.Track{})
	c.position = 0
	c.duration = 0
	c.enriched = done
	c.mu.Unlock()

	slog.Debug("loading song", "cid", cid, "session", session)
	song, err := c.src.GetSong(ctx, cid)

	c.mu.Lock()
	if c.session != session {
		c.mu.Unlock()
		close(done)
		return ErrSuperseded
	}
	if err != nil {
		_ = c.fire(Error)
		c.mu.Unlock()
		close(done)
		return fmt.Errorf("player: failed to load song %s: %w", cid, err)
	}
	c.song = song
	c.audioURL = c.src.AudioURL(song.SourceURL)
	_ = c.fire(MetadataReceived)
	c.mu.Unlock()

	// enrichment outlives the caller's ctx; a newer Load supersedes it instead
	go c.enrich(context.WithoutCancel(ctx), session, song, done)
	return nil
}

// enrich fetches the cover and lyrics of song concurrently. Failures leave the
// player usable: no cover, or an empty lyric track.
func (c *Controller) enrich(ctx context.Context, session string, song domain.Song, done chan struct{}) {
	defer close(done)

	var (
		cover string
		track = lyrics.Track{}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if song.AlbumCID == "" {
			return nil
		}
		detail, err := c.src.GetAlbumDetail(gctx, song.AlbumCID)
		if err != nil {
			slog.Warn("failed to load album cover", "album", song.AlbumCID, "error", err)
			return nil
		}
		if u := detail.Cover(); u != "" {
			cover = c.src.ImageURL(u)
		}
		return nil
	})
	g.Go(func() error {
		if song.LyricURL == "" {
			return nil
		}
		text, err := c.src.GetLyrics(gctx, song.LyricURL)
		if err != nil {
			slog.Warn("failed to load lyrics", "song", song.CID, "error", err)
			return nil
		}
		if c.opts.TransformLyrics != nil {
			text = c.opts.TransformLyrics(text)
		}
		track = lyrics.Parse(text)
		return nil
	})
	_ = g.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != session {
		slog.Debug("dropping stale enrichment", "song", song.CID, "session", session)
		return
	}
	c.coverURL = cover
	c.cursor.Reset(track)
}

// fire applies trig to the current state. Callers hold mu.
func (c *Controller) fire(trig Trigger) error {
	s, err := next(c.state, trig)
	if err != nil {
		return err
	}
	c.state = s
	return nil
}

func (c *Controller) trigger(trig Trigger) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fire(trig)
}

// Play starts or resumes playback.
func (c *Controller) Play() error {
	return c.trigger(Play)
}

// Pause halts playback.
func (c *Controller) Pause() error {
	return c.trigger(Pause)
}

// Ended marks the end of the audio.
func (c *Controller) Ended() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fire(Ended); err != nil {
		return err
	}
	if c.duration > 0 {
		c.position = c.duration
	}
	return nil
}

// Fail moves the player to Failed after a playback error.
func (c *Controller) Fail(cause error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fire(Error); err != nil {
		return err
	}
	slog.Warn("playback failed", "song", c.song.CID, "error", cause)
	return nil
}

// Seek moves the playback position. The next Tick resolves the lyric line.
func (c *Controller) Seek(t float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fire(Seek); err != nil {
		return err
	}
	if t < 0 {
		t = 0
	}
	c.position = t
	return nil
}

// SetDuration records the audio length in seconds once it is known.
func (c *Controller) SetDuration(d float64) {
	c.mu.Lock()
	c.duration = d
	c.mu.Unlock()
}

// Tick records playback time t and resolves the active lyric line. entered
// is true only when t moved playback into a different line.
func (c *Controller) Tick(t float64) (line lyrics.Line, index int, entered bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = t
	index, entered = c.cursor.Update(t)
	if index >= 0 {
		line = c.cursor.Track()[index]
	}
	return line, index, entered
}

// Enriched returns a channel closed when the background work of the current
// load is finished.
func (c *Controller) Enriched() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enriched
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Song() domain.Song {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.song
}

func (c *Controller) Session() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *Controller) AudioURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.audioURL
}

// CoverURL is empty until enrichment finds a cover.
func (c *Controller) CoverURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.coverURL
}

// Lyrics returns the current track; empty until enrichment finishes.
func (c *Controller) Lyrics() lyrics.Track {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cursor.Track()
}

func (c *Controller) Position() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *Controller) Duration() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.duration
}
