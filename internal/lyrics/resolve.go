package lyrics

import (
	"math"
	"sort"
)

// ActiveIndex returns the index of the last line whose time is <= t, or -1
// when t precedes every line. Ties resolve to the later line.
func (tr Track) ActiveIndex(t float64) int {
	if len(tr) == 0 || math.IsNaN(t) {
		return -1
	}
	return sort.Search(len(tr), func(i int) bool {
		return tr[i].Time > t
	}) - 1
}

// Window returns up to before lines preceding index, the line itself and up to
// after lines following it. An index of -1 yields the first after+1 lines.
func (tr Track) Window(index, before, after int) Track {
	if len(tr) == 0 {
		return Track{}
	}
	start := index - before
	if start < 0 {
		start = 0
	}
	end := index + after + 1
	if index < 0 {
		end = after + 1
	}
	if end > len(tr) {
		end = len(tr)
	}
	if start >= end {
		return Track{}
	}
	return tr[start:end]
}

// Cursor follows playback through a Track and reports when a new line
// becomes active. It is not safe for concurrent use.
type Cursor struct {
	track  Track
	active int
}

// NewCursor returns a cursor positioned before the first line of track.
func NewCursor(track Track) *Cursor {
	return &Cursor{track: track, active: -1}
}

// Reset replaces the track wholesale and forgets the active line.
func (c *Cursor) Reset(track Track) {
	c.track = track
	c.active = -1
}

// Track returns the track the cursor follows.
func (c *Cursor) Track() Track {
	return c.track
}

// Active returns the current active index, -1 for none.
func (c *Cursor) Active() int {
	return c.active
}

// Update resolves the active line for playback time t. entered is true only
// on the call where a different line becomes active; repeated ticks on the
// same line, and falling back to no line, report false.
func (c *Cursor) Update(t float64) (index int, entered bool) {
	index = c.track.ActiveIndex(t)
	if index == c.active {
		return index, false
	}
	c.active = index
	return index, index >= 0
}
