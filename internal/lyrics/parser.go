// Package lyrics parses timed lyric files and tracks which line is active
// during playback.
package lyrics

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Line is a single timed lyric line.
type Line struct {
	Time float64 `json:"time"` // seconds from the start of the song
	Text string  `json:"text"`
}

// Track is the ordered lyric sequence of one song, sorted ascending by time.
// A Track is never mutated after Parse returns it.
type Track []Line

var (
	lineBreak = regexp.MustCompile(`\r?\n`)
	timeTag   = regexp.MustCompile(`\[(\d+):(\d+)(?:\.(\d+))?\]`)
)

// Parse converts timed-lyrics text into a Track.
//
// Every [MM:SS] or [MM:SS.fff] tag on a line emits one Line carrying the
// line's text with all tags stripped. Lines without tags or without text are
// dropped. The fraction is read as a raw count of thousandths, so [00:01.5]
// is 1.005s and not 1.5s. Input that does not match is ignored, never an error.
func Parse(text string) Track {
	if text == "" {
		return Track{}
	}

	parsed := Track{}
	for _, raw := range lineBreak.Split(text, -1) {
		tags := timeTag.FindAllStringSubmatch(raw, -1)
		if len(tags) == 0 {
			continue
		}
		lyric := strings.TrimSpace(timeTag.ReplaceAllString(raw, ""))
		if lyric == "" {
			continue
		}
		for _, tag := range tags {
			parsed = append(parsed, Line{Time: tagSeconds(tag), Text: lyric})
		}
	}

	sort.SliceStable(parsed, func(i, j int) bool {
		return parsed[i].Time < parsed[j].Time
	})
	return parsed
}

// tagSeconds expects a submatch of timeTag: full match, minutes, seconds, fraction.
func tagSeconds(tag []string) float64 {
	minutes := digits(tag[1])
	seconds := digits(tag[2])
	fraction := digits(tag[3])
	return minutes*60 + seconds + fraction/1000
}

// digits reads a run of ASCII digits; the regexp guarantees the shape, and
// ParseFloat copes with runs too long for an int.
func digits(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
