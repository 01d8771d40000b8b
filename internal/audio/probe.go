// Package audio measures the length of audio sources.
package audio

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hajimehoshi/go-mp3"
)

var (
	ErrUnsupportedFormat = errors.New("audio: unsupported format")
	ErrMalformed         = errors.New("audio: malformed stream")
)

// go-mp3 always decodes to 16-bit stereo.
const mp3BytesPerFrame = 4

// Format is a container the probe understands.
type Format int

const (
	Unknown Format = iota
	WAV
	MP3
)

func (f Format) String() string {
	switch f {
	case WAV:
		return "wav"
	case MP3:
		return "mp3"
	default:
		return "unknown"
	}
}

// DetectFormat picks a format from the content type, falling back to the
// leading bytes of the stream.
func DetectFormat(contentType string, head []byte) Format {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "wav"):
		return WAV
	case strings.Contains(ct, "mpeg"), strings.Contains(ct, "mp3"):
		return MP3
	}

	switch {
	case len(head) >= 12 && bytes.Equal(head[0:4], []byte("RIFF")) && bytes.Equal(head[8:12], []byte("WAVE")):
		return WAV
	case len(head) >= 3 && bytes.Equal(head[0:3], []byte("ID3")):
		return MP3
	case len(head) >= 2 && head[0] == 0xFF && head[1]&0xE0 == 0xE0:
		return MP3
	}
	return Unknown
}

// ProbeDuration returns the length of the audio in r in seconds. WAV streams
// are measured from their header; MP3 streams are decoded in full.
func ProbeDuration(r io.Reader, contentType string) (float64, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(12)

	switch DetectFormat(contentType, head) {
	case WAV:
		return wavDuration(br)
	case MP3:
		return mp3Duration(br)
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, contentType)
	}
}

func mp3Duration(r io.Reader) (float64, error) {
	d, err := mp3.NewDecoder(r)
	if err != nil {
		return 0, fmt.Errorf("audio: mp3: %w", err)
	}
	if d.SampleRate() <= 0 {
		return 0, fmt.Errorf("%w: mp3 sample rate %d", ErrMalformed, d.SampleRate())
	}
	n, err := io.Copy(io.Discard, d)
	if err != nil {
		return 0, fmt.Errorf("audio: mp3 decode: %w", err)
	}
	return float64(n) / float64(mp3BytesPerFrame*d.SampleRate()), nil
}

// wavDuration walks RIFF chunks until it has both the fmt byte rate and the
// data chunk size.
func wavDuration(r io.Reader) (float64, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return 0, fmt.Errorf("%w: riff header: %v", ErrMalformed, err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return 0, fmt.Errorf("%w: not a RIFF/WAVE stream", ErrMalformed)
	}

	var byteRate uint32
	for {
		var hdr [8]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return 0, fmt.Errorf("%w: missing data chunk", ErrMalformed)
		}
		id := string(hdr[0:4])
		size := binary.LittleEndian.Uint32(hdr[4:8])

		switch id {
		case "fmt ":
			if size < 16 {
				return 0, fmt.Errorf("%w: fmt chunk of %d bytes", ErrMalformed, size)
			}
			fmtChunk := make([]byte, size)
			if _, err := io.ReadFull(r, fmtChunk); err != nil {
				return 0, fmt.Errorf("%w: fmt chunk: %v", ErrMalformed, err)
			}
			byteRate = binary.LittleEndian.Uint32(fmtChunk[8:12])
			if size%2 == 1 {
				if _, err := io.CopyN(io.Discard, r, 1); err != nil {
					return 0, fmt.Errorf("%w: fmt padding: %v", ErrMalformed, err)
				}
			}
		case "data":
			if byteRate == 0 {
				return 0, fmt.Errorf("%w: data before fmt", ErrMalformed)
			}
			return float64(size) / float64(byteRate), nil
		default:
			// chunks are word aligned
			skip := int64(size) + int64(size%2)
			if _, err := io.CopyN(io.Discard, r, skip); err != nil {
				return 0, fmt.Errorf("%w: chunk %q: %v", ErrMalformed, id, err)
			}
		}
	}
}
