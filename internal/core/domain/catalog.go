package domain

import (
	"errors"
	"strings"
)

var (
	ErrNotFound        = errors.New("domain: not found")
	ErrInvalidArgument = errors.New("domain: invalid argument")
)

// Album is an entry of the album grid.
type Album struct {
	CID      string   `json:"cid"`
	Name     string   `json:"name"`
	CoverURL string   `json:"coverUrl"`
	Artists  []string `json:"artistes"`
}

// SongSummary is a song as listed in the catalog or inside an album.
type SongSummary struct {
	CID      string   `json:"cid"`
	Name     string   `json:"name"`
	AlbumCID string   `json:"albumCid,omitempty"`
	Artists  []string `json:"artistes"`
}

// AlbumDetail is an album with its track list.
type AlbumDetail struct {
	CID        string        `json:"cid"`
	Name       string        `json:"name"`
	Intro      string        `json:"intro"`
	Belong     string        `json:"belong"`
	CoverURL   string        `json:"coverUrl"`
	CoverDeURL string        `json:"coverDeUrl"`
	Songs      []SongSummary `json:"songs"`
}

// Cover prefers the regular cover and falls back to the alternate one.
func (a AlbumDetail) Cover() string {
	if a.CoverURL != "" {
		return a.CoverURL
	}
	return a.CoverDeURL
}

// FilterSongs keeps songs whose name or an artist contains query,
// case-insensitively. A blank query returns the album unchanged.
func (a AlbumDetail) FilterSongs(query string) AlbumDetail {
	q := normalizeQuery(query)
	if q == "" {
		return a
	}
	filtered := a
	filtered.Songs = make([]SongSummary, 0, len(a.Songs))
	for _, s := range a.Songs {
		if s.matches(q) {
			filtered.Songs = append(filtered.Songs, s)
		}
	}
	return filtered
}

// Song is the full song record used for playback.
type Song struct {
	CID        string   `json:"cid"`
	Name       string   `json:"name"`
	AlbumCID   string   `json:"albumCid"`
	SourceURL  string   `json:"sourceUrl"`
	LyricURL   string   `json:"lyricUrl"`
	MVURL      string   `json:"mvUrl"`
	MVCoverURL string   `json:"mvCoverUrl"`
	Artists    []string `json:"artists"`
}

// Catalog is a snapshot of every album and song.
type Catalog struct {
	Albums []Album
	Songs  []SongSummary
}

// IsEmpty reports whether the snapshot holds no albums.
func (c Catalog) IsEmpty() bool {
	return len(c.Albums) == 0
}

// FilterAlbums returns albums matching query by name or artist, plus albums
// containing a matching song. Catalog order is preserved and a blank query
// returns every album.
func (c Catalog) FilterAlbums(query string) []Album {
	q := normalizeQuery(query)
	if q == "" {
		return c.Albums
	}

	matched := make(map[string]struct{})
	for _, a := range c.Albums {
		if containsFold(a.Name, q) || anyContainsFold(a.Artists, q) {
			matched[a.CID] = struct{}{}
		}
	}
	for _, s := range c.Songs {
		if s.AlbumCID != "" && s.matches(q) {
			matched[s.AlbumCID] = struct{}{}
		}
	}

	out := make([]Album, 0, len(matched))
	for _, a := range c.Albums {
		if _, ok := matched[a.CID]; ok {
			out = append(out, a)
		}
	}
	return out
}

func (s SongSummary) matches(q string) bool {
	return containsFold(s.Name, q) || anyContainsFold(s.Artists, q)
}

// normalizeQuery lower-cases query for matching; blank queries become "".
// Surrounding spaces of a non-blank query are significant.
func normalizeQuery(query string) string {
	if strings.TrimSpace(query) == "" {
		return ""
	}
	return strings.ToLower(query)
}

// containsFold expects q already lower-cased.
func containsFold(s, q string) bool {
	return strings.Contains(strings.ToLower(s), q)
}

func anyContainsFold(values []string, q string) bool {
	for _, v := range values {
		if containsFold(v, q) {
			return true
		}
	}
	return false
}
