package siren

import "encoding/json"

// envelope wraps every catalog API response.
type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type wireAlbum struct {
	CID      string   `json:"cid"`
	Name     string   `json:"name"`
	CoverURL string   `json:"coverUrl"`
	Artistes []string `json:"artistes"`
}

type wireSongList struct {
	List []wireSongSummary `json:"list"`
}

// wireSongSummary appears with "artists" in the song list and "artistes"
// inside album details.
type wireSongSummary struct {
	CID      string   `json:"cid"`
	Name     string   `json:"name"`
	AlbumCID string   `json:"albumCid"`
	Artists  []string `json:"artists"`
	Artistes []string `json:"artistes"`
}

type wireSong struct {
	CID        string   `json:"cid"`
	Name       string   `json:"name"`
	AlbumCID   string   `json:"albumCid"`
	SourceURL  string   `json:"sourceUrl"`
	LyricURL   *string  `json:"lyricUrl"`
	MVURL      *string  `json:"mvUrl"`
	MVCoverURL *string  `json:"mvCoverUrl"`
	Artists    []string `json:"artists"`
}

type wireAlbumDetail struct {
	CID        string            `json:"cid"`
	Name       string            `json:"name"`
	Intro      string            `json:"intro"`
	Belong     string            `json:"belong"`
	CoverURL   string            `json:"coverUrl"`
	CoverDeURL string            `json:"coverDeUrl"`
	Songs      []wireSongSummary `json:"songs"`
}
