package domain

import (
	"reflect"
	"testing"
)

func testCatalog() Catalog {
	return Catalog{
		Albums: []Album{
			{CID: "a1", Name: "Ember Tides", Artists: []string{"Siren Records"}},
			{CID: "a2", Name: "Quiet Hours", Artists: []string{"Lowlight"}},
			{CID: "a3", Name: "Signal", Artists: []string{"Siren Records", "Guest"}},
		},
		Songs: []SongSummary{
			{CID: "s1", Name: "Harbor Lights", AlbumCID: "a2", Artists: []string{"Lowlight"}},
			{CID: "s2", Name: "Static", AlbumCID: "a3", Artists: []string{"Featured Voice"}},
			{CID: "s3", Name: "Orphan", Artists: []string{"Nobody"}},
		},
	}
}

func albumCIDs(albums []Album) []string {
	out := make([]string, 0, len(albums))
	for _, a := range albums {
		out = append(out, a.CID)
	}
	return out
}

func TestCatalog_FilterAlbums(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "blank query returns all", query: "   ", want: []string{"a1", "a2", "a3"}},
		{name: "album name case insensitive", query: "EMBER", want: []string{"a1"}},
		{name: "album artist", query: "siren", want: []string{"a1", "a3"}},
		{name: "song name pulls in its album", query: "harbor", want: []string{"a2"}},
		{name: "song artist pulls in its album", query: "featured", want: []string{"a3"}},
		{name: "song without album is ignored", query: "orphan", want: []string{}},
		{name: "catalog order preserved", query: "s", want: []string{"a1", "a2", "a3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := albumCIDs(testCatalog().FilterAlbums(tt.query))
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("FilterAlbums(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestAlbumDetail_FilterSongs(t *testing.T) {
	detail := AlbumDetail{
		CID: "a1",
		Songs: []SongSummary{
			{CID: "s1", Name: "Harbor Lights", Artists: []string{"Lowlight"}},
			{CID: "s2", Name: "Static", Artists: []string{"Featured Voice"}},
		},
	}

	if got := detail.FilterSongs(""); len(got.Songs) != 2 {
		t.Fatalf("expected blank query to keep 2 songs, got %d", len(got.Songs))
	}

	got := detail.FilterSongs("voice")
	if len(got.Songs) != 1 || got.Songs[0].CID != "s2" {
		t.Fatalf("expected only s2, got %+v", got.Songs)
	}
	if len(detail.Songs) != 2 {
		t.Fatalf("filter must not mutate the original album")
	}
}

func TestAlbumDetail_Cover(t *testing.T) {
	if got := (AlbumDetail{CoverURL: "a", CoverDeURL: "b"}).Cover(); got != "a" {
		t.Fatalf("expected primary cover, got %q", got)
	}
	if got := (AlbumDetail{CoverDeURL: "b"}).Cover(); got != "b" {
		t.Fatalf("expected fallback cover, got %q", got)
	}
}
