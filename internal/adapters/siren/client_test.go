package siren_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/ewilliams-labs/siren/internal/adapters/siren"
	"github.com/ewilliams-labs/siren/internal/core/domain"
	"github.com/ewilliams-labs/siren/internal/core/ports"
)

func newTestClient(ts *httptest.Server) *siren.Client {
	return siren.NewClient(ts.Client(), ts.Client(), ts.URL, siren.Settings{
		MaxRetries:   2,
		RetryBackoff: time.Millisecond,
	})
}

func serveJSON(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}
}

func TestClient_ListAlbums(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /albums", serveJSON(`{"code":0,"msg":"","data":[
		{"cid":"1001","name":"Ember Tides","coverUrl":"https://cdn.test/1.jpg","artistes":["Siren Records"]},
		{"cid":"1002","name":"Quiet Hours","coverUrl":"https://cdn.test/2.jpg","artistes":null}
	]}`))
	ts := httptest.NewServer(mux)
	defer ts.Close()

	got, err := newTestClient(ts).ListAlbums(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []domain.Album{
		{CID: "1001", Name: "Ember Tides", CoverURL: "https://cdn.test/1.jpg", Artists: []string{"Siren Records"}},
		{CID: "1002", Name: "Quiet Hours", CoverURL: "https://cdn.test/2.jpg", Artists: []string{}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("albums: got %+v, want %+v", got, want)
	}
}

func TestClient_ListSongs(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /songs", serveJSON(`{"code":0,"msg":"","data":{"list":[
		{"cid":"s1","name":"Harbor Lights","albumCid":"1002","artists":["Lowlight"]}
	],"autoplay":null}}`))
	ts := httptest.NewServer(mux)
	defer ts.Close()

	got, err := newTestClient(ts).ListSongs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].AlbumCID != "1002" || got[0].Artists[0] != "Lowlight" {
		t.Fatalf("unexpected songs: %+v", got)
	}
}

func TestClient_GetSong(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    domain.Song
		wantErr error
	}{
		{
			name: "maps song with lyric url",
			handler: serveJSON(`{"code":0,"msg":"","data":{"cid":"s1","name":"Harbor Lights","albumCid":"1002",
				"sourceUrl":"https://cdn.test/s1.wav","lyricUrl":"https://cdn.test/s1.lrc","mvUrl":null,"mvCoverUrl":null,
				"artists":["Lowlight"]}}`),
			want: domain.Song{
				CID: "s1", Name: "Harbor Lights", AlbumCID: "1002",
				SourceURL: "https://cdn.test/s1.wav", LyricURL: "https://cdn.test/s1.lrc",
				Artists: []string{"Lowlight"},
			},
		},
		{
			name:    "null data is not found",
			handler: serveJSON(`{"code":0,"msg":"","data":null}`),
			wantErr: domain.ErrNotFound,
		},
		{
			name: "404 is not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(tt.handler)
			defer ts.Close()

			got, err := newTestClient(ts).GetSong(context.Background(), "s1")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("song: got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestClient_GetAlbumDetail(t *testing.T) {
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		serveJSON(`{"code":0,"msg":"","data":{"cid":"1002","name":"Quiet Hours","intro":"night","belong":"arknights",
			"coverUrl":"","coverDeUrl":"https://cdn.test/de.jpg","songs":[{"cid":"s1","name":"Harbor Lights","artistes":["Lowlight"]}]}}`)(w, r)
	}))
	defer ts.Close()

	got, err := newTestClient(ts).GetAlbumDetail(context.Background(), "1002")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/album/1002/detail" {
		t.Fatalf("path: got %q", gotPath)
	}
	if got.Cover() != "https://cdn.test/de.jpg" {
		t.Fatalf("cover fallback: got %q", got.Cover())
	}
	if len(got.Songs) != 1 || got.Songs[0].AlbumCID != "1002" || got.Songs[0].Artists[0] != "Lowlight" {
		t.Fatalf("songs: %+v", got.Songs)
	}
}

func TestClient_UpstreamErrorCode(t *testing.T) {
	ts := httptest.NewServer(serveJSON(`{"code":1,"msg":"bad cid","data":null}`))
	defer ts.Close()

	_, err := newTestClient(ts).ListAlbums(context.Background())
	if !siren.IsUpstreamError(err) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestClient_Fetch(t *testing.T) {
	var gotRange, gotUA string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRange = r.Header.Get("Range")
		gotUA = r.Header.Get("User-Agent")
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "audio/wav")
		w.Header().Set("Content-Range", "bytes 0-3/10")
		w.WriteHeader(http.StatusPartialContent)
		_, _ = io.WriteString(w, "RIFF")
	}))
	defer ts.Close()

	c := newTestClient(ts)
	media, err := c.Fetch(context.Background(), ports.MediaRequest{URL: ts.URL + "/a.wav", Range: "bytes=0-3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer media.Body.Close()

	if gotRange != "bytes=0-3" {
		t.Errorf("range forwarded: got %q", gotRange)
	}
	if gotUA == "" {
		t.Errorf("expected a user agent")
	}
	if media.StatusCode != http.StatusPartialContent || media.ContentRange != "bytes 0-3/10" || media.ContentType != "audio/wav" {
		t.Errorf("unexpected media: %+v", media)
	}
	body, _ := io.ReadAll(media.Body)
	if string(body) != "RIFF" {
		t.Errorf("body: got %q", body)
	}

	_, err = c.Fetch(context.Background(), ports.MediaRequest{URL: ts.URL + "/missing"})
	var statusErr *siren.MediaStatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected media status error 404, got %v", err)
	}
}
