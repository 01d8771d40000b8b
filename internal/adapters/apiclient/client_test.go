package apiclient_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/ewilliams-labs/siren/internal/adapters/apiclient"
	"github.com/ewilliams-labs/siren/internal/core/domain"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /albums", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"code":0,"msg":"","data":[{"cid":"a1","name":"Ember Tides","coverUrl":"","artistes":["Siren Records"]}]}`)
	})
	mux.HandleFunc("GET /search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "low tide" {
			_, _ = io.WriteString(w, `{"code":0,"msg":"","data":[]}`)
			return
		}
		_, _ = io.WriteString(w, `{"code":0,"msg":"","data":[{"cid":"a2","name":"Quiet Hours","coverUrl":"","artistes":[]}]}`)
	})
	mux.HandleFunc("GET /song/{cid}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("cid") != "s1" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"error":"domain: not found","code":"NOT_FOUND"}`)
			return
		}
		_, _ = io.WriteString(w, `{"code":0,"msg":"","data":{"cid":"s1","name":"Harbor Lights","albumCid":"a2",
			"sourceUrl":"https://cdn.test/s1.wav","lyricUrl":"https://cdn.test/s1.lrc","mvUrl":"","mvCoverUrl":"","artists":["Lowlight"]}}`)
	})
	mux.HandleFunc("GET /album/{cid}/detail", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"code":0,"msg":"","data":{"cid":"`+r.PathValue("cid")+`","name":"Quiet Hours",
			"coverDeUrl":"https://cdn.test/de.jpg","songs":[{"cid":"s1","name":"Harbor Lights","artistes":["Lowlight"]}]}}`)
	})
	mux.HandleFunc("GET /lyrics/{url...}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("url") != "https://cdn.test/s1.lrc" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":"unexpected url `+r.PathValue("url")+`"}`)
			return
		}
		_, _ = io.WriteString(w, "[00:01.00]hello")
	})
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":"ok"}`)
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func TestClient_Catalog(t *testing.T) {
	ts := newTestServer(t)
	c := apiclient.NewClient(ts.Client(), ts.URL+"/")
	ctx := context.Background()

	albums, err := c.ListAlbums(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(albums) != 1 || albums[0].Artists[0] != "Siren Records" {
		t.Fatalf("albums: %+v", albums)
	}

	found, err := c.Search(ctx, "low tide")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(found) != 1 || found[0].CID != "a2" {
		t.Fatalf("search: %+v", found)
	}

	song, err := c.GetSong(ctx, "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if song.LyricURL != "https://cdn.test/s1.lrc" || song.Artists[0] != "Lowlight" {
		t.Fatalf("song: %+v", song)
	}

	detail, err := c.GetAlbumDetail(ctx, "a2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.CID != "a2" || detail.Cover() != "https://cdn.test/de.jpg" || len(detail.Songs) != 1 {
		t.Fatalf("detail: %+v", detail)
	}
}

func TestClient_GetLyrics(t *testing.T) {
	ts := newTestServer(t)
	c := apiclient.NewClient(ts.Client(), ts.URL)

	text, err := c.GetLyrics(context.Background(), "https://cdn.test/s1.lrc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "[00:01.00]hello" {
		t.Fatalf("lyrics: got %q", text)
	}
}

func TestClient_Errors(t *testing.T) {
	ts := newTestServer(t)
	c := apiclient.NewClient(ts.Client(), ts.URL)

	_, err := c.GetSong(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	var apiErr *apiclient.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != "NOT_FOUND" {
		t.Fatalf("expected api error with code, got %v", err)
	}

	_, err = apiclient.NewClient(ts.Client(), ts.URL+"/v2").ListAlbums(context.Background())
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 api error for unknown route, got %v", err)
	}
}

func TestClient_ProxyURLs(t *testing.T) {
	c := apiclient.NewClient(nil, "http://localhost:5000/api")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{
			name: "audio",
			got:  c.AudioURL("https://cdn.test/a b.wav"),
			want: "http://localhost:5000/api/audio?url=" + url.QueryEscape("https://cdn.test/a b.wav"),
		},
		{
			name: "image",
			got:  c.ImageURL("https://cdn.test/c.jpg"),
			want: "http://localhost:5000/api/image?url=https%3A%2F%2Fcdn.test%2Fc.jpg",
		},
		{
			name: "empty source",
			got:  c.AudioURL(""),
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestClient_WaitReady(t *testing.T) {
	ts := newTestServer(t)

	if err := apiclient.NewClient(ts.Client(), ts.URL).WaitReady(context.Background(), time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := apiclient.NewClient(ts.Client(), ts.URL+"/v2").WaitReady(context.Background(), 300*time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout for a server without health endpoint")
	}
}
