// Package sqlite provides a SQLite-backed implementation of the catalog snapshot port.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously

	"github.com/ewilliams-labs/siren/internal/core/domain"
	"github.com/ewilliams-labs/siren/internal/core/ports"
)

// Adapter implements the catalog repository port for SQLite
type Adapter struct {
	db *sql.DB
}

var _ ports.CatalogRepository = (*Adapter)(nil)

// NewAdapter creates a connection and runs the schema migration
func NewAdapter(storagePath string) (*Adapter, error) {
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	// :memory: databases are per-connection
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	adapter := &Adapter{db: db}
	if err := adapter.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return adapter, nil
}

// Close ensures the DB connection is closed gracefully
func (a *Adapter) Close() error {
	return a.db.Close()
}

// SaveCatalog replaces the stored snapshot with c in one transaction.
func (a *Adapter) SaveCatalog(ctx context.Context, c domain.Catalog) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM songs"); err != nil {
		return fmt.Errorf("failed to clear songs: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM albums"); err != nil {
		return fmt.Errorf("failed to clear albums: %w", err)
	}

	stmtAlbum, err := tx.PrepareContext(ctx, `
		INSERT INTO albums (cid, name, cover_url, artists, position)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(cid) DO UPDATE SET
			name=excluded.name,
			cover_url=excluded.cover_url,
			artists=excluded.artists,
			position=excluded.position;
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare album insert: %w", err)
	}
	defer stmtAlbum.Close()

	for i, al := range c.Albums {
		artists, err := encodeArtists(al.Artists)
		if err != nil {
			return err
		}
		if _, err := stmtAlbum.ExecContext(ctx, al.CID, al.Name, al.CoverURL, artists, i); err != nil {
			return fmt.Errorf("failed to save album %s: %w", al.CID, err)
		}
	}

	stmtSong, err := tx.PrepareContext(ctx, `
		INSERT INTO songs (cid, name, album_cid, artists, position)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(cid) DO UPDATE SET
			name=excluded.name,
			album_cid=excluded.album_cid,
			artists=excluded.artists,
			position=excluded.position;
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare song insert: %w", err)
	}
	defer stmtSong.Close()

	for i, s := range c.Songs {
		artists, err := encodeArtists(s.Artists)
		if err != nil {
			return err
		}
		if _, err := stmtSong.ExecContext(ctx, s.CID, s.Name, s.AlbumCID, artists, i); err != nil {
			return fmt.Errorf("failed to save song %s: %w", s.CID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("transaction commit failed: %w", err)
	}
	return nil
}

// LoadCatalog returns the stored snapshot in its original order. An empty
// store yields an empty catalog, not an error.
func (a *Adapter) LoadCatalog(ctx context.Context) (domain.Catalog, error) {
	catalog := domain.Catalog{Albums: []domain.Album{}, Songs: []domain.SongSummary{}}

	albumRows, err := a.db.QueryContext(ctx, "SELECT cid, name, IFNULL(cover_url, ''), artists FROM albums ORDER BY position ASC")
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("failed to load albums: %w", err)
	}
	defer albumRows.Close()

	for albumRows.Next() {
		var al domain.Album
		var artists string
		if err := albumRows.Scan(&al.CID, &al.Name, &al.CoverURL, &artists); err != nil {
			return domain.Catalog{}, fmt.Errorf("failed to scan album: %w", err)
		}
		if al.Artists, err = decodeArtists(artists); err != nil {
			return domain.Catalog{}, err
		}
		catalog.Albums = append(catalog.Albums, al)
	}
	if err := albumRows.Err(); err != nil {
		return domain.Catalog{}, fmt.Errorf("failed to iterate albums: %w", err)
	}

	songRows, err := a.db.QueryContext(ctx, "SELECT cid, name, IFNULL(album_cid, ''), artists FROM songs ORDER BY position ASC")
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("failed to load songs: %w", err)
	}
	defer songRows.Close()

	for songRows.Next() {
		var s domain.SongSummary
		var artists string
		if err := songRows.Scan(&s.CID, &s.Name, &s.AlbumCID, &artists); err != nil {
			return domain.Catalog{}, fmt.Errorf("failed to scan song: %w", err)
		}
		if s.Artists, err = decodeArtists(artists); err != nil {
			return domain.Catalog{}, err
		}
		catalog.Songs = append(catalog.Songs, s)
	}
	if err := songRows.Err(); err != nil {
		return domain.Catalog{}, fmt.Errorf("failed to iterate songs: %w", err)
	}

	return catalog, nil
}

func encodeArtists(artists []string) (string, error) {
	if artists == nil {
		artists = []string{}
	}
	b, err := json.Marshal(artists)
	if err != nil {
		return "", fmt.Errorf("failed to encode artists: %w", err)
	}
	return string(b), nil
}

func decodeArtists(raw string) ([]string, error) {
	artists := []string{}
	if strings.TrimSpace(raw) == "" {
		return artists, nil
	}
	if err := json.Unmarshal([]byte(raw), &artists); err != nil {
		return nil, fmt.Errorf("failed to decode artists: %w", err)
	}
	return artists, nil
}

func (a *Adapter) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS albums (
		cid TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		cover_url TEXT,
		artists TEXT NOT NULL DEFAULT '[]',
		position INTEGER NOT NULL,
		refreshed_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS songs (
		cid TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		album_cid TEXT,
		artists TEXT NOT NULL DEFAULT '[]',
		position INTEGER NOT NULL,
		refreshed_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_songs_album ON songs(album_cid);
	`
	_, err := a.db.Exec(query)
	return err
}
