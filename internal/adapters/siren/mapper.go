package siren

import "github.com/ewilliams-labs/siren/internal/core/domain"

func mapAlbums(in []wireAlbum) []domain.Album {
	out := make([]domain.Album, 0, len(in))
	for _, a := range in {
		out = append(out, domain.Album{
			CID:      a.CID,
			Name:     a.Name,
			CoverURL: a.CoverURL,
			Artists:  nonNil(a.Artistes),
		})
	}
	return out
}

func mapSongSummaries(in []wireSongSummary) []domain.SongSummary {
	out := make([]domain.SongSummary, 0, len(in))
	for _, s := range in {
		out = append(out, s.toDomain())
	}
	return out
}

func (s wireSongSummary) toDomain() domain.SongSummary {
	artists := s.Artists
	if len(artists) == 0 {
		artists = s.Artistes
	}
	return domain.SongSummary{
		CID:      s.CID,
		Name:     s.Name,
		AlbumCID: s.AlbumCID,
		Artists:  nonNil(artists),
	}
}

func (s wireSong) toDomain() domain.Song {
	return domain.Song{
		CID:        s.CID,
		Name:       s.Name,
		AlbumCID:   s.AlbumCID,
		SourceURL:  s.SourceURL,
		LyricURL:   deref(s.LyricURL),
		MVURL:      deref(s.MVURL),
		MVCoverURL: deref(s.MVCoverURL),
		Artists:    nonNil(s.Artists),
	}
}

// toDomain fills in the album cid on every song, which the detail payload omits.
func (d wireAlbumDetail) toDomain() domain.AlbumDetail {
	songs := mapSongSummaries(d.Songs)
	for i := range songs {
		if songs[i].AlbumCID == "" {
			songs[i].AlbumCID = d.CID
		}
	}
	return domain.AlbumDetail{
		CID:        d.CID,
		Name:       d.Name,
		Intro:      d.Intro,
		Belong:     d.Belong,
		CoverURL:   d.CoverURL,
		CoverDeURL: d.CoverDeURL,
		Songs:      songs,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
