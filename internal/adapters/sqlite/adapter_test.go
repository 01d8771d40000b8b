package sqlite

import (
	"context"
	"reflect"
	"testing"

	"github.com/ewilliams-labs/siren/internal/core/domain"
)

func TestAdapter_SaveAndLoadCatalog(t *testing.T) {
	tests := []struct {
		name    string
		saves   []domain.Catalog
		want    domain.Catalog
	}{
		{
			name: "empty store",
			want: domain.Catalog{Albums: []domain.Album{}, Songs: []domain.SongSummary{}},
		},
		{
			name: "round trip keeps order",
			saves: []domain.Catalog{{
				Albums: []domain.Album{
					{CID: "a2", Name: "Quiet Hours", CoverURL: "https://img.test/2.jpg", Artists: []string{"Lowlight"}},
					{CID: "a1", Name: "Ember Tides", Artists: []string{}},
				},
				Songs: []domain.SongSummary{
					{CID: "s1", Name: "Harbor Lights", AlbumCID: "a2", Artists: []string{"Lowlight", "Guest"}},
				},
			}},
			want: domain.Catalog{
				Albums: []domain.Album{
					{CID: "a2", Name: "Quiet Hours", CoverURL: "https://img.test/2.jpg", Artists: []string{"Lowlight"}},
					{CID: "a1", Name: "Ember Tides", Artists: []string{}},
				},
				Songs: []domain.SongSummary{
					{CID: "s1", Name: "Harbor Lights", AlbumCID: "a2", Artists: []string{"Lowlight", "Guest"}},
				},
			},
		},
		{
			name: "second save replaces snapshot",
			saves: []domain.Catalog{
				{Albums: []domain.Album{{CID: "old", Name: "Old"}}},
				{Albums: []domain.Album{{CID: "new", Name: "New", Artists: nil}}},
			},
			want: domain.Catalog{
				Albums: []domain.Album{{CID: "new", Name: "New", Artists: []string{}}},
				Songs:  []domain.SongSummary{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewAdapter(":memory:")
			if err != nil {
				t.Fatalf("new adapter: %v", err)
			}
			defer a.Close()

			for _, c := range tt.saves {
				if err := a.SaveCatalog(context.Background(), c); err != nil {
					t.Fatalf("save catalog: %v", err)
				}
			}

			got, err := a.LoadCatalog(context.Background())
			if err != nil {
				t.Fatalf("load catalog: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("catalog mismatch:\n got %+v\nwant %+v", got, tt.want)
			}
		})
	}
}
