package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/siren/internal/core/domain"
)

var albumsCmd = &cobra.Command{
	Use:   "albums [query]",
	Short: "List albums, optionally filtered by album, artist or song",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAlbums,
}

var albumCmd = &cobra.Command{
	Use:   "album <cid> [query]",
	Short: "Show an album and its songs, optionally filtered",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runAlbum,
}

func init() {
	rootCmd.AddCommand(albumsCmd)
	rootCmd.AddCommand(albumCmd)
}

func runAlbums(cmd *cobra.Command, args []string) error {
	client := newClient()

	var (
		albums []domain.Album
		err    error
	)
	if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
		albums, err = client.Search(cmd.Context(), args[0])
	} else {
		albums, err = client.ListAlbums(cmd.Context())
	}
	if err != nil {
		return fmt.Errorf("list albums: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(albums) == 0 {
		fmt.Fprintln(out, "No albums found")
		return nil
	}
	return writeAlbums(out, albums)
}

func writeAlbums(out io.Writer, albums []domain.Album) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CID\tNAME\tARTISTS")
	for _, a := range albums {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", a.CID, a.Name, strings.Join(a.Artists, ", "))
	}
	return tw.Flush()
}

func runAlbum(cmd *cobra.Command, args []string) error {
	detail, err := newClient().GetAlbumDetail(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("load album %s: %w", args[0], err)
	}
	if len(args) == 2 {
		detail = detail.FilterSongs(args[1])
	}
	return writeAlbumDetail(cmd.OutOrStdout(), detail)
}

func writeAlbumDetail(out io.Writer, detail domain.AlbumDetail) error {
	fmt.Fprintf(out, "%s (%s)\n", detail.Name, detail.CID)
	if detail.Belong != "" {
		fmt.Fprintf(out, "Belongs to: %s\n", detail.Belong)
	}
	if cover := detail.Cover(); cover != "" {
		fmt.Fprintf(out, "Cover: %s\n", cover)
	}
	if detail.Intro != "" {
		fmt.Fprintf(out, "\n%s\n", detail.Intro)
	}
	fmt.Fprintln(out)

	if len(detail.Songs) == 0 {
		fmt.Fprintln(out, "No songs found")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tCID\tSONG\tARTISTS")
	for i, s := range detail.Songs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, s.CID, s.Name, strings.Join(s.Artists, ", "))
	}
	return tw.Flush()
}
