package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/asadsehto/savetube/internal/model"
	"github.com/asadsehto/savetube/internal/store"
)

func newExportCommand(cctx *commandContext) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Dump videos and playlists as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			return cctx.withStore(ctx, func(st store.Store) error {
				snap, err := st.Get(ctx, store.KeyVideos, store.KeyPlaylists)
				if err != nil {
					return err
				}
				if snap.Videos == nil {
					snap.Videos = []model.VideoRecord{}
				}
				if snap.Playlists == nil {
					snap.Playlists = []model.Playlist{}
				}

				out := cmd.OutOrStdout()
				if outPath != "" {
					f, err := os.Create(outPath)
					if err != nil {
						return err
					}
					defer f.Close()
					out = f
				}

				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(model.ExportResponse{
					Videos:      snap.Videos,
					Playlists:   snap.Playlists,
					GeneratedAt: time.Now().UTC(),
				})
			})
		},
	}

	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write to a file instead of stdout")
	return cmd
}
