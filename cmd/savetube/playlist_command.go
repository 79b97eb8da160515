package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/asadsehto/savetube/internal/model"
	"github.com/asadsehto/savetube/internal/state"
)

func newPlaylistCommand(cctx *commandContext) *cobra.Command {
	playlistCmd := &cobra.Command{
		Use:   "playlist",
		Short: "Create and manage playlists",
	}

	playlistCmd.AddCommand(newPlaylistCreateCommand(cctx))
	playlistCmd.AddCommand(newPlaylistListCommand(cctx))
	playlistCmd.AddCommand(newPlaylistShowCommand(cctx))
	playlistCmd.AddCommand(newPlaylistDeleteCommand(cctx))
	playlistCmd.AddCommand(newPlaylistAddCommand(cctx))
	playlistCmd.AddCommand(newPlaylistRemoveVideoCommand(cctx))

	return playlistCmd
}

// resolvePlaylist accepts a playlist id or a (case-insensitive) name.
func resolvePlaylist(ctx context.Context, app *state.App, ref string) (model.Playlist, error) {
	if err := app.Refresh(ctx, false); err != nil {
		return model.Playlist{}, err
	}
	for _, p := range app.State().Playlists {
		if p.ID == ref || model.NameEquals(p.Name, ref) {
			return p, nil
		}
	}
	return model.Playlist{}, state.ErrMissingPlaylist
}

func newPlaylistCreateCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create an empty playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cctx.withApp(cmd.Context(), func(app *state.App) error {
				p, err := app.CreatePlaylist(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created playlist %q (%s)\n", p.Name, p.ID)
				return nil
			})
		},
	}
}

func newPlaylistListCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List playlists",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cctx.withApp(cmd.Context(), func(app *state.App) error {
				if err := app.Refresh(cmd.Context(), false); err != nil {
					return err
				}
				vs := app.State()
				if len(vs.Playlists) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No playlists")
					return nil
				}

				rows := make([][]string, 0, len(vs.Playlists))
				for _, p := range vs.Playlists {
					rows = append(rows, []string{
						truncate(p.Name, 32),
						p.ID,
						strconv.Itoa(len(p.Videos)),
						p.CreatedAt.Local().Format("2006-01-02"),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Name", "ID", "Videos", "Created"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight},
				))
				return nil
			})
		},
	}
}

func newPlaylistShowCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <playlist>",
		Short: "Show a playlist's videos (live record fields overlaid)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cctx.withApp(cmd.Context(), func(app *state.App) error {
				p, err := resolvePlaylist(cmd.Context(), app, args[0])
				if err != nil {
					return err
				}

				videos := app.State().PlaylistVideos(p)
				if len(videos) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "Playlist %q is empty\n", p.Name)
					return nil
				}

				rows := make([][]string, 0, len(videos))
				for _, v := range videos {
					rows = append(rows, []string{
						truncate(v.Title, 48),
						truncate(v.URL, 64),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Title", "URL"},
					rows,
					[]columnAlignment{alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
}

func newPlaylistDeleteCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <playlist>",
		Short: "Delete a playlist (saved videos are kept)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cctx.withApp(cmd.Context(), func(app *state.App) error {
				p, err := resolvePlaylist(cmd.Context(), app, args[0])
				if err != nil {
					return err
				}
				if err := app.DeletePlaylist(cmd.Context(), p.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted playlist %q\n", p.Name)
				return nil
			})
		},
	}
}

func newPlaylistAddCommand(cctx *commandContext) *cobra.Command {
	var newName string

	cmd := &cobra.Command{
		Use:   "add <playlist> <url> | add --new <name> <url>",
		Short: "Add a saved video to a playlist",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cctx.withApp(cmd.Context(), func(app *state.App) error {
				var playlistID, url string
				if newName != "" {
					if len(args) != 1 {
						return fmt.Errorf("usage: playlist add --new <name> <url>")
					}
					playlistID = state.NewPlaylist
					url = args[0]
				} else {
					if len(args) != 2 {
						return fmt.Errorf("usage: playlist add <playlist> <url>")
					}
					p, err := resolvePlaylist(cmd.Context(), app, args[0])
					if err != nil {
						return err
					}
					playlistID = p.ID
					url = args[1]
				}

				p, err := app.AddVideoToPlaylist(cmd.Context(),
					model.VideoRecord{URL: url}, playlistID, newName)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s to %q\n", url, p.Name)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&newName, "new", "", "create (or reuse) a playlist with this name")
	return cmd
}

func newPlaylistRemoveVideoCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-video <playlist> <url>",
		Short: "Remove a video from one playlist only",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cctx.withApp(cmd.Context(), func(app *state.App) error {
				p, err := resolvePlaylist(cmd.Context(), app, args[0])
				if err != nil {
					return err
				}
				if err := app.RemoveVideoFromPlaylist(cmd.Context(), p.ID, args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from %q\n", args[1], p.Name)
				return nil
			})
		},
	}
}
