package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/asadsehto/savetube/internal/state"
)

func newVideosCommand(cctx *commandContext) *cobra.Command {
	videosCmd := &cobra.Command{
		Use:   "videos",
		Short: "Inspect and manage the global saved set",
	}

	videosCmd.AddCommand(newVideosListCommand(cctx))
	videosCmd.AddCommand(newVideosRemoveCommand(cctx))

	return videosCmd
}

func newVideosListCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved videos",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cctx.withApp(cmd.Context(), func(app *state.App) error {
				if err := app.Refresh(cmd.Context(), false); err != nil {
					return err
				}
				vs := app.State()
				if len(vs.Videos) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No saved videos")
					return nil
				}

				rows := make([][]string, 0, len(vs.Videos))
				for _, v := range vs.Videos {
					rows = append(rows, []string{
						truncate(v.Title, 48),
						truncate(v.URL, 64),
						v.SavedAt.Local().Format("2006-01-02 15:04"),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Title", "URL", "Saved"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight},
				))
				return nil
			})
		},
	}
}

func newVideosRemoveCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <url>",
		Short: "Remove a saved video (also removed from every playlist)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cctx.withApp(cmd.Context(), func(app *state.App) error {
				if err := app.RemoveVideo(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Removed", args[0])
				return nil
			})
		},
	}
}
