package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/asadsehto/savetube/internal/state"
	"github.com/asadsehto/savetube/internal/store"
)

func newWatchCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow the store live, re-rendering on every change",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			return cctx.withStore(ctx, func(st store.Store) error {
				out := cmd.OutOrStdout()
				app := state.NewApp(st,
					state.WithLogger(cctx.log),
					state.WithRender(func(vs state.ViewState) {
						renderSnapshot(out, vs)
					}))

				if err := app.Refresh(ctx, true); err != nil {
					return err
				}
				cancel, err := app.Watch(ctx)
				if err != nil {
					return err
				}
				defer cancel()

				fmt.Fprintln(out, "Watching for changes, Ctrl-C to stop")
				<-ctx.Done()
				return nil
			})
		},
	}
}

func renderSnapshot(out io.Writer, vs state.ViewState) {
	fmt.Fprintf(out, "\n%d videos, %d playlists\n", len(vs.Videos), len(vs.Playlists))

	if len(vs.Videos) > 0 {
		rows := make([][]string, 0, len(vs.Videos))
		for _, v := range vs.Videos {
			rows = append(rows, []string{
				truncate(v.Title, 48),
				truncate(v.URL, 64),
			})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"Title", "URL"},
			rows,
			[]columnAlignment{alignLeft, alignLeft},
		))
	}

	if len(vs.Playlists) > 0 {
		rows := make([][]string, 0, len(vs.Playlists))
		for _, p := range vs.Playlists {
			rows = append(rows, []string{
				truncate(p.Name, 32),
				fmt.Sprintf("%d", len(p.Videos)),
			})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"Playlist", "Videos"},
			rows,
			[]columnAlignment{alignLeft, alignRight},
		))
	}
}
