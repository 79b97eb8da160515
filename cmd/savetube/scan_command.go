package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/asadsehto/savetube/internal/annotate"
	"github.com/asadsehto/savetube/internal/dom"
	"github.com/asadsehto/savetube/internal/store"
)

func newScanCommand(cctx *commandContext) *cobra.Command {
	var (
		baseURL string
		saveAll bool
		saveIDs []string
	)

	cmd := &cobra.Command{
		Use:   "scan <url|file>",
		Short: "Scan a page for saveable videos",
		Long: `Scan fetches a page (or reads a local HTML file), detects every
video-bearing element the way the daemon's engine would, and lists the
save affordances with their extracted metadata. Pass --save or
--save-all to activate affordances and persist the videos.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			doc, err := loadDocument(ctx, args[0], baseURL)
			if err != nil {
				return err
			}

			return cctx.withStore(ctx, func(st store.Store) error {
				engine := annotate.NewEngine(doc, cctx.saver(ctx, st),
					annotate.WithPlatforms(cctx.cfg.Platforms...),
					annotate.WithLogger(cctx.log))
				engine.Start()

				affordances := engine.Affordances()
				sort.Slice(affordances, func(i, j int) bool {
					return affordances[i].ID < affordances[j].ID
				})

				if len(affordances) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No saveable videos found")
					return nil
				}

				rows := make([][]string, 0, len(affordances))
				for _, a := range affordances {
					rows = append(rows, []string{
						a.ID,
						a.Kind.String(),
						truncate(a.Meta.Title, 40),
						truncate(a.Meta.URL, 56),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Kind", "Title", "URL"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
				))

				ids := saveIDs
				if saveAll {
					ids = ids[:0]
					for _, a := range affordances {
						ids = append(ids, a.ID)
					}
				}
				for _, id := range ids {
					status, err := engine.Activate(ctx, id)
					if err != nil {
						return err
					}
					switch status {
					case "":
						fmt.Fprintf(cmd.OutOrStdout(), "%s: skipped, no url\n", id)
					default:
						fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", id, status)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&baseURL, "base", "", "base URL for resolving links in a local file")
	cmd.Flags().BoolVar(&saveAll, "save-all", false, "activate every affordance")
	cmd.Flags().StringSliceVar(&saveIDs, "save", nil, "affordance ids to activate")
	return cmd
}

// loadDocument fetches src over HTTP when it looks like a URL, otherwise
// reads it as a local file. The document's base URL defaults to src for
// fetched pages.
func loadDocument(ctx context.Context, src, baseURL string) (*dom.Document, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		if baseURL == "" {
			baseURL = src
		}
		client := &http.Client{Timeout: 15 * time.Second}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			io.Copy(io.Discard, resp.Body)
			return nil, fmt.Errorf("fetch %s: unexpected status %d", src, resp.StatusCode)
		}
		return dom.Parse(resp.Body, baseURL)
	}

	f, err := os.Open(src)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return dom.Parse(f, baseURL)
}
