package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/asadsehto/savetube/internal/annotate"
	"github.com/asadsehto/savetube/internal/config"
	"github.com/asadsehto/savetube/internal/msg"
	"github.com/asadsehto/savetube/internal/service"
	"github.com/asadsehto/savetube/internal/state"
	"github.com/asadsehto/savetube/internal/store"
)

// commandContext carries lazily-resolved configuration into subcommands.
type commandContext struct {
	configPath string
	storeURL   string
	serverURL  string

	cfg *config.Config
	log zerolog.Logger
}

func newRootCommand() *cobra.Command {
	cctx := &commandContext{}

	root := &cobra.Command{
		Use:           "savetube",
		Short:         "Bookmark videos and organize them into playlists",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cctx.load()
		},
	}

	root.PersistentFlags().StringVar(&cctx.configPath, "config", "", "path to a TOML config file")
	root.PersistentFlags().StringVar(&cctx.storeURL, "store", "", "store URL (memory, postgres://…, redis://…)")
	root.PersistentFlags().StringVar(&cctx.serverURL, "server", "", "savetubed base URL")

	root.AddCommand(newVideosCommand(cctx))
	root.AddCommand(newPlaylistCommand(cctx))
	root.AddCommand(newScanCommand(cctx))
	root.AddCommand(newWatchCommand(cctx))
	root.AddCommand(newExportCommand(cctx))

	return root
}

// load resolves configuration: env, then file, then flags.
func (c *commandContext) load() error {
	cfg := config.Load()

	path := c.configPath
	if path == "" {
		path = os.Getenv("SAVETUBE_CONFIG")
	}
	if path != "" {
		if err := cfg.ApplyFile(path); err != nil {
			return err
		}
	}
	if c.storeURL != "" {
		cfg.StoreURL = c.storeURL
	}
	if c.serverURL != "" {
		cfg.ServerURL = c.serverURL
	}

	c.cfg = cfg
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	c.log = zerolog.New(os.Stderr).With().Timestamp().Logger().Level(level)
	return nil
}

// withApp opens the store, builds a synchronizer app over it, and closes
// the store when fn returns.
func (c *commandContext) withApp(ctx context.Context, fn func(*state.App) error) error {
	st, err := store.Open(ctx, c.cfg.StoreURL, c.log)
	if err != nil {
		return err
	}
	defer st.Close()

	return fn(state.NewApp(st, state.WithLogger(c.log)))
}

// withStore opens the store and closes it when fn returns.
func (c *commandContext) withStore(ctx context.Context, fn func(store.Store) error) error {
	st, err := store.Open(ctx, c.cfg.StoreURL, c.log)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

// saver prefers a running daemon so the daemon stays the single save
// writer; when it is unreachable the CLI saves through the store
// directly.
func (c *commandContext) saver(ctx context.Context, st store.Store) annotate.Saver {
	client := msg.NewClient(c.cfg.ServerURL)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx); err == nil {
		return client
	}
	c.log.Debug().Str("server", c.cfg.ServerURL).Msg("daemon unreachable, saving directly")
	return service.NewSaveService(st)
}
