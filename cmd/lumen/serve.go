package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/lumen"
)

func newServeCmd(g *globals) *cobra.Command {
	cfg := lumen.ServerConfig{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the site configuration over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.ConfigPath = g.configPath
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app := lumen.New(cfg, lumen.WithLogger(g.logger))
			defer app.Close()
			return app.Start(ctx)
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.Addr, "addr", lumen.EnvOr("LUMEN_ADDR", ":3000"), "listen address")
	f.StringVar(&cfg.DatabasePath, "db", lumen.EnvOr("LUMEN_DB", "data/lumen.db"), "snapshot database path")
	f.IntVar(&cfg.SnapshotKeep, "keep", 50, "snapshots kept by the hourly pruner")
	f.StringVar(&cfg.StaticDir, "static", lumen.EnvOr("LUMEN_STATIC_DIR", "static"), "directory holding the author photo")
	f.DurationVar(&cfg.PhotoCacheTTL, "photo-ttl", 10*time.Minute, "scaled photo cache lifetime")
	f.BoolVar(&cfg.Watch, "watch", lumen.EnvBool("LUMEN_WATCH"), "reload when the config file changes")
	f.BoolVar(&cfg.CookieSecure, "cookie-secure", lumen.EnvBool("COOKIE_SECURE"), "mark admin cookies Secure (HTTPS)")
	cfg.AdminPassword = os.Getenv("ADMIN_PASSWORD")
	cfg.SessionSecret = os.Getenv("ADMIN_SESSION_SECRET")
	return cmd
}
