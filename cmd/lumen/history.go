package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/eringen/lumen"
	"github.com/eringen/lumen/views"
)

func newHistoryCmd(g *globals) *cobra.Command {
	var (
		dbPath string
		limit  int
		id     string
		format string
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored configuration snapshots, or print one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := lumen.NewStore(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if id != "" {
				f, err := lumen.ParseFormat(format)
				if err != nil {
					return err
				}
				snap, err := store.Get(ctx, id)
				if err != nil {
					return fmt.Errorf("snapshot %s: %w", id, err)
				}
				b, err := lumen.Marshal(snap.Site, f)
				if err != nil {
					return err
				}
				_, err = out.Write(b)
				return err
			}

			snaps, err := store.List(ctx, limit)
			if err != nil {
				return err
			}
			g.logger.Debug().Int("count", len(snaps)).Str("db", dbPath).Msg("listed snapshots")
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCREATED\tSOURCE\tCHECKSUM\tTITLE")
			for _, s := range snaps {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					s.ID, s.CreatedAt.Local().Format("2006-01-02 15:04:05"), s.Source, views.Short(s.Checksum), s.Site.Title)
			}
			return tw.Flush()
		},
	}
	f := cmd.Flags()
	f.StringVar(&dbPath, "db", lumen.EnvOr("LUMEN_DB", "data/lumen.db"), "snapshot database path")
	f.IntVarP(&limit, "limit", "n", 20, "snapshots to list (0 for all)")
	f.StringVar(&id, "id", "", "print the snapshot with this id")
	f.StringVarP(&format, "format", "f", "yaml", "yaml or json, with --id")
	return cmd
}
