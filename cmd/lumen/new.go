package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/lumen"
	"github.com/eringen/lumen/scaffold"
)

func newNewCmd() *cobra.Command {
	var data scaffold.Data
	cmd := &cobra.Command{
		Use:   "new <dir>",
		Short: "Create a starter site.yaml and .env.example",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			if data.Title == "" {
				data.Title = scaffold.TitleFromName(filepath.Base(dir))
			}
			if data.AuthorName == "" {
				data.AuthorName = lumen.EnvOr("USER", "")
			}
			if data.Copyright == "" {
				data.Copyright = fmt.Sprintf("© %d All rights reserved.", time.Now().Year())
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Creating lumen site config in %s\n\n", dir)
			created, err := scaffold.Write(dir, data)
			if err != nil {
				return err
			}
			for _, p := range created {
				fmt.Fprintf(out, "  created %s\n", p)
			}

			cfg := filepath.Join(dir, "site.yaml")
			if _, err := lumen.LoadFile(cfg); err != nil {
				fmt.Fprintf(os.Stderr, "\nWarning: generated config does not validate yet: %v\n", err)
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, "Done! Next steps:")
			fmt.Fprintln(out)
			fmt.Fprintf(out, "  edit %s\n", cfg)
			fmt.Fprintf(out, "  lumen validate -c %s\n", cfg)
			fmt.Fprintf(out, "  lumen serve -c %s\n", cfg)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&data.URL, "url", "https://example.com", "public URL of the blog")
	f.StringVar(&data.Title, "title", "", "blog title (default derived from <dir>)")
	f.StringVar(&data.AuthorName, "author", "", "author name (default $USER)")
	f.StringVar(&data.Copyright, "copyright", "", "copyright line")
	return cmd
}
