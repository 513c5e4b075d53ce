package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/eringen/lumen"
)

func newValidateCmd(g *globals) *cobra.Command {
	var noEnv bool
	cmd := &cobra.Command{
		Use:   "validate [file...]",
		Short: "Check config files and report every problem",
		Long:  "Validate loads each file (default: --config) and reports every rule it breaks. It exits non-zero if any file is invalid.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{g.configPath}
			}
			out := cmd.OutOrStdout()
			failed := 0
			for _, p := range args {
				if _, err := loadSite(p, noEnv); err != nil {
					failed++
					reportInvalid(out, p, err)
					continue
				}
				fmt.Fprintf(out, "ok   %s\n", p)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d config files invalid", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&noEnv, "no-env", false, "ignore LUMEN_* environment overrides")
	return cmd
}

func reportInvalid(w io.Writer, path string, err error) {
	var verr *lumen.ValidationError
	if errors.As(err, &verr) {
		fmt.Fprintf(w, "FAIL %s\n", path)
		for _, f := range verr.Fields {
			fmt.Fprintf(w, "     %s\n", f)
		}
		return
	}
	fmt.Fprintf(w, "FAIL %s\n     %v\n", path, err)
}

func loadSite(path string, noEnv bool) (lumen.Site, error) {
	if noEnv {
		return lumen.LoadFile(path)
	}
	return lumen.NewLoader(path).Load()
}

func newShowCmd(g *globals) *cobra.Command {
	var (
		format string
		field  string
		noEnv  bool
	)
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration or one field of it",
		Example: `  lumen show --format json
  lumen show --field title
  lumen show --field author.contacts.twitter`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := lumen.ParseFormat(format)
			if err != nil {
				return err
			}
			s, err := loadSite(g.configPath, noEnv)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if field == "" {
				b, err := lumen.Marshal(s, f)
				if err != nil {
					return err
				}
				_, err = out.Write(b)
				return err
			}
			v, err := lookupField(s, field)
			if err != nil {
				return err
			}
			return printValue(out, v, f)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "yaml or json")
	cmd.Flags().StringVar(&field, "field", "", "dotted key path, e.g. menu or author.contacts.github")
	cmd.Flags().BoolVar(&noEnv, "no-env", false, "ignore LUMEN_* environment overrides")
	return cmd
}

// lookupField walks a dotted path of config keys through the JSON form of s.
func lookupField(s lumen.Site, path string) (any, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var cur any
	if err := json.Unmarshal(b, &cur); err != nil {
		return nil, err
	}
	for _, key := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %q: %q is not an object", path, key)
		}
		cur, ok = m[key]
		if !ok {
			return nil, fmt.Errorf("field %q: unknown key %q", path, key)
		}
	}
	return cur, nil
}

func printValue(w io.Writer, v any, f lumen.Format) error {
	switch v := v.(type) {
	case string:
		_, err := fmt.Fprintln(w, v)
		return err
	case float64, bool:
		_, err := fmt.Fprintln(w, v)
		return err
	}
	if f == lumen.FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func newConvertCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Rewrite a config file in the format implied by the output extension",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := lumen.LoadFile(args[0])
			if err != nil {
				return err
			}
			if err := lumen.WriteFile(args[1], s); err != nil {
				return err
			}
			g.logger.Info().Str("from", args[0]).Str("to", args[1]).Msg("config converted")
			return nil
		},
	}
}
