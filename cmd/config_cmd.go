package cmd

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/sidediff/internal/config"
	"github.com/zjrosen/sidediff/internal/diff"
	"github.com/zjrosen/sidediff/internal/flags"
)

func newConfigInitCmd(a *app) *cobra.Command {
	var (
		path  string
		force bool
	)
	cmd := &cobra.Command{
		Use:         "config:init",
		Short:       "Write a commented default config file",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipSetup: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				path = a.configPath()
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.WriteDefaultConfig(path); err != nil {
				return err
			}
			cmd.Printf("Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "path", "p", "", "file to write (default: --config, or "+config.LocalConfigPath+")")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func newConfigDiffCmd(a *app) *cobra.Command {
	var f diffFlags
	cmd := &cobra.Command{
		Use:   "config:diff",
		Short: "Save engine defaults to the config file",
		Long: `Save the given engine defaults to the diff section of the config file.
Other sections and their comments are left as they are.

Example:
  sidediff config:diff --method words --offset 0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d := a.cfg.Diff
			if cmd.Flags().Changed("method") {
				m, ok := diff.ParseMethod(f.method)
				if !ok {
					return fmt.Errorf("unknown method %q (run sidediff methods for the list)", f.method)
				}
				d.Method = string(m)
			}
			if cmd.Flags().Changed("no-word-diff") {
				d.DisableWordDiff = f.noWordDiff
			}
			if cmd.Flags().Changed("offset") {
				d.LinesOffset = f.offset
			}

			path := a.configPath()
			if err := config.SaveDiffDefaults(path, d); err != nil {
				return err
			}
			cmd.Printf("Saved diff defaults to %s\n", path)
			return nil
		},
	}
	f.registerEngine(cmd)
	return cmd
}

func newConfigFlagCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config:flag NAME true|false",
		Short: "Turn a feature flag on or off in the config file",
		Long: "Turn a feature flag on or off in the config file.\n\nKnown flags: " +
			strings.Join(flags.Known(), ", "),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if !slices.Contains(flags.Known(), name) {
				return fmt.Errorf("unknown flag %q (known: %s)", name, strings.Join(flags.Known(), ", "))
			}
			on, err := strconv.ParseBool(args[1])
			if err != nil {
				return errors.New("flag value must be true or false")
			}

			values := maps.Clone(a.cfg.Flags)
			if values == nil {
				values = make(map[string]bool)
			}
			values[name] = on

			path := a.configPath()
			if err := config.SaveFlags(path, values); err != nil {
				return err
			}
			cmd.Printf("Set %s=%t in %s\n", name, on, path)
			return nil
		},
	}
}
