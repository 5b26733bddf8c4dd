package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"logevents/cmd/logevents/ui"
	"logevents/internal/logging"
	"logevents/internal/persist"
	"logevents/internal/settings"

	"github.com/spf13/cobra"
)

func newSettingsCmd(c *cli) *cobra.Command {
	var path string
	settingsPath := func() string {
		if path != "" {
			return path
		}
		return c.cfg.SettingsPath
	}

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect and edit the event log settings file",
	}
	cmd.PersistentFlags().StringVar(&path, "path", "", "Settings file (default: settings_path from the config)")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print every entry of the settings file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := settingsPath()
			f, err := persist.Load(p)
			if errors.Is(err, persist.ErrNotFound) {
				fmt.Fprintf(cmd.OutOrStdout(), "No settings file at %s\n", p)
				return nil
			}
			if err != nil {
				return err
			}
			printFile(cmd.OutOrStdout(), p, f)
			return nil
		},
	}

	var (
		enabled bool
		pretty  bool
		level   string
	)
	setCmd := &cobra.Command{
		Use:   "set KEY",
		Short: "Change one entry, creating it with defaults if needed",
		Long: `Changes the given fields of one entry. Fields not given keep their value.

Example:
  logevents settings set Ping --level DEBUG --pretty
  logevents settings set logevents/internal/demo/foo.Ping --enabled=false`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editFile(cmd, settingsPath(), func(f *persist.File) error {
				key := args[0]
				rec, ok := f.Events[key]
				if !ok {
					rec = settings.Default()
				}
				flags := cmd.Flags()
				if flags.Changed("enabled") {
					rec.Enabled = enabled
				}
				if flags.Changed("pretty") {
					rec.Pretty = pretty
				}
				if flags.Changed("level") {
					lvl, err := settings.ParseLevel(level)
					if err != nil {
						return err
					}
					rec.Level = lvl
				}
				f.Events[key] = rec
				fmt.Fprintf(cmd.OutOrStdout(), "%s: enabled=%t pretty=%t level=%s\n", key, rec.Enabled, rec.Pretty, rec.Level)
				return nil
			})
		},
	}
	setCmd.Flags().BoolVar(&enabled, "enabled", true, "Log the type")
	setCmd.Flags().BoolVar(&pretty, "pretty", false, "Use the multi-line representation")
	setCmd.Flags().StringVar(&level, "level", "INFO", "Level: TRACE, DEBUG, INFO, WARN or ERROR")

	switchCmd := func(use string, on bool) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: fmt.Sprintf("Set plugin_enabled to %t", on),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return editFile(cmd, settingsPath(), func(f *persist.File) error {
					f.PluginEnabled = on
					fmt.Fprintf(cmd.OutOrStdout(), "plugin_enabled: %t\n", on)
					return nil
				})
			},
		}
	}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Report entries that would be skipped when loading",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := settingsPath()
			f, err := persist.Load(p)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, w := range f.Warnings {
				fmt.Fprintf(out, "invalid entry: %s\n", w)
			}
			if n := len(f.Warnings); n > 0 {
				return fmt.Errorf("%s: %d invalid entries", p, n)
			}
			fmt.Fprintf(out, "%s: %d entries OK\n", p, len(f.Events))
			return nil
		},
	}

	var keep []string
	pruneCmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove every entry not listed with --keep",
		Long: `Removes entries of event types that are no longer registered. The
plugin keeps such entries on save so that settings survive a type being
temporarily unregistered; prune drops them for good.

Example:
  logevents settings prune --keep Ping --keep "Damage[Player]"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return editFile(cmd, settingsPath(), func(f *persist.File) error {
				removed := persist.Prune(f, keep)
				out := cmd.OutOrStdout()
				for _, k := range removed {
					fmt.Fprintf(out, "removed %s\n", k)
				}
				fmt.Fprintf(out, "%d removed, %d kept\n", len(removed), len(f.Events)+len(f.Invalid))
				return nil
			})
		},
	}
	pruneCmd.Flags().StringSliceVar(&keep, "keep", nil, "Key to keep (repeatable)")

	cmd.AddCommand(showCmd, setCmd, switchCmd("enable", true), switchCmd("disable", false), validateCmd, pruneCmd)
	return cmd
}

// editFile loads the settings file (an absent file starts empty), applies fn
// and writes the result back. Entries that fail to decode are written back
// as found and reported on stderr.
func editFile(cmd *cobra.Command, path string, fn func(*persist.File) error) error {
	f, err := persist.Load(path)
	switch {
	case errors.Is(err, persist.ErrNotFound):
		f = persist.NewFile()
	case err != nil:
		return err
	}
	for _, w := range f.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: invalid entry kept unchanged: %s\n", w)
		logging.SettingsWarn("keeping invalid entry %s", w)
	}
	if err := fn(f); err != nil {
		return err
	}
	if err := persist.Write(path, f); err != nil {
		return err
	}
	logging.Settings("wrote %d entries to %s", len(f.Events), path)
	return nil
}

func printFile(w io.Writer, path string, f *persist.File) {
	styles := ui.DefaultStyles()
	table := ui.NewSimpleTable(path, "Key", "Enabled", "Pretty", "Level")
	for _, k := range f.Keys() {
		rec := f.Events[k]
		table.AddRow(k, strconv.FormatBool(rec.Enabled), strconv.FormatBool(rec.Pretty), styles.Level(rec.Level))
	}
	fmt.Fprintf(w, "plugin_enabled: %t\n", f.PluginEnabled)
	fmt.Fprint(w, table.View(styles))
	for _, warn := range f.Warnings {
		fmt.Fprintln(w, styles.Warning.Render("skipped: "+warn))
	}
}
