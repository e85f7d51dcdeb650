package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalambet/simpledraw/internal/config"
	"github.com/kalambet/simpledraw/internal/prefs"
)

// --- settings ---

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change drawing preferences",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show every setting with its current value",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		_, store, closeFn, err := loadStore()
		if err != nil {
			return err
		}
		defer closeFn()

		entries := store.Snapshot()
		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(entries); err != nil {
				return err
			}
		} else {
			for _, e := range entries {
				printSetting(cmd.OutOrStdout(), e.Key, e.Value, e.Default)
			}
		}

		greetFirstRun(store)
		return nil
	},
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print the current value of one setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, closeFn, err := loadStore()
		if err != nil {
			return err
		}
		defer closeFn()

		v, err := store.Get(args[0])
		if err != nil {
			return unknownKeyHint(err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), v)
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Long: `Change one setting.

Colors accept #AARRGGBB, #RRGGBB or a signed decimal ARGB integer.

Examples:
  simpledraw settings set is-dark-theme true
  simpledraw settings set stroke-width 12.5
  simpledraw settings set brush-color "#FF2196F3"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		var writeErr error
		_, store, closeFn, err := loadStore(prefs.WithWriteErrorHandler(func(_ string, err error) {
			writeErr = errors.Join(writeErr, err)
		}))
		if err != nil {
			return err
		}
		defer closeFn()

		if err := store.SetText(key, value); err != nil {
			return unknownKeyHint(err)
		}
		if writeErr != nil {
			return fmt.Errorf("saving %s: %w", key, writeErr)
		}

		current, _ := store.Get(key)
		printSuccess("Set %s = %s", key, current)
		return nil
	},
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset <key>...",
	Short: "Restore settings to their defaults",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var writeErr error
		_, store, closeFn, err := loadStore(prefs.WithWriteErrorHandler(func(_ string, err error) {
			writeErr = errors.Join(writeErr, err)
		}))
		if err != nil {
			return err
		}
		defer closeFn()

		for _, key := range args {
			if err := store.ResetText(key); err != nil {
				return unknownKeyHint(err)
			}
		}
		if writeErr != nil {
			return fmt.Errorf("resetting: %w", writeErr)
		}

		printSuccess("Reset %s", strings.Join(args, ", "))
		return nil
	},
}

func unknownKeyHint(err error) error {
	if errors.Is(err, prefs.ErrUnknownKey) {
		return fmt.Errorf("%w (valid keys: %s)", err, strings.Join(prefs.Names(), ", "))
	}
	return err
}

func init() {
	settingsShowCmd.Flags().Bool("json", false, "print settings as JSON")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsResetCmd)
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show runtime configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		for _, k := range config.ShowAll(cfg) {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s = %s  (%s)\n", colorize(colorBold, k.Key), k.Value, k.EnvVar)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
}

// --- about ---

const aboutText = `Simple Draw keeps its drawing preferences here: theme, brush color,
stroke width, canvas background and the last save location.

Run "simpledraw settings show" to see them all.`

var aboutCmd = &cobra.Command{
	Use:   "about",
	Short: "Describe simpledraw",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "simpledraw %s\n\n%s\n", version, aboutText)
	},
}
