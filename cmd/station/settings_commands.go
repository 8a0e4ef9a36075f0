package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"station/internal/ipc"
	"station/internal/settings"
)

func newSettingsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect and update persisted settings",
	}
	cmd.AddCommand(newSettingsGetCommand(ctx))
	cmd.AddCommand(newSettingsUpdateCommand(ctx))
	cmd.AddCommand(newSettingsSetCommand(ctx))
	cmd.AddCommand(newSettingsPathCommand(ctx))
	return cmd
}

func newSettingsGetCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show the current settings (reloads the settings file)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Get()
				if err != nil {
					return fmt.Errorf("get settings: %w", err)
				}
				if asJSON {
					return writeJSON(cmd, resp.Settings)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderFieldTable("Settings", settingsRows(resp.Settings)))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the settings document as JSON")
	return cmd
}

func newSettingsUpdateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "update <json>",
		Short: "Merge a partial JSON settings document and save it",
		Long: "Merge a partial JSON settings document into the current settings.\n" +
			"Nested language records merge key by key; other values are replaced.\n" +
			"Example: station settings update '{\"languages\":{\"python\":{\"path\":\"/usr/bin/python3\"}}}'",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var update settings.Partial
			if err := update.UnmarshalJSON([]byte(args[0])); err != nil {
				return fmt.Errorf("parse update: %w", err)
			}
			if keys := update.InvalidKeys(); len(keys) > 0 {
				return fmt.Errorf("parse update: wrong type for %s", strings.Join(keys, ", "))
			}
			return sendUpdate(cmd, ctx, update)
		},
	}
}

func newSettingsSetCommand(ctx *commandContext) *cobra.Command {
	var theme string
	var stdoutMaxSize int
	var lastProject string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set individual settings fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var update settings.Partial
			flags := cmd.Flags()
			if flags.Changed("theme") {
				parsed, err := settings.ParseTheme(theme)
				if err != nil {
					return err
				}
				update.Theme = &parsed
			}
			if flags.Changed("stdout-max-size") {
				if stdoutMaxSize < 0 {
					return errors.New("--stdout-max-size must be >= 0")
				}
				update.StdoutMaxSize = &stdoutMaxSize
			}
			if flags.Changed("last-project") {
				update.LastProject = &lastProject
			}
			if update.IsEmpty() {
				return errors.New("nothing to set; pass at least one of --theme, --stdout-max-size, --last-project")
			}
			return sendUpdate(cmd, ctx, update)
		},
	}
	cmd.Flags().StringVar(&theme, "theme", "", "UI theme (light or dark)")
	cmd.Flags().IntVar(&stdoutMaxSize, "stdout-max-size", 0, "Maximum captured stdout size")
	cmd.Flags().StringVar(&lastProject, "last-project", "", "Path of the most recently opened project")
	return cmd
}

func sendUpdate(cmd *cobra.Command, ctx *commandContext, update settings.Partial) error {
	return ctx.withClient(func(client *ipc.Client) error {
		resp, err := client.Update(update)
		if err != nil {
			return fmt.Errorf("update settings: %w", err)
		}
		out := cmd.OutOrStdout()
		fields := update.Keys()
		if len(fields) == 0 {
			fields = []string{"(none)"}
		}
		fmt.Fprintf(out, "Saved %s to %s\n", strings.Join(fields, ", "), resp.Path)
		return nil
	})
}

func newSettingsPathCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the settings file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			err := ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Status()
				if err != nil {
					return fmt.Errorf("settings path: %w", err)
				}
				fmt.Fprintln(out, resp.SettingsPath)
				return nil
			})
			if !errors.Is(err, errDaemonUnavailable) {
				return err
			}
			cfg, cfgErr := ctx.ensureConfig()
			if cfgErr != nil {
				return cfgErr
			}
			fmt.Fprintf(out, "%s (daemon not running)\n", cfg.Settings.Path)
			return nil
		},
	}
}
