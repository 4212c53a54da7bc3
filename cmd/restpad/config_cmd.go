package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/restpad/internal/config"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			printVersion(cmd.OutOrStdout())
		},
	}
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "restpad %s\n", version)
	fmt.Fprintf(w, "  commit: %s\n", commit)
	fmt.Fprintf(w, "  built:  %s\n", date)
	fmt.Fprintf(w, "  go:     %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the settings file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a settings file with default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := initSettings(config.Dir(), force)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing settings file")

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the config directory and settings file",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			dir := config.Dir()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "dir:      %s\n", dir)
			fmt.Fprintf(out, "settings: %s\n", filepath.Join(dir, "settings.toml"))
			fmt.Fprintf(out, "bindings: %s\n", filepath.Join(dir, "bindings.toml"))
			fmt.Fprintf(out, "log:      %s\n", config.DefaultSettings().Log.LogPath())
		},
	}

	cmd.AddCommand(initCmd, pathCmd)
	return cmd
}

var errSettingsExist = errors.New("settings file already exists (use --force to overwrite)")

func initSettings(dir string, force bool) (string, error) {
	path := filepath.Join(dir, "settings.toml")
	if !force {
		for _, name := range []string{"settings.toml", "settings.json"} {
			existing := filepath.Join(dir, name)
			if _, err := os.Stat(existing); err == nil {
				return existing, fmt.Errorf("%s: %w", existing, errSettingsExist)
			} else if !errors.Is(err, fs.ErrNotExist) {
				return "", fmt.Errorf("stat %s: %w", existing, err)
			}
		}
	}
	handle := config.SettingsHandle{Path: path, Format: config.SettingsFormatTOML}
	if err := config.SaveSettings(config.DefaultSettings(), handle); err != nil {
		return "", err
	}
	return path, nil
}
