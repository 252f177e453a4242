package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/resumeup/internal/config"
	"github.com/vango-dev/resumeup/internal/errors"
)

func initCmd() *cobra.Command {
	var (
		dir    string
		server string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a resumeup.json with default settings",
		Long: `Create a resumeup.json in the target directory.

Examples:
  resumeup init
  resumeup init --server https://careers.example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, dir, server, force)
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Directory to write resumeup.json to")
	cmd.Flags().StringVar(&server, "server", "", "Upload server base URL")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing resumeup.json")

	return cmd
}

func runInit(cmd *cobra.Command, dir, server string, force bool) error {
	out := cmd.OutOrStdout()

	if config.Exists(dir) {
		if !force {
			return errors.New("E140").
				WithDetail("A resumeup.json already exists in " + dir).
				WithSuggestion("Pass --force to overwrite it")
		}
		warn(out, "Overwriting %s", filepath.Join(dir, config.ConfigFileName))
	}

	cfg := config.New()
	if server != "" {
		cfg.Server = server
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.New("E120").Wrap(err)
	}
	path := filepath.Join(dir, config.ConfigFileName)
	if err := cfg.SaveTo(path); err != nil {
		return err
	}

	success(out, "Created %s", path)
	info(out, "Server:   %s", cfg.Server)
	info(out, "Endpoint: %s", cfg.Upload.Endpoint)
	return nil
}
