package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mjavadshamsi/harmonize-joe-ejm/internal/config"
)

func newConfigCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or tidy the config file",
	}
	cmd.AddCommand(newConfigInitCommand(root), newConfigNormalizeCommand(root))
	return cmd
}

func newConfigInitCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write the default config unless one already exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := config.LoadEnv()
			if err != nil {
				return err
			}
			path, err := configPath(root, e)
			if err != nil {
				return err
			}

			_, err = os.Stat(path)
			switch {
			case err == nil:
				fmt.Fprintf(cmd.OutOrStdout(), "config already exists: %s\n", path)
				return nil
			case !errors.Is(err, os.ErrNotExist):
				return err
			}
			if err := config.SaveAtomic(path, config.Default()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
}

func newConfigNormalizeCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize",
		Short: "Rewrite the config with a trimmed, lower-cased, de-duplicated country list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := config.LoadEnv()
			if err != nil {
				return err
			}
			path, err := configPath(root, e)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(path)
			if err != nil {
				return err
			}
			if err := config.SaveAtomic(path, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (previous version in %s.bak)\n", path, path)
			return nil
		},
	}
}
