package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mjavadshamsi/harmonize-joe-ejm/internal/config"
	"github.com/mjavadshamsi/harmonize-joe-ejm/internal/logging"
	"github.com/mjavadshamsi/harmonize-joe-ejm/internal/pipeline"
	"github.com/mjavadshamsi/harmonize-joe-ejm/internal/store"
)

type rootOptions struct {
	configPath string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "harmonize",
		Short: "Merge the latest JOE and EJM exports into the master spreadsheet",
		Long: `harmonize picks the newest JOE result set and EJM positions export,
normalizes both to one column layout and appends new listings to the
Listings or Deleted sheet of the master workbook.

Running it again on the same exports adds nothing.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPasses(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default $HARMONIZE_DATA_DIR/harmonize.yml)")
	cmd.AddCommand(newHistoryCommand(opts), newConfigCommand(opts))
	return cmd
}

// setup loads env and config and moves into the operator's working
// directory. Every relative path in the config resolves after this.
func setup(cmd *cobra.Command, opts *rootOptions) (config.Config, error) {
	log := logging.Component("config")

	e, err := config.LoadEnv()
	if err != nil {
		return config.Config{}, err
	}

	path, err := configPath(opts, e)
	if err != nil {
		return config.Config{}, err
	}
	cfg, err := loadConfig(path)
	if err != nil {
		return config.Config{}, err
	}

	if dir, ok := cfg.Workdir(e); ok {
		if err := os.Chdir(dir); err != nil {
			return config.Config{}, fmt.Errorf("change working directory: %w", err)
		}
		log.Debug().Str("dir", dir).Msg("working directory changed")
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "working directory was not changed.")
	}
	return cfg, nil
}

// configPath picks --config, then $HARMONIZE_CONFIG, then harmonize.yml in
// the data dir, which is created from the defaults on first use.
func configPath(opts *rootOptions, e config.Env) (string, error) {
	if opts.configPath != "" {
		return opts.configPath, nil
	}
	if e.ConfigPath != "" {
		return e.ConfigPath, nil
	}
	path, err := config.EnsureUserConfig(e.DataDir)
	if err != nil {
		return "", fmt.Errorf("config bootstrap failed: %w", err)
	}
	return path, nil
}

func loadConfig(path string) (config.Config, error) {
	log := logging.Component("config")

	raw, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	cfg, v := config.NormalizeAndValidate(raw)
	for _, w := range v.Warnings {
		log.Warn().Str("path", path).Msg(w)
	}
	if !v.OK() {
		return config.Config{}, fmt.Errorf("%s: %v", path, v.Errors)
	}
	return cfg, nil
}

func runPasses(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := setup(cmd, opts)
	if err != nil {
		return err
	}

	runner := pipeline.FromConfig(cfg)
	runner.Out = cmd.OutOrStdout()
	runner.Log = logging.Component("pipeline")

	if cfg.Paths.HistoryDB != "" {
		db, err := store.OpenHistory(cfg.Paths.HistoryDB)
		if err != nil {
			// the ledger is bookkeeping; the master file is what matters
			runner.Log.Warn().Err(err).Str("path", cfg.Paths.HistoryDB).Msg("history unavailable")
		} else {
			defer db.Close()
			runner.History = db.Pool
		}
	}

	sum := runner.Run(cmd.Context())
	if sum.Failed() {
		for _, p := range sum.Passes {
			if pipeline.IsLocked(p.Err) {
				fmt.Fprintf(cmd.ErrOrStderr(), "[%s] another harmonize run holds %s; try again when it finishes\n", p.Source, cfg.Paths.MasterFile)
			}
		}
		return errPassFailed
	}
	return nil
}
