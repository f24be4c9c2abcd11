package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/scid-pd-engine/internal/config"
	"github.com/scid-pd-engine/internal/domain"
	"github.com/scid-pd-engine/internal/logging"
)

// CLI holds the state shared by every subcommand.
type CLI struct {
	configPath string
	verbose    bool
}

func newRootCommand() *cobra.Command {
	cli := &CLI{}

	rootCmd := &cobra.Command{
		Use:   "scidctl",
		Short: "SCID-PD assessment engine tooling",
		Long: `scidctl scores SCID-PD personality interviews offline, inspects the module catalog
and manages stored profiles.

Examples:
  scidctl catalog list --cluster cluster_b
  scidctl catalog validate ./catalog.yaml
  scidctl score responses.json --format json
  scidctl migrate up
  scidctl export profiles.json`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cli.configPath, "config", "c", "", "configuration file (default: ./config.yaml or SCID_PD_* env)")
	rootCmd.PersistentFlags().BoolVarP(&cli.verbose, "verbose", "v", false, "log to stderr")

	rootCmd.AddCommand(newCatalogCommand())
	rootCmd.AddCommand(newScoreCommand(cli))
	rootCmd.AddCommand(newMigrateCommand(cli))
	rootCmd.AddCommand(newExportCommand(cli))
	rootCmd.AddCommand(newImportCommand(cli))

	return rootCmd
}

// loadConfig reads and validates the configuration selected by --config.
func (c *CLI) loadConfig() (*domain.Config, error) {
	manager, err := config.NewManagerFromFile(c.configPath)
	if err != nil {
		return nil, err
	}
	if err := manager.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return manager.GetConfig(), nil
}

// logger is silent unless --verbose is set.
func (c *CLI) logger(cfg domain.LoggingConfig) *logrus.Logger {
	if !c.verbose {
		return logging.Discard()
	}
	cfg.Format = "text"
	return logging.New(cfg)
}
