// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wheelclass/wheelclass-mcp/internal/catalog"
	"github.com/wheelclass/wheelclass-mcp/internal/config"
	"github.com/wheelclass/wheelclass-mcp/internal/debug"
	"github.com/wheelclass/wheelclass-mcp/internal/search"
)

type rootOptions struct {
	root       string
	configPath string
	debug      bool
	output     string
}

// app is the wiring shared by every subcommand.
type app struct {
	cfg     *config.Config
	catalog *catalog.Catalog
	svc     *search.Service
}

func (o *rootOptions) load() (*app, error) {
	cfg, err := config.Load(o.root, o.configPath)
	if err != nil {
		return nil, err
	}
	cat, err := catalog.New(o.root, cfg.CatalogOptions()...)
	if err != nil {
		return nil, err
	}
	settings, err := cfg.SearchSettings()
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, catalog: cat, svc: search.NewService(cat, settings)}, nil
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "wheelclass",
		Short: "Find data classes with similar field sets",
		Long: "wheelclass scans a Java or Go project for data classes (lombok @Data classes, records and " +
			"structs marked //wheelclass:data) and ranks them by how closely their fields match.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if opts.debug {
				debug.SetEnabled(true)
			}
			switch opts.output {
			case outputTable, outputYAML, outputJSON:
				return nil
			}
			return fmt.Errorf("unknown output format %q: want table, yaml or json", opts.output)
		},
	}
	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.root, "root", ".", "project root to scan")
	flags.StringVar(&opts.configPath, "config", "", "config file (default <root>/"+config.FileName+")")
	flags.BoolVar(&opts.debug, "debug", false, "write debug logs to stderr")
	flags.StringVarP(&opts.output, "output", "o", outputTable, "output format: table, yaml or json")

	cmd.AddCommand(
		newServeCmd(opts),
		newSimilarCmd(opts),
		newClassesCmd(opts),
		newDescribeCmd(opts),
		newCompareCmd(opts),
		newWatchCmd(opts),
	)
	return cmd
}
