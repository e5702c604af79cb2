package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/tendant/simple-pagedata/pkg/pagedata"
	"github.com/tendant/simple-pagedata/pkg/pagedata/config"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// NewRootCommand creates the pagectl command tree
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pagectl",
		Short: "Read and write editor page data",
		Long: `pagectl reads and writes editor page data directly against the
configured repository and storage, bypassing the HTTP layer.

Configuration is read from the environment and .env, the same way the server does.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringSlice("env-file", nil, "additional .env files to load")

	rootCmd.AddCommand(NewCreateCommand())
	rootCmd.AddCommand(NewGetCommand())
	rootCmd.AddCommand(NewSetCommand())
	rootCmd.AddCommand(NewTokenCommand())
	rootCmd.AddCommand(NewMigrateCommand())
	rootCmd.AddCommand(NewEnvCommand())

	return rootCmd
}

// runtimeFromFlags builds a runtime whose controller trusts the command line
// caller with every capability.
func runtimeFromFlags(cmd *cobra.Command, opts ...config.Option) (*config.ServerConfig, *config.Runtime, error) {
	files, _ := cmd.Flags().GetStringSlice("env-file")
	cfg, err := config.LoadServerConfig(files...)
	if err != nil {
		return nil, nil, err
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, nil, err
		}
	}

	rt, err := cfg.BuildController(cmd.Context(), pagedata.WithCapabilities(pagedata.AllowAll{}))
	if err != nil {
		return nil, nil, err
	}
	return cfg, rt, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
