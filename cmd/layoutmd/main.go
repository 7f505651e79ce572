// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the layoutmd CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/layoutmd/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets secrets.Store

// rootCmd is the base command for the layoutmd CLI.
var rootCmd = &cobra.Command{
	Use:   "layoutmd",
	Short: "Convert PDFs to layout-aware Markdown and analyze them with an LLM",
	Long: `layoutmd renders each PDF page, finds text blocks and ruled tables on the
raster, and fills them from the PDF's native text layer to produce Markdown.
The Markdown can then be sent to a chat-completion model whose JSON reply is
written, with token usage and cost, to a result envelope.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			names := s.Names()
			sort.Strings(names)
			slog.Debug("loaded secrets", "names", names)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./layoutmd.yaml or ~/.config/layoutmd/layoutmd.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log diagnostics at debug level")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("layoutmd")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "layoutmd"))
		}
	}

	configureEnv(viper.GetViper())
	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
