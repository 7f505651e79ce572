// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"
)

var pricingCmd = &cobra.Command{
	Use:   "pricing",
	Short: "Print the effective model price table (USD per million tokens)",
	Long: `Pricing prints the built-in price table with any pricing.<model> overrides
from the config file applied, in the same YAML shape the config file accepts.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		prices, err := resolvePrices(viper.GetViper())
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(map[string]any{"pricing": prices})
		if err != nil {
			return fmt.Errorf("encoding price table: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	rootCmd.AddCommand(pricingCmd)
}
