// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Validate and print the effective configuration",
	Long: `Loads the configuration given with --config (or the built-in one),
validates it and prints the document together with the reference
depth classes it defines.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "# source: %s\n# depth classes: %v\n# id digits: %d\n", cfg.Name(), cfg.Catalog().Depths(), cfg.IDDigits())
		_, err = w.Write(cfg.Source())
		return err
	},
}
