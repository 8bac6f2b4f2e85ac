package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/inquest/pkg/registry"
)

var solversCmd = &cobra.Command{
	Use:   "solvers",
	Short: "List the solvers available for plan steps",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range registry.Default().Names() {
			fmt.Println(name)
		}
	},
}

func init() {
	rootCmd.AddCommand(solversCmd)
}
