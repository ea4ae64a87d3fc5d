package main

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "crisischat-server",
		Short: "Tiered multi-room chat and emergency-alert relay",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")

	root.AddCommand(newServeCmd())
	root.AddCommand(newUserCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
