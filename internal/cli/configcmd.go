package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"imgpyramid/pkg/config"
)

var (
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "manage configuration files",
	}

	configInitCmd = &cobra.Command{
		Use:   "init [path]",
		Short: "write a default configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "imgpyramid.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.CreateDefaultConfigFile(path); err != nil {
				return err
			}
			fmt.Printf("Wrote default configuration to %s\n", path)
			return nil
		},
	}
)

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
