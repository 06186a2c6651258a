package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/voxelgameslib/voxelgameslib"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of voxelgames",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "voxelgames version %s\n", voxelgameslib.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
