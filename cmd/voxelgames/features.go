package main

import (
	"github.com/spf13/cobra"
	"github.com/voxelgameslib/voxelgameslib/internal/presentation/tui"
	"github.com/voxelgameslib/voxelgameslib/pkg/feature"
	"github.com/voxelgameslib/voxelgameslib/pkg/feature/features"
)

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "List the builtin features",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry := feature.NewRegistry()
		if err := features.Register(registry, features.Deps{}); err != nil {
			return err
		}

		rows := [][]string{}
		for _, info := range registry.Infos() {
			rows = append(rows, []string{info.Name, info.Version, info.Author, info.Description})
		}
		return printMarkdown(cmd, "# Features\n\n"+tui.MarkdownTable([]string{"Name", "Version", "Author", "Description"}, rows))
	},
}

func init() {
	rootCmd.AddCommand(featuresCmd)
	featuresCmd.Flags().Bool("plain", false, "Print raw markdown")
}
