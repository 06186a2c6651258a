package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/voxelgameslib/voxelgameslib/pkg/worldrepo"
)

var worldCmd = &cobra.Command{
	Use:   "world",
	Short: "Manage the versioned world repository",
}

var worldAddCmd = &cobra.Command{
	Use:   "add [path...]",
	Short: "Stage world files, including ones matched by .gitignore",
	Long: `Stages the given paths (or the whole world directory) into the git index of
the world repository. Unlike git add, .gitignore rules are not applied.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		if dir == "" {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			dir = cfg.WorldDir
		}
		update, _ := cmd.Flags().GetBool("update")

		idx, err := worldrepo.Stage(dir, update, args...)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Staged %d entries in %s\n", len(idx.Entries), dir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(worldCmd)
	worldCmd.AddCommand(worldAddCmd)
	worldAddCmd.Flags().String("dir", "", "World repository (defaults to world_dir from the config)")
	worldAddCmd.Flags().BoolP("update", "u", false, "Remove index entries of deleted files")
}
