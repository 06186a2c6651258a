package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/voxelgameslib/voxelgameslib/internal/presentation/graph"
	"github.com/voxelgameslib/voxelgameslib/pkg/game"
)

var modesCmd = &cobra.Command{
	Use:   "modes [mode]",
	Short: "List game modes, or print one as a Mermaid graph",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		defs := append([]game.Definition(nil), cfg.Games...)
		loaded, err := game.LoadDefinitions(cfg.GamesDir)
		if err != nil {
			return err
		}
		defs = append(defs, loaded...)

		out := cmd.OutOrStdout()
		if len(args) == 0 {
			if len(defs) == 0 {
				fmt.Fprintln(out, "No game modes defined")
			}
			for _, d := range defs {
				fmt.Fprintf(out, "%s\t%d phases\t%s\n", d.Name, len(d.Phases), d.Description)
			}
			return nil
		}
		for _, d := range defs {
			if d.Name == args[0] {
				fmt.Fprint(out, graph.GenerateMermaid(d, nil))
				return nil
			}
		}
		return fmt.Errorf("%w: %s", game.ErrUnknownMode, args[0])
	},
}

func init() {
	rootCmd.AddCommand(modesCmd)
}
