package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/voxelgameslib/voxelgameslib/internal/presentation/tui"
)

// printMarkdown renders md with glamour, or prints it raw with --plain.
func printMarkdown(cmd *cobra.Command, md string) error {
	if plain, _ := cmd.Flags().GetBool("plain"); plain {
		fmt.Fprint(cmd.OutOrStdout(), md)
		return nil
	}
	out, err := tui.NewRenderer()(md)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}
