package command

import "github.com/spf13/cobra"

// DisabledReloadMessage is the reply to /reload.
const DisabledReloadMessage = "This command has been disabled by VoxelGamesLib, as it will break the framework from functioning."

// overrideCommands replace host commands that break the framework.
func overrideCommands() []*cobra.Command {
	return []*cobra.Command{
		{
			Use:         "reload",
			Aliases:     []string{"rl"},
			Short:       "Disabled",
			Annotations: permission("bukkit.command.reload"),
			Args:        cobra.ArbitraryArgs,
			Run: func(cmd *cobra.Command, args []string) {
				cmd.Println(Red + DisabledReloadMessage)
			},
		},
	}
}
