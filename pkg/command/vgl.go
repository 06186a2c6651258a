package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/voxelgameslib/voxelgameslib/pkg/domain"
)

var errPlayersOnly = errors.New("only players can use this command")

func (d *Dispatcher) vglCommand(sender Sender) *cobra.Command {
	vgl := &cobra.Command{
		Use:     "vgl",
		Aliases: []string{"voxelgameslib"},
		Short:   "VoxelGamesLib commands",
	}

	vgl.AddCommand(&cobra.Command{
		Use:         "version",
		Short:       "Shows the framework version",
		Annotations: permission(domain.PermissionUser),
		Args:        cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println("You are using VoxelGamesLib version " + d.version)
		},
	})

	if d.features != nil {
		vgl.AddCommand(&cobra.Command{
			Use:         "features",
			Short:       "Lists the registered features",
			Annotations: permission("vgl.command.features"),
			Args:        cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				for _, info := range d.features.Infos() {
					cmd.Printf("%s v%s by %s: %s\n", info.Name, info.Version, info.Author, info.Description)
				}
			},
		})
	}

	if d.games != nil {
		vgl.AddCommand(d.gameCommands(sender)...)
	}

	if d.stats != nil {
		vgl.AddCommand(&cobra.Command{
			Use:         "stats [player]",
			Short:       "Shows the stats of a player",
			Annotations: permission(domain.PermissionUser),
			Args:        cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, name, err := d.statsTarget(sender, args)
				if err != nil {
					return err
				}
				rows, err := d.stats.List(cmd.Context(), id)
				if err != nil {
					return err
				}
				if len(rows) == 0 {
					cmd.Printf("%s has no stats yet\n", name)
					return nil
				}
				cmd.Printf("Stats of %s:\n", name)
				conv := d.stats.Converter()
				for _, row := range rows {
					t, err := conv.FromColumn(row.StatType)
					if err != nil {
						cmd.Printf("  %s: %v\n", row.StatType, row.Val)
						continue
					}
					cmd.Printf("  %s: %s\n", t.DisplayName(), t.Format(row.Val))
				}
				return nil
			},
		})
	}

	return vgl
}

func (d *Dispatcher) statsTarget(sender Sender, args []string) (uuid.UUID, string, error) {
	if len(args) == 1 {
		if d.users != nil {
			if u, ok := d.users.ByName(args[0]); ok {
				return u.UUID, u.DisplayName, nil
			}
		}
		return domain.OfflineUUID(args[0]), args[0], nil
	}
	u, ok := sender.(*domain.User)
	if !ok {
		return uuid.Nil, "", errPlayersOnly
	}
	return u.UUID, u.DisplayName, nil
}

func (d *Dispatcher) gameCommands(sender Sender) []*cobra.Command {
	return []*cobra.Command{
		{
			Use:         "games",
			Short:       "Lists running games",
			Annotations: permission(domain.PermissionUser),
			Args:        cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				games := d.games.List()
				if len(games) == 0 {
					cmd.Println("No games are running")
					return
				}
				for _, g := range games {
					cmd.Println(g.String())
				}
			},
		},
		{
			Use:         "modes",
			Short:       "Lists the available game modes",
			Annotations: permission(domain.PermissionUser),
			Args:        cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				var names []string
				for _, def := range d.games.Definitions() {
					names = append(names, def.Name)
				}
				cmd.Println("Game modes: " + strings.Join(names, ", "))
			},
		},
		{
			Use:         "create <mode>",
			Short:       "Starts a new game",
			Annotations: permission("vgl.command.create"),
			Args:        cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				snap, err := d.games.Create(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				cmd.Printf("Created %s game %s\n", snap.Mode, snap.ID)
				return nil
			},
		},
		{
			Use:         "join <game>",
			Short:       "Joins a running game",
			Annotations: permission(domain.PermissionUser),
			Args:        cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				u, ok := sender.(*domain.User)
				if !ok {
					return errPlayersOnly
				}
				id, err := uuid.Parse(args[0])
				if err != nil {
					return fmt.Errorf("invalid game id %q", args[0])
				}
				if err := d.games.Join(id, u); err != nil {
					return err
				}
				cmd.Println("Joined game " + id.String())
				return nil
			},
		},
		{
			Use:         "leave",
			Short:       "Leaves every game",
			Annotations: permission(domain.PermissionUser),
			Args:        cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				u, ok := sender.(*domain.User)
				if !ok {
					return errPlayersOnly
				}
				d.games.LeaveAll(u)
				cmd.Println("You left all games")
				return nil
			},
		},
	}
}

var _ Sender = (*domain.User)(nil)
