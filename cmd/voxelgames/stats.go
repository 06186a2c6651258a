package main

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/voxelgameslib/voxelgameslib/internal/presentation/tui"
	"github.com/voxelgameslib/voxelgameslib/pkg/domain"
	"github.com/voxelgameslib/voxelgameslib/pkg/stats"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Inspect persisted player stats",
}

var statsLsCmd = &cobra.Command{
	Use:   "ls <player>",
	Short: "List the stats of a player (name or uuid)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		lib, err := newLib(cmd, cfg)
		if err != nil {
			return err
		}
		defer lib.Stop()

		id, err := uuid.Parse(args[0])
		if err != nil {
			id = domain.OfflineUUID(args[0])
		}
		rows, err := lib.Stats().List(cmd.Context(), id)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "%s has no stats yet\n", args[0])
			return nil
		}
		table := make([][]string, 0, len(rows))
		for _, row := range rows {
			table = append(table, []string{row.StatType, formatRow(lib.Stats(), row)})
		}
		return printMarkdown(cmd, "# Stats of "+args[0]+"\n\n"+tui.MarkdownTable([]string{"Stat", "Value"}, table))
	},
}

var statsTopCmd = &cobra.Command{
	Use:   "top <stat>",
	Short: "Show the leaderboard of a stat type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		lib, err := newLib(cmd, cfg)
		if err != nil {
			return err
		}
		defer lib.Stop()

		t, ok := lib.Stats().Trackables().Get(args[0])
		if !ok {
			return fmt.Errorf("%w: %s", stats.ErrUnknownTrackable, args[0])
		}
		rows, err := lib.Stats().Top(cmd.Context(), t, limit)
		if err != nil {
			return err
		}
		table := make([][]string, 0, len(rows))
		for i, row := range rows {
			table = append(table, []string{strconv.Itoa(i + 1), row.UUID.String(), t.Format(row.Val)})
		}
		return printMarkdown(cmd, "# Top "+t.DisplayName()+"\n\n"+tui.MarkdownTable([]string{"#", "Player", t.DisplayName()}, table))
	},
}

func formatRow(h *stats.Handler, row domain.StatRow) string {
	if t, err := h.Converter().FromColumn(row.StatType); err == nil {
		return t.Format(row.Val)
	}
	return fmt.Sprint(row.Val)
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.PersistentFlags().Bool("plain", false, "Print raw markdown")
	statsCmd.AddCommand(statsLsCmd, statsTopCmd)
	statsTopCmd.Flags().IntP("limit", "n", 10, "Number of entries")
}
