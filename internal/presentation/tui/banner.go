package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the VoxelGamesLib banner followed by the version line.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text  string
		color string
	}{
		{` __     __           _  ____                           `, "#4ade80"},
		{` \ \   / /____  _____| |/ ___| __ _ _ __ ___   ___  ___ `, "#34d399"},
		{`  \ \ / / _ \ \/ / _ \ | |  _ / _' | '_ ' _ \ / _ \/ __|`, "#2dd4bf"},
		{`   \ V / (_) >  <  __/ | |_| | (_| | | | | | |  __/\__ \`, "#22d3ee"},
		{`    \_/ \___/_/\_\___|_|\____|\__,_|_| |_| |_|\___||___/`, "#38bdf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("  v"+version).Faint())
	fmt.Fprintln(w)
}
