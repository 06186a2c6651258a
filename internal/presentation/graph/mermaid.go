package graph

import (
	"fmt"
	"strings"

	"github.com/voxelgameslib/voxelgameslib/pkg/game"
)

// Overlay marks the progress of a running game on its definition graph.
type Overlay struct {
	CurrentPhase string
}

// OverlayOf builds the overlay for a running game snapshot.
func OverlayOf(s game.Snapshot) *Overlay {
	return &Overlay{CurrentPhase: s.Phase}
}

// GenerateMermaid renders a game definition as a Mermaid flowchart:
//   - the mode itself: ((Circle))
//   - phases: [Rectangle], chained in order
//   - features: [[Subroutine]], linked to their phase with a dotted line
//
// With an overlay, phases before the current one are styled as visited.
func GenerateMermaid(def game.Definition, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	root := sanitizeMermaidID(def.Name)
	fmt.Fprintf(&sb, "    %s((\"%s\"))\n", root, escape(def.Name))

	prev := root
	phaseIDs := make([]string, 0, len(def.Phases))
	for i, p := range def.Phases {
		id := fmt.Sprintf("%s_p%d_%s", root, i, sanitizeMermaidID(p.Name))
		phaseIDs = append(phaseIDs, id)
		fmt.Fprintf(&sb, "    %s[\"%s\"]\n", id, escape(p.Name))
		fmt.Fprintf(&sb, "    %s --> %s\n", prev, id)
		prev = id

		for j, f := range p.Features {
			fid := fmt.Sprintf("%s_f%d", id, j)
			fmt.Fprintf(&sb, "    %s[[\"%s\"]]\n", fid, escape(f.Name))
			fmt.Fprintf(&sb, "    %s -.- %s\n", id, fid)
		}
	}

	if overlay != nil && overlay.CurrentPhase != "" {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		for i, p := range def.Phases {
			if p.Name == overlay.CurrentPhase {
				fmt.Fprintf(&sb, "    class %s current;\n", phaseIDs[i])
				break
			}
			fmt.Fprintf(&sb, "    class %s visited;\n", phaseIDs[i])
		}
	}

	return sb.String()
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
