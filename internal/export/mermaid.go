package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/dusk-indust/chainmerge/internal/graph"
)

// GenerateMermaid produces a Mermaid flowchart of one chain. Each leg is a
// subgraph holding the sequence its slot runs at every step; arrows follow
// the steps and turn dashed where the leg only passes a placeholder.
// Collapsed steps have no slots and appear only as comments.
func GenerateMermaid(rec graph.ChainRecord) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")
	fmt.Fprintf(&sb, "  %%%% %s: %d steps, %d legs\n", rec.Name, rec.StepCount, rec.Width)

	var placeholders []string
	for slot := range rec.Width {
		label := legLabel(rec, slot)
		fmt.Fprintf(&sb, "  subgraph L%d[\"%s\"]\n", slot, label)

		prev := ""
		for _, step := range rec.Steps {
			if slot >= len(step.Slots) {
				continue
			}
			sl := step.Slots[slot]
			id := fmt.Sprintf("S%d_%d", step.Index, slot)
			fmt.Fprintf(&sb, "    %s[\"%s\"]\n", id, sl.Sequence)
			if sl.Placeholder {
				placeholders = append(placeholders, id)
			}
			if prev != "" {
				arrow := "-->"
				if sl.Placeholder {
					arrow = "-.->"
				}
				fmt.Fprintf(&sb, "    %s %s %s\n", prev, arrow, id)
			}
			prev = id
		}
		sb.WriteString("  end\n")
	}

	for _, step := range rec.Steps {
		if len(step.Slots) == 0 {
			fmt.Fprintf(&sb, "  %%%% step %d (%s) collapsed\n", step.Index, step.Name)
		}
	}

	if len(placeholders) > 0 {
		sb.WriteString("  classDef placeholder stroke-dasharray: 5 5,fill:#f4f4f4\n")
		fmt.Fprintf(&sb, "  class %s placeholder\n", strings.Join(placeholders, ","))
	}
	return sb.String()
}

// ChainDiagram loads the named chain from store and renders it.
func ChainDiagram(ctx context.Context, store graph.Store, name string) (string, error) {
	rec, err := store.GetChain(ctx, name)
	if err != nil {
		return "", fmt.Errorf("get chain %s: %w", name, err)
	}
	if rec == nil {
		return "", fmt.Errorf("chain %s not found", name)
	}
	return GenerateMermaid(*rec), nil
}

// legLabel names a slot after the leg recorded in its first step.
func legLabel(rec graph.ChainRecord, slot int) string {
	for _, step := range rec.Steps {
		if slot < len(step.Slots) && step.Slots[slot].Leg != "" {
			return step.Slots[slot].Leg
		}
	}
	return fmt.Sprintf("slot %d", slot)
}
