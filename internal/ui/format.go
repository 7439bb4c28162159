package ui

import (
	"strconv"

	"fallingstuff/internal/core"
)

// FormatFloat prints v with enough decimals to show one step.
func FormatFloat(step, v float64) string {
	precision := 1
	switch {
	case step < 0.001:
		precision = 4
	case step < 0.01:
		precision = 3
	case step < 0.1:
		precision = 2
	}
	return strconv.FormatFloat(v, 'f', precision, 64)
}

// SnapshotLines flattens a parameter snapshot into overlay text, one group
// header followed by its indented parameters.
func SnapshotLines(snap core.ParameterSnapshot) []string {
	var lines []string
	for _, g := range snap.Groups {
		if len(g.Params) == 0 {
			continue
		}
		lines = append(lines, g.Name)
		for _, p := range g.Params {
			lines = append(lines, "  "+p.Label+": "+p.Value)
		}
	}
	return lines
}
