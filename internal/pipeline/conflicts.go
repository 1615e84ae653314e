package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"rpgdecrypt/internal/planner"
)

// ErrDestinationConflict reports that more than one source maps to the same
// output file, e.g. "a.png" and "a.png_" in a mirrored run.
var ErrDestinationConflict = errors.New("destination claimed by more than one source")

// splitConflicts drops every plan whose destination is shared with another
// plan and returns a FileError for each dropped source. None of the sources in
// a colliding group is executed, so the output never depends on worker order.
func splitConflicts(plans []planner.Plan) ([]planner.Plan, []*FileError) {
	owners := make(map[string][]string, len(plans))
	for _, p := range plans {
		if p.Dest != "" {
			owners[p.Dest] = append(owners[p.Dest], p.Source)
		}
	}

	kept := plans[:0:0]
	var conflicts []*FileError
	for _, p := range plans {
		sources := owners[p.Dest]
		if p.Dest == "" || len(sources) < 2 {
			kept = append(kept, p)
			continue
		}
		others := make([]string, 0, len(sources)-1)
		for _, src := range sources {
			if src != p.Source {
				others = append(others, src)
			}
		}
		conflicts = append(conflicts, &FileError{
			Path: p.Source,
			Op:   OpPlan,
			Err:  fmt.Errorf("%w: %s also writes %s", ErrDestinationConflict, strings.Join(others, ", "), p.Dest),
		})
	}
	return kept, conflicts
}
