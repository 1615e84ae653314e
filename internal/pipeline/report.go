package pipeline

import (
	"time"

	"rpgdecrypt/internal/planner"
)

// Report summarizes a run. It is returned alongside a *RunError so callers
// can show partial progress.
type Report struct {
	RunID        string
	GameRoot     string
	OutputRoot   string
	ManifestPath string
	Mirror       bool
	DryRun       bool

	Decrypted  int
	Copied     int
	Skipped    int
	Failed     int
	ScanErrors int
	Bytes      int64

	// Cleaned counts leftover temp files removed before dispatch.
	Cleaned int

	// Finalized is true once the manifest was rewritten.
	Finalized bool
	Duration  time.Duration

	// Plans is populated for dry runs only.
	Plans []planner.Plan
}

// Total is the number of regular files that were planned.
func (r *Report) Total() int {
	return r.Decrypted + r.Copied + r.Skipped + r.Failed
}

func (r *Report) tally(o outcome) {
	if o.err != nil {
		r.Failed++
		return
	}
	switch o.plan.Action {
	case planner.Decrypt:
		r.Decrypted++
	case planner.Copy:
		r.Copied++
	default:
		r.Skipped++
	}
	r.Bytes += o.bytes
}
