package preflight

import (
	"rpgdecrypt/internal/config"
	"rpgdecrypt/internal/planner"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the checks that apply to a decrypt run of gameRoot under cfg.
// The lock directory is only checked when it already exists; the pipeline
// creates it on demand.
func RunAll(gameRoot string, cfg *config.Config) []Result {
	if cfg == nil {
		return []Result{CheckGameRoot(gameRoot, false)}
	}

	mirror := cfg.Mirror()
	results := []Result{CheckGameRoot(gameRoot, mirror)}

	if mirror {
		out, err := planner.MirrorRoot(gameRoot, cfg.Output.MirrorSuffix)
		if err != nil {
			results = append(results, Result{Name: "Output directory", Detail: err.Error()})
		} else {
			results = append(results, CheckOutputParent(out))
		}
	}

	if cfg.Paths.LogDir != "" && exists(cfg.Paths.LogDir) {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}
	if cfg.Paths.LockDir != "" && exists(cfg.Paths.LockDir) {
		results = append(results, CheckDirectoryAccess("Lock directory", cfg.Paths.LockDir))
	}

	return results
}

// Failures returns the results that did not pass.
func Failures(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
