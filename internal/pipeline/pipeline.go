package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"rpgdecrypt/internal/config"
	"rpgdecrypt/internal/logging"
	"rpgdecrypt/internal/manifest"
	"rpgdecrypt/internal/planner"
	"rpgdecrypt/internal/scan"
)

// Runs smaller than this only log start and finish.
const progressMinFiles = 100

// Mode selects where decrypted output is written.
type Mode int

const (
	InPlace Mode = iota
	Mirror
)

func (m Mode) String() string {
	if m == Mirror {
		return config.ModeMirror
	}
	return config.ModeInPlace
}

// Options configures a run.
type Options struct {
	GameRoot     string
	Mode         Mode
	MirrorSuffix string

	// Workers <= 0 uses runtime.GOMAXPROCS(0).
	Workers       int
	RetryAttempts int
	RetryDelay    time.Duration

	ManifestPolicy manifest.Policy
	VerifyCopies   bool
	KeepHeader     bool

	// LockDir holds per-game run locks. Empty disables locking.
	LockDir string
	DryRun  bool
	Logger  *slog.Logger
}

// OptionsFromConfig maps loaded configuration onto run options for gameRoot.
func OptionsFromConfig(gameRoot string, cfg *config.Config, logger *slog.Logger) (Options, error) {
	flags, err := manifest.ParseFlagPolicy(cfg.Manifest.FlagPolicy)
	if err != nil {
		return Options{}, err
	}
	mode := InPlace
	if cfg.Mirror() {
		mode = Mirror
	}
	return Options{
		GameRoot:      gameRoot,
		Mode:          mode,
		MirrorSuffix:  cfg.Output.MirrorSuffix,
		Workers:       cfg.Workers.Count,
		RetryAttempts: cfg.Workers.RetryAttempts,
		RetryDelay:    time.Duration(cfg.Workers.RetryDelayMS) * time.Millisecond,
		ManifestPolicy: manifest.Policy{
			Flags:    flags,
			StripKey: cfg.StripKey(),
		},
		VerifyCopies: cfg.Output.VerifyCopies,
		KeepHeader:   cfg.Output.KeepHeader,
		LockDir:      cfg.Paths.LockDir,
		Logger:       logger,
	}, nil
}

// Run decrypts the game at opts.GameRoot. Manifest and key problems are
// returned as-is with a nil report. Anything later yields a report and,
// when something failed, a *RunError.
func Run(ctx context.Context, opts Options) (*Report, error) {
	start := time.Now()
	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, logging.NewComponentLogger(opts.Logger, "pipeline"))

	abs, err := filepath.Abs(opts.GameRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve game directory: %w", err)
	}
	m, err := manifest.Load(abs)
	if err != nil {
		return nil, err
	}
	root := abs
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		root = resolved
	}

	report := &Report{
		RunID:        runID,
		GameRoot:     root,
		ManifestPath: m.Path,
		Mirror:       opts.Mode == Mirror,
		DryRun:       opts.DryRun,
	}
	logger = logger.With(logging.String(logging.FieldGameRoot, root))

	plan := planner.InPlace(root)
	var mirroredManifest string
	if opts.Mode == Mirror {
		out, err := planner.MirrorRoot(root, opts.MirrorSuffix)
		if err != nil {
			return nil, err
		}
		rel, err := filepath.Rel(abs, m.Path)
		if err != nil {
			return nil, fmt.Errorf("locate manifest in output: %w", err)
		}
		report.OutputRoot = out
		mirroredManifest = filepath.Join(out, rel)
		plan = planner.Mirrored(root, out)
	}

	if !opts.DryRun {
		lock, err := acquireLock(opts.LockDir, root)
		if err != nil {
			return nil, err
		}
		if lock != nil {
			defer func() {
				if err := lock.Unlock(); err != nil {
					logger.Debug("release run lock failed", logging.Error(err))
				}
			}()
		}
	}

	logger.Info("decrypt run started",
		logging.String("mode", opts.Mode.String()),
		logging.String("manifest", m.Path),
		logging.Int("key_bytes", m.Key.Len()),
		logging.Bool("dry_run", opts.DryRun),
	)

	var exclude []string
	if report.OutputRoot != "" {
		exclude = append(exclude, report.OutputRoot)
	}
	found, err := scan.Walk(ctx, root, scan.Options{Exclude: exclude})
	if err != nil {
		if ctx.Err() != nil {
			return report, &RunError{Canceled: ctx.Err()}
		}
		return nil, err
	}

	runErr := &RunError{Scan: found.Errors}
	report.ScanErrors = len(found.Errors)
	for _, se := range found.Errors {
		logging.WarnWithContext(logger, "scan entry failed", "scan_error",
			logging.String(logging.FieldPath, se.Path),
			logging.Error(se.Err),
			logging.String(logging.FieldErrorHint, "check permissions on the directory"),
			logging.String(logging.FieldImpact, "entries below this path were not processed"),
		)
	}

	plans := make([]planner.Plan, 0, len(found.Files))
	for _, path := range found.Files {
		plans = append(plans, plan.Plan(path))
	}
	plans, conflicts := splitConflicts(plans)
	for _, fe := range conflicts {
		report.tally(outcome{err: fe})
		runErr.Files = append(runErr.Files, fe)
		logging.WarnWithContext(logger, "conflicting destination", "plan_conflict",
			logging.String(logging.FieldPath, fe.Path),
			logging.Error(fe.Err),
			logging.String(logging.FieldErrorHint, "rename or remove one of the colliding files"),
			logging.String(logging.FieldImpact, "neither file was written; manifest will not be updated"),
		)
	}

	if opts.DryRun {
		report.Plans = plans
		for _, p := range plans {
			report.tally(outcome{plan: p})
		}
		report.Duration = time.Since(start)
		logger.Info("dry run planned", logging.Int("files", len(plans)))
		if runErr.empty() {
			return report, nil
		}
		sortFileErrors(runErr.Files)
		return report, runErr
	}

	if len(found.Leftovers) > 0 {
		maxAge := staleTempAge
		if opts.LockDir != "" {
			maxAge = 0
		}
		swept := cleanStale(found.Leftovers, maxAge, logger)
		report.Cleaned = len(swept.Removed)
		if len(swept.Removed) > 0 {
			logger.Info("removed leftover temp files", logging.Int("count", len(swept.Removed)))
		}
	}

	if report.OutputRoot != "" {
		if err := os.MkdirAll(report.OutputRoot, 0o755); err != nil {
			return report, fmt.Errorf("create output directory: %w", err)
		}
	}

	ex := &executor{
		key:        m.Key,
		inPlace:    opts.Mode == InPlace,
		keepHeader: opts.KeepHeader,
		verify:     opts.VerifyCopies,
		retry:      retrier{attempts: opts.RetryAttempts, delay: opts.RetryDelay},
		logger:     logger,
	}
	var progress *logging.ProgressSampler
	if len(plans) >= progressMinFiles {
		progress = logging.NewProgressSampler(len(plans), 10)
	}
	done := 0
	for o := range dispatch(ctx, plans, workerCount(opts.Workers), ex) {
		done++
		report.tally(o)
		if pct, ok := progress.Observe(done); ok {
			logger.Info("decrypt progress",
				logging.Int("done", done),
				logging.Int("total", len(plans)),
				logging.String("percent", fmt.Sprintf("%.0f%%", pct)),
			)
		}
		if o.err != nil {
			runErr.Files = append(runErr.Files, o.err)
			logging.WarnWithContext(logger, "asset failed", "file_error",
				logging.String(logging.FieldPath, o.err.Path),
				logging.String(logging.FieldOp, string(o.err.Op)),
				logging.Error(o.err.Err),
				logging.String(logging.FieldImpact, "manifest will not be updated"),
			)
		}
	}
	if done < len(plans) {
		runErr.Canceled = context.Cause(ctx)
	}

	if runErr.empty() {
		if err := finalize(m, mirroredManifest, opts.ManifestPolicy); err != nil {
			runErr.Finalize = err
			logging.ErrorWithContext(logger, "manifest finalize failed", "finalize_error",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "restore write access to System.json and clear the encryption flags by hand"),
			)
		} else {
			report.Finalized = true
		}
	}

	report.Duration = time.Since(start)
	logger.Info("decrypt run finished",
		logging.Int("decrypted", report.Decrypted),
		logging.Int("copied", report.Copied),
		logging.Int("skipped", report.Skipped),
		logging.Int("failed", report.Failed),
		logging.Int("scan_errors", report.ScanErrors),
		logging.Int64("bytes", report.Bytes),
		logging.Bool("manifest_updated", report.Finalized),
		logging.Duration("duration", report.Duration),
	)

	if runErr.empty() {
		return report, nil
	}
	sortFileErrors(runErr.Files)
	return report, runErr
}

func workerCount(n int) int {
	if n > 0 {
		return n
	}
	return max(1, runtime.GOMAXPROCS(0))
}

// dispatch feeds plans to a fixed pool and streams outcomes until every
// worker has returned. A canceled ctx stops dispatch; plans already handed
// to a worker still complete.
func dispatch(ctx context.Context, plans []planner.Plan, workers int, ex *executor) <-chan outcome {
	jobs := make(chan planner.Plan)
	outcomes := make(chan outcome, workers)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				outcomes <- ex.execute(ctx, p)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, p := range plans {
			if ctx.Err() != nil {
				return
			}
			select {
			case <-ctx.Done():
				return
			case jobs <- p:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	return outcomes
}

// finalize marks the manifest decrypted. In mirror mode the copy written
// under the output root is rewritten and the key is always stripped; the
// source manifest is never modified.
func finalize(src *manifest.Manifest, mirrored string, policy manifest.Policy) *FinalizeError {
	target := src
	if mirrored != "" {
		copied, err := manifest.Read(mirrored)
		if err != nil {
			return &FinalizeError{Path: mirrored, Err: err}
		}
		target = copied
		policy.StripKey = true
	}
	manifest.MarkDecrypted(target, policy)
	if err := manifest.Write(target); err != nil {
		return &FinalizeError{Path: target.Path, Err: err}
	}
	return nil
}
