package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"rpgdecrypt/internal/pipeline"
	"rpgdecrypt/internal/planner"
	"rpgdecrypt/internal/preflight"
)

func runDecrypt(cmd *cobra.Command, ctx *commandContext, gameDir string, flags runFlags) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if err := applyOverrides(cmd, cfg, flags); err != nil {
		return err
	}

	if failed := preflight.Failures(preflight.RunAll(gameDir, cfg)); len(failed) > 0 {
		lines := make([]string, 0, len(failed))
		for _, r := range failed {
			lines = append(lines, fmt.Sprintf("  %s: %s", r.Name, r.Detail))
		}
		return fmt.Errorf("preflight failed:\n%s", strings.Join(lines, "\n"))
	}

	logger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	opts, err := pipeline.OptionsFromConfig(gameDir, cfg, logger)
	if err != nil {
		return err
	}
	opts.DryRun = flags.dryRun

	report, runErr := pipeline.Run(cmd.Context(), opts)
	if report != nil && !flags.quiet {
		out := cmd.OutOrStdout()
		printSummary(out, report, shouldColorize(out))
	}
	if runErr != nil {
		return describeRunError(runErr)
	}
	return nil
}

func describeRunError(err error) error {
	var finErr *pipeline.FinalizeError
	var runErr *pipeline.RunError
	switch {
	case errors.As(err, &finErr):
		return fmt.Errorf("decryption finished but the game is in an inconsistent state: %w", err)
	case errors.As(err, &runErr):
		return fmt.Errorf("decryption incomplete: %w", err)
	case errors.Is(err, pipeline.ErrAlreadyRunning):
		return err
	default:
		return fmt.Errorf("cannot decrypt: %w", err)
	}
}

func printSummary(out io.Writer, report *pipeline.Report, colorize bool) {
	title := "Decrypt"
	if report.DryRun {
		title = "Dry run"
	}
	for _, line := range renderSectionHeader(title, colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, renderStatusLine("Game", statusInfo, report.GameRoot, colorize))
	if report.Mirror {
		fmt.Fprintln(out, renderStatusLine("Output", statusInfo, report.OutputRoot, colorize))
	}
	fmt.Fprintln(out, renderStatusLine("Manifest", manifestStatus(report), manifestMessage(report), colorize))
	if report.ScanErrors > 0 {
		fmt.Fprintln(out, renderStatusLine("Scan", statusWarn, fmt.Sprintf("%d unreadable entries", report.ScanErrors), colorize))
	}
	if report.Cleaned > 0 {
		fmt.Fprintln(out, renderStatusLine("Cleanup", statusInfo, fmt.Sprintf("%d leftover temp files removed", report.Cleaned), colorize))
	}

	if report.DryRun {
		fmt.Fprintln(out, renderPlanTable(report, terminalWidth(out)))
		return
	}

	rows := []table.Row{
		{actionLabel(planner.Decrypt.String()), report.Decrypted},
		{actionLabel(planner.Copy.String()), report.Copied},
		{actionLabel(planner.Skip.String()), report.Skipped},
		{actionLabel("failed"), report.Failed},
	}
	fmt.Fprintln(out, renderTable(countColumns, rows, 0))
	fmt.Fprintf(out, "%s in %s (run %s)\n", formatBytes(report.Bytes), report.Duration.Round(time.Millisecond), report.RunID)
}

func manifestStatus(report *pipeline.Report) statusKind {
	switch {
	case report.Finalized:
		return statusOK
	case report.DryRun:
		return statusInfo
	default:
		return statusError
	}
}

func manifestMessage(report *pipeline.Report) string {
	switch {
	case report.Finalized:
		return report.ManifestPath + " (updated)"
	case report.DryRun:
		return report.ManifestPath + " (unchanged)"
	default:
		return report.ManifestPath + " (not updated)"
	}
}

func renderPlanTable(report *pipeline.Report, width int) string {
	rows := make([]table.Row, 0, len(report.Plans))
	for _, p := range report.Plans {
		if p.Action == planner.Skip {
			continue
		}
		rows = append(rows, table.Row{
			actionLabel(p.Action.String()),
			relativeTo(report.GameRoot, p.Source),
			relativeTo(destRoot(report), p.Dest),
		})
	}
	if len(rows) == 0 {
		return "Nothing to do"
	}
	return renderTable(planColumns, rows, width)
}

func destRoot(report *pipeline.Report) string {
	if report.Mirror {
		return report.OutputRoot
	}
	return report.GameRoot
}

func relativeTo(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
