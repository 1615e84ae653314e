package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"rpgdecrypt/internal/manifest"
	"rpgdecrypt/internal/planner"
	"rpgdecrypt/internal/scan"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var mirror bool

	cmd := &cobra.Command{
		Use:   "inspect <game_dir>",
		Short: "Show the manifest, key and planned work without changing anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			root, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve game directory: %w", err)
			}

			m, err := manifest.Load(root)
			if err != nil {
				return fmt.Errorf("cannot inspect: %w", err)
			}

			p := planner.InPlace(root)
			if mirror || cfg.Mirror() {
				out, err := planner.MirrorRoot(root, cfg.Output.MirrorSuffix)
				if err != nil {
					return err
				}
				p = planner.Mirrored(root, out)
			}

			found, err := scan.Walk(cmd.Context(), root, scan.Options{})
			if err != nil {
				return fmt.Errorf("scan %s: %w", root, err)
			}

			byAction := map[planner.Action]int{}
			byExt := map[string]int{}
			for _, path := range found.Files {
				plan := p.Plan(path)
				byAction[plan.Action]++
				if plan.Action == planner.Decrypt {
					byExt[strings.TrimPrefix(filepath.Ext(path), ".")]++
				}
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("Inspect", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderStatusLine("Manifest", statusInfo, m.Path, colorize))
			fmt.Fprintln(out, renderStatusLine("Key", statusOK, fmt.Sprintf("%d bytes", m.Key.Len()), colorize))
			fmt.Fprintln(out, renderStatusLine("Encrypted audio", statusInfo, yesNo(flagSet(m, manifest.FieldHasEncryptedAudio)), colorize))
			fmt.Fprintln(out, renderStatusLine("Encrypted images", statusInfo, yesNo(flagSet(m, manifest.FieldHasEncryptedImages)), colorize))
			if p.Mirror {
				fmt.Fprintln(out, renderStatusLine("Output", statusInfo, p.OutputRoot, colorize))
			}
			if n := len(found.Errors); n > 0 {
				fmt.Fprintln(out, renderStatusLine("Scan", statusWarn, fmt.Sprintf("%d unreadable entries", n), colorize))
			}

			var rows []table.Row
			for _, action := range []planner.Action{planner.Decrypt, planner.Copy, planner.Skip} {
				rows = append(rows, table.Row{actionLabel(action.String()), byAction[action]})
			}
			fmt.Fprintln(out, renderTable(countColumns, rows, 0))

			if len(byExt) > 0 {
				exts := make([]string, 0, len(byExt))
				for ext := range byExt {
					exts = append(exts, ext)
				}
				sort.Strings(exts)
				extRows := make([]table.Row, 0, len(exts))
				for _, ext := range exts {
					restored, _ := planner.Lookup(ext)
					extRows = append(extRows, table.Row{"." + ext, "." + restored, byExt[ext]})
				}
				fmt.Fprintln(out, renderTable(extColumns, extRows, 0))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&mirror, "mirror", false, "Plan a mirrored output instead of in-place replacement")
	return cmd
}

func flagSet(m *manifest.Manifest, field string) bool {
	raw, ok := m.Fields[field]
	return ok && strings.TrimSpace(string(raw)) == "true"
}
