// Package planner decides what happens to each file found under a game root:
// decrypt it and restore the real extension, copy it verbatim into a mirrored
// output tree, or leave it alone.
package planner

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// extensionTable maps obfuscated extensions to the original ones. MV uses the
// rpgmv* names, MZ appends an underscore to the real extension.
var extensionTable = map[string]string{
	"rpgmvo": "ogg",
	"rpgmvm": "m4a",
	"rpgmvp": "png",
	"ogg_":   "ogg",
	"m4a_":   "m4a",
	"png_":   "png",
}

// DefaultMirrorSuffix is appended to the game directory name in mirror mode.
const DefaultMirrorSuffix = "_decrypted"

// Lookup returns the decrypted extension for ext (without the leading dot).
// Matching is exact and case-sensitive.
func Lookup(ext string) (string, bool) {
	out, ok := extensionTable[ext]
	return out, ok
}

// Extensions returns the recognized encrypted extensions in sorted order.
func Extensions() []string {
	out := make([]string, 0, len(extensionTable))
	for ext := range extensionTable {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Action is the transform chosen for a file.
type Action int

const (
	Skip Action = iota
	Copy
	Decrypt
)

func (a Action) String() string {
	switch a {
	case Copy:
		return "copy"
	case Decrypt:
		return "decrypt"
	default:
		return "skip"
	}
}

// Plan is the transform for one source file. Dest is empty for Skip.
type Plan struct {
	Source string
	Dest   string
	Action Action
}

// Planner computes plans for regular files under SourceRoot. With Mirror set,
// destinations are rebased under OutputRoot and unrecognized files are copied.
type Planner struct {
	SourceRoot string
	OutputRoot string
	Mirror     bool
}

// InPlace returns a planner that rewrites assets beside their sources.
func InPlace(root string) Planner {
	return Planner{SourceRoot: root}
}

// Mirrored returns a planner that writes a full copy of root under output.
func Mirrored(root, output string) Planner {
	return Planner{SourceRoot: root, OutputRoot: output, Mirror: true}
}

// Plan classifies source. It must only be called for regular files.
func (p Planner) Plan(source string) Plan {
	dest := source
	if p.Mirror {
		rel, err := filepath.Rel(p.SourceRoot, source)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			// Outside the tree; never write there.
			return Plan{Source: source, Action: Skip}
		}
		dest = filepath.Join(p.OutputRoot, rel)
	}

	ext := strings.TrimPrefix(filepath.Ext(source), ".")
	// A bare dotfile such as ".rpgmvp" has no extension, only a name.
	if filepath.Base(source) == "."+ext {
		ext = ""
	}
	if real, ok := Lookup(ext); ok {
		return Plan{
			Source: source,
			Dest:   strings.TrimSuffix(dest, ext) + real,
			Action: Decrypt,
		}
	}
	if p.Mirror {
		return Plan{Source: source, Dest: dest, Action: Copy}
	}
	return Plan{Source: source, Action: Skip}
}

// MirrorRoot returns the sibling output directory "<root><suffix>".
func MirrorRoot(root, suffix string) (string, error) {
	if suffix == "" {
		suffix = DefaultMirrorSuffix
	}
	cleaned := filepath.Clean(root)
	name := filepath.Base(cleaned)
	if name == "." || name == ".." || name == string(filepath.Separator) || name == "" {
		return "", errors.New("game directory has no usable name for a mirrored output")
	}
	if strings.ContainsRune(suffix, filepath.Separator) {
		return "", fmt.Errorf("mirror suffix %q must not contain a path separator", suffix)
	}
	return filepath.Join(filepath.Dir(cleaned), name+suffix), nil
}
