// Package scan enumerates the regular files under a game root. Symlinks are
// reported by the walk but never followed, so the traversal terminates even
// when links form cycles. Unreadable entries are collected rather than
// aborting the walk.
package scan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"rpgdecrypt/internal/fileutil"
)

// Error records an entry the walk could not read.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("scan %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Result holds the files found and the entries that failed.
type Result struct {
	Files  []string
	Errors []*Error

	// Leftovers are temp files abandoned by an interrupted atomic write.
	Leftovers []string
}

// Options tunes a walk.
type Options struct {
	// Exclude lists subtrees that are never descended into.
	Exclude []string
}

// Walk lists every regular file under root in lexical order. The returned
// error is non-nil only when root itself cannot be walked or ctx is done.
func Walk(ctx context.Context, root string, opts Options) (Result, error) {
	var result Result

	exclude := make(map[string]struct{}, len(opts.Exclude))
	for _, p := range opts.Exclude {
		exclude[filepath.Clean(p)] = struct{}{}
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == root {
				return err
			}
			result.Errors = append(result.Errors, &Error{Path: path, Err: err})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if _, skip := exclude[filepath.Clean(path)]; skip {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if fileutil.IsTemp(path) {
			result.Leftovers = append(result.Leftovers, path)
			return nil
		}
		result.Files = append(result.Files, path)
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return result, err
		}
		return result, &Error{Path: root, Err: err}
	}
	return result, nil
}
