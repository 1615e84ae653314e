package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"rpgdecrypt/internal/scan"
)

// ErrAlreadyRunning reports that another run holds the lock for the game directory.
var ErrAlreadyRunning = errors.New("another run is already processing this game directory")

// Op names the file operation that failed.
type Op string

const (
	OpRead    Op = "read"
	OpDecrypt Op = "decrypt"
	OpWrite   Op = "write"
	OpRemove  Op = "remove"
	OpCopy    Op = "copy"
	OpMkdir   Op = "mkdir"
	OpPlan    Op = "plan"
)

// FileError is a per-file transform failure.
type FileError struct {
	Path string
	Op   Op
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// FinalizeError reports a manifest write-back failure after assets were
// already transformed. The asset tree and the manifest disagree.
type FinalizeError struct {
	Path string
	Err  error
}

func (e *FinalizeError) Error() string {
	return fmt.Sprintf("finalize manifest %s: assets already decrypted; manifest is stale: %v", e.Path, e.Err)
}

func (e *FinalizeError) Unwrap() error { return e.Err }

// RunError aggregates everything that went wrong after the manifest was read.
// The manifest is only finalized when Scan, Files and Canceled are all empty.
type RunError struct {
	Scan     []*scan.Error
	Files    []*FileError
	Canceled error
	Finalize *FinalizeError
}

func (e *RunError) Error() string {
	if e.Finalize != nil && len(e.Scan) == 0 && len(e.Files) == 0 && e.Canceled == nil {
		return e.Finalize.Error()
	}

	var b strings.Builder
	var parts []string
	if e.Canceled != nil {
		parts = append(parts, "run canceled")
	}
	if n := len(e.Scan); n > 0 {
		parts = append(parts, plural(n, "scan error"))
	}
	if n := len(e.Files); n > 0 {
		parts = append(parts, plural(n, "file error"))
	}
	b.WriteString(strings.Join(parts, ", "))
	b.WriteString("; manifest not updated")
	for _, err := range e.Scan {
		b.WriteString("\n  scan ")
		b.WriteString(err.Error())
	}
	for _, err := range e.Files {
		b.WriteString("\n  ")
		b.WriteString(err.Error())
	}
	return b.String()
}

// Unwrap exposes every collected cause to errors.Is and errors.As.
func (e *RunError) Unwrap() []error {
	errs := make([]error, 0, len(e.Scan)+len(e.Files)+2)
	for _, err := range e.Scan {
		errs = append(errs, err)
	}
	for _, err := range e.Files {
		errs = append(errs, err)
	}
	if e.Canceled != nil {
		errs = append(errs, e.Canceled)
	}
	if e.Finalize != nil {
		errs = append(errs, e.Finalize)
	}
	return errs
}

func (e *RunError) empty() bool {
	return len(e.Scan) == 0 && len(e.Files) == 0 && e.Canceled == nil && e.Finalize == nil
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
