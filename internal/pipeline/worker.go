package pipeline

import (
	"cmp"
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"rpgdecrypt/internal/cipher"
	"rpgdecrypt/internal/fileutil"
	"rpgdecrypt/internal/keycodec"
	"rpgdecrypt/internal/logging"
	"rpgdecrypt/internal/planner"
)

type outcome struct {
	plan  planner.Plan
	bytes int64
	err   *FileError
}

// executor carries the read-only state shared by all workers.
type executor struct {
	key        keycodec.Key
	inPlace    bool
	keepHeader bool
	verify     bool
	retry      retrier
	logger     *slog.Logger
}

func (e *executor) execute(ctx context.Context, p planner.Plan) outcome {
	var o outcome
	switch p.Action {
	case planner.Decrypt:
		o = e.decrypt(ctx, p)
	case planner.Copy:
		o = e.copy(ctx, p)
	default:
		o = outcome{plan: p}
	}
	if o.err == nil && p.Action != planner.Skip {
		e.logger.Debug("asset done",
			logging.String(logging.FieldPath, p.Source),
			logging.String(logging.FieldAction, p.Action.String()),
			logging.Int64("bytes", o.bytes),
		)
	}
	return o
}

func (e *executor) decrypt(ctx context.Context, p planner.Plan) outcome {
	fail := func(op Op, err error) outcome {
		return outcome{plan: p, err: &FileError{Path: p.Source, Op: op, Err: err}}
	}

	perm := os.FileMode(0o644)
	var data []byte
	err := e.retry.do(ctx, func() error {
		info, err := os.Stat(p.Source)
		if err != nil {
			return err
		}
		perm = info.Mode().Perm()
		data, err = os.ReadFile(p.Source)
		return err
	})
	if err != nil {
		return fail(OpRead, err)
	}

	body, err := cipher.Decrypt(data, e.key)
	if err != nil {
		return fail(OpDecrypt, err)
	}
	out := body
	if e.keepHeader {
		out = data
	}

	if err := e.ensureParent(p.Dest); err != nil {
		return fail(OpMkdir, err)
	}
	if err := e.retry.do(ctx, func() error {
		return fileutil.WriteFileAtomic(p.Dest, out, perm)
	}); err != nil {
		return fail(OpWrite, err)
	}

	if e.inPlace && p.Dest != p.Source {
		if err := os.Remove(p.Source); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fail(OpRemove, err)
		}
	}
	return outcome{plan: p, bytes: int64(len(out))}
}

func (e *executor) copy(ctx context.Context, p planner.Plan) outcome {
	if err := e.ensureParent(p.Dest); err != nil {
		return outcome{plan: p, err: &FileError{Path: p.Source, Op: OpMkdir, Err: err}}
	}

	var written int64
	err := e.retry.do(ctx, func() error {
		info, err := os.Stat(p.Source)
		if err != nil {
			return err
		}
		if e.verify {
			written, err = fileutil.CopyFileVerified(p.Source, p.Dest, info.Mode().Perm())
		} else {
			written, err = fileutil.CopyFileMode(p.Source, p.Dest, info.Mode().Perm())
		}
		return err
	})
	if err != nil {
		return outcome{plan: p, err: &FileError{Path: p.Source, Op: OpCopy, Err: err}}
	}
	return outcome{plan: p, bytes: written}
}

func (e *executor) ensureParent(dest string) error {
	if e.inPlace {
		return nil
	}
	return os.MkdirAll(filepath.Dir(dest), 0o755)
}

// retrier repeats transient I/O failures. Missing files and permission
// errors are returned immediately.
type retrier struct {
	attempts int
	delay    time.Duration
}

func (r retrier) do(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt <= r.attempts; attempt++ {
		if attempt > 0 && r.delay > 0 {
			timer := time.NewTimer(r.delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return err
			case <-timer.C:
			}
		}
		if err = fn(); err == nil || !retryable(err) {
			return err
		}
	}
	return err
}

func retryable(err error) bool {
	return !errors.Is(err, fs.ErrNotExist) &&
		!errors.Is(err, fs.ErrPermission) &&
		!errors.Is(err, cipher.ErrShortBuffer)
}

func sortFileErrors(errs []*FileError) {
	slices.SortFunc(errs, func(a, b *FileError) int {
		return cmp.Compare(a.Path, b.Path)
	})
}
