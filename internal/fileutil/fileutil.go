package fileutil

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// tempPattern marks in-flight writes; the scanner never plans these files.
const tempPattern = ".rpgdecrypt-*.tmp"

// IsTemp reports whether name looks like an in-flight atomic write.
func IsTemp(name string) bool {
	ok, _ := filepath.Match(tempPattern, filepath.Base(name))
	return ok
}

// WriteFileAtomic writes data to a temp file beside path and renames it into
// place, so readers never observe a partially written file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), tempPattern)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// CopyFileMode streams src to dst, setting the given file mode on dst.
func CopyFileMode(src, dst string, mode os.FileMode) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return 0, err
	}
	defer out.Close()

	written, err := io.Copy(out, in)
	if err != nil {
		return written, err
	}
	return written, out.Close()
}

// CopyFileVerified streams src to dst, then re-reads dst from disk and
// compares its size and SHA-256 with the source. A regular dst is removed on
// mismatch.
func CopyFileVerified(src, dst string, mode os.FileMode) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = out.Close()
	}()

	srcHasher := sha256.New()
	written, err := io.Copy(out, io.TeeReader(in, srcHasher))
	if err != nil {
		return written, err
	}
	if err := out.Close(); err != nil {
		return written, err
	}

	stored, dstSum, err := hashFile(dst)
	if err != nil {
		return written, fmt.Errorf("verify copy: %w", err)
	}
	if stored != written {
		removeRegular(dst)
		return written, fmt.Errorf("copy size mismatch: copied %d bytes, destination holds %d", written, stored)
	}
	if !bytes.Equal(srcHasher.Sum(nil), dstSum) {
		removeRegular(dst)
		return written, errors.New("copy hash mismatch: destination differs from source")
	}
	return written, nil
}

func hashFile(path string) (int64, []byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, nil, err
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return n, nil, err
	}
	return n, h.Sum(nil), nil
}

// removeRegular deletes path only when it is a regular file, leaving device
// nodes and other special files alone.
func removeRegular(path string) {
	if info, err := os.Lstat(path); err == nil && info.Mode().IsRegular() {
		_ = os.Remove(path)
	}
}
