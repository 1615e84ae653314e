package preflight

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.W_OK|unix.X_OK, "read/write ok")
}

// CheckGameRoot verifies the game directory can be walked. In-place runs also
// need write access because decrypted assets replace the originals.
func CheckGameRoot(root string, mirror bool) Result {
	const name = "Game directory"
	if mirror {
		return checkDirectory(name, root, unix.R_OK|unix.X_OK, "read ok")
	}
	return checkDirectory(name, root, unix.R_OK|unix.W_OK|unix.X_OK, "read/write ok")
}

// CheckOutputParent verifies the mirror output root can be created. An
// existing output directory is reused and must itself be writable.
func CheckOutputParent(outputRoot string) Result {
	const name = "Output directory"

	info, err := os.Stat(outputRoot)
	switch {
	case err == nil && info.IsDir():
		return CheckDirectoryAccess(name, outputRoot)
	case err == nil:
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: exists and is not a directory)", outputRoot)}
	case !os.IsNotExist(err):
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", outputRoot, err)}
	}

	parent := filepath.Dir(outputRoot)
	result := CheckDirectoryAccess(name, parent)
	if !result.Passed {
		return result
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", outputRoot)}
}

func checkDirectory(name, path string, mode uint32, okDetail string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, mode); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, okDetail)}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
