package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockPath returns the lock file guarding runs on gameRoot. gameRoot should
// be absolute with symlinks resolved so aliases share one lock.
func LockPath(lockDir, gameRoot string) string {
	sum := sha256.Sum256([]byte(gameRoot))
	return filepath.Join(lockDir, hex.EncodeToString(sum[:8])+".lock")
}

func acquireLock(lockDir, gameRoot string) (*flock.Flock, error) {
	if lockDir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure lock directory: %w", err)
	}
	lock := flock.New(LockPath(lockDir, gameRoot))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (%s)", ErrAlreadyRunning, gameRoot)
	}
	return lock, nil
}
