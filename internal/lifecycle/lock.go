package lifecycle

import (
	"fmt"
	"os"
	"path/filepath"

	"botctl/internal/tool"

	"github.com/gofrs/flock"
)

// acquireKindLock takes the advisory lock file for kind in dir so a second
// botctl process on the same host cannot launch the same tool. An empty dir
// disables cross-process locking. held is false when another process owns it.
func acquireKindLock(dir string, kind tool.Kind) (lock *flock.Flock, held bool, err error) {
	if dir == "" {
		return nil, true, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, false, fmt.Errorf("creating lock directory %s: %w", dir, err)
	}

	lock = flock.New(filepath.Join(dir, string(kind)+".lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, false, fmt.Errorf("acquiring lock for %s: %w", kind, err)
	}
	if !ok {
		return nil, false, nil
	}
	return lock, true, nil
}

func releaseKindLock(lock *flock.Flock) error {
	if lock == nil {
		return nil
	}
	return lock.Unlock()
}
