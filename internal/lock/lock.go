// Package lock keeps two inkdash processes from driving the same panel.
//
// The lock is a directory created with mkdir, which is atomic on local
// filesystems. The holder's LockInfo is written inside it so a waiting process
// can say who is in the way and can break the lock once the holder is gone.
package lock

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/rileyhilliard/inkdash/internal/errors"
)

// DirName is the lock directory created under the configured lock dir.
const DirName = "inkdash-panel.lock"

const (
	infoFileName = "info.json"

	// A lock dir without a readable info file is only broken after this long,
	// so a holder that is still writing its info is left alone.
	orphanGrace = 30 * time.Second
)

// pollInterval is how often Acquire retries. Variable for tests.
var pollInterval = 500 * time.Millisecond

// Lock is an acquired panel lock.
type Lock struct {
	Dir  string    // The lock directory
	Info *LockInfo // Info about the lock holder (us)
}

// Acquire takes the panel lock under baseDir, waiting up to timeout for a
// current holder to let go. Locks left behind by dead processes on this host
// are removed.
func Acquire(ctx context.Context, baseDir string, timeout time.Duration, command string) (*Lock, error) {
	deadline := time.Now().Add(timeout)
	for {
		l, err := TryAcquire(baseDir, command)
		if err == nil {
			return l, nil
		}
		if !stderrors.Is(err, ErrLocked) {
			return nil, err
		}

		if time.Now().After(deadline) {
			return nil, errors.New(errors.ErrLock,
				fmt.Sprintf("Timed out after %s waiting for the panel", timeout),
				fmt.Sprintf("Lock held by: %s. Stop that process, or remove %s if it is gone.",
					Holder(baseDir), filepath.Join(baseDir, DirName)))
		}

		select {
		case <-ctx.Done():
			return nil, errors.WrapWithCode(ctx.Err(), errors.ErrLock,
				"Gave up waiting for the panel lock", "")
		case <-time.After(pollInterval):
		}
	}
}

// TryAcquire makes a single attempt. It returns ErrLocked when another live
// process holds the lock.
func TryAcquire(baseDir, command string) (*Lock, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrLock,
			fmt.Sprintf("Can't create lock directory %s", baseDir),
			"Set lock.dir to a writable directory.")
	}
	lockDir := filepath.Join(baseDir, DirName)

	if id, stale := staleIdentity(lockDir); stale {
		breakStale(lockDir, id)
	}

	if err := os.Mkdir(lockDir, 0755); err != nil {
		if os.IsExist(err) {
			return nil, ErrLocked
		}
		return nil, errors.WrapWithCode(err, errors.ErrLock,
			fmt.Sprintf("Can't create %s", lockDir),
			"Set lock.dir to a writable directory.")
	}

	info := NewLockInfo(command)
	data, err := info.Marshal()
	if err == nil {
		err = os.WriteFile(filepath.Join(lockDir, infoFileName), data, 0644)
	}
	if err != nil {
		_ = os.RemoveAll(lockDir)
		return nil, errors.WrapWithCode(err, errors.ErrLock,
			"Failed to write lock info file",
			"Check disk space and permissions on lock.dir.")
	}

	return &Lock{Dir: lockDir, Info: info}, nil
}

// Release removes the lock, allowing others to acquire it.
func (l *Lock) Release() error {
	if l == nil || l.Dir == "" {
		return nil
	}
	if err := os.RemoveAll(l.Dir); err != nil {
		return errors.WrapWithCode(err, errors.ErrLock,
			fmt.Sprintf("Failed to remove lock directory: %s", l.Dir),
			"Remove it by hand before the next run.")
	}
	return nil
}

// Holder returns who holds the lock under baseDir, or "unknown".
func Holder(baseDir string) string {
	info, err := readInfo(filepath.Join(baseDir, DirName))
	if err != nil {
		return "unknown"
	}
	return info.String()
}

func readInfo(lockDir string) (*LockInfo, error) {
	data, err := os.ReadFile(filepath.Join(lockDir, infoFileName))
	if err != nil {
		return nil, err
	}
	return ParseLockInfo(data)
}

// identity names one particular lock dir, so a dir judged stale can be told
// apart from a fresh one created at the same path afterwards.
func identity(lockDir string) (string, *LockInfo, os.FileInfo) {
	st, err := os.Stat(lockDir)
	if err != nil {
		return "", nil, nil
	}
	info, err := readInfo(lockDir)
	if err != nil {
		return fmt.Sprintf("orphan@%d", st.ModTime().UnixNano()), nil, st
	}
	return fmt.Sprintf("%s@%s/%d", strconv.Itoa(info.PID), info.Hostname, info.Started.UnixNano()), info, st
}

// staleIdentity reports whether lockDir was left behind by a process that no
// longer exists, and the identity of the dir that was judged.
func staleIdentity(lockDir string) (string, bool) {
	id, info, st := identity(lockDir)
	if st == nil {
		return "", false
	}
	if info == nil {
		return id, time.Since(st.ModTime()) > orphanGrace
	}

	host, _ := os.Hostname()
	if info.Hostname != host {
		// Shared lock dir on another machine's filesystem; can't check its PIDs.
		return id, false
	}
	return id, !processAlive(info.PID)
}

// breakStale moves lockDir aside with an atomic rename and removes it, but only
// if the moved dir is still the one identified as stale. Another process may
// have broken the same lock and taken a fresh one in between; that lock is
// put back.
func breakStale(lockDir, staleID string) {
	aside := fmt.Sprintf("%s.stale-%d-%d", lockDir, os.Getpid(), time.Now().UnixNano())
	if err := os.Rename(lockDir, aside); err != nil {
		return
	}
	if id, _, _ := identity(aside); id != staleID {
		_ = os.Rename(aside, lockDir)
		return
	}
	_ = os.RemoveAll(aside)
}

func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := syscall.Kill(pid, 0)
	return err == nil || stderrors.Is(err, syscall.EPERM)
}
