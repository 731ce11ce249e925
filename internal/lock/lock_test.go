package lock

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/inkdash/internal/errors"
)

func fastPoll(t *testing.T) {
	t.Helper()
	orig := pollInterval
	pollInterval = 10 * time.Millisecond
	t.Cleanup(func() { pollInterval = orig })
}

// plant writes a lock dir with the given holder info, as another process would.
func plant(t *testing.T, baseDir string, info *LockInfo) string {
	t.Helper()
	lockDir := filepath.Join(baseDir, DirName)
	require.NoError(t, os.MkdirAll(lockDir, 0755))
	if info != nil {
		data, err := info.Marshal()
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(lockDir, infoFileName), data, 0644))
	}
	return lockDir
}

func thisHost(t *testing.T) string {
	t.Helper()
	h, err := os.Hostname()
	require.NoError(t, err)
	return h
}

func TestNewLockInfo(t *testing.T) {
	info := NewLockInfo("run")

	assert.NotEmpty(t, info.User)
	assert.NotEmpty(t, info.Hostname)
	assert.Equal(t, os.Getpid(), info.PID)
	assert.Equal(t, "run", info.Command)
	assert.WithinDuration(t, time.Now(), info.Started, time.Second)
}

func TestLockInfo_Age(t *testing.T) {
	info := &LockInfo{Started: time.Now().Add(-5 * time.Minute)}
	assert.InDelta(t, (5 * time.Minute).Seconds(), info.Age().Seconds(), 1)
}

func TestLockInfo_RoundTrip(t *testing.T) {
	info := &LockInfo{
		User:     "pi",
		Hostname: "frame",
		Started:  time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC),
		PID:      4242,
		Command:  "run",
	}

	data, err := info.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"pid":4242`)

	parsed, err := ParseLockInfo(data)
	require.NoError(t, err)
	assert.Equal(t, info.User, parsed.User)
	assert.Equal(t, info.PID, parsed.PID)
	assert.True(t, info.Started.Equal(parsed.Started))

	_, err = ParseLockInfo([]byte("not json"))
	assert.Error(t, err)
}

func TestLockInfo_String(t *testing.T) {
	tests := []struct {
		info *LockInfo
		want string
	}{
		{&LockInfo{User: "pi", Hostname: "frame", PID: 12}, "pi@frame (pid 12)"},
		{&LockInfo{User: "pi", Hostname: "frame", PID: 12, Command: "once"}, "pi@frame (pid 12, inkdash once)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.info.String())
	}
}

func TestTryAcquire_AndRelease(t *testing.T) {
	base := t.TempDir()

	l, err := TryAcquire(base, "once")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, DirName), l.Dir)

	info, err := readInfo(l.Dir)
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), info.PID)
	assert.Contains(t, Holder(base), "inkdash once")

	_, err = TryAcquire(base, "run")
	assert.True(t, stderrors.Is(err, ErrLocked), "second acquire should see the live holder")

	require.NoError(t, l.Release())
	_, err = os.Stat(l.Dir)
	assert.True(t, os.IsNotExist(err))

	l2, err := TryAcquire(base, "run")
	require.NoError(t, err)
	assert.NoError(t, l2.Release())
}

func TestRelease_Nil(t *testing.T) {
	var l *Lock
	assert.NoError(t, l.Release())
}

func TestTryAcquire_BreaksDeadHolder(t *testing.T) {
	base := t.TempDir()
	plant(t, base, &LockInfo{User: "pi", Hostname: thisHost(t), PID: 0x3fffffff, Started: time.Now()})

	l, err := TryAcquire(base, "run")
	require.NoError(t, err)
	defer l.Release()
	assert.Equal(t, os.Getpid(), l.Info.PID)
}

func TestTryAcquire_BreakingLeavesNothingAside(t *testing.T) {
	base := t.TempDir()
	plant(t, base, &LockInfo{User: "pi", Hostname: thisHost(t), PID: 0x3fffffff, Started: time.Now()})

	l, err := TryAcquire(base, "run")
	require.NoError(t, err)
	defer l.Release()

	entries, err := os.ReadDir(base)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, DirName, entries[0].Name())
}

func TestBreakStale_KeepsLockTakenInBetween(t *testing.T) {
	base := t.TempDir()
	lockDir := plant(t, base, &LockInfo{User: "pi", Hostname: "frame", PID: 0x3fffffff, Started: time.Now()})
	staleID, _, _ := identity(lockDir)

	// Someone else broke that lock and took a fresh one before our rename.
	require.NoError(t, os.RemoveAll(lockDir))
	fresh, err := TryAcquire(base, "once")
	require.NoError(t, err)
	defer fresh.Release()

	breakStale(lockDir, staleID)

	info, err := readInfo(lockDir)
	require.NoError(t, err, "fresh lock must be put back")
	assert.Equal(t, os.Getpid(), info.PID)
	assert.Equal(t, "once", info.Command)

	entries, err := os.ReadDir(base)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStaleIdentity(t *testing.T) {
	base := t.TempDir()
	lockDir := filepath.Join(base, DirName)

	_, stale := staleIdentity(lockDir)
	assert.False(t, stale, "missing dir is not stale")

	plant(t, base, &LockInfo{User: "pi", Hostname: thisHost(t), PID: os.Getpid(), Started: time.Now()})
	id, stale := staleIdentity(lockDir)
	assert.False(t, stale, "live holder")
	assert.Contains(t, id, thisHost(t))
}

func TestTryAcquire_RespectsOtherHost(t *testing.T) {
	base := t.TempDir()
	plant(t, base, &LockInfo{User: "pi", Hostname: "some-other-frame", PID: 0x3fffffff, Started: time.Now()})

	_, err := TryAcquire(base, "run")
	assert.True(t, stderrors.Is(err, ErrLocked))
	assert.Equal(t, "pi@some-other-frame (pid 1073741823)", Holder(base))
}

func TestTryAcquire_OrphanDir(t *testing.T) {
	base := t.TempDir()
	lockDir := plant(t, base, nil)

	_, err := TryAcquire(base, "run")
	assert.True(t, stderrors.Is(err, ErrLocked), "fresh dir without info may still be mid-acquire")
	assert.Equal(t, "unknown", Holder(base))

	old := time.Now().Add(-2 * orphanGrace)
	require.NoError(t, os.Chtimes(lockDir, old, old))

	l, err := TryAcquire(base, "run")
	require.NoError(t, err)
	assert.NoError(t, l.Release())
}

func TestAcquire_TimesOut(t *testing.T) {
	fastPoll(t)
	base := t.TempDir()
	held, err := TryAcquire(base, "run")
	require.NoError(t, err)
	defer held.Release()

	_, err = Acquire(context.Background(), base, 50*time.Millisecond, "once")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrLock))
	assert.Contains(t, err.Error(), "inkdash run")
}

func TestAcquire_WaitsForRelease(t *testing.T) {
	fastPoll(t)
	base := t.TempDir()
	held, err := TryAcquire(base, "run")
	require.NoError(t, err)

	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = held.Release()
	}()

	l, err := Acquire(context.Background(), base, 5*time.Second, "once")
	require.NoError(t, err)
	assert.NoError(t, l.Release())
}

func TestAcquire_Cancelled(t *testing.T) {
	fastPoll(t)
	base := t.TempDir()
	held, err := TryAcquire(base, "run")
	require.NoError(t, err)
	defer held.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = Acquire(ctx, base, time.Minute, "once")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrLock))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTryAcquire_UnwritableBase(t *testing.T) {
	base := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(base, nil, 0644))

	_, err := TryAcquire(base, "run")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrLock))
}
