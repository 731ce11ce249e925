package lock

import (
	"encoding/json"
	"os"
	"strconv"
	"time"
)

// LockInfo describes the process driving the panel.
type LockInfo struct {
	User     string    `json:"user"`
	Hostname string    `json:"hostname"`
	Started  time.Time `json:"started"`
	PID      int       `json:"pid"`
	Command  string    `json:"command,omitempty"`
}

// NewLockInfo describes the current process. command is the inkdash
// subcommand holding the lock, e.g. "run".
func NewLockInfo(command string) *LockInfo {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	user := os.Getenv("USER")
	if user == "" {
		user = "unknown"
	}

	return &LockInfo{
		User:     user,
		Hostname: hostname,
		Started:  time.Now(),
		PID:      os.Getpid(),
		Command:  command,
	}
}

// Age returns how long ago the lock was acquired.
func (i *LockInfo) Age() time.Duration {
	return time.Since(i.Started)
}

// Marshal serializes the LockInfo to JSON.
func (i *LockInfo) Marshal() ([]byte, error) {
	return json.Marshal(i)
}

// ParseLockInfo deserializes JSON data into a LockInfo.
func ParseLockInfo(data []byte) (*LockInfo, error) {
	var info LockInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// String returns a human-readable description of who holds the lock.
func (i *LockInfo) String() string {
	s := i.User + "@" + i.Hostname + " (pid " + strconv.Itoa(i.PID)
	if i.Command != "" {
		s += ", inkdash " + i.Command
	}
	return s + ")"
}
