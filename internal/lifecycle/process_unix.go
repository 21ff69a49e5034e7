//go:build !windows

package lifecycle

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"
)

// configureProcess puts the child in its own process group so the whole
// tree (interpreter plus anything it forks) can be signalled at once.
func configureProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// signalGroup delivers sig to the process group led by pid.
func signalGroup(pid int, sig syscall.Signal) error {
	if pid <= 0 {
		return fmt.Errorf("invalid pid %d", pid)
	}
	// Negative pid targets the full process group (shell + spawned children).
	return unix.Kill(-pid, sig)
}

// isProcessGone reports whether a signalling error means nothing was left to signal.
func isProcessGone(err error) bool {
	return errors.Is(err, unix.ESRCH)
}

// ParseSignal accepts names such as "SIGTERM", "term" or "INT".
func ParseSignal(name string) (syscall.Signal, error) {
	n := strings.ToUpper(strings.TrimSpace(name))
	if n == "" {
		return unix.SIGTERM, nil
	}
	if !strings.HasPrefix(n, "SIG") {
		n = "SIG" + n
	}
	sig := unix.SignalNum(n)
	if sig == 0 {
		return 0, fmt.Errorf("unknown signal %q", name)
	}
	return sig, nil
}
