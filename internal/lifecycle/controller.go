// Package lifecycle starts, supervises and stops the external tool
// processes recorded in a registry.Registry.
package lifecycle

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"botctl/internal/registry"
	"botctl/internal/tool"
	"botctl/pkg/logging"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"
)

// For mocking in tests
var (
	execCommand = exec.Command
	sendSignal  = signalGroup
)

// outputDrainTimeout bounds how long the exit observer waits for stdout EOF
// after the leader exited; descendants may still hold the pipe open.
const outputDrainTimeout = 2 * time.Second

// run is the controller's private view of one spawned process.
type run struct {
	kind          tool.Kind
	runID         string
	pid           int
	output        *OutputBuffer
	lock          *flock.Flock
	stopRequested atomic.Bool
	done          chan struct{}
}

// Controller is the only component that spawns or signals tool processes.
type Controller struct {
	reg  *registry.Registry
	opts Options

	mu   sync.Mutex
	runs map[tool.Kind]*run
	wg   sync.WaitGroup
}

// NewController creates a controller that records its processes in reg.
func NewController(reg *registry.Registry, opts Options) *Controller {
	if opts.Shell == "" {
		opts.Shell = defaultShell
	}
	if opts.StopSignal == 0 {
		opts.StopSignal = syscall.SIGTERM
	}
	if opts.OutputLimit <= 0 {
		opts.OutputLimit = DefaultOutputLimit
	}
	return &Controller{
		reg:  reg,
		opts: opts,
		runs: make(map[tool.Kind]*run),
	}
}

// LogPath returns the stderr log file used for kind.
func (c *Controller) LogPath(kind tool.Kind) string {
	name := kind.LogFile()
	if override, ok := c.opts.LogFiles[kind]; ok && override != "" {
		name = override
	}
	return filepath.Join(c.opts.LogDir, name)
}

// Start launches command for kind unless a run of that kind is already live.
// It returns as soon as the process is spawned; its exit is observed in the
// background and clears the registry slot.
func (c *Controller) Start(ctx context.Context, kind tool.Kind, command string) (Outcome, error) {
	h, ok := c.reg.TryReserve(kind, command)
	if !ok {
		return OutcomeAlreadyRunning, nil
	}

	if err := ctx.Err(); err != nil {
		c.reg.Release(kind, h.RunID, nil)
		return OutcomeSpawnFailed, fmt.Errorf("%w: %v", ErrSpawnFailed, err)
	}

	lock, held, err := acquireKindLock(c.opts.LockDir, kind)
	if err != nil {
		c.reg.Release(kind, h.RunID, nil)
		return OutcomeSpawnFailed, fmt.Errorf("%w: %v", ErrSpawnFailed, err)
	}
	if !held {
		c.reg.Release(kind, h.RunID, nil)
		logging.Info("Lifecycle", "%s is already running in another botctl process", kind)
		return OutcomeAlreadyRunning, nil
	}

	// Anything below that fails must undo the reservation and the lock.
	abort := func(outcome Outcome, err error) (Outcome, error) {
		if unlockErr := releaseKindLock(lock); unlockErr != nil {
			logging.Warn("Lifecycle", "Failed to release lock for %s: %v", kind, unlockErr)
		}
		c.reg.Release(kind, h.RunID, &registry.ExitRecord{
			State:    registry.StateFailed,
			ExitCode: -1,
			Error:    err.Error(),
		})
		c.emit(Event{Type: EventExited, Kind: kind, RunID: h.RunID, State: registry.StateFailed, ExitCode: -1, Err: err})
		return outcome, err
	}

	if c.opts.LogDir != "" {
		if err := os.MkdirAll(c.opts.LogDir, 0o755); err != nil {
			return abort(OutcomeLogDirectoryUnavailable, fmt.Errorf("%w: %s: %v", ErrLogDirectoryUnavailable, c.opts.LogDir, err))
		}
	}
	logPath := c.LogPath(kind)
	logFile, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec // log path comes from configuration
	if err != nil {
		return abort(OutcomeLogDirectoryUnavailable, fmt.Errorf("%w: opening %s: %v", ErrLogDirectoryUnavailable, logPath, err))
	}

	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		logFile.Close()
		return abort(OutcomeSpawnFailed, fmt.Errorf("%w: stdout pipe for %s: %v", ErrSpawnFailed, kind, err))
	}

	cmd := execCommand(c.opts.Shell, "-c", command)
	configureProcess(cmd)
	cmd.Dir = c.opts.WorkDir
	cmd.Env = os.Environ() // Inherit current environment
	for k, v := range c.opts.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}
	cmd.Stdout = stdoutW
	cmd.Stderr = logFile

	if err := cmd.Start(); err != nil {
		stdoutR.Close()
		stdoutW.Close()
		logFile.Close()
		logging.Error("Lifecycle", err, "Failed to start %s", kind)
		return abort(OutcomeSpawnFailed, fmt.Errorf("%w: %s: %v", ErrSpawnFailed, kind, err))
	}
	// The child holds its own copy of the write end.
	stdoutW.Close()

	pid := cmd.Process.Pid
	r := &run{
		kind:   kind,
		runID:  h.RunID,
		pid:    pid,
		output: NewOutputBuffer(c.opts.OutputLimit),
		lock:   lock,
		done:   make(chan struct{}),
	}
	// Publish the run before the pid: a Stop that sees the pid must find it.
	c.mu.Lock()
	c.runs[kind] = r
	c.mu.Unlock()

	if err := c.reg.Install(kind, h.RunID, pid); err != nil {
		// Unreachable while the reservation is held, but never leave an
		// untracked process behind.
		c.forget(r)
		_ = signalGroup(pid, syscall.SIGKILL)
		_ = cmd.Wait()
		stdoutR.Close()
		logFile.Close()
		return abort(OutcomeSpawnFailed, fmt.Errorf("%w: %v", ErrSpawnFailed, err))
	}

	logging.Info("Lifecycle", "Started %s (PID: %d, run %s), stderr -> %s", kind, pid, h.RunID, logPath)
	c.emit(Event{Type: EventStarted, Kind: kind, RunID: h.RunID, PID: pid, State: registry.StateRunning})

	c.wg.Add(2)
	readerDone := make(chan struct{})
	go func() {
		defer c.wg.Done()
		defer close(readerDone)
		defer stdoutR.Close()
		c.pumpOutput(r, stdoutR)
	}()
	go func() {
		defer c.wg.Done()
		c.observe(r, cmd, logFile, h, readerDone)
	}()

	return OutcomeStarted, nil
}

// pumpOutput copies the child's stdout into the run buffer. Lines longer
// than the reader buffer arrive in several chunks; the pipe is drained to
// EOF either way so the child never writes into a closed pipe.
func (c *Controller) pumpOutput(r *run, src io.Reader) {
	reader := bufio.NewReaderSize(src, 64*1024)
	for {
		chunk, err := reader.ReadSlice('\n')
		if len(chunk) > 0 {
			_, _ = r.output.Write(chunk)
			logging.Debug("Lifecycle", "[%s STDOUT] %s", r.kind, bytes.TrimRight(chunk, "\n"))
		}
		switch {
		case err == nil, errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF), errors.Is(err, os.ErrClosed):
			return
		default:
			logging.Warn("Lifecycle", "Reading stdout of %s (PID: %d) failed, discarding the rest: %v", r.kind, r.pid, err)
			_, _ = io.Copy(io.Discard, src)
			return
		}
	}
}

// forget drops r from the live runs unless a newer run replaced it.
func (c *Controller) forget(r *run) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.runs[r.kind]; ok && cur == r {
		delete(c.runs, r.kind)
	}
}

// current returns the live run of kind when it belongs to runID.
func (c *Controller) current(kind tool.Kind, runID string) *run {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r := c.runs[kind]; r != nil && r.runID == runID {
		return r
	}
	return nil
}

// observe waits for the child to exit and clears its slot exactly once.
func (c *Controller) observe(r *run, cmd *exec.Cmd, logFile *os.File, h registry.Handle, readerDone <-chan struct{}) {
	waitErr := cmd.Wait()
	logFile.Close()

	select {
	case <-readerDone:
	case <-time.After(outputDrainTimeout):
		logging.Debug("Lifecycle", "stdout of %s still open after exit, not waiting further", r.kind)
	}

	rec := registry.ExitRecord{
		PID:       r.pid,
		Command:   h.Command,
		StartedAt: h.StartedAt,
		EndedAt:   time.Now(),
		Output:    r.output.String(),
	}
	rec.State, rec.ExitCode = classifyExit(waitErr, r.stopRequested.Load())
	if waitErr != nil {
		rec.Error = waitErr.Error()
	}

	// Unlock first: once the slot is free a new Start may immediately want the lock.
	if err := releaseKindLock(r.lock); err != nil {
		logging.Warn("Lifecycle", "Failed to release lock for %s: %v", r.kind, err)
	}

	if c.reg.Release(r.kind, r.runID, &rec) {
		logging.Info("Lifecycle", "%s (PID: %d) exited: state=%s code=%d", r.kind, r.pid, rec.State, rec.ExitCode)
	} else {
		logging.Debug("Lifecycle", "%s (PID: %d) exited after its slot was already released", r.kind, r.pid)
	}

	c.forget(r)

	close(r.done)
	c.emit(Event{Type: EventExited, Kind: r.kind, RunID: r.runID, PID: r.pid, State: rec.State, ExitCode: rec.ExitCode, Err: waitErr})
}

// classifyExit maps a Wait result to the final state. A run that exits
// after a stop request is Terminated whatever its status.
func classifyExit(waitErr error, stopped bool) (registry.State, int) {
	if waitErr == nil {
		return registry.StateTerminated, 0
	}
	code := -1
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		code = exitErr.ExitCode()
	}
	if stopped {
		return registry.StateTerminated, code
	}
	return registry.StateFailed, code
}

// Stop signals the process group of kind's live run. It returns once the
// signal is delivered; the exit observer clears the slot when the process
// actually dies.
func (c *Controller) Stop(ctx context.Context, kind tool.Kind) (Outcome, error) {
	h, ok := c.reg.Get(kind)
	if !ok || h.PID == 0 {
		return OutcomeNotRunning, nil
	}

	r := c.current(kind, h.RunID)
	if err := sendSignal(h.PID, c.opts.StopSignal); err != nil {
		if isProcessGone(err) {
			logging.Info("Lifecycle", "%s (PID: %d) was already gone", kind, h.PID)
			// The slot is freed now, so the lock must be too or the next
			// Start would find it held by this very process.
			if r != nil {
				if unlockErr := releaseKindLock(r.lock); unlockErr != nil {
					logging.Warn("Lifecycle", "Failed to release lock for %s: %v", kind, unlockErr)
				}
			}
			c.reg.Release(kind, h.RunID, &registry.ExitRecord{
				State:    registry.StateTerminated,
				ExitCode: -1,
				Error:    "process already exited",
			})
			return OutcomeNotRunning, nil
		}
		logging.Error("Lifecycle", err, "Failed to signal %s (PID: %d)", kind, h.PID)
		return OutcomeStopFailed, fmt.Errorf("%w: %s (PID: %d): %v", ErrStopFailed, kind, h.PID, err)
	}

	if r != nil {
		r.stopRequested.Store(true)
	}

	c.reg.MarkStopping(kind, h.RunID)
	logging.Info("Lifecycle", "Sent %s to %s (PID: %d)", c.opts.StopSignal, kind, h.PID)
	c.emit(Event{Type: EventStopRequested, Kind: kind, RunID: h.RunID, PID: h.PID, State: registry.StateStopping})

	if c.opts.KillAfter > 0 && r != nil {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.escalate(r)
		}()
	}

	return OutcomeStopped, nil
}

func (c *Controller) escalate(r *run) {
	timer := time.NewTimer(c.opts.KillAfter)
	defer timer.Stop()

	select {
	case <-r.done:
	case <-timer.C:
		logging.Warn("Lifecycle", "%s (PID: %d) still alive %s after stop, sending SIGKILL", r.kind, r.pid, c.opts.KillAfter)
		if err := sendSignal(r.pid, syscall.SIGKILL); err != nil && !isProcessGone(err) {
			logging.Error("Lifecycle", err, "Failed to kill %s (PID: %d)", r.kind, r.pid)
		}
	}
}

// Output returns the captured stdout of the live run of kind, or of the
// last finished run when none is live.
func (c *Controller) Output(kind tool.Kind) (string, bool) {
	c.mu.Lock()
	r := c.runs[kind]
	c.mu.Unlock()
	if r != nil {
		return r.output.String(), true
	}
	if rec, ok := c.reg.LastExit(kind); ok {
		return rec.Output, true
	}
	return "", false
}

// Shutdown stops every live run concurrently and waits for the exit
// observers until ctx is done.
func (c *Controller) Shutdown(ctx context.Context) error {
	handles := c.reg.Snapshot()

	g, gctx := errgroup.WithContext(ctx)
	for _, h := range handles {
		kind := h.Kind
		g.Go(func() error {
			_, err := c.Stop(gctx, kind)
			return err
		})
	}
	stopErr := g.Wait()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return stopErr
	case <-ctx.Done():
		return fmt.Errorf("waiting for tool processes to exit: %w", ctx.Err())
	}
}

func (c *Controller) emit(ev Event) {
	if c.opts.OnEvent == nil {
		return
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	c.opts.OnEvent(ev)
}
