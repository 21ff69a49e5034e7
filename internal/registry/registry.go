// Package registry holds the single source of truth for which tool kinds
// currently have a live process. Every slot operation happens under one
// mutex, so reserving a slot is a single check-and-mark step.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"botctl/internal/tool"
	"botctl/pkg/logging"

	"github.com/google/uuid"
)

// ErrNotReserved is returned by Install when the slot is not held by the given run.
var ErrNotReserved = errors.New("slot not reserved by run")

// Registry maps each tool kind to at most one live Handle.
type Registry struct {
	mu       sync.Mutex
	slots    map[tool.Kind]*Handle
	lastExit map[tool.Kind]ExitRecord
	now      func() time.Time
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		slots:    make(map[tool.Kind]*Handle),
		lastExit: make(map[tool.Kind]ExitRecord),
		now:      time.Now,
	}
}

// TryReserve claims the slot for kind if it is empty. The returned Handle is
// in StateStarting and carries a fresh run ID that later calls must present.
func (r *Registry) TryReserve(kind tool.Kind, command string) (Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.slots[kind]; ok {
		logging.Debug("Registry", "Reservation for %s rejected, run %s is %s", kind, existing.RunID, existing.State)
		return Handle{}, false
	}

	h := &Handle{
		Kind:      kind,
		RunID:     uuid.NewString(),
		State:     StateStarting,
		StartedAt: r.now(),
		Command:   command,
	}
	r.slots[kind] = h
	logging.Debug("Registry", "Reserved %s for run %s", kind, h.RunID)
	return *h, true
}

// Install attaches the OS pid to a reserved slot and marks it running.
func (r *Registry) Install(kind tool.Kind, runID string, pid int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.slots[kind]
	if !ok || h.RunID != runID {
		return fmt.Errorf("install %s run %s: %w", kind, runID, ErrNotReserved)
	}
	h.PID = pid
	h.State = StateRunning
	return nil
}

// Get returns a copy of the live handle for kind.
func (r *Registry) Get(kind tool.Kind) (Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.slots[kind]
	if !ok {
		return Handle{}, false
	}
	return *h, true
}

// MarkStopping records that a termination signal was delivered to the run.
func (r *Registry) MarkStopping(kind tool.Kind, runID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.slots[kind]
	if !ok || h.RunID != runID {
		return false
	}
	h.State = StateStopping
	return true
}

// Release clears the slot for kind if it still belongs to runID. It reports
// whether this call removed the entry; later calls for the same run are
// no-ops. When rec is non-nil and the entry was removed, rec becomes the
// kind's last exit record.
func (r *Registry) Release(kind tool.Kind, runID string, rec *ExitRecord) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.slots[kind]
	if !ok || h.RunID != runID {
		return false
	}
	delete(r.slots, kind)

	if rec != nil {
		record := *rec
		record.Kind = kind
		record.RunID = runID
		if record.Command == "" {
			record.Command = h.Command
		}
		if record.PID == 0 {
			record.PID = h.PID
		}
		if record.StartedAt.IsZero() {
			record.StartedAt = h.StartedAt
		}
		if record.EndedAt.IsZero() {
			record.EndedAt = r.now()
		}
		r.lastExit[kind] = record
	}

	logging.Debug("Registry", "Released %s (run %s)", kind, runID)
	return true
}

// LastExit returns how the most recent finished run of kind ended.
func (r *Registry) LastExit(kind tool.Kind) (ExitRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.lastExit[kind]
	return rec, ok
}

// Snapshot returns copies of all live handles ordered by kind.
func (r *Registry) Snapshot() []Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]Handle, 0, len(r.slots))
	for _, h := range r.slots {
		result = append(result, *h)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Kind < result[j].Kind })
	return result
}
