package registry

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"botctl/internal/tool"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryReserve(t *testing.T) {
	r := New()

	h, ok := r.TryReserve(tool.LLMBot, "python3 main.py")
	require.True(t, ok)
	assert.Equal(t, tool.LLMBot, h.Kind)
	assert.Equal(t, StateStarting, h.State)
	assert.NotEmpty(t, h.RunID)
	assert.Equal(t, "python3 main.py", h.Command)

	_, ok = r.TryReserve(tool.LLMBot, "python3 main.py --other")
	assert.False(t, ok, "second reservation of the same kind must fail")

	_, ok = r.TryReserve(tool.Replay, "python3 replay.py x.csv")
	assert.True(t, ok, "kinds are independent")
}

func TestTryReserveConcurrent(t *testing.T) {
	r := New()

	const callers = 64
	var wins int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, ok := r.TryReserve(tool.HaterBot, "python3 hate_speech_generator.py"); ok {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), wins)
	assert.Len(t, r.Snapshot(), 1)
}

func TestInstall(t *testing.T) {
	r := New()
	h, _ := r.TryReserve(tool.Replay, "python3 replay.py")

	require.NoError(t, r.Install(tool.Replay, h.RunID, 4242))
	got, ok := r.Get(tool.Replay)
	require.True(t, ok)
	assert.Equal(t, 4242, got.PID)
	assert.Equal(t, StateRunning, got.State)

	err := r.Install(tool.Replay, "someone-else", 1)
	assert.ErrorIs(t, err, ErrNotReserved)

	err = r.Install(tool.LLMBot, h.RunID, 1)
	assert.ErrorIs(t, err, ErrNotReserved)
}

func TestGetReturnsCopy(t *testing.T) {
	r := New()
	h, _ := r.TryReserve(tool.LLMBot, "python3 main.py")
	require.NoError(t, r.Install(tool.LLMBot, h.RunID, 10))

	got, _ := r.Get(tool.LLMBot)
	got.State = StateFailed
	got.PID = 0

	again, _ := r.Get(tool.LLMBot)
	assert.Equal(t, StateRunning, again.State)
	assert.Equal(t, 10, again.PID)
}

func TestReleaseIsIdempotent(t *testing.T) {
	r := New()
	h, _ := r.TryReserve(tool.HaterBot, "python3 hate_speech_generator.py")
	require.NoError(t, r.Install(tool.HaterBot, h.RunID, 77))

	assert.True(t, r.Release(tool.HaterBot, h.RunID, &ExitRecord{State: StateTerminated}))
	first := r.Snapshot()

	assert.False(t, r.Release(tool.HaterBot, h.RunID, &ExitRecord{State: StateFailed, ExitCode: 9}))
	assert.Equal(t, first, r.Snapshot())

	_, ok := r.Get(tool.HaterBot)
	assert.False(t, ok)

	rec, ok := r.LastExit(tool.HaterBot)
	require.True(t, ok)
	assert.Equal(t, StateTerminated, rec.State, "second release must not overwrite the record")
	assert.Equal(t, 77, rec.PID)
	assert.Equal(t, h.RunID, rec.RunID)
	assert.Equal(t, "python3 hate_speech_generator.py", rec.Command)
	assert.False(t, rec.EndedAt.IsZero())
}

func TestReleaseIgnoresStaleRun(t *testing.T) {
	r := New()
	old, _ := r.TryReserve(tool.LLMBot, "python3 main.py")
	require.True(t, r.Release(tool.LLMBot, old.RunID, nil))

	current, ok := r.TryReserve(tool.LLMBot, "python3 main.py")
	require.True(t, ok)

	assert.False(t, r.Release(tool.LLMBot, old.RunID, nil), "an old observer must not clear a newer run")
	got, ok := r.Get(tool.LLMBot)
	require.True(t, ok)
	assert.Equal(t, current.RunID, got.RunID)
}

func TestReleaseEmptySlot(t *testing.T) {
	r := New()
	assert.False(t, r.Release(tool.Replay, "nothing", nil))
	_, ok := r.LastExit(tool.Replay)
	assert.False(t, ok)
}

func TestMarkStopping(t *testing.T) {
	r := New()
	assert.False(t, r.MarkStopping(tool.LLMBot, "x"))

	h, _ := r.TryReserve(tool.LLMBot, "python3 main.py")
	require.NoError(t, r.Install(tool.LLMBot, h.RunID, 5))
	assert.True(t, r.MarkStopping(tool.LLMBot, h.RunID))

	got, _ := r.Get(tool.LLMBot)
	assert.Equal(t, StateStopping, got.State)
}

func TestSnapshotOrdered(t *testing.T) {
	r := New()
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return fixed }

	for _, k := range []tool.Kind{tool.Replay, tool.LLMBot, tool.HaterBot} {
		_, ok := r.TryReserve(k, "cmd")
		require.True(t, ok)
	}

	snap := r.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, tool.HaterBot, snap[0].Kind)
	assert.Equal(t, tool.LLMBot, snap[1].Kind)
	assert.Equal(t, tool.Replay, snap[2].Kind)
	assert.Equal(t, fixed, snap[0].StartedAt)
}
