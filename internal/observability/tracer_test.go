package observability

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracerEvictsOldestWhenFull(t *testing.T) {
	tr := NewTracer(3)
	for i := 0; i < 5; i++ {
		tr.Info("t1", "OP", fmt.Sprintf("msg-%d", i), nil)
	}

	recs := tr.Recent(0)
	require.Len(t, recs, 3)
	assert.Equal(t, "msg-2", recs[0].Message)
	assert.Equal(t, "msg-4", recs[2].Message)
}

func TestTracerFiltersByTraceOperationAndLevel(t *testing.T) {
	tr := NewTracer(10)
	tr.Info("turn-a", "USER_QUERY_START", "start", nil)
	tr.Success("turn-a", "QUERY_ANALYSIS", "planned", map[string]any{"tools": 1})
	tr.Error("turn-b", "TOOL_EXECUTION", "index unreachable", nil)

	byTrace := tr.ByTraceID("turn-a")
	require.Len(t, byTrace, 2)
	assert.Equal(t, "USER_QUERY_START", byTrace[0].Operation)

	byOp := tr.ByOperation("TOOL_EXECUTION")
	require.Len(t, byOp, 1)
	assert.Equal(t, "turn-b", byOp[0].TraceID)

	byLevel := tr.ByLevel(TraceError)
	require.Len(t, byLevel, 1)
	assert.Equal(t, "index unreachable", byLevel[0].Message)
}

func TestTracerStatsAndClear(t *testing.T) {
	tr := NewTracer(10)
	tr.Info("t", "OP", "a", nil)
	tr.Error("t", "OP", "b", nil)
	tr.Error("t", "OP", "c", nil)
	tr.Warning("t", "OP", "d", nil)

	stats := tr.Stats()
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.ByLevel[TraceError])
	assert.InDelta(t, 0.5, stats.ErrorRate, 1e-9)

	tr.Clear()
	assert.Equal(t, 0, tr.Stats().Total)
	assert.Empty(t, tr.Recent(0))
}

func TestTracerConcurrentRecording(t *testing.T) {
	tr := NewTracer(100)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				tr.Info(fmt.Sprintf("t-%d", n), "OP", "m", nil)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 100, tr.Stats().Total)
}
