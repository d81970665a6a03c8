package sweeper

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/inventar/internal/metrics"
	"github.com/erazemk/inventar/internal/service"
)

type fakeArchiver struct {
	mu    sync.Mutex
	calls int
	fn    func(call int) (service.SweepResult, error)
}

func (f *fakeArchiver) Sweep(context.Context) (service.SweepResult, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.mu.Unlock()
	return f.fn(call)
}

func (f *fakeArchiver) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunSweepsAtStartAndOnTick(t *testing.T) {
	archiver := &fakeArchiver{fn: func(int) (service.SweepResult, error) {
		return service.SweepResult{Candidates: 1, Archived: 1}, nil
	}}
	before := testutil.ToFloat64(metrics.SweepArchived)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		(&Sweeper{Archiver: archiver, Interval: 10 * time.Millisecond, Logger: quietLogger()}).Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return archiver.Calls() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}

	assert.GreaterOrEqual(t, testutil.ToFloat64(metrics.SweepArchived)-before, 3.0)
}

func TestRunSurvivesFailures(t *testing.T) {
	archiver := &fakeArchiver{fn: func(call int) (service.SweepResult, error) {
		switch call {
		case 1:
			return service.SweepResult{}, errors.New("database is locked")
		case 2:
			panic("boom")
		}
		return service.SweepResult{Candidates: 2, Archived: 1, Failed: 1}, nil
	}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go (&Sweeper{Archiver: archiver, Interval: 5 * time.Millisecond, Logger: quietLogger()}).Run(ctx)

	require.Eventually(t, func() bool { return archiver.Calls() >= 4 }, time.Second, 5*time.Millisecond)
}
