package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartRejectsInvalidSpec(t *testing.T) {
	s := New("every now and then", func(ctx context.Context) error { return nil })
	err := s.Start(context.Background())
	assert.ErrorContains(t, err, "invalid schedule")
}

func TestRunNowRunsJob(t *testing.T) {
	var runs atomic.Int32
	s := New("@every 1h", func(ctx context.Context) error {
		runs.Add(1)
		return errors.New("logged, not returned")
	})
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	s.RunNow()
	assert.Equal(t, int32(1), runs.Load())
}

func TestRunNowSkipsWhileRunning(t *testing.T) {
	var runs atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})

	s := New("@every 1h", func(ctx context.Context) error {
		runs.Add(1)
		close(started)
		<-release
		return nil
	})
	require.NoError(t, s.Start(context.Background()))

	done := make(chan struct{})
	go func() {
		s.RunNow()
		close(done)
	}()

	<-started
	s.RunNow()
	assert.Equal(t, int32(1), runs.Load())

	close(release)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("first run did not finish")
	}
	s.Stop()
}

func TestScheduledTickRunsJob(t *testing.T) {
	ran := make(chan struct{}, 1)
	s := New("@every 1s", func(ctx context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	})
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("job was not scheduled")
	}
}

func TestCancelledContextSkipsRun(t *testing.T) {
	var runs atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())

	s := New("@every 1h", func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})
	require.NoError(t, s.Start(ctx))
	defer s.Stop()

	cancel()
	s.RunNow()
	assert.Zero(t, runs.Load())
}

func TestStopWaitsForTriggeredRun(t *testing.T) {
	var finished atomic.Bool
	started := make(chan struct{})

	s := New("@every 1h", func(ctx context.Context) error {
		close(started)
		time.Sleep(50 * time.Millisecond)
		finished.Store(true)
		return nil
	})
	require.NoError(t, s.Start(context.Background()))

	s.Trigger()
	<-started
	s.Stop()

	assert.True(t, finished.Load())
}
