// internal/poller/runner_test.go
package poller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/cnc-poller/internal/clock"
)

var errStop = errors.New("stop")

func TestScheduler_StartToStartGaps(t *testing.T) {
	clk := clock.Fake(t0)
	s, err := NewScheduler(time.Second, clk, zerolog.Nop(), nil)
	require.NoError(t, err)

	durations := []time.Duration{
		200 * time.Millisecond,
		900 * time.Millisecond,
		1300 * time.Millisecond,
	}

	var starts []time.Time
	cycle := func(ctx context.Context) error {
		starts = append(starts, clk.Now())
		if len(starts) > len(durations) {
			return errStop
		}
		clk.Advance(durations[len(starts)-1])
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background(), cycle) }()

	// the first two cycles finish early and wait out the rest of the period
	for _, d := range durations[:2] {
		clk.WaitForTimers(1)
		clk.Advance(time.Second - d)
	}

	select {
	case err := <-done:
		require.ErrorIs(t, err, errStop)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}

	require.Len(t, starts, 4)
	assert.Equal(t, time.Second, starts[1].Sub(starts[0]))
	assert.Equal(t, time.Second, starts[2].Sub(starts[1]))
	assert.Equal(t, 1300*time.Millisecond, starts[3].Sub(starts[2]))
}

func TestScheduler_OverrunDoesNotBurst(t *testing.T) {
	clk := clock.Fake(t0)
	s, err := NewScheduler(time.Second, clk, zerolog.Nop(), nil)
	require.NoError(t, err)

	n := 0
	var starts []time.Time
	cycle := func(ctx context.Context) error {
		n++
		starts = append(starts, clk.Now())
		switch n {
		case 1:
			clk.Advance(3500 * time.Millisecond)
		case 2:
			clk.Advance(100 * time.Millisecond)
		default:
			return errStop
		}
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background(), cycle) }()

	clk.WaitForTimers(1)
	// overrun cycle, then its immediate follower, now waiting
	assert.Equal(t, 2, n)
	clk.Advance(900 * time.Millisecond)

	require.ErrorIs(t, <-done, errStop)
	require.Len(t, starts, 3)
	assert.Equal(t, 3500*time.Millisecond, starts[1].Sub(starts[0]))
	assert.Equal(t, time.Second, starts[2].Sub(starts[1]))
}

func TestScheduler_CancelDuringWait(t *testing.T) {
	clk := clock.Fake(t0)
	s, err := NewScheduler(time.Hour, clk, zerolog.Nop(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cycles := 0
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, func(context.Context) error { cycles++; return nil })
	}()

	clk.WaitForTimers(1)
	cancelled := time.Now()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
		assert.Less(t, time.Since(cancelled), 200*time.Millisecond)
	case <-time.After(200 * time.Millisecond):
		t.Fatal("scheduler did not observe cancellation during wait")
	}
	assert.Equal(t, 1, cycles)
}

func TestScheduler_CancelledBeforeStart(t *testing.T) {
	s, err := NewScheduler(time.Second, nil, zerolog.Nop(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	require.NoError(t, s.Run(ctx, func(context.Context) error { called = true; return nil }))
	assert.False(t, called)
}

func TestScheduler_RealClockCancel(t *testing.T) {
	s, err := NewScheduler(10*time.Second, clock.Real(), zerolog.Nop(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	ran := make(chan struct{}, 1)

	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, func(context.Context) error {
			ran <- struct{}{}
			return nil
		})
	}()

	<-ran
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(200 * time.Millisecond):
		t.Fatal("scheduler slept through cancellation")
	}
}

func TestNewScheduler_RejectsZeroInterval(t *testing.T) {
	_, err := NewScheduler(0, nil, zerolog.Nop(), nil)
	assert.Error(t, err)
}
