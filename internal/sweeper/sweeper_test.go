package sweeper

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExpirer struct {
	calls atomic.Int32
	n     int
	err   error
}

func (f *fakeExpirer) ExpireMissions(context.Context) (int, error) {
	f.calls.Add(1)
	return f.n, f.err
}

type fakePurger struct {
	calls atomic.Int32
	err   error
}

func (f *fakePurger) Purge(context.Context) (int64, error) {
	f.calls.Add(1)
	return 3, f.err
}

func TestNew_Schedules(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		purger  Purger
		jobs    int
		wantErr bool
	}{
		{"both", Config{ExpirySchedule: "@every 15m", PurgeSchedule: "@hourly"}, &fakePurger{}, 2, false},
		{"no purger", Config{ExpirySchedule: "@every 15m", PurgeSchedule: "@hourly"}, nil, 1, false},
		{"disabled", Config{}, &fakePurger{}, 0, false},
		{"cron spec", Config{ExpirySchedule: "*/5 * * * *"}, nil, 1, false},
		{"bad expiry", Config{ExpirySchedule: "every now and then"}, nil, 0, true},
		{"bad purge", Config{PurgeSchedule: "@sometimes"}, &fakePurger{}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.cfg, &fakeExpirer{}, tt.purger, nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.jobs, s.Jobs())
		})
	}
}

func TestExpire(t *testing.T) {
	ok := &fakeExpirer{n: 4}
	s, err := New(Config{}, ok, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, s.Expire(context.Background()))

	failing := &fakeExpirer{n: 1, err: errors.New("store unavailable")}
	s, err = New(Config{}, failing, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Expire(context.Background()), "partial count is reported")
}

func TestPurge(t *testing.T) {
	s, err := New(Config{}, &fakeExpirer{}, nil, nil)
	require.NoError(t, err)
	assert.Zero(t, s.Purge(context.Background()))

	p := &fakePurger{}
	s, err = New(Config{}, &fakeExpirer{}, p, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 3, s.Purge(context.Background()))
	assert.EqualValues(t, 1, p.calls.Load())

	s, err = New(Config{}, &fakeExpirer{}, &fakePurger{err: errors.New("locked")}, nil)
	require.NoError(t, err)
	assert.Zero(t, s.Purge(context.Background()))
}

func TestRun_ExpiresOnStartAndStops(t *testing.T) {
	e := &fakeExpirer{}
	s, err := New(Config{ExpirySchedule: "@every 1h"}, e, nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return e.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
