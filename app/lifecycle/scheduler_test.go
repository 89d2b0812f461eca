package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repairdesk/repairdesk/app/lifecycle/mocks"
	"github.com/repairdesk/repairdesk/app/store"
)

func TestScheduler_Do(t *testing.T) {
	e, st, notifier := newTestEngine(t)
	t0 := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, st.SaveJobs(t.Context(), []store.Job{doneJob("000001", t0)}))

	stopped, cancelStop := context.WithCancel(context.Background())
	cancelStop()

	var scheduled cron.Job
	cr := &mocks.CronMock{
		ScheduleFunc: func(schedule cron.Schedule, cmd cron.Job) cron.EntryID {
			scheduled = cmd
			return 1
		},
		StartFunc: func() {},
		StopFunc:  func() context.Context { return stopped },
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := Scheduler{Cron: cr, Engine: e, Spec: "@hourly", Now: func() time.Time { return t0 }}

	done := make(chan error, 1)
	go func() { done <- s.Do(ctx) }()

	require.Eventually(t, func() bool { return len(cr.StartCalls()) == 1 }, time.Second, 10*time.Millisecond)
	require.Len(t, cr.ScheduleCalls(), 1)
	assert.Len(t, notifier.NotifyCalls(), 1, "scan at start")

	// scheduled job scans again, nothing new is due
	require.NotNil(t, scheduled)
	scheduled.Run()
	assert.Len(t, notifier.NotifyCalls(), 1)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scheduler didn't stop")
	}
	assert.Len(t, cr.StopCalls(), 1)
}

func TestScheduler_DoBadSpec(t *testing.T) {
	e, _, _ := newTestEngine(t)
	cr := &mocks.CronMock{}
	s := Scheduler{Cron: cr, Engine: e, Spec: "not a spec"}
	err := s.Do(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "can't parse lifecycle schedule")
	assert.Empty(t, cr.ScheduleCalls())
}

func TestScheduler_scanCanceled(t *testing.T) {
	e, st, notifier := newTestEngine(t)
	t0 := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, st.SaveJobs(t.Context(), []store.Job{doneJob("000001", t0)}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := Scheduler{Engine: e, Now: func() time.Time { return t0 }}
	s.scan(ctx)
	assert.Empty(t, notifier.NotifyCalls())
}
