package desk

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repairdesk/repairdesk/app/desk/mocks"
	"github.com/repairdesk/repairdesk/app/enums"
	"github.com/repairdesk/repairdesk/app/lifecycle"
	lmocks "github.com/repairdesk/repairdesk/app/lifecycle/mocks"
	"github.com/repairdesk/repairdesk/app/store"
	"github.com/repairdesk/repairdesk/app/validate"
)

var t0 = time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

func newTestDesk(t *testing.T) (*Desk, *store.SQLiteStore, *lmocks.NotifierMock) {
	t.Helper()
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	notifier := &lmocks.NotifierMock{NotifyFunc: func(context.Context, store.Job, enums.NoticeKind) error { return nil }}
	engine := &lifecycle.Engine{Store: st, Notifier: notifier, Activity: st}
	d := &Desk{Store: st, Engine: engine, Activity: st, IDBase: 999, Now: func() time.Time { return t0 }}
	return d, st, notifier
}

func validInput() JobInput {
	return JobInput{
		Name:        "Ali",
		CountryCode: "+60",
		Phone:       "123456789",
		Device:      "iPhone 12",
		Problem:     "broken screen",
		Accessories: []string{"charger", " ", "case "},
		Assigned:    "tech1",
	}
}

func activities(t *testing.T, st *store.SQLiteStore) []string {
	t.Helper()
	entries, err := st.ListActivity(t.Context())
	require.NoError(t, err)
	res := make([]string, 0, len(entries))
	for _, e := range entries {
		res = append(res, e.Action+" by "+e.User)
	}
	return res
}

func TestJobInput_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(in *JobInput)
		fields map[string]string
		status enums.JobStatus
	}{
		{name: "valid", modify: func(*JobInput) {}},
		{name: "valid with status", modify: func(in *JobInput) { in.Status = " Waiting Parts " }, status: enums.JobStatusWaitingParts},
		{name: "required fields", modify: func(in *JobInput) { *in = JobInput{} }, fields: map[string]string{
			"name": "Name required", "phone": "Phone required", "device": "Device required",
			"problem": "Problem description required", "assigned": "Technician selection required",
		}},
		{name: "short phone", modify: func(in *JobInput) { in.Phone = "12345" }, fields: map[string]string{"phone": "Invalid phone format"}},
		{name: "phone with dashes", modify: func(in *JobInput) { in.Phone = "12-345-6789" }, fields: map[string]string{"phone": "Invalid phone format"}},
		{name: "bad ic", modify: func(in *JobInput) { in.ICNumber = "12a4" }, fields: map[string]string{"ic_number": "Must be 4 digits"}},
		{name: "good ic", modify: func(in *JobInput) { in.ICNumber = "1234" }},
		{name: "bad status", modify: func(in *JobInput) { in.Status = "lost" }, fields: map[string]string{"status": `invalid job status "lost"`}},
		{name: "not an image", modify: func(in *JobInput) { in.Photo = "data:text/plain;base64,aGVsbG8=" },
			fields: map[string]string{"photo": "please select an image file"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.modify(&in)
			status, err := in.Validate()
			if tt.fields == nil {
				require.NoError(t, err)
				assert.Equal(t, tt.status, status)
				assert.Equal(t, []string{"charger", "case"}, in.Accessories)
				assert.Equal(t, "60", in.CountryCode)
				return
			}
			var errs validate.Errors
			require.ErrorAs(t, err, &errs)
			for f, msg := range tt.fields {
				assert.Equal(t, msg, errs[f], f)
			}
		})
	}
}

func TestDesk_Create(t *testing.T) {
	d, st, notifier := newTestDesk(t)
	ctx := t.Context()

	job, err := d.Create(ctx, validInput(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "001000", job.ID)
	assert.Equal(t, enums.JobStatusChecking, job.Status)
	assert.Equal(t, t0, job.Date)
	assert.Equal(t, []string{"charger", "case"}, job.Accessories)
	assert.Equal(t, []store.StatusChange{{Status: enums.JobStatusChecking, Date: t0, ChangedBy: "a@x.com"}}, job.StatusHistory)
	assert.True(t, job.ConfiscationDate.IsZero())

	in := validInput()
	in.Date = t0.Add(-48 * time.Hour)
	job2, err := d.Create(ctx, in, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "001001", job2.ID)
	assert.Equal(t, t0.Add(-48*time.Hour), job2.Date)

	stored, err := st.GetJob(ctx, "001000")
	require.NoError(t, err)
	assert.Equal(t, "Ali", stored.Name)
	assert.Empty(t, notifier.NotifyCalls())
	assert.Equal(t, []string{"Created job #001000 by a@x.com", "Created job #001001 by a@x.com"}, activities(t, st))
}

func TestDesk_CreateDone(t *testing.T) {
	d, st, notifier := newTestDesk(t)
	in := validInput()
	in.Status = "done"

	job, err := d.Create(t.Context(), in, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, enums.JobStatusDone, job.Status)
	assert.Equal(t, t0.Add(7*24*time.Hour), job.PickupDeadline)
	assert.Equal(t, t0.Add(60*24*time.Hour), job.ConfiscationDate)
	assert.True(t, job.NotificationsSent.Initial, "initial notice sent right away")
	require.Len(t, notifier.NotifyCalls(), 1)
	assert.Equal(t, enums.NoticeInitial, notifier.NotifyCalls()[0].Kind)
	assert.Contains(t, activities(t, st), "Sent initial notification for job #001000 by system")
}

func TestDesk_CreateRejected(t *testing.T) {
	d, st, _ := newTestDesk(t)
	ctx := t.Context()

	in := validInput()
	in.Status = "collected"
	_, err := d.Create(ctx, in, "a@x.com")
	var errs validate.Errors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, "new job can't be collected", errs["status"])

	_, err = d.Create(ctx, JobInput{Name: "x"}, "a@x.com")
	require.ErrorAs(t, err, &errs)

	jobs, err := st.ListJobs(ctx)
	require.NoError(t, err)
	assert.Empty(t, jobs, "nothing persisted on validation errors")
	assert.Empty(t, activities(t, st))
}

func TestDesk_CreateStoreError(t *testing.T) {
	ms := &mocks.StoreMock{
		NextJobIDFunc: func(context.Context, int) (string, error) { return "", errors.New("disk full") },
	}
	d := &Desk{Store: ms, Engine: &lifecycle.Engine{}}
	_, err := d.Create(t.Context(), validInput(), "a@x.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Empty(t, ms.SaveJobCalls())
}

func TestDesk_Update(t *testing.T) {
	d, st, notifier := newTestDesk(t)
	ctx := t.Context()
	job, err := d.Create(ctx, validInput(), "a@x.com")
	require.NoError(t, err)

	in := validInput()
	in.Problem = "no power"
	in.Status = "item fixed"
	upd, err := d.Update(ctx, job.ID, in, "b@x.com")
	require.NoError(t, err)
	assert.Equal(t, "no power", upd.Problem)
	assert.Equal(t, enums.JobStatusItemFixed, upd.Status)
	assert.Equal(t, t0, upd.Date, "creation date kept")
	require.Len(t, upd.StatusHistory, 2)

	in.Status = "done"
	d.Now = func() time.Time { return t0.Add(24 * time.Hour) }
	upd, err = d.Update(ctx, job.ID, in, "b@x.com")
	require.NoError(t, err)
	assert.Equal(t, t0.Add(61*24*time.Hour), upd.ConfiscationDate)
	assert.True(t, upd.NotificationsSent.Initial)

	// editing a done job keeps deadlines and doesn't resend the notice
	in.Remark = "screen replaced"
	d.Now = func() time.Time { return t0.Add(5 * 24 * time.Hour) }
	upd, err = d.Update(ctx, job.ID, in, "b@x.com")
	require.NoError(t, err)
	assert.Equal(t, t0.Add(61*24*time.Hour), upd.ConfiscationDate)
	assert.Equal(t, "screen replaced", upd.Remark)
	assert.Len(t, notifier.NotifyCalls(), 1)

	// empty status keeps current one
	in.Status = ""
	upd, err = d.Update(ctx, job.ID, in, "b@x.com")
	require.NoError(t, err)
	assert.Equal(t, enums.JobStatusDone, upd.Status)

	_, err = d.Update(ctx, "999999", in, "b@x.com")
	assert.ErrorIs(t, err, store.ErrNotFound)

	acts := activities(t, st)
	assert.Contains(t, acts, "Updated job #001000 by b@x.com")
}

func TestDesk_Collect(t *testing.T) {
	d, st, _ := newTestDesk(t)
	ctx := t.Context()
	in := validInput()
	in.Status = "done"
	job, err := d.Create(ctx, in, "a@x.com")
	require.NoError(t, err)

	d.Now = func() time.Time { return t0.Add(3 * 24 * time.Hour) }
	got, err := d.Collect(ctx, job.ID, "b@x.com")
	require.NoError(t, err)
	assert.Equal(t, enums.JobStatusCollected, got.Status)
	assert.Equal(t, t0.Add(3*24*time.Hour), got.PickupDate)
	last := got.StatusHistory[len(got.StatusHistory)-1]
	assert.Equal(t, store.StatusChange{Status: enums.JobStatusCollected, Date: t0.Add(3 * 24 * time.Hour), ChangedBy: "b@x.com"}, last)

	_, err = d.Collect(ctx, job.ID, "b@x.com")
	require.ErrorIs(t, err, lifecycle.ErrTerminal)
	_, err = d.Collect(ctx, "999999", "b@x.com")
	require.ErrorIs(t, err, store.ErrNotFound)

	assert.Contains(t, activities(t, st), "Marked job #001000 as collected by b@x.com")
}

func TestDesk_CollectDuringScan(t *testing.T) {
	d, st, notifier := newTestDesk(t)
	ctx := t.Context()
	in := validInput()
	in.Status = "done"
	job, err := d.Create(ctx, in, "a@x.com")
	require.NoError(t, err)
	require.True(t, job.NotificationsSent.Initial)

	delivering, release := make(chan struct{}), make(chan struct{})
	notifier.NotifyFunc = func(context.Context, store.Job, enums.NoticeKind) error {
		close(delivering)
		<-release
		return nil
	}
	scanErr := make(chan error, 1)
	go func() {
		_, err := d.Engine.Scan(ctx, t0.Add(58*24*time.Hour)) // final warning is due
		scanErr <- err
	}()

	<-delivering
	got, err := d.Collect(ctx, job.ID, "b@x.com")
	require.NoError(t, err)
	assert.Equal(t, enums.JobStatusCollected, got.Status)
	close(release)
	require.NoError(t, <-scanErr)

	stored, err := st.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.JobStatusCollected, stored.Status, "scan didn't save over the collect")
	assert.Equal(t, t0, stored.PickupDate)
	assert.False(t, stored.NotificationsSent.Final)
}

func TestDesk_DeleteAndReset(t *testing.T) {
	d, st, _ := newTestDesk(t)
	ctx := t.Context()
	for range 3 {
		_, err := d.Create(ctx, validInput(), "a@x.com")
		require.NoError(t, err)
	}

	require.NoError(t, d.Delete(ctx, "001001", "owner@x.com"))
	require.ErrorIs(t, d.Delete(ctx, "001001", "owner@x.com"), store.ErrNotFound)

	n, err := d.Reset(ctx, "owner@x.com")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	job, err := d.Create(ctx, validInput(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "001003", job.ID, "ids are not reused after reset")

	acts := activities(t, st)
	assert.Contains(t, acts, "Deleted job #001001 by owner@x.com")
	assert.Contains(t, acts, "Reset all jobs, 2 removed by owner@x.com")
}

func TestDesk_ViewAndWhatsApp(t *testing.T) {
	d, st, _ := newTestDesk(t)
	ctx := t.Context()
	job, err := d.Create(ctx, validInput(), "a@x.com")
	require.NoError(t, err)

	got, err := d.View(ctx, job.ID, "b@x.com")
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)

	_, err = d.WhatsApp(ctx, job.ID, "b@x.com")
	require.Error(t, err, "no messenger")

	messenger := &mocks.MessengerMock{LinkFunc: func(j store.Job, kind enums.NoticeKind) (string, error) {
		return "https://wa.me/60123456789?text=" + j.ID, nil
	}}
	d.Messenger = messenger
	link, err := d.WhatsApp(ctx, job.ID, "b@x.com")
	require.NoError(t, err)
	assert.Equal(t, "https://wa.me/60123456789?text=001000", link)
	assert.Equal(t, enums.NoticeUpdate, messenger.LinkCalls()[0].Kind)

	messenger.LinkFunc = func(store.Job, enums.NoticeKind) (string, error) { return "", errors.New("no valid phone number") }
	_, err = d.WhatsApp(ctx, job.ID, "b@x.com")
	var errs validate.Errors
	require.ErrorAs(t, err, &errs)

	_, err = d.View(ctx, "999999", "b@x.com")
	require.ErrorIs(t, err, store.ErrNotFound)

	acts := activities(t, st)
	assert.Contains(t, acts, "Viewed details for job #001000 by b@x.com")
	assert.Contains(t, acts, "Sent job #001000 via WhatsApp by b@x.com")
}
