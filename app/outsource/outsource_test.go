package outsource

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repairdesk/repairdesk/app/enums"
	"github.com/repairdesk/repairdesk/app/outsource/mocks"
	"github.com/repairdesk/repairdesk/app/store"
	"github.com/repairdesk/repairdesk/app/validate"
)

func newTestLedger(t *testing.T) (*Ledger, *store.SQLiteStore) {
	t.Helper()
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	n := 0
	l := &Ledger{Store: st, Jobs: st, Activity: st, Location: time.FixedZone("MYT", 8*3600),
		NewID: func() string { n++; return fmt.Sprintf("rec-%d", n) }}
	return l, st
}

func validInput() Input {
	return Input{JobID: "001000", ShopName: "Fixit Lab", DeliveryDate: "2025-05-02", Cost: "120.50"}
}

func TestLedger_SaveNew(t *testing.T) {
	l, st := newTestLedger(t)
	ctx := t.Context()
	jobDate := time.Date(2025, 5, 1, 2, 0, 0, 0, time.UTC)
	require.NoError(t, st.SaveJob(ctx, store.Job{ID: "001000", Name: "Ali", Device: "iPhone 12", Problem: "screen",
		Accessories: []string{"charger", "case"}, Assigned: "tech1", Status: enums.JobStatusChecking, Date: jobDate}))

	var seen []store.OutsourceRecord
	l.Subscribe(func(r store.OutsourceRecord) { seen = append(seen, r) })

	rec, err := l.Save(ctx, "", validInput(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "rec-1", rec.ID)
	assert.Equal(t, enums.ReturnStatusPending, rec.ReturnStatus, "default return status")
	assert.Equal(t, enums.PaymentStatusUnpaid, rec.PaymentStatus, "default payment status")
	assert.Equal(t, "120.5", rec.Cost.String())
	assert.Equal(t, time.Date(2025, 5, 1, 16, 0, 0, 0, time.UTC), rec.DeliveryDate, "day taken in shop zone")

	// job context filled from the job
	assert.Equal(t, "Ali", rec.Customer)
	assert.Equal(t, "iPhone 12", rec.Device)
	assert.Equal(t, "screen", rec.Problem)
	assert.Equal(t, "charger, case", rec.Accessories)
	assert.Equal(t, "tech1", rec.Technician)
	assert.Equal(t, jobDate, rec.JobDate)

	got, err := st.GetOutsource(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, "Fixit Lab", got.ShopName)
	assert.True(t, got.Cost.Equal(rec.Cost))

	require.Len(t, seen, 1)
	assert.Equal(t, "rec-1", seen[0].ID)

	acts, err := st.ListActivity(ctx)
	require.NoError(t, err)
	require.Len(t, acts, 1)
	assert.Equal(t, "Added outsource record for job #001000 at Fixit Lab", acts[0].Action)
	assert.Equal(t, "a@x.com", acts[0].User)
}

func TestLedger_SaveKeepsExplicitContext(t *testing.T) {
	l, st := newTestLedger(t)
	ctx := t.Context()
	require.NoError(t, st.SaveJob(ctx, store.Job{ID: "001000", Name: "Ali", Device: "iPhone 12", Status: enums.JobStatusChecking}))

	in := validInput()
	in.Customer, in.Technician = "Ali bin Abu", "tech9"
	rec, err := l.Save(ctx, "", in, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Ali bin Abu", rec.Customer)
	assert.Equal(t, "tech9", rec.Technician)
	assert.Equal(t, "iPhone 12", rec.Device)
	assert.Equal(t, "-", rec.Accessories, "no accessories")
}

func TestLedger_SaveUpdate(t *testing.T) {
	l, st := newTestLedger(t)
	ctx := t.Context()

	rec, err := l.Save(ctx, "", validInput(), "a@x.com")
	require.NoError(t, err)

	in := validInput()
	in.ReturnStatus, in.PaymentStatus, in.ReceivedDate = "repaired", "paid", "2025-05-09T10:00:00Z"
	upd, err := l.Save(ctx, rec.ID, in, "b@x.com")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, upd.ID)
	assert.Equal(t, enums.ReturnStatusRepaired, upd.ReturnStatus)
	assert.Equal(t, enums.PaymentStatusPaid, upd.PaymentStatus)
	assert.Equal(t, time.Date(2025, 5, 9, 10, 0, 0, 0, time.UTC), upd.ReceivedDate)

	all, err := st.ListOutsource(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1, "update replaces the record")

	_, err = l.Save(ctx, "no-such-id", in, "b@x.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestLedger_SaveUpdateAfterJobDeleted(t *testing.T) {
	l, st := newTestLedger(t)
	ctx := t.Context()
	jobDate := time.Date(2025, 5, 1, 2, 0, 0, 0, time.UTC)
	require.NoError(t, st.SaveJob(ctx, store.Job{ID: "001000", Name: "Ali", Device: "iPhone 12", Problem: "screen",
		Assigned: "tech1", Status: enums.JobStatusChecking, Date: jobDate}))
	rec, err := l.Save(ctx, "", validInput(), "a@x.com")
	require.NoError(t, err)
	require.NoError(t, st.DeleteJob(ctx, "001000"))

	in := validInput()
	in.PaymentStatus = "paid"
	upd, err := l.Save(ctx, rec.ID, in, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Ali", upd.Customer)
	assert.Equal(t, "iPhone 12", upd.Device)
	assert.Equal(t, "screen", upd.Problem)
	assert.Equal(t, "tech1", upd.Technician)
	assert.Equal(t, "-", upd.Accessories)
	assert.True(t, jobDate.Equal(upd.JobDate), "job date kept: %v", upd.JobDate)

	in.JobID = "001001"
	moved, err := l.Save(ctx, rec.ID, in, "a@x.com")
	require.NoError(t, err)
	assert.Empty(t, moved.Customer, "context of another job not carried over")
	assert.True(t, moved.JobDate.IsZero())
}

func TestLedger_SaveValidation(t *testing.T) {
	tests := []struct {
		name  string
		in    func(in *Input)
		field string
		msg   string
	}{
		{name: "shop name", in: func(in *Input) { in.ShopName = " " }, field: "shop_name", msg: "Shop name is required"},
		{name: "delivery date", in: func(in *Input) { in.DeliveryDate = "" }, field: "delivery_date", msg: "Delivery date is required"},
		{name: "bad delivery date", in: func(in *Input) { in.DeliveryDate = "02/05/2025" }, field: "delivery_date",
			msg: "Invalid delivery date"},
		{name: "bad received date", in: func(in *Input) { in.ReceivedDate = "soon" }, field: "received_date",
			msg: "Invalid received date"},
		{name: "cost", in: func(in *Input) { in.Cost = "" }, field: "cost", msg: "Cost is required"},
		{name: "cost not a number", in: func(in *Input) { in.Cost = "12,50" }, field: "cost", msg: "Invalid cost amount"},
		{name: "negative cost", in: func(in *Input) { in.Cost = "-1" }, field: "cost", msg: "Invalid cost amount"},
		{name: "return status", in: func(in *Input) { in.ReturnStatus = "lost" }, field: "return_status",
			msg: `invalid return status "lost"`},
		{name: "payment status", in: func(in *Input) { in.PaymentStatus = "free" }, field: "payment_status",
			msg: `invalid payment status "free"`},
		{name: "photo type", in: func(in *Input) { in.PhotoProof = "data:image/webp;base64,AAAA" }, field: "photo_proof",
			msg: "only image/jpeg, image/png, image/gif images are allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, st := newTestLedger(t)
			in := validInput()
			tt.in(&in)
			_, err := l.Save(t.Context(), "", in, "a@x.com")
			var errs validate.Errors
			require.ErrorAs(t, err, &errs)
			assert.Equal(t, tt.msg, errs[tt.field])

			all, err := st.ListOutsource(t.Context())
			require.NoError(t, err)
			assert.Empty(t, all, "nothing saved")
		})
	}

	t.Run("zero cost allowed", func(t *testing.T) {
		l, _ := newTestLedger(t)
		in := validInput()
		in.Cost = "0"
		_, err := l.Save(t.Context(), "", in, "a@x.com")
		require.NoError(t, err)
	})
}

func TestLedger_ListAndForJob(t *testing.T) {
	l, st := newTestLedger(t)
	ctx := t.Context()
	require.NoError(t, st.SaveJob(ctx, store.Job{ID: "001000", Name: "Ali", Status: enums.JobStatusChecking}))

	_, err := l.Save(ctx, "", validInput(), "a@x.com")
	require.NoError(t, err)
	second := validInput()
	second.ShopName = "Other Lab"
	_, err = l.Save(ctx, "", second, "a@x.com")
	require.NoError(t, err)
	orphan := validInput()
	orphan.JobID = "009999"
	_, err = l.Save(ctx, "", orphan, "a@x.com")
	require.NoError(t, err, "record may point to a missing job")

	all, err := l.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.False(t, all[0].JobMissing)
	assert.True(t, all[2].JobMissing)

	first, err := l.ForJob(ctx, "001000")
	require.NoError(t, err)
	assert.Equal(t, "Fixit Lab", first.ShopName, "first record wins")

	forJob, err := l.AllForJob(ctx, "001000")
	require.NoError(t, err)
	assert.Len(t, forJob, 2)

	_, err = l.ForJob(ctx, "001001")
	require.ErrorIs(t, err, store.ErrNotFound)

	// record survives job deletion
	require.NoError(t, st.DeleteJob(ctx, "001000"))
	first, err = l.ForJob(ctx, "001000")
	require.NoError(t, err)
	assert.True(t, first.JobMissing)
}

func TestLedger_Stats(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := t.Context()
	for _, st := range []struct{ ret, pay string }{
		{"", ""}, {"pending", "partial"}, {"in progress", "paid"}, {"returned", "paid"}, {"failed", ""},
	} {
		in := validInput()
		in.ReturnStatus, in.PaymentStatus = st.ret, st.pay
		_, err := l.Save(ctx, "", in, "a@x.com")
		require.NoError(t, err)
	}

	stats, err := l.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Pending: 2, InProgress: 1, Unpaid: 3}, stats)
}

func TestLedger_StoreErrors(t *testing.T) {
	ms := &mocks.StoreMock{
		SaveOutsourceFunc: func(context.Context, store.OutsourceRecord) error { return errors.New("disk full") },
		ListOutsourceFunc: func(context.Context) ([]store.OutsourceRecord, error) { return nil, errors.New("locked") },
	}
	called := false
	l := &Ledger{Store: ms}
	l.Subscribe(func(store.OutsourceRecord) { called = true })

	_, err := l.Save(t.Context(), "", validInput(), "a@x.com")
	require.EqualError(t, err, "can't save outsource record: disk full")
	assert.False(t, called, "observers not called on failure")
	assert.Len(t, ms.SaveOutsourceCalls(), 1)
	assert.NotEmpty(t, ms.SaveOutsourceCalls()[0].Rec.ID, "uuid assigned")

	_, err = l.Stats(t.Context())
	require.Error(t, err)
	_, err = l.List(t.Context())
	require.Error(t, err)
}
