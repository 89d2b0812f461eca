package desk

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repairdesk/repairdesk/app/enums"
	"github.com/repairdesk/repairdesk/app/store"
	"github.com/repairdesk/repairdesk/app/validate"
)

func ids(jobs []store.Job) []string {
	res := make([]string, 0, len(jobs))
	for _, j := range jobs {
		res = append(res, j.ID)
	}
	return res
}

func TestFilter(t *testing.T) {
	myt := time.FixedZone("MYT", 8*3600)
	jobs := []store.Job{
		{ID: "001000", Name: "Ali", Device: "iPhone 12", Problem: "cracked screen", Status: enums.JobStatusDone,
			Assigned: "Tech1", Date: time.Date(2025, 5, 1, 15, 59, 0, 0, time.UTC)}, // 23:59 May 1 local
		{ID: "001001", Name: "Bob", Device: "Galaxy S21", Problem: "battery", Status: enums.JobStatusChecking,
			Assigned: "tech2", Date: time.Date(2025, 5, 1, 16, 0, 0, 0, time.UTC)}, // 00:00 May 2 local
		{ID: "001002", Name: "Chen", Device: "ThinkPad", Problem: "no power", Status: enums.JobStatusWaitingParts,
			Assigned: "tech1", Date: time.Date(2025, 4, 30, 16, 0, 0, 0, time.UTC)}, // 00:00 May 1 local
		{ID: "001003", Name: "Dana", Device: "iPad", Problem: "screen", Status: "DONE",
			Date: time.Date(2025, 4, 30, 15, 59, 59, 0, time.UTC)}, // 23:59:59 Apr 30 local
	}

	tests := []struct {
		name string
		q    Query
		want []string
	}{
		{name: "no conditions", q: Query{}, want: []string{"001000", "001001", "001002", "001003"}},
		{name: "text in name", q: Query{Text: "ali"}, want: []string{"001000"}},
		{name: "text in device", q: Query{Text: "IPHONE"}, want: []string{"001000"}},
		{name: "text in problem", q: Query{Text: "screen"}, want: []string{"001000", "001003"}},
		{name: "text in status", q: Query{Text: "waiting"}, want: []string{"001002"}},
		{name: "text in id", q: Query{Text: "1001"}, want: []string{"001001"}},
		{name: "text not found", q: Query{Text: "nokia"}, want: []string{}},
		{name: "single day", q: Query{From: "2025-05-01", To: "2025-05-01"}, want: []string{"001000", "001002"}},
		{name: "from only", q: Query{From: "2025-05-02"}, want: []string{"001001"}},
		{name: "to only", q: Query{To: "2025-04-30"}, want: []string{"001003"}},
		{name: "status case-insensitive", q: Query{Status: "Done"}, want: []string{"001000", "001003"}},
		{name: "technician case-insensitive", q: Query{Technician: "TECH1"}, want: []string{"001000", "001002"}},
		{name: "conjunction", q: Query{Text: "screen", Status: "done", Technician: "tech1"}, want: []string{"001000"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Filter(jobs, tt.q, myt)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(res))
		})
	}

	t.Run("bad dates", func(t *testing.T) {
		_, err := Filter(jobs, Query{From: "01/05/2025", To: "yesterday"}, myt)
		var errs validate.Errors
		require.ErrorAs(t, err, &errs)
		assert.Contains(t, errs, "from")
		assert.Contains(t, errs, "to")
	})
}

func TestSort(t *testing.T) {
	d1 := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	d2 := d1.Add(time.Hour)
	jobs := func() []store.Job {
		return []store.Job{{ID: "a", Date: d2}, {ID: "b", Date: d1}, {ID: "c", Date: d2}, {ID: "d", Date: d1}}
	}

	res := jobs()
	Sort(res, enums.SortModeAsc)
	assert.Equal(t, []string{"b", "d", "a", "c"}, ids(res), "stable for equal dates")

	res = jobs()
	Sort(res, enums.SortModeDesc)
	assert.Equal(t, []string{"a", "c", "b", "d"}, ids(res))

	res = jobs()
	Sort(res, enums.SortModeNone)
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(res))
}

func TestPaginate(t *testing.T) {
	jobs := make([]store.Job, 30)
	for i := range jobs {
		jobs[i].ID = fmt.Sprintf("%06d", i)
	}

	p := Paginate(jobs, 1, 0)
	assert.Len(t, p.Jobs, 12)
	assert.Equal(t, Page{Jobs: jobs[:12], Total: 30, Page: 1, Pages: 3, PageSize: 12}, p)

	p = Paginate(jobs, 3, 12)
	assert.Equal(t, []string{"000024", "000025", "000026", "000027", "000028", "000029"}, ids(p.Jobs))

	p = Paginate(jobs, 0, 12)
	assert.Equal(t, 1, p.Page, "page below 1 is the first page")
	assert.Equal(t, "000000", p.Jobs[0].ID)

	p = Paginate(jobs, 4, 12)
	assert.Empty(t, p.Jobs)
	assert.NotNil(t, p.Jobs)

	p = Paginate(nil, 1, 12)
	assert.Equal(t, 0, p.Pages)
	assert.Empty(t, p.Jobs)
}

func TestCountByStatus(t *testing.T) {
	jobs := []store.Job{
		{Status: enums.JobStatusDone}, {Status: "Done"}, {Status: enums.JobStatusChecking}, {Status: "unknown"},
	}
	res := CountByStatus(jobs)
	require.Len(t, res, len(enums.JobStatusValues()))
	assert.Equal(t, StatusCount{Status: enums.JobStatusChecking, Count: 1}, res[0])
	assert.Equal(t, StatusCount{Status: enums.JobStatusDone, Count: 2}, res[5])
	assert.Equal(t, StatusCount{Status: enums.JobStatusConfiscated, Count: 0}, res[7])
}

func TestDesk_ListStatsTechnicians(t *testing.T) {
	d, _, _ := newTestDesk(t)
	ctx := t.Context()
	for i, tech := range []string{"tech1", "tech2", "tech1", "tech3"} {
		in := validInput()
		in.Assigned = tech
		in.Date = t0.Add(time.Duration(-i) * 24 * time.Hour)
		_, err := d.Create(ctx, in, "a@x.com")
		require.NoError(t, err)
	}

	page, err := d.List(ctx, Query{Technician: "tech1", Sort: enums.SortModeAsc, PageSize: 1, Page: 1}, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 2, page.Pages)
	assert.Equal(t, []string{"001002"}, ids(page.Jobs), "oldest first")

	_, err = d.List(ctx, Query{From: "bad"}, time.UTC)
	require.Error(t, err)

	stats, err := d.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats[0].Count)

	techs, err := d.Technicians(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"tech1", "tech2", "tech3"}, techs)
}
