package desk

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/repairdesk/repairdesk/app/enums"
	"github.com/repairdesk/repairdesk/app/store"
	"github.com/repairdesk/repairdesk/app/validate"
)

// DefaultPageSize is the number of jobs on a dashboard page
const DefaultPageSize = 12

const dayLayout = "2006-01-02"

// Query selects jobs for the dashboard. All set conditions must match.
type Query struct {
	Text       string         // case-insensitive substring of name, device, status, problem or id
	From       string         // first creation day, YYYY-MM-DD, inclusive
	To         string         // last creation day, YYYY-MM-DD, inclusive
	Status     string         // exact status, case-insensitive
	Technician string         // exact assigned technician, case-insensitive
	Sort       enums.SortMode // by creation date, insertion order if none
	Page       int            // 1-indexed, values below 1 mean the first page
	PageSize   int
}

// Page of jobs with paging info
type Page struct {
	Jobs     []store.Job `json:"jobs"`
	Total    int         `json:"total"` // jobs matching the query
	Page     int         `json:"page"`
	Pages    int         `json:"pages"`
	PageSize int         `json:"page_size"`
}

// StatusCount is a dashboard chart bar
type StatusCount struct {
	Status enums.JobStatus `json:"status"`
	Count  int             `json:"count"`
}

// List loads jobs and applies the query. Day boundaries of From and To are taken in loc.
func (d *Desk) List(ctx context.Context, q Query, loc *time.Location) (Page, error) {
	jobs, err := d.Store.ListJobs(ctx)
	if err != nil {
		return Page{}, fmt.Errorf("can't list jobs: %w", err)
	}
	filtered, err := Filter(jobs, q, loc)
	if err != nil {
		return Page{}, err
	}
	Sort(filtered, q.Sort)
	return Paginate(filtered, q.Page, q.PageSize), nil
}

// All returns every job in insertion order
func (d *Desk) All(ctx context.Context) ([]store.Job, error) {
	jobs, err := d.Store.ListJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("can't list jobs: %w", err)
	}
	return jobs, nil
}

// Stats counts jobs per status, statuses in workflow order
func (d *Desk) Stats(ctx context.Context) ([]StatusCount, error) {
	jobs, err := d.Store.ListJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("can't list jobs: %w", err)
	}
	return CountByStatus(jobs), nil
}

// Technicians returns distinct assigned technicians in order of first appearance
func (d *Desk) Technicians(ctx context.Context) ([]string, error) {
	jobs, err := d.Store.ListJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("can't list jobs: %w", err)
	}
	seen := map[string]bool{}
	res := []string{}
	for _, j := range jobs {
		if j.Assigned == "" || seen[j.Assigned] {
			continue
		}
		seen[j.Assigned] = true
		res = append(res, j.Assigned)
	}
	return res, nil
}

// Filter returns jobs matching all conditions of the query, order kept
func Filter(jobs []store.Job, q Query, loc *time.Location) ([]store.Job, error) {
	if loc == nil {
		loc = time.UTC
	}
	from, to, err := dayRange(q.From, q.To, loc)
	if err != nil {
		return nil, err
	}

	text := strings.ToLower(strings.TrimSpace(q.Text))
	res := make([]store.Job, 0, len(jobs))
	for _, j := range jobs {
		if !from.IsZero() && j.Date.Before(from) {
			continue
		}
		if !to.IsZero() && !j.Date.Before(to) {
			continue
		}
		if q.Status != "" && !strings.EqualFold(string(j.Status), strings.TrimSpace(q.Status)) {
			continue
		}
		if q.Technician != "" && !strings.EqualFold(j.Assigned, strings.TrimSpace(q.Technician)) {
			continue
		}
		if text != "" && !matchText(j, text) {
			continue
		}
		res = append(res, j)
	}
	return res, nil
}

// Sort orders jobs by creation date in place, stable for equal dates. SortModeNone keeps order.
func Sort(jobs []store.Job, mode enums.SortMode) {
	switch mode {
	case enums.SortModeAsc:
		sort.SliceStable(jobs, func(i, j int) bool { return jobs[i].Date.Before(jobs[j].Date) })
	case enums.SortModeDesc:
		sort.SliceStable(jobs, func(i, j int) bool { return jobs[i].Date.After(jobs[j].Date) })
	}
}

// Paginate cuts a 1-indexed page, page size defaults to DefaultPageSize
func Paginate(jobs []store.Job, page, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	res := Page{Jobs: []store.Job{}, Total: len(jobs), Page: page, PageSize: size}
	res.Pages = (len(jobs) + size - 1) / size
	start := (page - 1) * size
	if start >= len(jobs) {
		return res
	}
	end := min(start+size, len(jobs))
	res.Jobs = jobs[start:end]
	return res
}

// CountByStatus counts jobs per known status, status compared case-insensitively
func CountByStatus(jobs []store.Job) []StatusCount {
	values := enums.JobStatusValues()
	res := make([]StatusCount, len(values))
	for i, st := range values {
		res[i].Status = st
		for _, j := range jobs {
			if strings.EqualFold(string(j.Status), string(st)) {
				res[i].Count++
			}
		}
	}
	return res
}

func matchText(j store.Job, text string) bool {
	for _, f := range []string{j.Name, j.Device, string(j.Status), j.Problem, j.ID} {
		if strings.Contains(strings.ToLower(f), text) {
			return true
		}
	}
	return false
}

// dayRange converts inclusive days to [from, to) instants, zero time for unset bounds
func dayRange(fromDay, toDay string, loc *time.Location) (from, to time.Time, err error) {
	errs := validate.Errors{}
	if fromDay != "" {
		if from, err = time.ParseInLocation(dayLayout, fromDay, loc); err != nil {
			errs.Add("from", "date must be YYYY-MM-DD")
		}
	}
	if toDay != "" {
		t, e := time.ParseInLocation(dayLayout, toDay, loc)
		if e != nil {
			errs.Add("to", "date must be YYYY-MM-DD")
		} else {
			to = t.AddDate(0, 0, 1)
		}
	}
	if err := errs.Err(); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}
