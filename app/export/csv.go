// Package export renders jobs and accounts for download: CSV tables and the printable service
// report. Jobs CSV can be parsed back.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/repairdesk/repairdesk/app/enums"
	"github.com/repairdesk/repairdesk/app/store"
)

// JobColumns is the header row of jobs CSV
var JobColumns = []string{"Job ID", "Customer Name", "Phone", "Device", "Status", "Problem", "Accessories",
	"Date", "Assigned To", "Technician Remark", "Confiscation Date"}

// UserColumns is the header row of accounts CSV
var UserColumns = []string{"Email", "Role", "Registered"}

const accessoriesSep = ", "

// JobsCSV writes jobs with header row. Timestamps are RFC3339 in loc, the confiscation date
// is filled only for confiscated jobs.
func JobsCSV(w io.Writer, jobs []store.Job, loc *time.Location) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(JobColumns); err != nil {
		return fmt.Errorf("can't write header: %w", err)
	}
	for _, j := range jobs {
		confiscated := ""
		if j.IsConfiscated {
			confiscated = timeCell(j.ConfiscationDate, loc)
		}
		row := []string{j.ID, j.Name, j.CountryCode + j.Phone, j.Device, string(j.Status), j.Problem,
			strings.Join(j.Accessories, accessoriesSep), timeCell(j.Date, loc), j.Assigned, j.Remark, confiscated}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("can't write job %s: %w", j.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// UsersCSV writes accounts with header row, "-" for unknown registration time
func UsersCSV(w io.Writer, accounts []store.Account, loc *time.Location) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(UserColumns); err != nil {
		return fmt.Errorf("can't write header: %w", err)
	}
	for _, a := range accounts {
		registered := timeCell(a.RegisteredAt, loc)
		if registered == "" {
			registered = "-"
		}
		if err := cw.Write([]string{a.Email, string(a.Role), registered}); err != nil {
			return fmt.Errorf("can't write account %s: %w", a.Email, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ParseJobsCSV reads jobs written by JobsCSV. Columns are matched by header name, unknown columns
// are ignored. The phone column is kept whole since the country code can't be split off.
func ParseJobsCSV(r io.Reader) ([]store.Job, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty csv")
		}
		return nil, fmt.Errorf("can't read header: %w", err)
	}
	idx := map[string]int{}
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	if _, ok := idx["Job ID"]; !ok {
		return nil, errors.New("missing \"Job ID\" column")
	}
	cr.FieldsPerRecord = len(header)

	res := []store.Job{}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("can't read line %d: %w", line, err)
		}
		cell := func(name string) string {
			if i, ok := idx[name]; ok {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}

		job := store.Job{ID: cell("Job ID"), Name: cell("Customer Name"), Phone: cell("Phone"), Device: cell("Device"),
			Problem: cell("Problem"), Assigned: cell("Assigned To"), Remark: cell("Technician Remark"),
			Accessories: []string{}, StatusHistory: []store.StatusChange{}}
		if s := cell("Status"); s != "" {
			if job.Status, err = enums.ParseJobStatus(s); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		}
		if a := cell("Accessories"); a != "" {
			job.Accessories = strings.Split(a, accessoriesSep)
		}
		if job.Date, err = parseTimeCell(cell("Date")); err != nil {
			return nil, fmt.Errorf("line %d: bad date: %w", line, err)
		}
		if c := cell("Confiscation Date"); c != "" {
			if job.ConfiscationDate, err = parseTimeCell(c); err != nil {
				return nil, fmt.Errorf("line %d: bad confiscation date: %w", line, err)
			}
			job.IsConfiscated = true
		}
		res = append(res, job)
	}
	return res, nil
}

func timeCell(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(time.RFC3339)
}

func parseTimeCell(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// FileName returns download name like "Nova_Tech_Jobs_2025-05-01.csv"
func FileName(shop, what string, now time.Time) string {
	shop = strings.Join(strings.Fields(shop), "_")
	if shop == "" {
		return fmt.Sprintf("%s_%s.csv", what, now.Format("2006-01-02"))
	}
	return fmt.Sprintf("%s_%s_%s.csv", shop, what, now.Format("2006-01-02"))
}
