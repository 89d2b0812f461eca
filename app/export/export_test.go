package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repairdesk/repairdesk/app/enums"
	"github.com/repairdesk/repairdesk/app/store"
)

var myt = time.FixedZone("MYT", 8*3600)

func testJobs() []store.Job {
	created := time.Date(2025, 5, 1, 2, 30, 0, 0, time.UTC)
	return []store.Job{
		{ID: "001000", Name: "Ali", CountryCode: "60", Phone: "123456789", Device: "iPhone 12",
			Status: enums.JobStatusChecking, Problem: "cracked screen", Accessories: []string{"charger", "case"},
			Date: created, Assigned: "tech1", Remark: "needs part, \"OEM\""},
		{ID: "001001", Name: "Bob", Phone: "987654321", Device: "Galaxy S21", Status: enums.JobStatusConfiscated,
			Problem: "battery", Date: created.Add(time.Hour), IsConfiscated: true,
			ConfiscationDate: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "001002", Name: "Chen", Device: "ThinkPad", Status: enums.JobStatusDone, Date: created,
			ConfiscationDate: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func TestJobsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JobsCSV(&buf, testJobs(), myt))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Job ID,Customer Name,Phone,Device,Status,Problem,Accessories,Date,Assigned To,"+
		"Technician Remark,Confiscation Date", lines[0])
	assert.Equal(t, `001000,Ali,60123456789,iPhone 12,checking,cracked screen,"charger, case",`+
		`2025-05-01T10:30:00+08:00,tech1,"needs part, ""OEM""",`, lines[1])
	assert.True(t, strings.HasSuffix(lines[2], ",2025-07-01T08:00:00+08:00"), "confiscated job has the date")
	assert.True(t, strings.HasSuffix(lines[3], ",,"), "not confiscated, no remark, no date")
}

func TestParseJobsCSV(t *testing.T) {
	var buf bytes.Buffer
	jobs := testJobs()
	require.NoError(t, JobsCSV(&buf, jobs, myt))

	parsed, err := ParseJobsCSV(&buf)
	require.NoError(t, err)
	require.Len(t, parsed, len(jobs))
	for i, j := range jobs {
		assert.Equal(t, j.ID, parsed[i].ID)
		assert.Equal(t, j.Name, parsed[i].Name)
		assert.Equal(t, j.Device, parsed[i].Device)
		assert.Equal(t, j.Status, parsed[i].Status)
		assert.True(t, j.Date.Equal(parsed[i].Date))
	}
	assert.Equal(t, []string{"charger", "case"}, parsed[0].Accessories)
	assert.Equal(t, `needs part, "OEM"`, parsed[0].Remark)
	assert.True(t, parsed[1].IsConfiscated)
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), parsed[1].ConfiscationDate)
	assert.False(t, parsed[2].IsConfiscated)
	assert.Empty(t, parsed[2].Accessories)

	t.Run("errors", func(t *testing.T) {
		tests := []struct {
			name, in, err string
		}{
			{"empty", "", "empty csv"},
			{"no id column", "Name,Device\nAli,iPhone\n", `missing "Job ID" column`},
			{"bad status", "Job ID,Status\n001000,lost\n", `line 2: invalid job status "lost"`},
			{"bad date", "Job ID,Date\n001000,01/05/2025\n", "line 2: bad date"},
			{"short row", "Job ID,Name\n001000\n", "can't read line 2"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := ParseJobsCSV(strings.NewReader(tt.in))
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.err)
			})
		}
	})
}

func TestUsersCSV(t *testing.T) {
	accounts := []store.Account{
		{Email: "a@x.com", Role: enums.RoleOwner, RegisteredAt: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)},
		{Email: "b@x.com", Role: enums.RoleIntern},
	}
	var buf bytes.Buffer
	require.NoError(t, UsersCSV(&buf, accounts, time.UTC))
	assert.Equal(t, "Email,Role,Registered\na@x.com,owner,2025-05-01T00:00:00Z\nb@x.com,intern,-\n", buf.String())
}

func TestFileName(t *testing.T) {
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Nova_Tech_Jobs_2025-05-01.csv", FileName("Nova Tech", "Jobs", now))
	assert.Equal(t, "Users_2025-05-01.csv", FileName(" ", "Users", now))
}

func TestReporter_Render(t *testing.T) {
	r, err := NewReporter(ReportParams{Shop: "Nova Tech", Phone: "+60 12-345", Location: myt,
		Terms: []string{"1. 30-day warranty on repair workmanship.", "2. Customer responsible for data backup."}})
	require.NoError(t, err)

	generated := time.Date(2025, 5, 2, 1, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, testJobs()[:2], generated))
	out := buf.String()

	assert.Contains(t, out, "NOVA TECH SERVICE REPORT")
	assert.Contains(t, out, `<div class="contacts">&#43;60 12-345</div>`, "plus sign is escaped by html/template")
	assert.Contains(t, out, "<td>charger, case</td>")
	assert.Contains(t, out, "<td>None</td>", "no accessories")
	assert.Contains(t, out, "<td>01/05/2025</td>", "date in shop zone")
	assert.Contains(t, out, "<td>01/07/2025</td>")
	assert.Contains(t, out, "<li>1. 30-day warranty on repair workmanship.</li>")
	assert.Contains(t, out, "<li>2. Customer responsible for data backup.</li>")
	assert.Contains(t, out, "Generated on: 02/05/2025 09:00")
	assert.Contains(t, out, "Page 1 of 2")
	assert.Contains(t, out, "Page 2 of 2")
	assert.Equal(t, 2, strings.Count(out, `<section class="page">`))

	t.Run("escaped", func(t *testing.T) {
		buf.Reset()
		jobs := []store.Job{{ID: "001000", Name: "<script>alert(1)</script>"}}
		require.NoError(t, r.Render(&buf, jobs, generated))
		assert.NotContains(t, buf.String(), "<script>")
		assert.Contains(t, buf.String(), "<td>N/A</td>", "empty fields")
	})

	t.Run("no jobs", func(t *testing.T) {
		require.EqualError(t, r.Render(&buf, nil, generated), "no jobs to report")
	})
}
