package export

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/repairdesk/repairdesk/app/store"
)

//go:embed templates/report.html
var templatesFS embed.FS

// ReportParams describes the shop printed on service reports
type ReportParams struct {
	Shop     string
	Address  string
	Phone    string
	Terms    []string
	Location *time.Location // dates are printed in this zone, UTC if nil
}

// Reporter renders printable service reports, one page per job
type Reporter struct {
	params ReportParams
	tmpl   *template.Template
}

// NewReporter parses the embedded report template
func NewReporter(params ReportParams) (*Reporter, error) {
	if params.Location == nil {
		params.Location = time.UTC
	}
	loc := params.Location
	funcMap := template.FuncMap{
		"upper": strings.ToUpper,
		"inc":   func(i int) int { return i + 1 },
		"na": func(s string) string {
			if strings.TrimSpace(s) == "" {
				return "N/A"
			}
			return s
		},
		"accessories": func(a []string) string {
			if len(a) == 0 {
				return "None"
			}
			return strings.Join(a, ", ")
		},
		"date": func(t time.Time) string {
			if t.IsZero() {
				return "-"
			}
			return t.In(loc).Format("02/01/2006")
		},
		"datetime": func(t time.Time) string { return t.In(loc).Format("02/01/2006 15:04") },
	}
	tmpl, err := template.New("report.html").Funcs(funcMap).ParseFS(templatesFS, "templates/report.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse report template: %w", err)
	}
	return &Reporter{params: params, tmpl: tmpl}, nil
}

// Render writes the report for jobs, page footers carry "Page N of M"
func (r *Reporter) Render(w io.Writer, jobs []store.Job, generated time.Time) error {
	if len(jobs) == 0 {
		return errors.New("no jobs to report")
	}
	data := struct {
		ReportParams
		Jobs      []store.Job
		Generated time.Time
	}{ReportParams: r.params, Jobs: jobs, Generated: generated}

	// render to buffer first, partial html is not sent on error
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
