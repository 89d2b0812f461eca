package web

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"
	"time"

	log "github.com/go-pkgz/lgr"

	"github.com/repairdesk/repairdesk/app/desk"
	"github.com/repairdesk/repairdesk/app/enums"
	"github.com/repairdesk/repairdesk/app/export"
	"github.com/repairdesk/repairdesk/app/outsource"
	"github.com/repairdesk/repairdesk/app/store"
	"github.com/repairdesk/repairdesk/app/validate"
)

// statsResponse is the dashboard summary
type statsResponse struct {
	Statuses  []desk.StatusCount `json:"statuses"`
	Outsource outsource.Stats    `json:"outsource"`
}

// handleListJobs returns a page of jobs matching query parameters
// q, from, to, status, technician, sort and page
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	q, err := s.parseQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	page, err := s.Jobs.List(r.Context(), q, s.Shop.Location())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var in desk.JobInput
	if !s.decode(w, r, &in) {
		return
	}
	job, err := s.Jobs.Create(r.Context(), in, accountFrom(r.Context()).Email)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, job)
}

// handleGetJob returns job details, opening a job is recorded in the activity log
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.Jobs.View(r.Context(), r.PathValue("id"), accountFrom(r.Context()).Email)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	var in desk.JobInput
	if !s.decode(w, r, &in) {
		return
	}
	job, err := s.Jobs.Update(r.Context(), r.PathValue("id"), in, accountFrom(r.Context()).Email)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	if err := s.Jobs.Delete(r.Context(), r.PathValue("id"), accountFrom(r.Context()).Email); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleResetJobs removes all jobs
func (s *Server) handleResetJobs(w http.ResponseWriter, r *http.Request) {
	n, err := s.Jobs.Reset(r.Context(), accountFrom(r.Context()).Email)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

func (s *Server) handleCollectJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.Jobs.Collect(r.Context(), r.PathValue("id"), accountFrom(r.Context()).Email)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleTechnicians(w http.ResponseWriter, r *http.Request) {
	techs, err := s.Jobs.Technicians(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, techs)
}

// handleWhatsApp returns deep link with the job summary for the customer
func (s *Server) handleWhatsApp(w http.ResponseWriter, r *http.Request) {
	link, err := s.Jobs.WhatsApp(r.Context(), r.PathValue("id"), accountFrom(r.Context()).Email)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"link": link})
}

// handleJobReport renders the printable service report of one job
func (s *Server) handleJobReport(w http.ResponseWriter, r *http.Request) {
	job, err := s.Jobs.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.renderReport(w, r, []store.Job{job})
}

// handleJobsReport renders one report page per job listed in the ids parameter, comma separated
func (s *Server) handleJobsReport(w http.ResponseWriter, r *http.Request) {
	ids := strings.Split(r.URL.Query().Get("ids"), ",")
	jobs := make([]store.Job, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id == "" {
			continue
		}
		job, err := s.Jobs.Get(r.Context(), id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		jobs = append(jobs, job)
	}
	if len(jobs) == 0 {
		s.writeError(w, r, validate.Errors{"ids": "at least one job id required"})
		return
	}
	s.renderReport(w, r, jobs)
}

// handleJobOutsource returns the first outsource record of the job
func (s *Server) handleJobOutsource(w http.ResponseWriter, r *http.Request) {
	rec, err := s.Outsource.ForJob(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

// handleExportJobs sends all jobs as CSV download
func (s *Server) handleExportJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.Jobs.All(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := export.JobsCSV(&buf, jobs, s.Shop.Location()); err != nil {
		s.writeError(w, r, err)
		return
	}
	actor := accountFrom(r.Context()).Email
	if err := s.Activity.LogActivity(r.Context(), "Exported all jobs to CSV", actor); err != nil {
		log.Printf("[WARN] failed to log activity: %v", err)
	}
	s.writeCSV(w, export.FileName(s.Shop.Name, "Jobs", time.Now().In(s.Shop.Location())), &buf)
}

// handleStats returns job counts per status and outsource counters
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	statuses, err := s.Jobs.Stats(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ost, err := s.cachedOutsourceStats(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, statsResponse{Statuses: statuses, Outsource: ost})
}

// handleActivity returns kept activity entries, oldest first
func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	entries, err := s.Activity.ListActivity(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, entries)
}

// parseQuery makes job query from url parameters, page size comes from shop settings
func (s *Server) parseQuery(r *http.Request) (desk.Query, error) {
	v := r.URL.Query()
	q := desk.Query{Text: v.Get("q"), From: v.Get("from"), To: v.Get("to"), Status: v.Get("status"),
		Technician: v.Get("technician"), Page: 1, PageSize: s.Shop.PageSize}
	errs := validate.Errors{}
	sortMode, err := enums.ParseSortMode(v.Get("sort"))
	if err != nil {
		errs.Add("sort", err.Error())
	}
	q.Sort = sortMode
	if p := v.Get("page"); p != "" {
		if q.Page, err = strconv.Atoi(p); err != nil {
			errs.Add("page", "page must be a number")
		}
	}
	return q, errs.Err()
}

func (s *Server) renderReport(w http.ResponseWriter, r *http.Request, jobs []store.Job) {
	if s.Reporter == nil {
		s.writeJSONError(w, http.StatusNotImplemented, "reports are not configured")
		return
	}
	var buf bytes.Buffer
	if err := s.Reporter.Render(&buf, jobs, time.Now()); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("[WARN] failed to write response: %v", err)
	}
}

func (s *Server) writeCSV(w http.ResponseWriter, name string, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("[WARN] failed to write response: %v", err)
	}
}
