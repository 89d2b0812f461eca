// Package lifecycle drives job status transitions over time. It computes pickup and confiscation
// deadlines when a job is done, and periodically scans the job store to send the ready-for-pickup
// notice, the final warning and to confiscate items left past their retention window.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/go-pkgz/lgr"

	"github.com/repairdesk/repairdesk/app/enums"
	"github.com/repairdesk/repairdesk/app/metrics"
	"github.com/repairdesk/repairdesk/app/store"
)

//go:generate moq -out mocks/notifier.go -pkg mocks -skip-ensure -fmt goimports . Notifier
//go:generate moq -out mocks/activity_logger.go -pkg mocks -skip-ensure -fmt goimports . ActivityLogger
//go:generate moq -out mocks/cron.go -pkg mocks -skip-ensure -fmt goimports . Cron

// SystemActor is recorded as the author of automatic transitions
const SystemActor = "system"

// ErrTerminal returned when a job in collected or confiscated status is asked to move
var ErrTerminal = errors.New("job is already collected or confiscated")

// Windows defines retention periods counted from the moment a job becomes done
type Windows struct {
	Pickup       time.Duration // customer is asked to collect within
	Confiscation time.Duration // item is confiscated after
	FinalWarning time.Duration // final warning is sent this long before confiscation
}

// DefaultWindows returns 7 days to pickup, 60 days to confiscation and a 3 days final warning
func DefaultWindows() Windows {
	return Windows{Pickup: 7 * 24 * time.Hour, Confiscation: 60 * 24 * time.Hour, FinalWarning: 3 * 24 * time.Hour}
}

// Store is the subset of job storage used by the engine
type Store interface {
	ListJobs(ctx context.Context) ([]store.Job, error)
	GetJob(ctx context.Context, id string) (store.Job, error)
	SaveJobs(ctx context.Context, jobs []store.Job) error
}

// Notifier delivers customer notices
type Notifier interface {
	Notify(ctx context.Context, job store.Job, kind enums.NoticeKind) error
}

// ActivityLogger records actions to the audit trail
type ActivityLogger interface {
	LogActivity(ctx context.Context, action, user string) error
}

// Engine applies lifecycle rules to jobs. Scan and ScanJob are serialized.
type Engine struct {
	Store    Store
	Notifier Notifier
	Activity ActivityLogger
	Windows  Windows

	scanMu sync.Mutex // one scan at a time
	jobsMu sync.Mutex // read-modify-write of a stored job, see Exclusive
}

// ScanResult summarizes a single scan
type ScanResult struct {
	Scanned     int // jobs eligible for automatic transitions
	Initial     int // ready-for-pickup notices sent
	Final       int // final warnings sent
	Confiscated int // jobs confiscated
	Failed      int // notices failed to deliver, retried on next scan
}

type step int

const (
	stepNone step = iota
	stepInitial
	stepFinal
	stepConfiscate
)

// ChangeStatus moves job to status on behalf of actor and records it in the status history.
// The first move into done sets done date, pickup deadline and confiscation date. These stay
// fixed while the job is done, collected or confiscated, and are cleared when the job goes back
// to the workshop.
func (e *Engine) ChangeStatus(job *store.Job, status enums.JobStatus, actor string, t time.Time) {
	prev := job.Status
	if prev == status {
		return
	}
	job.Status = status
	job.StatusHistory = append(job.StatusHistory, store.StatusChange{Status: status, Date: t, ChangedBy: actor})

	switch {
	case status == enums.JobStatusDone:
		if prev.IsTerminal() && !job.DoneDate.IsZero() {
			// manual correction of a collected or confiscated job keeps the original deadlines
			job.IsConfiscated = false
			return
		}
		e.complete(job, t)
	case status == enums.JobStatusConfiscated:
		job.IsConfiscated = true
	case status == enums.JobStatusCollected:
		job.IsConfiscated = false
		if job.PickupDate.IsZero() {
			job.PickupDate = t
		}
	default:
		// back in the workshop
		job.DoneDate, job.PickupDeadline, job.ConfiscationDate, job.PickupDate = time.Time{}, time.Time{}, time.Time{}, time.Time{}
		job.NotificationsSent = store.NotificationsSent{}
		job.IsConfiscated = false
	}
}

// Collect marks job as picked up by the customer
func (e *Engine) Collect(job *store.Job, actor string, t time.Time) error {
	if job.Status.IsTerminal() || job.IsConfiscated {
		return fmt.Errorf("can't collect job %s in status %q: %w", job.ID, job.Status, ErrTerminal)
	}
	e.ChangeStatus(job, enums.JobStatusCollected, actor, t)
	job.PickupDate = t
	return nil
}

// complete sets deadlines for a job that just became done
func (e *Engine) complete(job *store.Job, t time.Time) {
	w := e.windows()
	job.DoneDate = t
	job.PickupDeadline = t.Add(w.Pickup)
	job.ConfiscationDate = t.Add(w.Confiscation)
	job.NotificationsSent = store.NotificationsSent{}
	job.IsConfiscated = false
}

// Scan advances every eligible job by at most one step. Notices are delivered without holding
// the job write lock, each change is applied to a fresh copy of the job afterwards.
func (e *Engine) Scan(ctx context.Context, now time.Time) (ScanResult, error) {
	e.scanMu.Lock()
	defer e.scanMu.Unlock()
	metrics.LifecycleScansTotal.Inc()

	jobs, err := e.Store.ListJobs(ctx)
	if err != nil {
		return ScanResult{}, fmt.Errorf("failed to load jobs: %w", err)
	}

	res := ScanResult{}
	var errs []error
	for _, job := range jobs {
		if !eligible(job) {
			continue
		}
		res.Scanned++
		if err := e.advance(ctx, job, now, &res); err != nil {
			errs = append(errs, err)
		}
	}
	log.Printf("[INFO] lifecycle scan: %d eligible, %d initial, %d final, %d confiscated, %d failed",
		res.Scanned, res.Initial, res.Final, res.Confiscated, res.Failed)
	return res, errors.Join(errs...)
}

// ScanJob applies a single scan step to one job, used right after a job becomes done
func (e *Engine) ScanJob(ctx context.Context, id string, now time.Time) (ScanResult, error) {
	e.scanMu.Lock()
	defer e.scanMu.Unlock()

	job, err := e.Store.GetJob(ctx, id)
	if err != nil {
		return ScanResult{}, fmt.Errorf("failed to load job %s: %w", id, err)
	}
	res := ScanResult{}
	if !eligible(job) {
		return res, nil
	}
	res.Scanned++
	return res, e.advance(ctx, job, now, &res)
}

// Exclusive runs fn holding the job write lock. Every read-modify-write of a job outside the
// engine goes through it, so a lifecycle step never saves over a concurrent edit.
func (e *Engine) Exclusive(fn func() error) error {
	e.jobsMu.Lock()
	defer e.jobsMu.Unlock()
	return fn()
}

// advance applies the next step due for job, job is the copy the step was decided on
func (e *Engine) advance(ctx context.Context, job store.Job, now time.Time, res *ScanResult) error {
	w := e.windows()
	switch nextStep(job, now, w) {
	case stepInitial:
		if !e.notify(ctx, job, enums.NoticeInitial, res) {
			return nil
		}
		res.Initial++
		_, err := e.commit(ctx, job, "initial notice", func(j *store.Job) bool {
			if j.NotificationsSent.Initial {
				return false
			}
			j.NotificationsSent.Initial = true
			return true
		})
		return err
	case stepFinal:
		if !e.notify(ctx, job, enums.NoticeFinal, res) {
			return nil
		}
		res.Final++
		_, err := e.commit(ctx, job, "final notice", func(j *store.Job) bool {
			if j.NotificationsSent.Final {
				return false
			}
			j.NotificationsSent.Final = true
			return true
		})
		return err
	case stepConfiscate:
		ok, err := e.commit(ctx, job, "confiscation", func(j *store.Job) bool {
			if nextStep(*j, now, w) != stepConfiscate {
				return false
			}
			e.ChangeStatus(j, enums.JobStatusConfiscated, SystemActor, now)
			return true
		})
		if err != nil || !ok {
			return err
		}
		res.Confiscated++
		metrics.JobsConfiscatedTotal.Inc()
		e.logActivity(ctx, fmt.Sprintf("Confiscated job #%s", job.ID))
		log.Printf("[INFO] job %s confiscated, confiscation date %s", job.ID, job.ConfiscationDate.Format(time.RFC3339))
		return nil
	default:
		return nil
	}
}

// commit reloads the job under the write lock and saves it if apply changed it. A job that was
// collected, confiscated, deleted or completed again since seen is left untouched.
func (e *Engine) commit(ctx context.Context, seen store.Job, what string, apply func(job *store.Job) bool) (bool, error) {
	e.jobsMu.Lock()
	defer e.jobsMu.Unlock()

	job, err := e.Store.GetJob(ctx, seen.ID)
	if errors.Is(err, store.ErrNotFound) {
		log.Printf("[WARN] job %s removed during %s, skip", seen.ID, what)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to reload job %s: %w", seen.ID, err)
	}
	if !eligible(job) || !job.DoneDate.Equal(seen.DoneDate) || !apply(&job) {
		log.Printf("[DEBUG] job %s changed during %s, now %q, skip", seen.ID, what, job.Status)
		return false, nil
	}
	if err := e.Store.SaveJobs(ctx, []store.Job{job}); err != nil {
		return false, fmt.Errorf("failed to save job %s: %w", seen.ID, err)
	}
	return true, nil
}

func (e *Engine) notify(ctx context.Context, job store.Job, kind enums.NoticeKind, res *ScanResult) bool {
	if e.Notifier != nil {
		if err := e.Notifier.Notify(ctx, job, kind); err != nil {
			log.Printf("[WARN] failed to send %s notification for job %s, will retry: %v", kind, job.ID, err)
			metrics.NotificationErrorsTotal.WithLabelValues(kind.String()).Inc()
			res.Failed++
			return false
		}
	}
	metrics.NotificationsSentTotal.WithLabelValues(kind.String()).Inc()
	e.logActivity(ctx, fmt.Sprintf("Sent %s notification for job #%s", kind, job.ID))
	return true
}

func (e *Engine) logActivity(ctx context.Context, action string) {
	if e.Activity == nil {
		return
	}
	if err := e.Activity.LogActivity(ctx, action, SystemActor); err != nil {
		log.Printf("[WARN] failed to log activity %q: %v", action, err)
	}
}

func (e *Engine) windows() Windows {
	if e.Windows == (Windows{}) {
		return DefaultWindows()
	}
	return e.Windows
}

// eligible reports whether automatic transitions apply to the job at all
func eligible(job store.Job) bool {
	return job.Status == enums.JobStatusDone && !job.IsConfiscated
}

// nextStep decides the single step due for an eligible job, the first matching rule wins.
// A missing confiscation date is treated as not yet due.
func nextStep(job store.Job, now time.Time, w Windows) step {
	if !job.NotificationsSent.Initial {
		return stepInitial
	}
	if job.ConfiscationDate.IsZero() {
		log.Printf("[WARN] job %s is done without confiscation date, skip", job.ID)
		return stepNone
	}
	if !job.NotificationsSent.Final && now.After(job.ConfiscationDate.Add(-w.FinalWarning)) {
		return stepFinal
	}
	if now.After(job.ConfiscationDate) {
		return stepConfiscate
	}
	return stepNone
}
