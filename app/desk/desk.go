// Package desk implements job intake at the front desk: creating, editing, collecting and deleting
// repair jobs with field validation, activity logging and lifecycle hooks. It also provides the
// read side used by the dashboard, search with filters, sorting, pagination and status statistics.
package desk

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	log "github.com/go-pkgz/lgr"

	"github.com/repairdesk/repairdesk/app/enums"
	"github.com/repairdesk/repairdesk/app/lifecycle"
	"github.com/repairdesk/repairdesk/app/metrics"
	"github.com/repairdesk/repairdesk/app/store"
	"github.com/repairdesk/repairdesk/app/validate"
)

//go:generate moq -out mocks/store.go -pkg mocks -skip-ensure -fmt goimports . Store
//go:generate moq -out mocks/messenger.go -pkg mocks -skip-ensure -fmt goimports . Messenger

var (
	phoneRe = regexp.MustCompile(`^[0-9]{7,15}$`)
	icRe    = regexp.MustCompile(`^[0-9]{4}$`)
)

// Store is the job storage used by the desk
type Store interface {
	ListJobs(ctx context.Context) ([]store.Job, error)
	GetJob(ctx context.Context, id string) (store.Job, error)
	SaveJob(ctx context.Context, job store.Job) error
	DeleteJob(ctx context.Context, id string) error
	DeleteAllJobs(ctx context.Context) (int, error)
	NextJobID(ctx context.Context, base int) (string, error)
}

// ActivityLogger records user actions
type ActivityLogger interface {
	LogActivity(ctx context.Context, action, user string) error
}

// Messenger makes customer message links
type Messenger interface {
	Link(job store.Job, kind enums.NoticeKind) (string, error)
}

// Desk handles job operations on behalf of signed-in staff
type Desk struct {
	Store     Store
	Engine    *lifecycle.Engine
	Activity  ActivityLogger
	Messenger Messenger
	IDBase    int // counter value before the first id, 999 makes it 001000
	Now       func() time.Time
}

// JobInput is the editable part of a job
type JobInput struct {
	Name        string    `json:"name"`
	CountryCode string    `json:"country_code"`
	Phone       string    `json:"phone"`
	ICNumber    string    `json:"ic_number"`
	Device      string    `json:"device"`
	DeviceType  string    `json:"device_type"`
	Problem     string    `json:"problem"`
	Accessories []string  `json:"accessories"`
	Status      string    `json:"status"`
	Assigned    string    `json:"assigned"`
	Remark      string    `json:"remark"`
	Source      string    `json:"source"`
	Date        time.Time `json:"date,omitzero"` // creation date, now if not set
	Photo       string    `json:"photo"`
}

// Validate checks input fields and returns parsed status, empty if not set. Problems are
// reported per field as validate.Errors.
func (in *JobInput) Validate() (enums.JobStatus, error) {
	errs := validate.Errors{}
	in.Name, in.Phone, in.Device = strings.TrimSpace(in.Name), strings.TrimSpace(in.Phone), strings.TrimSpace(in.Device)
	in.Problem, in.Assigned, in.ICNumber = strings.TrimSpace(in.Problem), strings.TrimSpace(in.Assigned), strings.TrimSpace(in.ICNumber)
	in.CountryCode = strings.TrimPrefix(strings.TrimSpace(in.CountryCode), "+")

	if in.Name == "" {
		errs.Add("name", "Name required")
	}
	if in.Phone == "" {
		errs.Add("phone", "Phone required")
	}
	if !phoneRe.MatchString(in.Phone) {
		errs.Add("phone", "Invalid phone format")
	}
	if in.Device == "" {
		errs.Add("device", "Device required")
	}
	if in.Problem == "" {
		errs.Add("problem", "Problem description required")
	}
	if in.Assigned == "" {
		errs.Add("assigned", "Technician selection required")
	}
	if in.ICNumber != "" && !icRe.MatchString(in.ICNumber) {
		errs.Add("ic_number", "Must be 4 digits")
	}

	var status enums.JobStatus
	if in.Status != "" {
		st, err := enums.ParseJobStatus(in.Status)
		if err != nil {
			errs.Add("status", err.Error())
		}
		status = st
	}
	if err := validate.Photo(in.Photo); err != nil {
		errs.Add("photo", err.Error())
	}

	accessories := make([]string, 0, len(in.Accessories))
	for _, a := range in.Accessories {
		if a = strings.TrimSpace(a); a != "" {
			accessories = append(accessories, a)
		}
	}
	in.Accessories = accessories
	return status, errs.Err()
}

// Create validates input, allocates the next job id and saves the job. A job created as done
// gets its deadlines and the ready-for-pickup notice right away.
func (d *Desk) Create(ctx context.Context, in JobInput, actor string) (store.Job, error) {
	status, err := in.Validate()
	if err != nil {
		return store.Job{}, err
	}
	if status == "" {
		status = enums.JobStatusChecking
	}
	if status.IsTerminal() {
		return store.Job{}, validate.Errors{"status": fmt.Sprintf("new job can't be %s", status)}
	}

	var job store.Job
	err = d.Engine.Exclusive(func() error {
		now := d.now()
		id, err := d.Store.NextJobID(ctx, d.IDBase)
		if err != nil {
			return fmt.Errorf("can't allocate job id: %w", err)
		}
		job = store.Job{ID: id, Date: in.Date, StatusHistory: []store.StatusChange{}}
		if job.Date.IsZero() {
			job.Date = now
		}
		apply(&job, in)
		d.Engine.ChangeStatus(&job, status, actor, now)
		if err := d.Store.SaveJob(ctx, job); err != nil {
			return fmt.Errorf("can't save job %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("create_job").Inc()
		return store.Job{}, err
	}

	metrics.JobsCreatedTotal.Inc()
	d.logActivity(ctx, fmt.Sprintf("Created job #%s", job.ID), actor)
	log.Printf("[INFO] job %s created by %s, status %q", job.ID, actor, status)
	return d.afterSave(ctx, job, enums.JobStatus(""))
}

// Update replaces editable fields of the job. Moving the job to done sets its deadlines once
// and sends the ready-for-pickup notice.
func (d *Desk) Update(ctx context.Context, id string, in JobInput, actor string) (store.Job, error) {
	status, err := in.Validate()
	if err != nil {
		return store.Job{}, err
	}

	var job store.Job
	var prev enums.JobStatus
	err = d.Engine.Exclusive(func() error {
		var err error
		if job, err = d.Store.GetJob(ctx, id); err != nil {
			return fmt.Errorf("can't load job %s: %w", id, err)
		}
		prev = job.Status
		if !in.Date.IsZero() {
			job.Date = in.Date
		}
		apply(&job, in)
		if status != "" {
			d.Engine.ChangeStatus(&job, status, actor, d.now())
		}
		if err := d.Store.SaveJob(ctx, job); err != nil {
			metrics.OperationErrorsTotal.WithLabelValues("update_job").Inc()
			return fmt.Errorf("can't save job %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return store.Job{}, err
	}

	d.logActivity(ctx, fmt.Sprintf("Updated job #%s", id), actor)
	return d.afterSave(ctx, job, prev)
}

// Collect marks job as picked up by the customer
func (d *Desk) Collect(ctx context.Context, id, actor string) (store.Job, error) {
	var job store.Job
	err := d.Engine.Exclusive(func() error {
		var err error
		if job, err = d.Store.GetJob(ctx, id); err != nil {
			return fmt.Errorf("can't load job %s: %w", id, err)
		}
		if err := d.Engine.Collect(&job, actor, d.now()); err != nil {
			return err
		}
		if err := d.Store.SaveJob(ctx, job); err != nil {
			metrics.OperationErrorsTotal.WithLabelValues("collect_job").Inc()
			return fmt.Errorf("can't save job %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return store.Job{}, err
	}
	metrics.JobsCollectedTotal.Inc()
	d.logActivity(ctx, fmt.Sprintf("Marked job #%s as collected", id), actor)
	return job, nil
}

// Delete removes a job
func (d *Desk) Delete(ctx context.Context, id, actor string) error {
	err := d.Engine.Exclusive(func() error { return d.Store.DeleteJob(ctx, id) })
	if err != nil {
		return fmt.Errorf("can't delete job %s: %w", id, err)
	}
	d.logActivity(ctx, fmt.Sprintf("Deleted job #%s", id), actor)
	return nil
}

// Reset removes all jobs, the id counter keeps going
func (d *Desk) Reset(ctx context.Context, actor string) (int, error) {
	var n int
	err := d.Engine.Exclusive(func() (err error) {
		n, err = d.Store.DeleteAllJobs(ctx)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("can't reset jobs: %w", err)
	}
	d.logActivity(ctx, fmt.Sprintf("Reset all jobs, %d removed", n), actor)
	log.Printf("[WARN] all jobs removed by %s, %d total", actor, n)
	return n, nil
}

// Get returns job by id
func (d *Desk) Get(ctx context.Context, id string) (store.Job, error) {
	job, err := d.Store.GetJob(ctx, id)
	if err != nil {
		return store.Job{}, fmt.Errorf("can't load job %s: %w", id, err)
	}
	return job, nil
}

// View returns job by id and records that actor opened it
func (d *Desk) View(ctx context.Context, id, actor string) (store.Job, error) {
	job, err := d.Get(ctx, id)
	if err != nil {
		return store.Job{}, err
	}
	d.logActivity(ctx, fmt.Sprintf("Viewed details for job #%s", id), actor)
	return job, nil
}

// WhatsApp returns deep link with the job summary message for the customer
func (d *Desk) WhatsApp(ctx context.Context, id, actor string) (string, error) {
	if d.Messenger == nil {
		return "", errors.New("messenger is not configured")
	}
	job, err := d.Get(ctx, id)
	if err != nil {
		return "", err
	}
	link, err := d.Messenger.Link(job, enums.NoticeUpdate)
	if err != nil {
		return "", validate.Errors{"phone": err.Error()}
	}
	d.logActivity(ctx, fmt.Sprintf("Sent job #%s via WhatsApp", id), actor)
	return link, nil
}

// afterSave runs the immediate lifecycle step for a job that just became done
func (d *Desk) afterSave(ctx context.Context, job store.Job, prev enums.JobStatus) (store.Job, error) {
	if job.Status != enums.JobStatusDone || prev == enums.JobStatusDone {
		return job, nil
	}
	if _, err := d.Engine.ScanJob(ctx, job.ID, d.now()); err != nil {
		log.Printf("[WARN] lifecycle step for job %s failed: %v", job.ID, err)
		return job, nil
	}
	updated, err := d.Store.GetJob(ctx, job.ID)
	if err != nil {
		return job, nil //nolint:nilerr // job is saved, stale copy is fine
	}
	return updated, nil
}

func (d *Desk) logActivity(ctx context.Context, action, actor string) {
	if d.Activity == nil {
		return
	}
	if err := d.Activity.LogActivity(ctx, action, actor); err != nil {
		log.Printf("[WARN] failed to log activity %q: %v", action, err)
	}
}

func (d *Desk) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

// apply copies editable fields, status is changed separately through the lifecycle engine
func apply(job *store.Job, in JobInput) {
	job.Name, job.CountryCode, job.Phone, job.ICNumber = in.Name, in.CountryCode, in.Phone, in.ICNumber
	job.Device, job.DeviceType, job.Problem = in.Device, in.DeviceType, in.Problem
	job.Accessories = in.Accessories
	job.Assigned, job.Remark, job.Source, job.Photo = in.Assigned, in.Remark, in.Source, in.Photo
}
