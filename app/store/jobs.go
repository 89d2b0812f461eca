package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/jmoiron/sqlx"

	"github.com/repairdesk/repairdesk/app/enums"
)

// Job is a repair ticket for one customer device
type Job struct {
	ID                string            `json:"id"` // zero-padded numeric, e.g. 001000
	Name              string            `json:"name"`
	CountryCode       string            `json:"country_code"`
	Phone             string            `json:"phone"`
	ICNumber          string            `json:"ic_number,omitempty"`
	Device            string            `json:"device"`
	DeviceType        string            `json:"device_type,omitempty"`
	Problem           string            `json:"problem"`
	Accessories       []string          `json:"accessories"`
	Status            enums.JobStatus   `json:"status"`
	Assigned          string            `json:"assigned"` // technician
	Remark            string            `json:"remark,omitempty"`
	Source            string            `json:"source,omitempty"`
	Date              time.Time         `json:"date"` // creation time
	Photo             string            `json:"photo,omitempty"`
	DoneDate          time.Time         `json:"done_date,omitzero"`
	PickupDeadline    time.Time         `json:"pickup_deadline,omitzero"`
	ConfiscationDate  time.Time         `json:"confiscation_date,omitzero"`
	PickupDate        time.Time         `json:"pickup_date,omitzero"`
	NotificationsSent NotificationsSent `json:"notifications_sent"`
	IsConfiscated     bool              `json:"is_confiscated"`
	StatusHistory     []StatusChange    `json:"status_history"`
}

// NotificationsSent flags the customer notices already delivered for a done job
type NotificationsSent struct {
	Initial bool `json:"initial"`
	Final   bool `json:"final"`
}

// StatusChange is a single entry of job status history
type StatusChange struct {
	Status    enums.JobStatus `json:"status"`
	Date      time.Time       `json:"date"`
	ChangedBy string          `json:"changed_by"`
}

// jobRow is the database representation of Job
type jobRow struct {
	Seq              int64  `db:"seq"`
	ID               string `db:"id"`
	Name             string `db:"name"`
	CountryCode      string `db:"country_code"`
	Phone            string `db:"phone"`
	ICNumber         string `db:"ic_number"`
	Device           string `db:"device"`
	DeviceType       string `db:"device_type"`
	Problem          string `db:"problem"`
	Accessories      string `db:"accessories"`
	Status           string `db:"status"`
	Assigned         string `db:"assigned"`
	Remark           string `db:"remark"`
	Source           string `db:"source"`
	CreatedAt        int64  `db:"created_at"`
	Photo            string `db:"photo"`
	DoneDate         int64  `db:"done_date"`
	PickupDeadline   int64  `db:"pickup_deadline"`
	ConfiscationDate int64  `db:"confiscation_date"`
	PickupDate       int64  `db:"pickup_date"`
	NotifiedInitial  bool   `db:"notified_initial"`
	NotifiedFinal    bool   `db:"notified_final"`
	IsConfiscated    bool   `db:"is_confiscated"`
	StatusHistory    string `db:"status_history"`
}

const jobColumns = `seq, id, name, country_code, phone, ic_number, device, device_type, problem, accessories,
	status, assigned, remark, source, created_at, photo, done_date, pickup_deadline, confiscation_date,
	pickup_date, notified_initial, notified_final, is_confiscated, status_history`

// jobCounter is the counters row holding the last issued job id
const jobCounter = "last_job_id"

// ListJobs returns all jobs in insertion order
func (s *SQLiteStore) ListJobs(ctx context.Context) ([]Job, error) {
	rows := []jobRow{}
	if err := s.db.SelectContext(ctx, &rows, `SELECT `+jobColumns+` FROM jobs ORDER BY seq`); err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	jobs := make([]Job, 0, len(rows))
	for _, r := range rows {
		jobs = append(jobs, r.toJob())
	}
	return jobs, nil
}

// GetJob returns job by id
func (s *SQLiteStore) GetJob(ctx context.Context, id string) (Job, error) {
	var r jobRow
	err := s.db.GetContext(ctx, &r, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Job{}, fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Job{}, fmt.Errorf("failed to get job %s: %w", id, err)
	}
	return r.toJob(), nil
}

// SaveJob creates or replaces the job with the same id
func (s *SQLiteStore) SaveJob(ctx context.Context, job Job) error {
	return s.SaveJobs(ctx, []Job{job})
}

// SaveJobs upserts multiple jobs in a single transaction
func (s *SQLiteStore) SaveJobs(ctx context.Context, jobs []Job) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		for _, job := range jobs {
			if job.ID == "" {
				return errors.New("can't save job without id")
			}
			if _, err := tx.NamedExecContext(ctx, `
				INSERT INTO jobs (id, name, country_code, phone, ic_number, device, device_type, problem,
					accessories, status, assigned, remark, source, created_at, photo, done_date, pickup_deadline,
					confiscation_date, pickup_date, notified_initial, notified_final, is_confiscated, status_history)
				VALUES (:id, :name, :country_code, :phone, :ic_number, :device, :device_type, :problem,
					:accessories, :status, :assigned, :remark, :source, :created_at, :photo, :done_date, :pickup_deadline,
					:confiscation_date, :pickup_date, :notified_initial, :notified_final, :is_confiscated, :status_history)
				ON CONFLICT(id) DO UPDATE SET
					name = excluded.name, country_code = excluded.country_code, phone = excluded.phone,
					ic_number = excluded.ic_number, device = excluded.device, device_type = excluded.device_type,
					problem = excluded.problem, accessories = excluded.accessories, status = excluded.status,
					assigned = excluded.assigned, remark = excluded.remark, source = excluded.source,
					created_at = excluded.created_at, photo = excluded.photo, done_date = excluded.done_date,
					pickup_deadline = excluded.pickup_deadline, confiscation_date = excluded.confiscation_date,
					pickup_date = excluded.pickup_date, notified_initial = excluded.notified_initial,
					notified_final = excluded.notified_final, is_confiscated = excluded.is_confiscated,
					status_history = excluded.status_history`, newJobRow(job)); err != nil {
				return fmt.Errorf("failed to save job %s: %w", job.ID, err)
			}
		}
		return nil
	})
}

// DeleteJob removes job by id
func (s *SQLiteStore) DeleteJob(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete job %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteAllJobs removes every job, the id counter is kept so ids are never reused
func (s *SQLiteStore) DeleteAllJobs(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM jobs`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete jobs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return int(n), nil
}

// NextJobID increments the persisted counter and returns the new id, zero-padded to 6 digits.
// The counter starts at base if it was never issued before. Ids already taken by existing jobs
// are skipped.
func (s *SQLiteStore) NextJobID(ctx context.Context, base int) (string, error) {
	var id string
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		last := int64(base)
		err := tx.GetContext(ctx, &last, `SELECT value FROM counters WHERE name = ?`, jobCounter)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to read job counter: %w", err)
		}

		for {
			last++
			id = fmt.Sprintf("%06d", last)
			var taken int
			if err := tx.GetContext(ctx, &taken, `SELECT COUNT(*) FROM jobs WHERE id = ?`, id); err != nil {
				return fmt.Errorf("failed to check job id %s: %w", id, err)
			}
			if taken == 0 {
				break
			}
		}

		if _, err := tx.ExecContext(ctx, `INSERT INTO counters (name, value) VALUES (?, ?)
			ON CONFLICT(name) DO UPDATE SET value = excluded.value`, jobCounter, last); err != nil {
			return fmt.Errorf("failed to update job counter: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func newJobRow(job Job) jobRow {
	accessories := job.Accessories
	if accessories == nil {
		accessories = []string{}
	}
	history := job.StatusHistory
	if history == nil {
		history = []StatusChange{}
	}
	return jobRow{
		ID:               job.ID,
		Name:             job.Name,
		CountryCode:      job.CountryCode,
		Phone:            job.Phone,
		ICNumber:         job.ICNumber,
		Device:           job.Device,
		DeviceType:       job.DeviceType,
		Problem:          job.Problem,
		Accessories:      mustJSON(accessories),
		Status:           job.Status.String(),
		Assigned:         job.Assigned,
		Remark:           job.Remark,
		Source:           job.Source,
		CreatedAt:        unixMilli(job.Date),
		Photo:            job.Photo,
		DoneDate:         unixMilli(job.DoneDate),
		PickupDeadline:   unixMilli(job.PickupDeadline),
		ConfiscationDate: unixMilli(job.ConfiscationDate),
		PickupDate:       unixMilli(job.PickupDate),
		NotifiedInitial:  job.NotificationsSent.Initial,
		NotifiedFinal:    job.NotificationsSent.Final,
		IsConfiscated:    job.IsConfiscated,
		StatusHistory:    mustJSON(history),
	}
}

// toJob converts row to Job. Malformed JSON columns and unknown statuses are logged and
// replaced with empty values, a broken row never hides the rest of the collection.
func (r jobRow) toJob() Job {
	job := Job{
		ID:               r.ID,
		Name:             r.Name,
		CountryCode:      r.CountryCode,
		Phone:            r.Phone,
		ICNumber:         r.ICNumber,
		Device:           r.Device,
		DeviceType:       r.DeviceType,
		Problem:          r.Problem,
		Assigned:         r.Assigned,
		Remark:           r.Remark,
		Source:           r.Source,
		Date:             fromUnixMilli(r.CreatedAt),
		Photo:            r.Photo,
		DoneDate:         fromUnixMilli(r.DoneDate),
		PickupDeadline:   fromUnixMilli(r.PickupDeadline),
		ConfiscationDate: fromUnixMilli(r.ConfiscationDate),
		PickupDate:       fromUnixMilli(r.PickupDate),
		IsConfiscated:    r.IsConfiscated,
		Accessories:      []string{},
		StatusHistory:    []StatusChange{},
	}
	job.NotificationsSent = NotificationsSent{Initial: r.NotifiedInitial, Final: r.NotifiedFinal}

	status, err := enums.ParseJobStatus(r.Status)
	if err != nil {
		log.Printf("[WARN] invalid status %q for job %s, keep as is: %v", r.Status, r.ID, err)
		status = enums.JobStatus(r.Status)
	}
	job.Status = status

	if err := json.Unmarshal([]byte(r.Accessories), &job.Accessories); err != nil {
		log.Printf("[WARN] malformed accessories for job %s: %v", r.ID, err)
	}
	if job.Accessories == nil {
		job.Accessories = []string{}
	}
	if err := json.Unmarshal([]byte(r.StatusHistory), &job.StatusHistory); err != nil {
		log.Printf("[WARN] malformed status history for job %s: %v", r.ID, err)
	}
	if job.StatusHistory == nil {
		job.StatusHistory = []StatusChange{}
	}
	return job
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		// only plain strings and times are marshaled here
		panic(fmt.Sprintf("can't marshal %T: %v", v, err))
	}
	return string(data)
}
