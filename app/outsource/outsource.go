// Package outsource keeps the ledger of jobs handed to third-party repair shops. Records are keyed
// by their own ledger id and point to jobs by a soft reference, a record survives deletion of its
// job and a job may have several records.
package outsource

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/repairdesk/repairdesk/app/enums"
	"github.com/repairdesk/repairdesk/app/store"
	"github.com/repairdesk/repairdesk/app/validate"
)

//go:generate moq -out mocks/store.go -pkg mocks -skip-ensure -fmt goimports . Store

// photo proof formats accepted by the ledger
var proofTypes = []string{"image/jpeg", "image/png", "image/gif"}

// Store is the outsource record storage
type Store interface {
	ListOutsource(ctx context.Context) ([]store.OutsourceRecord, error)
	OutsourceByJob(ctx context.Context, jobID string) ([]store.OutsourceRecord, error)
	GetOutsource(ctx context.Context, id string) (store.OutsourceRecord, error)
	SaveOutsource(ctx context.Context, rec store.OutsourceRecord) error
}

// Jobs gives read access to the job store for job context and existence checks
type Jobs interface {
	ListJobs(ctx context.Context) ([]store.Job, error)
	GetJob(ctx context.Context, id string) (store.Job, error)
}

// ActivityLogger records user actions
type ActivityLogger interface {
	LogActivity(ctx context.Context, action, user string) error
}

// Ledger manages outsource records
type Ledger struct {
	Store    Store
	Jobs     Jobs
	Activity ActivityLogger
	Location *time.Location // day-only dates are taken in this zone, UTC if nil
	NewID    func() string  // ledger id generator, random uuid if nil

	mu        sync.Mutex
	observers []func(store.OutsourceRecord)
}

// Input is the editable part of an outsource record. Dates are YYYY-MM-DD or RFC3339,
// cost is a decimal string.
type Input struct {
	JobID         string `json:"job_id"`
	Customer      string `json:"customer"`
	Device        string `json:"device"`
	Problem       string `json:"problem"`
	Accessories   string `json:"accessories"`
	ShopName      string `json:"shop_name"`
	Technician    string `json:"technician"`
	DeliveryDate  string `json:"delivery_date"`
	ReceivedDate  string `json:"received_date"`
	ReturnStatus  string `json:"return_status"`
	Cost          string `json:"cost"`
	PaymentStatus string `json:"payment_status"`
	InternalNotes string `json:"internal_notes"`
	PhotoProof    string `json:"photo_proof"`
}

// Entry is a record as seen by readers, JobMissing set if the referenced job no longer exists
type Entry struct {
	store.OutsourceRecord
	JobMissing bool `json:"job_missing"`
}

// Stats for the dashboard outsource panel
type Stats struct {
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Unpaid     int `json:"unpaid"` // anything not fully paid
}

// Subscribe registers fn to be called after every successful save
func (l *Ledger) Subscribe(fn func(store.OutsourceRecord)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observers = append(l.observers, fn)
}

// Save creates a record if id is empty, otherwise updates the existing record with this id.
// Empty job context fields are kept from the stored record, then filled from the referenced job when it exists.
func (l *Ledger) Save(ctx context.Context, id string, in Input, actor string) (store.OutsourceRecord, error) {
	rec, err := l.validate(in)
	if err != nil {
		return store.OutsourceRecord{}, err
	}

	l.mu.Lock()
	created := id == ""
	if created {
		rec.ID = l.newID()
	} else {
		prev, err := l.Store.GetOutsource(ctx, id)
		if err != nil {
			l.mu.Unlock()
			return store.OutsourceRecord{}, fmt.Errorf("can't load outsource record: %w", err)
		}
		rec.ID = id
		keepContext(&rec, prev)
	}
	l.fillFromJob(ctx, &rec)
	err = l.Store.SaveOutsource(ctx, rec)
	observers := append([]func(store.OutsourceRecord){}, l.observers...)
	l.mu.Unlock()
	if err != nil {
		return store.OutsourceRecord{}, fmt.Errorf("can't save outsource record: %w", err)
	}

	action := "Updated"
	if created {
		action = "Added"
	}
	l.logActivity(ctx, fmt.Sprintf("%s outsource record for job #%s at %s", action, rec.JobID, rec.ShopName), actor)
	for _, fn := range observers {
		fn(rec)
	}
	return rec, nil
}

// List returns all records in insertion order
func (l *Ledger) List(ctx context.Context) ([]Entry, error) {
	recs, err := l.Store.ListOutsource(ctx)
	if err != nil {
		return nil, fmt.Errorf("can't list outsource records: %w", err)
	}
	return l.entries(ctx, recs)
}

// ForJob returns the first record for the job or store.ErrNotFound
func (l *Ledger) ForJob(ctx context.Context, jobID string) (Entry, error) {
	all, err := l.AllForJob(ctx, jobID)
	if err != nil {
		return Entry{}, err
	}
	if len(all) == 0 {
		return Entry{}, fmt.Errorf("outsource record for job %s: %w", jobID, store.ErrNotFound)
	}
	return all[0], nil
}

// AllForJob returns every record pointing to the job, oldest first
func (l *Ledger) AllForJob(ctx context.Context, jobID string) ([]Entry, error) {
	recs, err := l.Store.OutsourceByJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("can't list outsource records for job %s: %w", jobID, err)
	}
	return l.entries(ctx, recs)
}

// Stats counts pending, in progress and not fully paid records
func (l *Ledger) Stats(ctx context.Context) (Stats, error) {
	recs, err := l.Store.ListOutsource(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("can't list outsource records: %w", err)
	}
	res := Stats{}
	for _, r := range recs {
		switch r.ReturnStatus {
		case enums.ReturnStatusPending:
			res.Pending++
		case enums.ReturnStatusInProgress:
			res.InProgress++
		}
		if r.PaymentStatus != enums.PaymentStatusPaid {
			res.Unpaid++
		}
	}
	return res, nil
}

func (l *Ledger) entries(ctx context.Context, recs []store.OutsourceRecord) ([]Entry, error) {
	res := make([]Entry, 0, len(recs))
	if len(recs) == 0 {
		return res, nil
	}
	jobs, err := l.Jobs.ListJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("can't list jobs: %w", err)
	}
	known := make(map[string]bool, len(jobs))
	for _, j := range jobs {
		known[j.ID] = true
	}
	for _, r := range recs {
		res = append(res, Entry{OutsourceRecord: r, JobMissing: r.JobID != "" && !known[r.JobID]})
	}
	return res, nil
}

func (l *Ledger) validate(in Input) (store.OutsourceRecord, error) {
	errs := validate.Errors{}
	rec := store.OutsourceRecord{
		JobID:         strings.TrimSpace(in.JobID),
		Customer:      strings.TrimSpace(in.Customer),
		Device:        strings.TrimSpace(in.Device),
		Problem:       strings.TrimSpace(in.Problem),
		Accessories:   strings.TrimSpace(in.Accessories),
		ShopName:      strings.TrimSpace(in.ShopName),
		Technician:    strings.TrimSpace(in.Technician),
		ReturnStatus:  enums.ReturnStatusPending,
		PaymentStatus: enums.PaymentStatusUnpaid,
		InternalNotes: in.InternalNotes,
		PhotoProof:    in.PhotoProof,
	}

	if rec.ShopName == "" {
		errs.Add("shop_name", "Shop name is required")
	}

	var err error
	if strings.TrimSpace(in.DeliveryDate) == "" {
		errs.Add("delivery_date", "Delivery date is required")
	} else if rec.DeliveryDate, err = l.parseDate(in.DeliveryDate); err != nil {
		errs.Add("delivery_date", "Invalid delivery date")
	}
	if strings.TrimSpace(in.ReceivedDate) != "" {
		if rec.ReceivedDate, err = l.parseDate(in.ReceivedDate); err != nil {
			errs.Add("received_date", "Invalid received date")
		}
	}

	if strings.TrimSpace(in.Cost) == "" {
		errs.Add("cost", "Cost is required")
	} else {
		cost, err := decimal.NewFromString(strings.TrimSpace(in.Cost))
		if err != nil || cost.IsNegative() {
			errs.Add("cost", "Invalid cost amount")
		}
		rec.Cost = cost
	}

	if in.ReturnStatus != "" {
		if rec.ReturnStatus, err = enums.ParseReturnStatus(in.ReturnStatus); err != nil {
			errs.Add("return_status", err.Error())
		}
	}
	if in.PaymentStatus != "" {
		if rec.PaymentStatus, err = enums.ParsePaymentStatus(in.PaymentStatus); err != nil {
			errs.Add("payment_status", err.Error())
		}
	}
	if err := validate.Photo(in.PhotoProof, proofTypes...); err != nil {
		errs.Add("photo_proof", err.Error())
	}
	return rec, errs.Err()
}

// keepContext carries job context of the stored record into an update for the same job
func keepContext(rec *store.OutsourceRecord, prev store.OutsourceRecord) {
	if rec.JobID != prev.JobID {
		return
	}
	keep := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	keep(&rec.Customer, prev.Customer)
	keep(&rec.Device, prev.Device)
	keep(&rec.Problem, prev.Problem)
	keep(&rec.Accessories, prev.Accessories)
	keep(&rec.Technician, prev.Technician)
	rec.JobDate = prev.JobDate
}

// fillFromJob copies job context into empty record fields
func (l *Ledger) fillFromJob(ctx context.Context, rec *store.OutsourceRecord) {
	if rec.JobID == "" || l.Jobs == nil {
		return
	}
	job, err := l.Jobs.GetJob(ctx, rec.JobID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("[WARN] can't load job %s for outsource record %s: %v", rec.JobID, rec.ID, err)
			return
		}
		log.Printf("[DEBUG] outsource record %s refers to missing job %s", rec.ID, rec.JobID)
		return
	}
	fill := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	fill(&rec.Customer, job.Name)
	fill(&rec.Device, job.Device)
	fill(&rec.Problem, job.Problem)
	fill(&rec.Technician, job.Assigned)
	accessories := "-"
	if len(job.Accessories) > 0 {
		accessories = strings.Join(job.Accessories, ", ")
	}
	fill(&rec.Accessories, accessories)
	if rec.JobDate.IsZero() {
		rec.JobDate = job.Date
	}
}

func (l *Ledger) parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	loc := l.Location
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func (l *Ledger) newID() string {
	if l.NewID != nil {
		return l.NewID()
	}
	return uuid.NewString()
}

func (l *Ledger) logActivity(ctx context.Context, action, actor string) {
	if l.Activity == nil {
		return
	}
	if err := l.Activity.LogActivity(ctx, action, actor); err != nil {
		log.Printf("[WARN] failed to log activity %q: %v", action, err)
	}
}
