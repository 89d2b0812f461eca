package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/shopspring/decimal"

	"github.com/repairdesk/repairdesk/app/enums"
)

// OutsourceRecord tracks a job handed to a third-party repair shop. JobID is a soft reference,
// the job may be missing and several records may point to the same job.
type OutsourceRecord struct {
	ID            string              `json:"id"`
	JobID         string              `json:"job_id"`
	Customer      string              `json:"customer"`
	Device        string              `json:"device"`
	Problem       string              `json:"problem"`
	Accessories   string              `json:"accessories"`
	JobDate       time.Time           `json:"job_date,omitzero"`
	ShopName      string              `json:"shop_name"`
	Technician    string              `json:"technician"`
	DeliveryDate  time.Time           `json:"delivery_date"`
	ReceivedDate  time.Time           `json:"received_date,omitzero"`
	ReturnStatus  enums.ReturnStatus  `json:"return_status"`
	Cost          decimal.Decimal     `json:"cost"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	InternalNotes string              `json:"internal_notes,omitempty"`
	PhotoProof    string              `json:"photo_proof,omitempty"`
}

type outsourceRow struct {
	Seq           int64           `db:"seq"`
	ID            string          `db:"id"`
	JobID         string          `db:"job_id"`
	Customer      string          `db:"customer"`
	Device        string          `db:"device"`
	Problem       string          `db:"problem"`
	Accessories   string          `db:"accessories"`
	JobDate       int64           `db:"job_date"`
	ShopName      string          `db:"shop_name"`
	Technician    string          `db:"technician"`
	DeliveryDate  int64           `db:"delivery_date"`
	ReceivedDate  int64           `db:"received_date"`
	ReturnStatus  string          `db:"return_status"`
	Cost          decimal.Decimal `db:"cost"`
	PaymentStatus string          `db:"payment_status"`
	InternalNotes string          `db:"internal_notes"`
	PhotoProof    string          `db:"photo_proof"`
}

const outsourceColumns = `seq, id, job_id, customer, device, problem, accessories, job_date, shop_name, technician,
	delivery_date, received_date, return_status, cost, payment_status, internal_notes, photo_proof`

// ListOutsource returns all outsource records in insertion order
func (s *SQLiteStore) ListOutsource(ctx context.Context) ([]OutsourceRecord, error) {
	return s.selectOutsource(ctx, `SELECT `+outsourceColumns+` FROM outsource ORDER BY seq`)
}

// OutsourceByJob returns all records referencing the job, oldest first
func (s *SQLiteStore) OutsourceByJob(ctx context.Context, jobID string) ([]OutsourceRecord, error) {
	return s.selectOutsource(ctx, `SELECT `+outsourceColumns+` FROM outsource WHERE job_id = ? ORDER BY seq`, jobID)
}

// GetOutsource returns record by ledger id
func (s *SQLiteStore) GetOutsource(ctx context.Context, id string) (OutsourceRecord, error) {
	var r outsourceRow
	err := s.db.GetContext(ctx, &r, `SELECT `+outsourceColumns+` FROM outsource WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return OutsourceRecord{}, fmt.Errorf("outsource record %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return OutsourceRecord{}, fmt.Errorf("failed to get outsource record %s: %w", id, err)
	}
	return r.toRecord(), nil
}

// SaveOutsource creates or replaces the record with the same ledger id
func (s *SQLiteStore) SaveOutsource(ctx context.Context, rec OutsourceRecord) error {
	if rec.ID == "" {
		return errors.New("can't save outsource record without id")
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO outsource (id, job_id, customer, device, problem, accessories, job_date, shop_name, technician,
			delivery_date, received_date, return_status, cost, payment_status, internal_notes, photo_proof)
		VALUES (:id, :job_id, :customer, :device, :problem, :accessories, :job_date, :shop_name, :technician,
			:delivery_date, :received_date, :return_status, :cost, :payment_status, :internal_notes, :photo_proof)
		ON CONFLICT(id) DO UPDATE SET
			job_id = excluded.job_id, customer = excluded.customer, device = excluded.device,
			problem = excluded.problem, accessories = excluded.accessories, job_date = excluded.job_date,
			shop_name = excluded.shop_name, technician = excluded.technician,
			delivery_date = excluded.delivery_date, received_date = excluded.received_date,
			return_status = excluded.return_status, cost = excluded.cost,
			payment_status = excluded.payment_status, internal_notes = excluded.internal_notes,
			photo_proof = excluded.photo_proof`, newOutsourceRow(rec))
	if err != nil {
		return fmt.Errorf("failed to save outsource record %s: %w", rec.ID, err)
	}
	return nil
}

func (s *SQLiteStore) selectOutsource(ctx context.Context, query string, args ...any) ([]OutsourceRecord, error) {
	rows := []outsourceRow{}
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query outsource records: %w", err)
	}
	res := make([]OutsourceRecord, 0, len(rows))
	for _, r := range rows {
		res = append(res, r.toRecord())
	}
	return res, nil
}

func newOutsourceRow(rec OutsourceRecord) outsourceRow {
	return outsourceRow{
		ID:            rec.ID,
		JobID:         rec.JobID,
		Customer:      rec.Customer,
		Device:        rec.Device,
		Problem:       rec.Problem,
		Accessories:   rec.Accessories,
		JobDate:       unixMilli(rec.JobDate),
		ShopName:      rec.ShopName,
		Technician:    rec.Technician,
		DeliveryDate:  unixMilli(rec.DeliveryDate),
		ReceivedDate:  unixMilli(rec.ReceivedDate),
		ReturnStatus:  rec.ReturnStatus.String(),
		Cost:          rec.Cost,
		PaymentStatus: rec.PaymentStatus.String(),
		InternalNotes: rec.InternalNotes,
		PhotoProof:    rec.PhotoProof,
	}
}

func (r outsourceRow) toRecord() OutsourceRecord {
	rec := OutsourceRecord{
		ID:            r.ID,
		JobID:         r.JobID,
		Customer:      r.Customer,
		Device:        r.Device,
		Problem:       r.Problem,
		Accessories:   r.Accessories,
		JobDate:       fromUnixMilli(r.JobDate),
		ShopName:      r.ShopName,
		Technician:    r.Technician,
		DeliveryDate:  fromUnixMilli(r.DeliveryDate),
		ReceivedDate:  fromUnixMilli(r.ReceivedDate),
		Cost:          r.Cost,
		InternalNotes: r.InternalNotes,
		PhotoProof:    r.PhotoProof,
	}

	var err error
	if rec.ReturnStatus, err = enums.ParseReturnStatus(r.ReturnStatus); err != nil {
		log.Printf("[WARN] outsource record %s: %v, default to %s", r.ID, err, enums.ReturnStatusPending)
		rec.ReturnStatus = enums.ReturnStatusPending
	}
	if rec.PaymentStatus, err = enums.ParsePaymentStatus(r.PaymentStatus); err != nil {
		log.Printf("[WARN] outsource record %s: %v, default to %s", r.ID, err, enums.PaymentStatusUnpaid)
		rec.PaymentStatus = enums.PaymentStatusUnpaid
	}
	return rec
}
