// Package enums provides type-safe enumeration types shared by the store, the lifecycle engine
// and the web API.
//
// Every enum is a string type holding the exact value persisted in the database and sent over
// the wire. Parse functions accept any letter case and surrounding spaces and return the
// canonical value, or an error for unknown input.
//
// Usage:
//
//	status, err := enums.ParseJobStatus("Done")
//	if err != nil {
//	    // handle invalid input
//	}
//	fmt.Println(status) // "done"
package enums

import (
	"fmt"
	"strings"
)

// JobStatus is the repair status of a job
type JobStatus string

// job statuses in workflow order
const (
	JobStatusChecking            JobStatus = "checking"
	JobStatusWaitingParts        JobStatus = "waiting parts"
	JobStatusWaitingConfirmation JobStatus = "waiting customer confirmation"
	JobStatusItemFixed           JobStatus = "item fixed"
	JobStatusPendingPickup       JobStatus = "pending pick-up"
	JobStatusDone                JobStatus = "done"
	JobStatusCollected           JobStatus = "collected"
	JobStatusConfiscated         JobStatus = "confiscated"
)

var jobStatusValues = []JobStatus{
	JobStatusChecking, JobStatusWaitingParts, JobStatusWaitingConfirmation, JobStatusItemFixed,
	JobStatusPendingPickup, JobStatusDone, JobStatusCollected, JobStatusConfiscated,
}

// JobStatusValues returns all job statuses in workflow order
func JobStatusValues() []JobStatus {
	res := make([]JobStatus, len(jobStatusValues))
	copy(res, jobStatusValues)
	return res
}

// ParseJobStatus converts a string to JobStatus
func ParseJobStatus(s string) (JobStatus, error) {
	return parse(s, jobStatusValues, "job status")
}

func (s JobStatus) String() string { return string(s) }

// IsTerminal reports whether no automatic transition applies to the status anymore
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCollected || s == JobStatusConfiscated
}

// ReturnStatus is the state of a job handed to a third-party shop
type ReturnStatus string

// outsource return statuses
const (
	ReturnStatusPending    ReturnStatus = "Pending"
	ReturnStatusInProgress ReturnStatus = "In Progress"
	ReturnStatusRepaired   ReturnStatus = "Repaired"
	ReturnStatusReturned   ReturnStatus = "Returned"
	ReturnStatusFailed     ReturnStatus = "Failed"
)

var returnStatusValues = []ReturnStatus{
	ReturnStatusPending, ReturnStatusInProgress, ReturnStatusRepaired, ReturnStatusReturned, ReturnStatusFailed,
}

// ParseReturnStatus converts a string to ReturnStatus
func ParseReturnStatus(s string) (ReturnStatus, error) {
	return parse(s, returnStatusValues, "return status")
}

func (s ReturnStatus) String() string { return string(s) }

// PaymentStatus tracks what the shop paid to the third party
type PaymentStatus string

// outsource payment statuses
const (
	PaymentStatusUnpaid  PaymentStatus = "Unpaid"
	PaymentStatusPaid    PaymentStatus = "Paid"
	PaymentStatusPartial PaymentStatus = "Partial"
)

var paymentStatusValues = []PaymentStatus{PaymentStatusUnpaid, PaymentStatusPaid, PaymentStatusPartial}

// ParsePaymentStatus converts a string to PaymentStatus
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	return parse(s, paymentStatusValues, "payment status")
}

func (s PaymentStatus) String() string { return string(s) }

// Role of a user account
type Role string

// account roles
const (
	RoleOwner      Role = "owner"
	RoleTechnician Role = "technician"
	RoleIntern     Role = "intern"
)

var roleValues = []Role{RoleOwner, RoleTechnician, RoleIntern}

// ParseRole converts a string to Role
func ParseRole(s string) (Role, error) {
	return parse(s, roleValues, "role")
}

func (r Role) String() string { return string(r) }

// NoticeKind is the kind of customer notification
type NoticeKind string

// notification kinds
const (
	NoticeInitial NoticeKind = "initial" // item ready for pickup
	NoticeFinal   NoticeKind = "final"   // last warning before confiscation
	NoticeUpdate  NoticeKind = "update"  // manual status update sent by staff
)

func (k NoticeKind) String() string { return string(k) }

// SortMode is the job list ordering by creation date
type SortMode string

// sort modes
const (
	SortModeNone SortMode = "none"
	SortModeAsc  SortMode = "asc"
	SortModeDesc SortMode = "desc"
)

// ParseSortMode converts a string to SortMode, empty string is SortModeNone
func ParseSortMode(s string) (SortMode, error) {
	if strings.TrimSpace(s) == "" {
		return SortModeNone, nil
	}
	return parse(s, []SortMode{SortModeNone, SortModeAsc, SortModeDesc}, "sort mode")
}

func (m SortMode) String() string { return string(m) }

func parse[T ~string](s string, values []T, name string) (T, error) {
	s = strings.TrimSpace(s)
	for _, v := range values {
		if strings.EqualFold(string(v), s) {
			return v, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q", name, s)
}
