package task

import "time"

// ApprovalState is the closed set of Approval states (spec: "one-to-one
// with a destructive Task, states Pending -> {Approved | Rejected |
// Expired}").
type ApprovalState string

const (
	ApprovalPending  ApprovalState = "pending"
	ApprovalApproved ApprovalState = "approved"
	ApprovalRejected ApprovalState = "rejected"
	ApprovalExpired  ApprovalState = "expired"
)

// ApprovalTTL is how long an Approval may sit Pending before it expires
// (spec: "TTL 300 s").
const ApprovalTTL = 300 * time.Second

// Approval gates a destructive Task on explicit user confirmation.
type Approval struct {
	TaskID      string
	State       ApprovalState
	RequestedAt time.Time
	ResolvedAt  time.Time
	ResolvedBy  string
}

// NewApproval creates a Pending Approval for taskID.
func NewApproval(taskID string, now time.Time) *Approval {
	return &Approval{TaskID: taskID, State: ApprovalPending, RequestedAt: now}
}

// Deadline returns the instant after which a Pending Approval is expired.
func (a *Approval) Deadline() time.Time {
	return a.RequestedAt.Add(ApprovalTTL)
}

// IsExpired reports whether a Pending Approval's TTL has elapsed as of
// now. A non-Pending Approval is never considered expired by this check;
// once resolved, its state is final.
func (a *Approval) IsExpired(now time.Time) bool {
	return a.State == ApprovalPending && !now.Before(a.Deadline())
}

// Resolve moves a Pending Approval to Approved or Rejected. It returns
// false without mutating state if the Approval is no longer Pending (e.g.
// already resolved or expired). A still-Pending Approval whose TTL has
// elapsed is moved to Expired, and Resolve returns false.
func (a *Approval) Resolve(approved bool, by string, now time.Time) bool {
	if a.State != ApprovalPending {
		return false
	}
	if a.IsExpired(now) {
		a.State = ApprovalExpired
		a.ResolvedAt = now
		return false
	}
	if approved {
		a.State = ApprovalApproved
	} else {
		a.State = ApprovalRejected
	}
	a.ResolvedBy = by
	a.ResolvedAt = now
	return true
}

// Expire marks a still-Pending Approval as Expired. It is idempotent: a
// call against an already-resolved Approval is a no-op.
func (a *Approval) Expire(now time.Time) {
	if a.State != ApprovalPending {
		return
	}
	a.State = ApprovalExpired
	a.ResolvedAt = now
}
