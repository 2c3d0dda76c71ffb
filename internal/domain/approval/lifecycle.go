package approval

import (
	"strings"
	"time"
)

// Attachment limits enforced before any persistence attempt.
const (
	MaxAttachments    = 5
	MaxAttachmentSize = 16 << 20 // 16 MiB
)

// DeriveStatus recomputes the aggregate status from the full approver set.
// Rejected wins over everything: a single recorded denial is final. The
// approval is approved only when every approver has explicitly approved;
// any nil (undecided) decision keeps it pending.
func DeriveStatus(approvers []Approver) Status {
	if len(approvers) == 0 {
		return StatusPending
	}
	all := true
	for _, a := range approvers {
		if a.Decision == nil {
			all = false
			continue
		}
		if !*a.Decision {
			return StatusRejected
		}
	}
	if all {
		return StatusApproved
	}
	return StatusPending
}

// RecordApproval marks actorEmail's decision slot as approved and
// recomputes the aggregate status. A rejected approval is never revived:
// the recompute keeps it rejected because the denying slot still holds a
// false decision.
func (a *Approval) RecordApproval(actorEmail string, now time.Time) error {
	slot := a.findApprover(actorEmail)
	if slot == nil {
		return ErrNotAnApprover
	}
	yes := true
	slot.Decision = &yes
	slot.DecidedAt = &now
	a.Status = DeriveStatus(a.Approvers)
	return nil
}

// RecordDenial marks actorEmail's decision slot as declined. Denial is
// terminal; status goes to rejected unconditionally.
func (a *Approval) RecordDenial(actorEmail string, now time.Time) error {
	slot := a.findApprover(actorEmail)
	if slot == nil {
		return ErrNotAnApprover
	}
	no := false
	slot.Decision = &no
	slot.DecidedAt = &now
	a.Status = StatusRejected
	return nil
}

func (a *Approval) findApprover(email string) *Approver {
	email = NormalizeEmail(email)
	for i := range a.Approvers {
		if NormalizeEmail(a.Approvers[i].Email) == email {
			return &a.Approvers[i]
		}
	}
	return nil
}

// IsApprover reports whether email holds a decision slot on this approval.
func (a *Approval) IsApprover(email string) bool { return a.findApprover(email) != nil }

// ApproverSlot returns the decision slot held by email, or nil.
func (a *Approval) ApproverSlot(email string) *Approver { return a.findApprover(email) }

// IsRequester reports whether email owns this approval's core fields.
func (a *Approval) IsRequester(email string) bool {
	return NormalizeEmail(a.RequesterEmail) == NormalizeEmail(email)
}

// ValidateApproverSet enforces the creation/edit rules on a submitted
// approver list: non-empty, unique by email, and disjoint from the
// requester (no self-approval).
func ValidateApproverSet(requesterEmail string, approvers []Approver) error {
	if len(approvers) == 0 {
		return ErrNoApprovers
	}
	seen := make(map[string]struct{}, len(approvers))
	req := NormalizeEmail(requesterEmail)
	for _, ap := range approvers {
		e := NormalizeEmail(ap.Email)
		if e == req {
			return ErrSelfApproval
		}
		if _, dup := seen[e]; dup {
			return ErrDuplicateApprover
		}
		seen[e] = struct{}{}
	}
	return nil
}

// ValidateAttachments enforces the count and per-file size caps.
func ValidateAttachments(atts []Attachment) error {
	if len(atts) > MaxAttachments {
		return ErrTooManyAttachments
	}
	for _, at := range atts {
		if at.Size > MaxAttachmentSize {
			return ErrAttachmentTooLarge
		}
	}
	return nil
}

// NewApprovers returns the members of next absent from prev, compared by
// email. Used to fan out invite notifications after an edit.
func NewApprovers(prev, next []Approver) []Approver {
	known := make(map[string]struct{}, len(prev))
	for _, ap := range prev {
		known[NormalizeEmail(ap.Email)] = struct{}{}
	}
	var added []Approver
	for _, ap := range next {
		if _, ok := known[NormalizeEmail(ap.Email)]; !ok {
			added = append(added, ap)
		}
	}
	return added
}

// NormalizeEmail canonicalizes an email for identity comparison. Every
// approver and requester match in this package and its callers goes
// through it.
func NormalizeEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }
