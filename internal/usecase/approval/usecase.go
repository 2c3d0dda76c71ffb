package approval

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
	"time"

	domain "approveit-backend/internal/domain/approval"
	"approveit-backend/internal/domain/identity"
	"approveit-backend/internal/domain/uow"
	"approveit-backend/internal/infrastructure/email"
	"approveit-backend/internal/infrastructure/meeting"
	"approveit-backend/pkg/async"
	"approveit-backend/pkg/id"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Collaborator ports. Every implementation is optional: a nil/unconfigured
// collaborator degrades the related feature instead of blocking the write.

type ObjectStore interface {
	DeleteObjects(ctx context.Context, keys []string)
}

type Inviter interface {
	IsConfigured() bool
	SendApproverInvite(to string, data email.InviteData) error
}

type Embedder interface {
	IsConfigured() bool
	Embed(ctx context.Context, text string) ([]float32, error)
}

type MeetingScheduler interface {
	IsConfigured() bool
	Create(ctx context.Context, req meeting.Request) (*meeting.ScheduledMeeting, error)
	Update(ctx context.Context, providerID string, req meeting.Request) (*meeting.ScheduledMeeting, error)
	Delete(ctx context.Context, providerID string) error
}

type Collaborators struct {
	Store    ObjectStore
	Inviter  Inviter
	Embedder Embedder
	Meetings MeetingScheduler

	// Public base URL of the web app; invite emails link back into it.
	AppBaseURL string
}

type Usecase struct {
	repo domain.Repository
	uow  uow.UnitOfWork
	co   Collaborators
}

func NewUsecase(repo domain.Repository, tx uow.UnitOfWork, co Collaborators) *Usecase {
	return &Usecase{repo: repo, uow: tx, co: co}
}

// Create persists a new approval for the acting requester: status forced
// to pending, every decision slot empty. Approver invites go out
// fire-and-forget after the write commits.
func (u *Usecase) Create(ctx context.Context, actor identity.Identity, in CreateInput) (*ApprovalDTO, error) {
	if !actor.Valid() {
		return nil, identity.ErrNotAuthenticated
	}

	approvers := mapApprovers(in.Approvers)
	if err := domain.ValidateApproverSet(actor.Email, approvers); err != nil {
		return nil, err
	}
	atts, err := mapNewAttachments(in.Attachments)
	if err != nil {
		return nil, err
	}

	a := &domain.Approval{
		ApprovalID:     id.NewID32(),
		Name:           in.Name,
		Description:    in.Description,
		Priority:       in.Priority,
		Status:         domain.StatusPending,
		DueAt:          in.DueAt.UTC(),
		RequesterEmail: actor.Email,
		RequesterName:  actor.DisplayName,
		Approvers:      approvers,
		Attachments:    atts,
		Embedding:      u.embed(ctx, in.Name+"\n"+in.Description),
	}

	if in.Meeting != nil {
		m, err := u.scheduleMeeting(ctx, *in.Meeting)
		if err != nil {
			return nil, err
		}
		a.Meeting = m
	}

	if err := u.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	u.inviteAsync(a, a.Approvers)
	return toDTO(a), nil
}

// Get loads one approval for its requester or one of its approvers. The
// expired flag is derived from the due date on read and persisted lazily.
func (u *Usecase) Get(ctx context.Context, actor identity.Identity, approvalID string) (*ApprovalDTO, error) {
	if !actor.Valid() {
		return nil, identity.ErrNotAuthenticated
	}
	a, err := u.load(ctx, approvalID)
	if err != nil {
		return nil, err
	}
	if !a.IsRequester(actor.Email) && !a.IsApprover(actor.Email) {
		return nil, domain.ErrNotAuthorized
	}
	if !a.Expired && time.Now().UTC().After(a.DueAt) {
		a.Expired = true
		if err := u.repo.Save(ctx, a); err != nil {
			log.Printf("approval %s: persist expired flag: %v", a.ApprovalID, err)
		}
	}
	return toDTO(a), nil
}

// RecordView appends one "viewed" audit event. The caller de-duplicates
// per viewing session; this recorder appends whatever it is handed.
func (u *Usecase) RecordView(ctx context.Context, actor identity.Identity, approvalID string) error {
	if !actor.Valid() {
		return identity.ErrNotAuthenticated
	}
	a, err := u.load(ctx, approvalID)
	if err != nil {
		return err
	}
	if !a.IsApprover(actor.Email) {
		return domain.ErrNotAnApprover
	}
	return u.repo.AppendEvent(ctx, &domain.Event{
		ApprovalRef: a.ID,
		Type:        domain.EventViewed,
		ActorName:   actor.DisplayName,
		Date:        time.Now().UTC(),
	})
}

// ListOutgoing returns the approvals the actor requested.
func (u *Usecase) ListOutgoing(ctx context.Context, actor identity.Identity) ([]ApprovalDTO, error) {
	if !actor.Valid() {
		return nil, identity.ErrNotAuthenticated
	}
	list, err := u.repo.ListByRequester(ctx, actor.Email)
	if err != nil {
		return nil, err
	}
	return toDTOs(list), nil
}

// ListIncoming returns the approvals where the actor holds a decision slot.
func (u *Usecase) ListIncoming(ctx context.Context, actor identity.Identity) ([]ApprovalDTO, error) {
	if !actor.Valid() {
		return nil, identity.ErrNotAuthenticated
	}
	list, err := u.repo.ListByApprover(ctx, actor.Email)
	if err != nil {
		return nil, err
	}
	return toDTOs(list), nil
}

// Update edits an approval's core fields; requester only. The field
// update commits first, then attachment reconciliation and approver
// replacement; a dependent step failing after the commit surfaces as a
// partial failure without rolling anything back.
func (u *Usecase) Update(ctx context.Context, actor identity.Identity, in UpdateInput) (*ApprovalDTO, error) {
	if !actor.Valid() {
		return nil, identity.ErrNotAuthenticated
	}

	prev, err := u.load(ctx, in.ApprovalID)
	if err != nil {
		return nil, err
	}
	if !prev.IsRequester(actor.Email) {
		return nil, domain.ErrNotAuthorized
	}

	nextApprovers := carryDecisions(prev.Approvers, mapApprovers(in.Approvers))
	if err := domain.ValidateApproverSet(actor.Email, nextApprovers); err != nil {
		return nil, err
	}

	submitted := mapSubmittedAttachments(in.Attachments, prev.Attachments)
	if err := domain.ValidateAttachments(submitted); err != nil {
		return nil, err
	}
	change := domain.ReconcileAttachments(prev.Attachments, submitted)

	// Meeting sync is part of the primary write: its result lands in the
	// approval's own meeting fields, so a provider failure fails the edit.
	newMeeting, err := u.syncMeeting(ctx, prev, in.Meeting)
	if err != nil {
		return nil, err
	}

	embedding := u.embed(ctx, in.Name+"\n"+in.Description)

	err = u.uow.WithinApprovalTx(ctx, in.ApprovalID, func(r uow.Repos, a *domain.Approval) error {
		a.Name = in.Name
		a.Description = in.Description
		a.Priority = in.Priority
		a.DueAt = in.DueAt.UTC()
		if embedding != nil {
			a.Embedding = embedding
		}
		if err := r.Approvals.Save(ctx, a); err != nil {
			return err
		}
		if err := r.Approvals.ReplaceApprovers(ctx, a.ID, nextApprovers); err != nil {
			return err
		}
		a.Approvers = nextApprovers
		a.Status = domain.DeriveStatus(nextApprovers)
		if err := r.Approvals.Save(ctx, a); err != nil {
			return err
		}
		if newMeeting != nil {
			newMeeting.ApprovalRef = a.ID
			return r.Approvals.UpsertMeeting(ctx, newMeeting)
		}
		if prev.Meeting != nil {
			return r.Approvals.DeleteMeeting(ctx, a.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Attachment reconciliation after the committed field update.
	// Storage deletes are best-effort; metadata failures are partial.
	if u.co.Store != nil {
		u.co.Store.DeleteObjects(ctx, change.StorageKeysToDelete())
	}
	if err := u.applyAttachmentChange(ctx, prev.ID, change); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPartialFailure, err)
	}

	u.inviteAsync(prev, domain.NewApprovers(prev.Approvers, nextApprovers))

	a, err := u.load(ctx, in.ApprovalID)
	if err != nil {
		return nil, err
	}
	return toDTO(a), nil
}

// Delete removes an approval and everything under it; requester only.
// Object-storage cleanup runs after the metadata delete and is
// best-effort so a storage outage cannot wedge the delete.
func (u *Usecase) Delete(ctx context.Context, actor identity.Identity, approvalID string) error {
	if !actor.Valid() {
		return identity.ErrNotAuthenticated
	}
	a, err := u.load(ctx, approvalID)
	if err != nil {
		return err
	}
	if !a.IsRequester(actor.Email) {
		return domain.ErrNotAuthorized
	}

	keys := make([]string, 0, len(a.Attachments))
	for _, at := range a.Attachments {
		keys = append(keys, at.StorageKey)
	}
	if a.Meeting != nil && u.co.Meetings != nil && u.co.Meetings.IsConfigured() {
		providerID := a.Meeting.ProviderID
		async.Run("meeting-delete", func(ctx context.Context) error {
			return u.co.Meetings.Delete(ctx, providerID)
		})
	}

	if err := u.repo.Delete(ctx, a); err != nil {
		return err
	}
	if u.co.Store != nil {
		u.co.Store.DeleteObjects(ctx, keys)
	}
	return nil
}

// Approve records the acting approver's positive decision. Status is
// recomputed from the full approver set inside a row-locked transaction,
// so concurrent decisions commute.
func (u *Usecase) Approve(ctx context.Context, actor identity.Identity, approvalID string) (*ApprovalDTO, error) {
	return u.decide(ctx, actor, approvalID, true)
}

// Deny records the acting approver's denial. A single denial is final.
func (u *Usecase) Deny(ctx context.Context, actor identity.Identity, approvalID string) (*ApprovalDTO, error) {
	return u.decide(ctx, actor, approvalID, false)
}

func (u *Usecase) decide(ctx context.Context, actor identity.Identity, approvalID string, approve bool) (*ApprovalDTO, error) {
	if !actor.Valid() {
		return nil, identity.ErrNotAuthenticated
	}
	var dto *ApprovalDTO
	err := u.uow.WithinApprovalTx(ctx, approvalID, func(r uow.Repos, a *domain.Approval) error {
		now := time.Now().UTC()
		var err error
		if approve {
			err = a.RecordApproval(actor.Email, now)
		} else {
			err = a.RecordDenial(actor.Email, now)
		}
		if err != nil {
			return err
		}

		slot := a.ApproverSlot(actor.Email)
		if err := r.Approvals.SaveApprover(ctx, slot); err != nil {
			return err
		}
		if err := r.Approvals.Save(ctx, a); err != nil {
			return err
		}

		evType := domain.EventApproved
		if !approve {
			evType = domain.EventRejected
		}
		if err := r.Approvals.AppendEvent(ctx, &domain.Event{
			ApprovalRef: a.ID,
			Type:        evType,
			ActorName:   actor.DisplayName,
			Date:        now,
		}); err != nil {
			return err
		}
		dto = toDTO(a)
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return dto, nil
}

// Search ranks the actor's approvals by semantic similarity to a
// free-text query. Approvals without a stored embedding are skipped.
func (u *Usecase) Search(ctx context.Context, actor identity.Identity, query string, incoming bool, limit int) ([]ApprovalDTO, error) {
	if !actor.Valid() {
		return nil, identity.ErrNotAuthenticated
	}
	if u.co.Embedder == nil || !u.co.Embedder.IsConfigured() {
		return nil, fmt.Errorf("%w: embedding service unavailable", domain.ErrUpstream)
	}
	qv, err := u.co.Embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %v", domain.ErrUpstream, err)
	}

	var list []domain.Approval
	if incoming {
		list, err = u.repo.ListByApprover(ctx, actor.Email)
	} else {
		list, err = u.repo.ListByRequester(ctx, actor.Email)
	}
	if err != nil {
		return nil, err
	}

	type scored struct {
		a     *domain.Approval
		score float64
	}
	ranked := make([]scored, 0, len(list))
	for i := range list {
		var v []float32
		if len(list[i].Embedding) == 0 {
			continue
		}
		if err := json.Unmarshal(list[i].Embedding, &v); err != nil {
			continue
		}
		ranked = append(ranked, scored{a: &list[i], score: cosine(qv, v)})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if limit <= 0 {
		limit = 10
	}
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]ApprovalDTO, 0, len(ranked))
	for _, s := range ranked {
		out = append(out, *toDTO(s.a))
	}
	return out, nil
}

// ---- helpers ----

func (u *Usecase) load(ctx context.Context, approvalID string) (*domain.Approval, error) {
	a, err := u.repo.GetByApprovalID(ctx, approvalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

// embed is best-effort: a failed or unconfigured embedding call leaves
// the fingerprint absent rather than blocking the write.
func (u *Usecase) embed(ctx context.Context, text string) datatypes.JSON {
	if u.co.Embedder == nil || !u.co.Embedder.IsConfigured() {
		return nil
	}
	v, err := u.co.Embedder.Embed(ctx, text)
	if err != nil {
		log.Printf("embedding skipped: %v", err)
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}

func (u *Usecase) scheduleMeeting(ctx context.Context, in MeetingInput) (*domain.Meeting, error) {
	if u.co.Meetings == nil || !u.co.Meetings.IsConfigured() {
		return nil, fmt.Errorf("%w: meeting service unavailable", domain.ErrUpstream)
	}
	m, err := u.co.Meetings.Create(ctx, meeting.Request{
		Topic:    in.Topic,
		StartAt:  in.StartAt,
		Duration: in.DurationMinutes,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: schedule meeting: %v", domain.ErrUpstream, err)
	}
	return &domain.Meeting{
		Topic:           m.Topic,
		StartAt:         m.StartAt,
		DurationMinutes: m.Duration,
		ProviderID:      m.ProviderID,
		JoinURL:         m.JoinURL,
	}, nil
}

// syncMeeting reconciles the submitted meeting block against the
// provider: nil input cancels, a new block schedules, an existing one
// reschedules in place.
func (u *Usecase) syncMeeting(ctx context.Context, prev *domain.Approval, in *MeetingInput) (*domain.Meeting, error) {
	switch {
	case in == nil && prev.Meeting == nil:
		return nil, nil
	case in == nil:
		if u.co.Meetings != nil && u.co.Meetings.IsConfigured() {
			providerID := prev.Meeting.ProviderID
			async.Run("meeting-delete", func(ctx context.Context) error {
				return u.co.Meetings.Delete(ctx, providerID)
			})
		}
		return nil, nil
	case prev.Meeting == nil:
		return u.scheduleMeeting(ctx, *in)
	default:
		if u.co.Meetings == nil || !u.co.Meetings.IsConfigured() {
			return nil, fmt.Errorf("%w: meeting service unavailable", domain.ErrUpstream)
		}
		m, err := u.co.Meetings.Update(ctx, prev.Meeting.ProviderID, meeting.Request{
			Topic:    in.Topic,
			StartAt:  in.StartAt,
			Duration: in.DurationMinutes,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: reschedule meeting: %v", domain.ErrUpstream, err)
		}
		updated := *prev.Meeting
		updated.Topic = m.Topic
		updated.StartAt = m.StartAt
		updated.DurationMinutes = m.Duration
		updated.JoinURL = m.JoinURL
		return &updated, nil
	}
}

func (u *Usecase) applyAttachmentChange(ctx context.Context, approvalRef uint64, change domain.AttachmentChange) error {
	ids := make([]uint64, 0, len(change.ToDelete))
	for _, at := range change.ToDelete {
		ids = append(ids, at.ID)
	}
	if err := u.repo.DeleteAttachments(ctx, ids); err != nil {
		return err
	}
	inserts := make([]domain.Attachment, 0, len(change.ToInsert))
	for _, at := range change.ToInsert {
		at.ID = 0
		at.ApprovalRef = approvalRef
		if at.AttachmentID == "" {
			at.AttachmentID = id.NewID32()
		}
		inserts = append(inserts, at)
	}
	return u.repo.CreateAttachments(ctx, inserts)
}

// inviteAsync fans out invite emails fire-and-forget; a failed invite is
// logged inside the task and never surfaced to the editing user.
func (u *Usecase) inviteAsync(a *domain.Approval, approvers []domain.Approver) {
	if u.co.Inviter == nil || !u.co.Inviter.IsConfigured() || len(approvers) == 0 {
		return
	}
	requester := a.RequesterName
	name := a.Name
	reviewURL := approvalURL(u.co.AppBaseURL, a.ApprovalID)
	for _, ap := range approvers {
		ap := ap
		async.Run("approver-invite", func(ctx context.Context) error {
			return u.co.Inviter.SendApproverInvite(ap.Email, email.InviteData{
				ApproverName:  ap.Name,
				RequesterName: requester,
				ApprovalName:  name,
				SignupURL:     reviewURL,
			})
		})
	}
}

// approvalURL is the deep link into the web app for one approval.
func approvalURL(base, approvalID string) string {
	return strings.TrimRight(base, "/") + "/approvals/" + approvalID
}

func mapApprovers(in []ApproverInput) []domain.Approver {
	out := make([]domain.Approver, 0, len(in))
	for _, ap := range in {
		out = append(out, domain.Approver{Email: ap.Email, Name: ap.Name})
	}
	return out
}

// carryDecisions preserves recorded decisions for approvers retained
// across an edit. Matching uses the same normalized email as the rest of
// the identity checks, so a case-variant resubmission of an existing
// approver keeps its decision.
func carryDecisions(prev, next []domain.Approver) []domain.Approver {
	byEmail := make(map[string]domain.Approver, len(prev))
	for _, ap := range prev {
		byEmail[domain.NormalizeEmail(ap.Email)] = ap
	}
	for i := range next {
		if old, ok := byEmail[domain.NormalizeEmail(next[i].Email)]; ok {
			next[i].Decision = old.Decision
			next[i].DecidedAt = old.DecidedAt
		}
	}
	return next
}

func mapNewAttachments(in []AttachmentInput) ([]domain.Attachment, error) {
	out := make([]domain.Attachment, 0, len(in))
	for _, at := range in {
		out = append(out, domain.Attachment{
			AttachmentID: id.NewID32(),
			Name:         at.Name,
			Size:         at.Size,
			URL:          at.URL,
			StorageKey:   at.StorageKey,
		})
	}
	if err := domain.ValidateAttachments(out); err != nil {
		return nil, err
	}
	return out, nil
}

// mapSubmittedAttachments resolves retained entries back to their
// persisted rows (so numeric ids survive) and passes new uploads through.
func mapSubmittedAttachments(in []AttachmentInput, current []domain.Attachment) []domain.Attachment {
	byID := make(map[string]domain.Attachment, len(current))
	for _, at := range current {
		byID[at.AttachmentID] = at
	}
	out := make([]domain.Attachment, 0, len(in))
	for _, at := range in {
		if at.AttachmentID != "" {
			if existing, ok := byID[at.AttachmentID]; ok {
				out = append(out, existing)
			}
			// a submitted id unknown to the persisted set is dropped
			continue
		}
		out = append(out, domain.Attachment{
			Name:       at.Name,
			Size:       at.Size,
			URL:        at.URL,
			StorageKey: at.StorageKey,
		})
	}
	return out
}

func toDTOs(list []domain.Approval) []ApprovalDTO {
	out := make([]ApprovalDTO, 0, len(list))
	for i := range list {
		out = append(out, *toDTO(&list[i]))
	}
	return out
}

func cosine(a []float32, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
