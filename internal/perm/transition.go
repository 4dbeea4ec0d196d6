package perm

import (
	"opus/api/internal/status"
)

// validTransitions is the structural status machine over a record. A
// transition absent here is never allowed, whoever asks.
var validTransitions = map[status.Value][]status.Value{
	status.New:       {status.Draft, status.Trash},
	status.Draft:     {status.Review, status.Confirmed, status.Trash}, // confirmed only via skip
	status.Review:    {status.Confirmed, status.Draft, status.Trash},  // draft = send-back
	status.Confirmed: {status.Released, status.Review, status.Trash},
	status.Released:  {status.Archived, status.Confirmed, status.Trash},
	status.Archived:  {status.Released, status.Trash},
	status.Trash:     {status.Draft}, // restore
}

// CanSubmit reports whether the record creator may move the record forward
// on the submission path: new→draft or draft→review.
func CanSubmit(ctx Context, to status.Value) bool {
	if ctx.Record == nil || !ctx.isRecordOwner() {
		return false
	}
	from := ctx.Record.Status.Category()
	to = to.Category()
	return (from == status.New && to == status.Draft) ||
		(from == status.Draft && to == status.Review)
}

// CanApprove reports whether the project owner may approve review→confirmed.
func CanApprove(ctx Context) bool {
	return ctx.Record != nil && ctx.isProjectOwner() &&
		ctx.Record.Status.Category() == status.Review
}

// CanReject reports whether the project owner may send a record back,
// review→draft.
func CanReject(ctx Context) bool {
	return ctx.Record != nil && ctx.isProjectOwner() &&
		ctx.Record.Status.Category() == status.Review
}

// CanSkipReview reports whether the project owner may move draft→confirmed
// directly. Only small teams (owner plus members ≤ 3) skip the review step.
func CanSkipReview(ctx Context) bool {
	if ctx.Record == nil || !ctx.isProjectOwner() {
		return false
	}
	if ctx.Record.Status.Category() != status.Draft {
		return false
	}
	teamSize := ctx.Project.TeamSize
	if teamSize == 0 {
		teamSize = 1
	}
	return teamSize <= 3
}

// CanTransition decides one specific status transition for the record in
// the context. Structural validity first, then the rule for that edge.
func CanTransition(ctx Context, to status.Value) bool {
	if ctx.Record == nil {
		return false
	}
	from := ctx.Record.Status.Category()
	to = to.Category()

	allowed := false
	for _, target := range validTransitions[from] {
		if target == to {
			allowed = true
			break
		}
	}
	if !allowed {
		return false
	}

	if to == status.Trash {
		return ctx.isRecordOwner() || ctx.isProjectOwner()
	}
	if CanSubmit(ctx, to) {
		return true
	}
	if from == status.Review && to == status.Confirmed {
		return CanApprove(ctx)
	}
	if from == status.Review && to == status.Draft {
		return CanReject(ctx)
	}
	if from == status.Draft && to == status.Confirmed {
		return CanSkipReview(ctx)
	}
	// remaining edges (release, archive, restore) are the project owner's
	return ctx.isProjectOwner()
}

// AvailableTransitions lists the targets the user may move the record to.
func AvailableTransitions(ctx Context) []status.Value {
	if ctx.Record == nil {
		return nil
	}
	var targets []status.Value
	for _, to := range validTransitions[ctx.Record.Status.Category()] {
		if CanTransition(ctx, to) {
			targets = append(targets, to)
		}
	}
	return targets
}

// Permissions aggregates every oracle answer for one context, the shape
// record-serving handlers embed in their responses.
type Permissions struct {
	CanRead              bool           `json:"canRead"`
	CanEdit              bool           `json:"canEdit"`
	CanCreate            bool           `json:"canCreate"`
	CanDelete            bool           `json:"canDelete"`
	CanApprove           bool           `json:"canApprove"`
	CanReject            bool           `json:"canReject"`
	CanSkipReview        bool           `json:"canSkipReview"`
	ContentDepth         ContentDepth   `json:"contentDepth"`
	AvailableTransitions []status.Value `json:"availableTransitions"`
}

// Resolve computes the full permission set in one call.
func Resolve(ctx Context) Permissions {
	return Permissions{
		CanRead:              CanRead(ctx),
		CanEdit:              CanEdit(ctx),
		CanCreate:            CanCreate(ctx),
		CanDelete:            ctx.isRecordOwner() || ctx.isProjectOwner(),
		CanApprove:           CanApprove(ctx),
		CanReject:            CanReject(ctx),
		CanSkipReview:        CanSkipReview(ctx),
		ContentDepth:         GetContentDepth(ctx),
		AvailableTransitions: AvailableTransitions(ctx),
	}
}
