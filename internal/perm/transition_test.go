package perm

import (
	"testing"

	"opus/api/internal/status"
)

// transitionCtx builds a context where user 7 owns both record and project.
func transitionCtx(recordStatus status.Value) Context {
	return Context{
		ActingUserID: 7,
		Record:       &RecordInfo{ID: 1, OwnerID: 7, Status: recordStatus, ProjectID: 1},
		Project:      ProjectInfo{ID: 1, OwnerID: 7, Status: status.Released, TeamSize: 2},
	}
}

func TestCanSubmit(t *testing.T) {
	cases := []struct {
		name string
		from status.Value
		to   status.Value
		want bool
	}{
		{"new to draft", status.New, status.Draft, true},
		{"draft to review", status.Draft, status.Review, true},
		{"new to review skips", status.New, status.Review, false},
		{"draft to confirmed is not a submit", status.Draft, status.Confirmed, false},
		{"review to confirmed is not a submit", status.Review, status.Confirmed, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := transitionCtx(tc.from)
			if got := CanSubmit(ctx, tc.to); got != tc.want {
				t.Fatalf("CanSubmit(%s→%s) = %v, want %v", tc.from.Name(), tc.to.Name(), got, tc.want)
			}
		})
	}

	// only the record creator submits
	ctx := transitionCtx(status.New)
	ctx.ActingUserID = 8
	if CanSubmit(ctx, status.Draft) {
		t.Fatal("non-creator allowed to submit")
	}
}

func TestApproveRejectRequireReview(t *testing.T) {
	ctx := transitionCtx(status.Review)
	if !CanApprove(ctx) || !CanReject(ctx) {
		t.Fatal("project owner cannot approve/reject record in review")
	}

	ctx.Record.Status = status.Draft
	if CanApprove(ctx) || CanReject(ctx) {
		t.Fatal("approve/reject allowed outside review")
	}

	ctx.Record.Status = status.Review
	ctx.Project.OwnerID = 99 // acting user still owns the record
	if CanApprove(ctx) || CanReject(ctx) {
		t.Fatal("record creator allowed to approve own record")
	}
}

func TestCanSkipReview(t *testing.T) {
	cases := []struct {
		name     string
		teamSize int
		want     bool
	}{
		{"unset team counts as one", 0, true},
		{"team of three", 3, true},
		{"team of four", 4, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := transitionCtx(status.Draft)
			ctx.Project.TeamSize = tc.teamSize
			if got := CanSkipReview(ctx); got != tc.want {
				t.Fatalf("CanSkipReview team=%d = %v, want %v", tc.teamSize, got, tc.want)
			}
		})
	}

	ctx := transitionCtx(status.Review)
	if CanSkipReview(ctx) {
		t.Fatal("skip allowed outside draft")
	}
}

func TestCanTransition(t *testing.T) {
	owner := transitionCtx(status.Draft)

	creatorOnly := transitionCtx(status.Draft)
	creatorOnly.Project.OwnerID = 99
	creatorOnly.Membership = member()

	memberOther := transitionCtx(status.Draft)
	memberOther.Record.OwnerID = 99
	memberOther.Project.OwnerID = 99
	memberOther.Membership = member()

	cases := []struct {
		name string
		ctx  Context
		from status.Value
		to   status.Value
		want bool
	}{
		{"owner skips review on small team", owner, status.Draft, status.Confirmed, true},
		{"owner releases confirmed", owner, status.Confirmed, status.Released, true},
		{"owner archives released", owner, status.Released, status.Archived, true},
		{"owner restores from trash", owner, status.Trash, status.Draft, true},
		{"owner restores archived", owner, status.Archived, status.Released, true},
		{"draft straight to released invalid", owner, status.Draft, status.Released, false},
		{"trash to confirmed invalid", owner, status.Trash, status.Confirmed, false},
		{"archived to draft invalid", owner, status.Archived, status.Draft, false},
		{"self transition invalid", owner, status.Draft, status.Draft, false},
		{"creator submits to review", creatorOnly, status.Draft, status.Review, true},
		{"creator cannot skip review", creatorOnly, status.Draft, status.Confirmed, false},
		{"creator cannot approve own record", creatorOnly, status.Review, status.Confirmed, false},
		{"creator trashes own record", creatorOnly, status.Draft, status.Trash, true},
		{"member cannot submit others' record", memberOther, status.Draft, status.Review, false},
		{"member cannot trash others' record", memberOther, status.Draft, status.Trash, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := tc.ctx
			rec := *ctx.Record
			rec.Status = tc.from
			ctx.Record = &rec
			if got := CanTransition(ctx, tc.to); got != tc.want {
				t.Fatalf("CanTransition(%s→%s) = %v, want %v", tc.from.Name(), tc.to.Name(), got, tc.want)
			}
		})
	}
}

func TestCanTransitionNilRecord(t *testing.T) {
	ctx := Context{ActingUserID: 7, Project: ProjectInfo{ID: 1, OwnerID: 7}}
	if CanTransition(ctx, status.Draft) {
		t.Fatal("transition allowed without a record")
	}
	if AvailableTransitions(ctx) != nil {
		t.Fatal("targets listed without a record")
	}
}

func TestAvailableTransitions(t *testing.T) {
	ctx := transitionCtx(status.Review)
	got := AvailableTransitions(ctx)
	want := []status.Value{status.Confirmed, status.Draft, status.Trash}
	if len(got) != len(want) {
		t.Fatalf("targets = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("targets = %v, want %v", got, want)
		}
	}

	// creator with a draft on a big team: review and trash only
	ctx = transitionCtx(status.Draft)
	ctx.Project.OwnerID = 99
	ctx.Project.TeamSize = 5
	ctx.Membership = member()
	got = AvailableTransitions(ctx)
	want = []status.Value{status.Review, status.Trash}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("creator targets = %v, want %v", got, want)
	}
}

func TestResolve(t *testing.T) {
	ctx := transitionCtx(status.Review)
	p := Resolve(ctx)
	if !p.CanRead || !p.CanEdit || !p.CanDelete || !p.CanApprove || !p.CanReject {
		t.Fatalf("owner permissions incomplete: %+v", p)
	}
	if p.CanSkipReview {
		t.Fatal("skip review offered outside draft")
	}
	if p.ContentDepth != DepthFull {
		t.Fatalf("ContentDepth = %q, want %q", p.ContentDepth, DepthFull)
	}
	if len(p.AvailableTransitions) != 3 {
		t.Fatalf("AvailableTransitions = %v", p.AvailableTransitions)
	}

	anon := Context{
		Record:  &RecordInfo{ID: 1, OwnerID: 7, Status: status.Draft, ProjectID: 1},
		Project: ProjectInfo{ID: 1, OwnerID: 7, Status: status.Draft},
	}
	p = Resolve(anon)
	if p.CanRead || p.CanEdit || p.CanCreate || p.CanDelete {
		t.Fatalf("anonymous permissions not empty: %+v", p)
	}
	if p.ContentDepth != DepthNone {
		t.Fatalf("anonymous ContentDepth = %q", p.ContentDepth)
	}
	if p.AvailableTransitions != nil {
		t.Fatalf("anonymous transitions = %v", p.AvailableTransitions)
	}
}
