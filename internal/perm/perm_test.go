package perm

import (
	"testing"

	"opus/api/internal/status"
)

func member() *MembershipInfo      { return &MembershipInfo{ConfigRole: RoleMember} }
func participant() *MembershipInfo { return &MembershipInfo{ConfigRole: RoleParticipant} }
func partner() *MembershipInfo     { return &MembershipInfo{ConfigRole: RolePartner} }

func TestCanReadReleased(t *testing.T) {
	ctx := Context{
		ActingUserID: 0, // anonymous
		Record:       &RecordInfo{ID: 1, OwnerID: 7, Status: status.Released, ProjectID: 1},
		Project:      ProjectInfo{ID: 1, OwnerID: 7, Status: status.Released},
	}
	if !CanRead(ctx) {
		t.Fatal("anonymous read of released record in released project denied")
	}
	// record released but project still in draft: deny
	ctx.Project.Status = status.Draft
	if CanRead(ctx) {
		t.Fatal("released record readable while project is draft")
	}
}

func TestCanReadByRelation(t *testing.T) {
	record := &RecordInfo{ID: 1, OwnerID: 7, Status: status.Draft, ProjectID: 1}
	cases := []struct {
		name       string
		project    status.Value
		membership *MembershipInfo
		want       bool
	}{
		{"member at draft", status.Draft, member(), true},
		{"member at demo", status.Demo, member(), false},
		{"participant at draft", status.Draft, participant(), false},
		{"participant at review", status.Review, participant(), true},
		{"partner at review", status.Review, partner(), false},
		{"partner at confirmed", status.Confirmed, partner(), true},
		{"unknown code fails closed", status.Released, &MembershipInfo{ConfigRole: 6}, false},
		{"combined codes fail closed", status.Released, &MembershipInfo{ConfigRole: 12}, false},
		{"no membership", status.Confirmed, nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := Context{
				ActingUserID: 42,
				Record:       record,
				Project:      ProjectInfo{ID: 1, OwnerID: 7, Status: tc.project},
				Membership:   tc.membership,
			}
			if got := CanRead(ctx); got != tc.want {
				t.Fatalf("CanRead = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestOwnersAlwaysRead(t *testing.T) {
	record := &RecordInfo{ID: 1, OwnerID: 42, Status: status.New, ProjectID: 1}
	ctx := Context{
		ActingUserID: 42,
		Record:       record,
		Project:      ProjectInfo{ID: 1, OwnerID: 7, Status: status.New},
	}
	if !CanRead(ctx) {
		t.Fatal("record creator denied")
	}
	ctx.ActingUserID = 7
	if !CanRead(ctx) {
		t.Fatal("project owner denied")
	}
}

func TestEmptyContextDenies(t *testing.T) {
	ctx := Context{}
	if CanRead(ctx) || CanEdit(ctx) || CanCreate(ctx) {
		t.Fatal("empty context allowed something")
	}
	if GetContentDepth(ctx) != DepthNone {
		t.Fatalf("depth = %s, want none", GetContentDepth(ctx))
	}
	// zero owner ids must not match the zero acting user id
	ctx = Context{Project: ProjectInfo{OwnerID: 0}, Record: &RecordInfo{OwnerID: 0}}
	if CanRead(ctx) {
		t.Fatal("zero ids treated as ownership")
	}
}

func TestGetContentDepth(t *testing.T) {
	record := &RecordInfo{ID: 1, OwnerID: 7, Status: status.Released, ProjectID: 1}
	cases := []struct {
		name       string
		project    status.Value
		membership *MembershipInfo
		want       ContentDepth
	}{
		{"new project", status.New, member(), DepthNone},
		{"member before draft denied", status.Demo, member(), DepthNone},
		{"draft floors to core", status.Draft, member(), DepthCore},
		{"review is full", status.Review, member(), DepthFull},
		{"released anonymous", status.Released, nil, DepthFull},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := *record
			if tc.project.Category() < status.Released {
				rec.Status = status.Draft
			}
			ctx := Context{
				ActingUserID: 42,
				Record:       &rec,
				Project:      ProjectInfo{ID: 1, OwnerID: 7, Status: tc.project},
				Membership:   tc.membership,
			}
			if got := GetContentDepth(ctx); got != tc.want {
				t.Fatalf("depth = %s, want %s", got, tc.want)
			}
		})
	}

	// owners bypass the project ceiling
	ctx := Context{
		ActingUserID: 7,
		Record:       &RecordInfo{ID: 1, OwnerID: 9, Status: status.New, ProjectID: 1},
		Project:      ProjectInfo{ID: 1, OwnerID: 7, Status: status.New},
	}
	if GetContentDepth(ctx) != DepthFull {
		t.Fatal("project owner floored by project state")
	}
}

func TestCanEdit(t *testing.T) {
	record := &RecordInfo{ID: 1, OwnerID: 7, Status: status.Draft, ProjectID: 1}
	cases := []struct {
		name    string
		userID  int64
		project ProjectInfo
		member  *MembershipInfo
		rec     *RecordInfo
		want    bool
	}{
		{"creator edits own", 7, ProjectInfo{OwnerID: 9, Status: status.New}, nil, record, true},
		{"project owner edits any", 9, ProjectInfo{OwnerID: 9, Status: status.New}, nil, record, true},
		{"member editor at draft", 42, ProjectInfo{OwnerID: 9, Status: status.Draft}, member(), record, true},
		{"member editor before draft", 42, ProjectInfo{OwnerID: 9, Status: status.Demo}, member(), record, false},
		{"participant never edits", 42, ProjectInfo{OwnerID: 9, Status: status.Released}, participant(), record, false},
		{"no record", 42, ProjectInfo{OwnerID: 9, Status: status.Draft}, member(), nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := Context{ActingUserID: tc.userID, Record: tc.rec, Project: tc.project, Membership: tc.member}
			if got := CanEdit(ctx); got != tc.want {
				t.Fatalf("CanEdit = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCanCreate(t *testing.T) {
	cases := []struct {
		name    string
		userID  int64
		project ProjectInfo
		member  *MembershipInfo
		want    bool
	}{
		{"owner in new project", 9, ProjectInfo{OwnerID: 9, Status: status.New}, nil, true},
		{"member in draft project", 42, ProjectInfo{OwnerID: 9, Status: status.Draft}, member(), true},
		{"partner in draft project", 42, ProjectInfo{OwnerID: 9, Status: status.Draft}, partner(), true},
		{"member in demo project", 42, ProjectInfo{OwnerID: 9, Status: status.Demo}, member(), false},
		{"stranger", 42, ProjectInfo{OwnerID: 9, Status: status.Released}, nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := Context{ActingUserID: tc.userID, Project: tc.project, Membership: tc.member}
			if got := CanCreate(ctx); got != tc.want {
				t.Fatalf("CanCreate = %v, want %v", got, tc.want)
			}
		})
	}
}
